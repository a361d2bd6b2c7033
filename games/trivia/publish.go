/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package trivia

import (
	"encoding/json"

	"github.com/rs/zerolog"
)

// Publisher fans messages out to every connection in a registry. Delivery
// is best-effort: a connection that cannot take a message is logged and
// skipped, the rest still receive it.
type Publisher struct {
	registry *Registry
	log      zerolog.Logger
}

func NewPublisher(registry *Registry, log zerolog.Logger) *Publisher {
	return &Publisher{
		registry: registry,
		log:      log,
	}
}

// Publish sends the full session to every connection.
func (p *Publisher) Publish(session Snapshot) {
	p.broadcast(TypeSync, SyncMessage{
		Type: TypeSync,
		Data: session,
	})
}

// Terminate notifies every connection that the game has ended.
func (p *Publisher) Terminate() {
	p.broadcast(TypeTerminated, TerminatedMessage{
		Type: TypeTerminated,
	})
}

// SendTo delivers msg to a single connection.
func (p *Publisher) SendTo(id string, msg any) {
	peer, ok := p.registry.Peer(id)
	if !ok {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		p.log.Error().Err(err).Msg("failed to marshal message")
		return
	}

	p.deliver(id, peer, data)
}

func (p *Publisher) broadcast(kind string, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		p.log.Error().Err(err).Str("type", kind).Msg("failed to marshal broadcast")
		return
	}

	ids := p.registry.IDs()
	for _, id := range ids {
		peer, _ := p.registry.Peer(id)
		p.deliver(id, peer, data)
	}

	broadcastsTotal.WithLabelValues(kind).Inc()

	p.log.Debug().
		Str("type", kind).
		Int("connections", len(ids)).
		Msg("message broadcasted")
}

func (p *Publisher) deliver(id string, peer Peer, data []byte) {
	if err := peer.Send(data); err != nil {
		sendFailuresTotal.Inc()

		p.log.Warn().
			Err(err).
			Str("conn", id).
			Msg("failed to deliver message")
	}
}
