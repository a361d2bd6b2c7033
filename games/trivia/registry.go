/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package trivia

import (
	"maps"
	"slices"
)

// Peer is the send side of a live connection. Send must not block.
type Peer interface {
	Send(msg []byte) error
}

// Registry tracks the live connections of a room and which of them is the
// host. It knows nothing about the game.
type Registry struct {
	peers map[string]Peer
	host  string
}

func NewRegistry() *Registry {
	return &Registry{
		peers: make(map[string]Peer),
	}
}

func (r *Registry) Register(id string, p Peer) {
	r.peers[id] = p
}

// MarkHost records id as the host. The last caller wins.
func (r *Registry) MarkHost(id string) {
	if _, ok := r.peers[id]; !ok {
		return
	}

	r.host = id
}

// Unregister removes id and reports whether it was the host, in which case
// the room no longer has one.
func (r *Registry) Unregister(id string) (wasHost bool) {
	if _, ok := r.peers[id]; !ok {
		return false
	}

	delete(r.peers, id)

	if r.host == id {
		r.host = ""

		return true
	}

	return false
}

func (r *Registry) IsHost(id string) bool {
	return id != "" && r.host == id
}

func (r *Registry) Host() string {
	return r.host
}

func (r *Registry) Peer(id string) (Peer, bool) {
	p, ok := r.peers[id]

	return p, ok
}

// IDs lists the registered connection ids in a stable order.
func (r *Registry) IDs() []string {
	return slices.Sorted(maps.Keys(r.peers))
}

func (r *Registry) Len() int {
	return len(r.peers)
}
