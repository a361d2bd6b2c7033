/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package trivia

import (
	"context"
	"crypto/rand"
	"sync"
	"time"
)

const roomKeyLength = 8

// Manager holds the rooms of this process keyed by room key, so every
// $path/$room is its own isolated game.
type Manager struct {
	mu    sync.Mutex
	rooms map[string]*Room

	opts        Options
	idleTimeout time.Duration
}

func NewManager(opts Options, idleTimeout time.Duration) *Manager {
	return &Manager{
		rooms:       make(map[string]*Room),
		opts:        opts.withDefaults(),
		idleTimeout: idleTimeout,
	}
}

// Acquire returns the room for key, creating and starting it on first use.
// Every Acquire must be paired with a Release once the caller's connection
// has gone away; a room is never reaped while it is held.
func (m *Manager) Acquire(key string) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[key]
	if !ok {
		r = NewRoom(key, m.opts)
		m.rooms[key] = r
		go r.Run(context.Background())

		m.opts.Logger.Info().Str("room", key).Msg("room created")
	}

	r.refs.Add(1)

	return r
}

func (m *Manager) Release(r *Room) {
	r.refs.Add(-1)
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.rooms)
}

// NewRoomKey generates a crypto-random room key that is not in use.
func (m *Manager) NewRoomKey() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	const limit = byte(255 - (256 % len(letters)))

	for {
		out := make([]byte, 0, roomKeyLength)
		buf := make([]byte, roomKeyLength*2)

		for len(out) < roomKeyLength {
			if _, err := rand.Read(buf); err != nil {
				panic("crypto/rand failure: " + err.Error())
			}

			for _, b := range buf {
				if b <= limit && len(out) < roomKeyLength {
					out = append(out, letters[int(b)%len(letters)])
				}
			}
		}

		key := string(out)

		m.mu.Lock()
		_, exists := m.rooms[key]
		m.mu.Unlock()

		if !exists {
			return key
		}
	}
}

// Run reaps idle rooms until ctx is cancelled, then closes every room.
func (m *Manager) Run(ctx context.Context) error {
	defer m.closeAll()

	if m.idleTimeout <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := m.opts.Clock.NewTicker(m.idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			m.reap()
		}
	}
}

// reap closes rooms that nobody holds and that have been idle longer than
// the idle timeout. It returns how many rooms were removed.
func (m *Manager) reap() int {
	cutoff := m.opts.Clock.Now().Add(-m.idleTimeout)

	m.mu.Lock()
	defer m.mu.Unlock()

	reaped := 0
	for key, r := range m.rooms {
		if r.refs.Load() > 0 || !r.idleSince().Before(cutoff) {
			continue
		}

		delete(m.rooms, key)
		r.Close()
		reaped++

		m.opts.Logger.Info().Str("room", key).Msg("room reaped")
	}

	return reaped
}

func (m *Manager) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, r := range m.rooms {
		delete(m.rooms, key)
		r.Close()
	}
}
