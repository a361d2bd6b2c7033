/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package trivia

import (
	"time"

	"github.com/jonboulle/clockwork"
)

const tickInterval = time.Second

// tickEvent is posted to the room once per second by the running countdown.
type tickEvent struct {
	gen uint64
}

// Timer drives a room's one-second countdown. Only one countdown runs at a
// time: Start always cancels the previous one. Ticks are not applied here;
// they are posted back into the room so they are serialized with commands.
//
// Every countdown has a generation number. A tick that was already in flight
// when its countdown was cancelled carries a stale generation and is dropped
// by Current.
type Timer struct {
	clock clockwork.Clock
	quit  <-chan struct{}
	post  func(event) bool

	gen  uint64
	stop chan struct{}
}

func newTimer(clock clockwork.Clock, quit <-chan struct{}, post func(event) bool) *Timer {
	return &Timer{
		clock: clock,
		quit:  quit,
		post:  post,
	}
}

// Start cancels any running countdown and begins a new one.
func (t *Timer) Start() uint64 {
	t.Cancel()

	t.gen++
	gen := t.gen
	stop := make(chan struct{})
	t.stop = stop

	ticker := t.clock.NewTicker(tickInterval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.Chan():
				select {
				case <-stop:
					return
				case <-t.quit:
					return
				default:
				}

				if !t.post(tickEvent{gen: gen}) {
					return
				}
			case <-stop:
				return
			case <-t.quit:
				return
			}
		}
	}()

	return gen
}

func (t *Timer) Cancel() {
	if t.stop == nil {
		return
	}

	close(t.stop)
	t.stop = nil
}

func (t *Timer) Active() bool {
	return t.stop != nil
}

// Current reports whether gen belongs to the countdown that is running now.
func (t *Timer) Current(gen uint64) bool {
	return t.stop != nil && gen == t.gen
}
