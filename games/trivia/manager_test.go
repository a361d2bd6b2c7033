/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package trivia

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, idle time.Duration) (*Manager, *clockwork.FakeClock) {
	t.Helper()

	fc := clockwork.NewFakeClock()
	m := NewManager(Options{Clock: fc, Logger: zerolog.Nop()}, idle)
	t.Cleanup(m.closeAll)

	return m, fc
}

func TestManager_AcquireSharesRooms(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t, time.Minute)

	a := m.Acquire("ABCD1234")
	b := m.Acquire("ABCD1234")
	c := m.Acquire("other")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, int64(2), a.refs.Load())
}

func TestManager_Reap(t *testing.T) {
	t.Parallel()

	m, fc := newTestManager(t, time.Minute)

	held := m.Acquire("held")
	released := m.Acquire("released")
	m.Release(released)

	assert.Zero(t, m.reap(), "nothing is idle yet")

	fc.Advance(2 * time.Minute)

	assert.Equal(t, 1, m.reap())
	assert.Equal(t, 1, m.Len())
	assert.ErrorIs(t, released.Deliver("x", nil), ErrRoomClosed)
	assert.NoError(t, held.Deliver("x", []byte(`{}`)))
}

func TestManager_NewRoomKey(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t, time.Minute)
	valid := regexp.MustCompile(`^[A-Za-z0-9]{8}$`)

	seen := map[string]bool{}
	for range 100 {
		key := m.NewRoomKey()
		assert.Regexp(t, valid, key)
		seen[key] = true
	}

	assert.Greater(t, len(seen), 90)
}

func TestManager_RunClosesRoomsOnShutdown(t *testing.T) {
	t.Parallel()

	m, fc := newTestManager(t, time.Minute)
	r := m.Acquire("room")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- m.Run(ctx)
	}()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), time.Second)
	defer waitCancel()
	require.NoError(t, fc.BlockUntilContext(waitCtx, 1), "reaper ticker should be running")

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("manager did not stop")
	}

	assert.Zero(t, m.Len())
	assert.ErrorIs(t, r.Connect("x", &fakePeer{}), ErrRoomClosed)
}
