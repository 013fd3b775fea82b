package feeder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignal_SetIsIdempotent(t *testing.T) {
	s := NewSignal("feed")
	assert.False(t, s.IsSet())

	assert.True(t, s.Set())
	assert.False(t, s.Set(), "second set before consumption collapses")
	assert.True(t, s.IsSet())

	s.Clear()
	assert.False(t, s.IsSet())
	assert.True(t, s.Set())
}

func TestSignal_ClearDropsWakeup(t *testing.T) {
	s := NewSignal("prepare")
	s.Set()
	s.Clear()

	select {
	case <-s.C():
		t.Fatal("wakeup survived Clear")
	default:
	}
}

func TestSignal_WaitReturnsWhenAlreadySet(t *testing.T) {
	s := NewSignal("measure")
	s.Set()
	require.NoError(t, s.Wait(context.Background()))
	assert.True(t, s.IsSet(), "Wait does not consume")
}

func TestSignal_WaitWakesOnSet(t *testing.T) {
	s := NewSignal("feed")
	done := make(chan error, 1)
	go func() { done <- s.Wait(context.Background()) }()

	time.Sleep(5 * time.Millisecond)
	s.Set()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Wait did not wake")
	}
}

func TestSignal_WaitCancelled(t *testing.T) {
	s := NewSignal("feed")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Wait(ctx), context.Canceled)
}
