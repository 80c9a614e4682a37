package library

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexwlchan/blink/internal/domain"
	"github.com/alexwlchan/blink/internal/focus"
)

func TestPublish_CoalescesLatestWins(t *testing.T) {
	s := NewService(nil, Options{}, nil)
	boom := errors.New("boom")

	s.publish(Event{SnapshotChanged: true, Err: boom, Removed: []domain.AssetID{"a"}})
	s.publish(Event{FocusChanged: true, Focus: focus.State{Index: 1}})
	s.publish(Event{FocusChanged: true, Focus: focus.State{Index: 2}, Removed: []domain.AssetID{"b"}})

	var ev Event
	select {
	case ev = <-s.Updates():
	default:
		t.Fatal("expected an event")
	}
	assert.Equal(t, 2, ev.Focus.Index)
	assert.True(t, ev.SnapshotChanged)
	assert.True(t, ev.FocusChanged)
	require.ErrorIs(t, ev.Err, boom)
	assert.Equal(t, []domain.AssetID{"a", "b"}, ev.Removed)

	select {
	case <-s.Updates():
		t.Fatal("events were not coalesced")
	default:
	}
}

func TestQueue_FIFO(t *testing.T) {
	s := NewService(nil, Options{}, nil)
	for i := 0; i < 3; i++ {
		s.enqueue(job{reload: i == 1})
	}
	s.queueMu.Lock()
	defer s.queueMu.Unlock()
	require.Len(t, s.queue, 3)
	assert.False(t, s.queue[0].reload)
	assert.True(t, s.queue[1].reload)
}
