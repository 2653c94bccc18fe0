package telemetry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEmitter struct {
	mu     sync.Mutex
	events []*Event
	err    error
	done   chan struct{}
}

func newRecordingEmitter() *recordingEmitter {
	return &recordingEmitter{done: make(chan struct{}, 16)}
}

func (r *recordingEmitter) Emit(ctx context.Context, event *Event) error {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	r.done <- struct{}{}
	return r.err
}

func (r *recordingEmitter) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(time.Second):
		t.Fatal("emit did not happen")
	}
}

func TestEmitAsync_NilArgs(t *testing.T) {
	EmitAsync(nil, context.Background(), &Event{Type: EventLogin})
	r := newRecordingEmitter()
	EmitAsync(r, context.Background(), nil)
	time.Sleep(10 * time.Millisecond)
	assert.Empty(t, r.events)
}

func TestEmitAsync_SetsTimestampAndIgnoresCancelledContext(t *testing.T) {
	r := newRecordingEmitter()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	EmitAsync(r, ctx, &Event{Type: EventLogout, UserID: "u1"})
	r.wait(t)

	r.mu.Lock()
	defer r.mu.Unlock()
	require.Len(t, r.events, 1)
	assert.Equal(t, "u1", r.events[0].UserID)
	assert.False(t, r.events[0].At.IsZero())
}

func TestEmitAsync_ErrorDoesNotPanic(t *testing.T) {
	r := newRecordingEmitter()
	r.err = errors.New("sink down")
	EmitAsync(r, context.Background(), &Event{Type: EventLogin})
	r.wait(t)
}

func TestMulti(t *testing.T) {
	a, b := newRecordingEmitter(), newRecordingEmitter()
	b.err = errors.New("b failed")

	err := Multi{a, nil, b}.Emit(context.Background(), &Event{Type: EventChanged})
	assert.ErrorContains(t, err, "b failed")
	assert.Len(t, a.events, 1)
	assert.Len(t, b.events, 1)

	assert.NoError(t, Multi{}.Emit(context.Background(), &Event{}))
}
