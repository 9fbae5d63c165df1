package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pixperk/handset/pkg/logging"
	"github.com/pixperk/handset/pkg/metrics"
	"github.com/pixperk/handset/pkg/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	events []types.Event
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Notify(_ context.Context, ev types.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *recordingSink) ids() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.events))
	for _, ev := range s.events {
		ids = append(ids, ev.ID)
	}
	return ids
}

func closeDispatcher(t *testing.T, d *Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))
}

func TestDispatcherDeliversInOrder(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(DispatcherConfig{Logger: logging.Discard()}, sink)

	for _, id := range []string{"e1", "e2", "e3"} {
		assert.True(t, d.Publish(types.Event{ID: id, Kind: types.EventBook}))
	}
	closeDispatcher(t, d)

	assert.Equal(t, []string{"e1", "e2", "e3"}, sink.ids())
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	blocking := SinkFunc{ID: "blocking", Fn: func(context.Context, types.Event) error {
		once.Do(func() { close(started) })
		<-release
		return nil
	}}
	sink := &recordingSink{}

	d := NewDispatcher(DispatcherConfig{QueueSize: 1, Timeout: time.Minute, Logger: logging.Discard()}, blocking, sink)
	dropped := testutil.ToFloat64(metrics.NotifyDroppedTotal)

	require.True(t, d.Publish(types.Event{ID: "e1"}))
	<-started

	// worker is stuck on e1, one slot left in the queue
	assert.True(t, d.Publish(types.Event{ID: "e2"}))

	done := make(chan bool)
	go func() { done <- d.Publish(types.Event{ID: "e3"}) }()
	select {
	case accepted := <-done:
		assert.False(t, accepted, "full queue must drop")
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full queue")
	}
	assert.Equal(t, dropped+1, testutil.ToFloat64(metrics.NotifyDroppedTotal))

	close(release)
	closeDispatcher(t, d)

	assert.Equal(t, []string{"e1", "e2"}, sink.ids())
}

func TestDispatcherSinkFailureDoesNotStopOthers(t *testing.T) {
	failing := SinkFunc{ID: "failing", Fn: func(context.Context, types.Event) error {
		return errors.New("broker unavailable")
	}}
	sink := &recordingSink{}
	before := testutil.ToFloat64(metrics.NotifyTotal.WithLabelValues("failing", "error"))

	d := NewDispatcher(DispatcherConfig{Logger: logging.Discard()}, failing, sink)
	d.Publish(types.Event{ID: "e1"})
	closeDispatcher(t, d)

	assert.Equal(t, []string{"e1"}, sink.ids())
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.NotifyTotal.WithLabelValues("failing", "error")))
}

func TestDispatcherDeliveryTimeout(t *testing.T) {
	var sawDeadline bool
	slow := SinkFunc{ID: "slow", Fn: func(ctx context.Context, _ types.Event) error {
		_, sawDeadline = ctx.Deadline()
		<-ctx.Done()
		return ctx.Err()
	}}

	d := NewDispatcher(DispatcherConfig{Timeout: 20 * time.Millisecond, Logger: logging.Discard()}, slow)
	d.Publish(types.Event{ID: "e1"})
	closeDispatcher(t, d)

	assert.True(t, sawDeadline)
}

func TestDispatcherPublishAfterClose(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(DispatcherConfig{Logger: logging.Discard()}, sink)
	closeDispatcher(t, d)

	assert.False(t, d.Publish(types.Event{ID: "late"}))
	// closing twice is fine
	closeDispatcher(t, d)
	assert.Empty(t, sink.ids())
}
