package booking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/pixperk/handset/pkg/catalog"
	"github.com/pixperk/handset/pkg/logging"
	"github.com/pixperk/handset/pkg/registry"
	hstime "github.com/pixperk/handset/pkg/time"
	"github.com/pixperk/handset/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)

type capturePublisher struct {
	mu     sync.Mutex
	events []types.Event
}

func (p *capturePublisher) Publish(ev types.Event) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return true
}

func (p *capturePublisher) all() []types.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]types.Event(nil), p.events...)
}

func newTestService(strict bool) (*Service, *hstime.ManualClock, *capturePublisher) {
	clock := hstime.NewManualClock(t0)
	pub := &capturePublisher{}
	svc := NewService(Config{
		Registry:      registry.New(),
		Catalog:       catalog.New([]string{"phone-1", "phone-2", "phone-3"}),
		Clock:         clock,
		Publisher:     pub,
		StrictCatalog: strict,
		Logger:        logging.Discard(),
	})
	return svc, clock, pub
}

func TestBookPublishesEvent(t *testing.T) {
	svc, _, pub := newTestService(false)
	ctx := context.Background()

	lease, err := svc.Book(ctx, BookRequest{Mobile: " phone-1 ", Requester: "alice", Due: t0.Add(time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, types.Lease{Mobile: "phone-1", Requester: "alice", Made: t0, Due: t0.Add(time.Hour)}, lease)

	events := pub.all()
	require.Len(t, events, 1)
	assert.Equal(t, types.EventBook, events[0].Kind)
	assert.Equal(t, "phone-1", events[0].Mobile)
	assert.Equal(t, "alice", events[0].Requester)
	assert.Equal(t, t0.Add(time.Hour), events[0].Due)
	assert.NotEmpty(t, events[0].ID)
}

func TestBookFailuresPublishNothing(t *testing.T) {
	svc, _, pub := newTestService(true)
	ctx := context.Background()

	_, err := svc.Book(ctx, BookRequest{Mobile: "phone-1", Requester: "", Due: t0.Add(time.Hour)})
	assert.ErrorIs(t, err, types.ErrInvalidRequest)

	_, err = svc.Book(ctx, BookRequest{Mobile: "phone-9", Requester: "alice", Due: t0.Add(time.Hour)})
	assert.ErrorIs(t, err, types.ErrUnknownMobile)

	_, err = svc.Book(ctx, BookRequest{Mobile: "phone-1", Requester: "alice", Due: t0})
	assert.ErrorIs(t, err, types.ErrInvalidDue)

	_, err = svc.Book(ctx, BookRequest{Mobile: "phone-1", Requester: "alice", Due: t0.Add(time.Hour)})
	require.NoError(t, err)
	_, err = svc.Book(ctx, BookRequest{Mobile: "phone-1", Requester: "bob", Due: t0.Add(time.Hour)})
	assert.ErrorIs(t, err, types.ErrAlreadyLeased)

	assert.Len(t, pub.all(), 1)
}

func TestBookUnknownMobileAllowedWhenNotStrict(t *testing.T) {
	svc, _, _ := newTestService(false)

	_, err := svc.Book(context.Background(), BookRequest{Mobile: "preposterous", Requester: "alice", Due: t0.Add(time.Hour)})
	assert.NoError(t, err)
}

func TestReturn(t *testing.T) {
	svc, clock, pub := newTestService(false)
	ctx := context.Background()

	_, err := svc.Return(ctx, ReturnRequest{Mobile: "phone-1", Requester: "alice"})
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = svc.Book(ctx, BookRequest{Mobile: "phone-1", Requester: "alice", Due: t0.Add(time.Hour)})
	require.NoError(t, err)

	_, err = svc.Return(ctx, ReturnRequest{Mobile: "phone-1", Requester: "bob"})
	assert.ErrorIs(t, err, types.ErrForbiddenHolder)
	holder, _ := types.HolderOf(err)
	assert.Equal(t, "alice", holder)

	clock.Advance(10 * time.Minute)
	lease, err := svc.Return(ctx, ReturnRequest{Mobile: "phone-1", Requester: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "alice", lease.Requester)

	_, held := svc.Lookup("phone-1")
	assert.False(t, held)

	events := pub.all()
	require.Len(t, events, 2)
	assert.Equal(t, types.EventReturn, events[1].Kind)
	assert.Equal(t, t0.Add(10*time.Minute), events[1].At)
	assert.True(t, events[1].Due.IsZero())
}

func TestReturnInvalidRequest(t *testing.T) {
	svc, _, _ := newTestService(false)

	_, err := svc.Return(context.Background(), ReturnRequest{Mobile: " ", Requester: "alice"})
	assert.ErrorIs(t, err, types.ErrInvalidRequest)
}

func TestListFollowsCatalogOrder(t *testing.T) {
	svc, clock, _ := newTestService(false)
	ctx := context.Background()

	_, err := svc.Book(ctx, BookRequest{Mobile: "phone-3", Requester: "alice", Due: t0.Add(time.Minute)})
	require.NoError(t, err)
	_, err = svc.Book(ctx, BookRequest{Mobile: "phone-2", Requester: "bob", Due: t0.Add(time.Hour)})
	require.NoError(t, err)
	// leased but not in the catalog: not listed
	_, err = svc.Book(ctx, BookRequest{Mobile: "phone-x", Requester: "carol", Due: t0.Add(time.Hour)})
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	views := svc.List(ctx)
	require.Len(t, views, 3)

	assert.Equal(t, "phone-1", views[0].Mobile)
	assert.Equal(t, types.StatusAvailable, views[0].Status)
	assert.Empty(t, views[0].Requester)

	assert.Equal(t, "phone-2", views[1].Mobile)
	assert.Equal(t, types.StatusInUse, views[1].Status)
	assert.Equal(t, "bob", views[1].Requester)

	assert.Equal(t, "phone-3", views[2].Mobile)
	assert.Equal(t, types.StatusOverdue, views[2].Status)
	assert.Equal(t, t0, views[2].Made)
	assert.Equal(t, t0.Add(time.Minute), views[2].Due)
}

func TestHealth(t *testing.T) {
	svc, _, _ := newTestService(false)
	_, err := svc.Book(context.Background(), BookRequest{Mobile: "phone-1", Requester: "alice", Due: t0.Add(time.Hour)})
	require.NoError(t, err)

	assert.Equal(t, Health{Leases: 1, Mobiles: 3}, svc.Health())
	assert.Equal(t, t0, svc.Now())
}

func TestConcurrentBookOneWinner(t *testing.T) {
	svc, _, pub := newTestService(false)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(requester string) {
			defer wg.Done()
			_, _ = svc.Book(ctx, BookRequest{Mobile: "phone-1", Requester: requester, Due: t0.Add(time.Hour)})
		}(fmt.Sprintf("user-%d", i))
	}
	wg.Wait()

	assert.Len(t, pub.all(), 1)
}
