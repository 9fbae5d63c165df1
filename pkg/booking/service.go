// Package booking runs the book, return and list flows on top of the lease registry.
package booking

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pixperk/handset/pkg/catalog"
	"github.com/pixperk/handset/pkg/logging"
	"github.com/pixperk/handset/pkg/metrics"
	"github.com/pixperk/handset/pkg/notify"
	"github.com/pixperk/handset/pkg/projector"
	"github.com/pixperk/handset/pkg/registry"
	hstime "github.com/pixperk/handset/pkg/time"
	"github.com/pixperk/handset/pkg/types"
)

// Service is safe for concurrent use; all shared state lives in the registry.
type Service struct {
	registry  *registry.Registry
	catalog   *catalog.Catalog
	clock     hstime.Clock
	publisher notify.Publisher
	strict    bool
	logger    *slog.Logger
}

type Config struct {
	Registry  *registry.Registry
	Catalog   *catalog.Catalog
	Clock     hstime.Clock     // defaults to the system clock
	Publisher notify.Publisher // defaults to discarding events
	// StrictCatalog rejects bookings for mobiles outside the catalog.
	StrictCatalog bool
	Logger        *slog.Logger
}

func NewService(cfg Config) *Service {
	s := &Service{
		registry:  cfg.Registry,
		catalog:   cfg.Catalog,
		clock:     cfg.Clock,
		publisher: cfg.Publisher,
		strict:    cfg.StrictCatalog,
		logger:    logging.Ensure(cfg.Logger).With("component", "booking"),
	}
	if s.registry == nil {
		s.registry = registry.New()
	}
	if s.catalog == nil {
		s.catalog = catalog.New(nil)
	}
	if s.clock == nil {
		s.clock = hstime.NewClock()
	}
	if s.publisher == nil {
		s.publisher = notify.Discard{}
	}
	return s
}

// BookRequest asks for mobile on behalf of requester until Due.
// Due is already parsed; transports reject malformed timestamps.
type BookRequest struct {
	Mobile    string
	Requester string
	Due       time.Time
}

// ReturnRequest gives mobile back on behalf of requester.
type ReturnRequest struct {
	Mobile    string
	Requester string
}

// Book leases the mobile and publishes a book event.
// Errors: ErrInvalidRequest, ErrUnknownMobile, ErrInvalidDue, or a HolderError wrapping ErrAlreadyLeased.
func (s *Service) Book(ctx context.Context, req BookRequest) (types.Lease, error) {
	start := time.Now()
	lease, err := s.book(req)
	metrics.BookDuration.Observe(time.Since(start).Seconds())
	metrics.BookTotal.WithLabelValues(metrics.Result(err)).Inc()

	if err != nil {
		s.logger.WarnContext(ctx, "book rejected", "mobile", req.Mobile, "requester", req.Requester, "due", req.Due, "error", err)
		return types.Lease{}, err
	}

	metrics.LeasesActive.Set(float64(s.registry.Stats().Leases))
	s.logger.InfoContext(ctx, "booked", "mobile", lease.Mobile, "requester", lease.Requester, "made", lease.Made, "due", lease.Due)

	s.publisher.Publish(types.Event{
		ID:        uuid.NewString(),
		Kind:      types.EventBook,
		Mobile:    lease.Mobile,
		Requester: lease.Requester,
		Made:      lease.Made,
		Due:       lease.Due,
		At:        lease.Made,
	})
	return lease, nil
}

func (s *Service) book(req BookRequest) (types.Lease, error) {
	mobile := strings.TrimSpace(req.Mobile)
	requester := strings.TrimSpace(req.Requester)
	if mobile == "" || requester == "" {
		return types.Lease{}, fmt.Errorf("%w: mobile and requester are required", types.ErrInvalidRequest)
	}
	if s.strict && !s.catalog.Contains(mobile) {
		return types.Lease{}, fmt.Errorf("%w: %s", types.ErrUnknownMobile, mobile)
	}

	return s.registry.Acquire(mobile, requester, req.Due, s.clock.Now())
}

// Return releases the mobile and publishes a return event.
// Errors: ErrInvalidRequest, ErrNotFound, or a HolderError wrapping ErrForbiddenHolder.
func (s *Service) Return(ctx context.Context, req ReturnRequest) (types.Lease, error) {
	mobile := strings.TrimSpace(req.Mobile)
	requester := strings.TrimSpace(req.Requester)

	var (
		lease types.Lease
		err   error
	)
	if mobile == "" || requester == "" {
		err = fmt.Errorf("%w: mobile and requester are required", types.ErrInvalidRequest)
	} else {
		lease, err = s.registry.Release(mobile, requester)
	}
	metrics.ReturnTotal.WithLabelValues(metrics.Result(err)).Inc()

	if err != nil {
		s.logger.WarnContext(ctx, "return rejected", "mobile", req.Mobile, "requester", req.Requester, "error", err)
		return types.Lease{}, err
	}

	metrics.LeasesActive.Set(float64(s.registry.Stats().Leases))
	s.logger.InfoContext(ctx, "returned", "mobile", lease.Mobile, "requester", lease.Requester)

	s.publisher.Publish(types.Event{
		ID:        uuid.NewString(),
		Kind:      types.EventReturn,
		Mobile:    lease.Mobile,
		Requester: lease.Requester,
		Made:      lease.Made,
		At:        s.clock.Now(),
	})
	return lease, nil
}

// List returns one view per catalog mobile, in catalog order, all projected at the same instant.
func (s *Service) List(ctx context.Context) []projector.View {
	now := s.clock.Now()
	mobiles := s.catalog.Mobiles()

	views := make([]projector.View, 0, len(mobiles))
	overdue := 0
	for _, mobile := range mobiles {
		var view projector.View
		if lease, held := s.registry.Lookup(mobile); held {
			view = projector.Project(mobile, &lease, now)
		} else {
			view = projector.Project(mobile, nil, now)
		}
		if view.Status == types.StatusOverdue {
			overdue++
		}
		views = append(views, view)
	}

	metrics.LeasesOverdue.Set(float64(overdue))
	s.logger.DebugContext(ctx, "listed", "mobiles", len(views), "overdue", overdue)
	return views
}

// Lookup returns the current lease on one mobile.
func (s *Service) Lookup(mobile string) (types.Lease, bool) {
	return s.registry.Lookup(strings.TrimSpace(mobile))
}

// Now is the service's current instant, what ping reports.
func (s *Service) Now() time.Time {
	return s.clock.Now()
}

// Health summarizes the service for probes.
type Health struct {
	Leases  int
	Mobiles int
}

func (s *Service) Health() Health {
	return Health{
		Leases:  s.registry.Stats().Leases,
		Mobiles: s.catalog.Len(),
	}
}
