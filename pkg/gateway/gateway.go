package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/pixperk/handset/pkg/booking"
	"github.com/pixperk/handset/pkg/limiter"
	"github.com/pixperk/handset/pkg/logging"
	"github.com/pixperk/handset/pkg/notify"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// REST front end for the booking service
type Server struct {
	httpServer *http.Server
	svc        *booking.Service
	limiter    limiter.Limiter
	hub        *notify.Hub
	journal    *notify.JournalSink
	logger     *slog.Logger
}

type Options struct {
	Limiter limiter.Limiter     // optional
	Hub     *notify.Hub         // optional, serves /events
	Journal *notify.JournalSink // optional, serves /history
	Logger  *slog.Logger
}

func NewServer(httpAddr string, svc *booking.Service, opts Options) *Server {
	s := &Server{
		svc:     svc,
		limiter: opts.Limiter,
		hub:     opts.Hub,
		journal: opts.Journal,
		logger:  logging.Ensure(opts.Logger).With("component", "gateway"),
	}
	s.httpServer = &http.Server{
		Addr:              httpAddr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /book", s.limited(s.handleBook))
	mux.HandleFunc("POST /return", s.limited(s.handleReturn))
	mux.HandleFunc("GET /list", s.limited(s.handleList))
	mux.HandleFunc("GET /ping", s.handlePing)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /history", s.limited(s.handleHistory))
	if s.hub != nil {
		mux.Handle("GET /events", s.hub)
	}

	return mux
}

// serves until Stop is called
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ln)
}

func (s *Server) Serve(ln net.Listener) error {
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve HTTP gateway: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
