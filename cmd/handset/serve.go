package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/pixperk/handset/pkg/booking"
	"github.com/pixperk/handset/pkg/catalog"
	"github.com/pixperk/handset/pkg/config"
	"github.com/pixperk/handset/pkg/gateway"
	"github.com/pixperk/handset/pkg/limiter"
	"github.com/pixperk/handset/pkg/notify"
	"github.com/pixperk/handset/pkg/registry"
	"github.com/pixperk/handset/pkg/server"
	"github.com/pixperk/handset/pkg/storage"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
)

func newServeCommand(c *cli) *cobra.Command {
	var (
		configPath string
		httpAddr   string
		grpcAddr   string
		mobiles    []string
		strict     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the booking server (HTTP and gRPC)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if flagChanged(cmd, "http-addr") {
				cfg.HTTPAddr = httpAddr
			}
			if flagChanged(cmd, "grpc-addr") {
				cfg.GRPCAddr = grpcAddr
			}
			if flagChanged(cmd, "mobiles") {
				cfg.Mobiles = mobiles
			}
			if flagChanged(cmd, "strict-catalog") {
				cfg.StrictCatalog = strict
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			// the config file decides logging unless the flags were given explicitly
			level, format := cfg.LogLevel, cfg.LogFormat
			if flagChanged(cmd, "log-level") {
				level, _ = cmd.Flags().GetString("log-level")
			}
			if flagChanged(cmd, "log-format") {
				format, _ = cmd.Flags().GetString("log-format")
			}
			if err := c.configureLogging(level, format, cmd.ErrOrStderr()); err != nil {
				return err
			}

			logger := c.logger.With("command", "serve")
			a, err := newApp(cfg, logger)
			if err != nil {
				return err
			}
			return a.run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	cmd.Flags().StringVar(&httpAddr, "http-addr", "", "HTTP listen address (empty disables)")
	cmd.Flags().StringVar(&grpcAddr, "grpc-addr", "", "gRPC listen address (empty disables)")
	cmd.Flags().StringSliceVar(&mobiles, "mobiles", nil, "Comma separated catalog of mobiles")
	cmd.Flags().BoolVar(&strict, "strict-catalog", false, "Reject bookings for mobiles outside the catalog")
	return cmd
}

// app owns every long running component of the server
type app struct {
	cfg    config.Config
	logger *slog.Logger

	svc        *booking.Service
	dispatcher *notify.Dispatcher
	hub        *notify.Hub
	journal    *storage.Journal
	redis      *redis.Client

	gateway    *gateway.Server
	grpcServer *grpc.Server
	health     *health.Server
}

func newApp(cfg config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	var (
		sinks   []notify.Sink
		history *notify.JournalSink
	)
	if cfg.Notify.Log {
		sinks = append(sinks, notify.NewLogSink(logger))
	}
	if cfg.Notify.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Notify.Redis.Addr,
			Password: cfg.Notify.Redis.Password,
			DB:       cfg.Notify.Redis.DB,
		})
		sinks = append(sinks, notify.NewRedisSink(a.redis, cfg.Notify.Redis.ChannelPrefix))
	}
	if cfg.Notify.Journal.Path != "" {
		journal, err := storage.OpenJournal(cfg.Notify.Journal.Path)
		if err != nil {
			a.closeClients()
			return nil, err
		}
		a.journal = journal
		history = notify.NewJournalSink(journal, cfg.Notify.Journal.Retain)
		sinks = append(sinks, history)
	}
	if cfg.Notify.Websocket {
		a.hub = notify.NewHub(0, logger)
		sinks = append(sinks, a.hub)
	}

	a.dispatcher = notify.NewDispatcher(notify.DispatcherConfig{
		QueueSize: cfg.Notify.QueueSize,
		Timeout:   cfg.Notify.Timeout,
		Logger:    logger,
	}, sinks...)

	a.svc = booking.NewService(booking.Config{
		Registry:      registry.New(),
		Catalog:       catalog.New(cfg.Mobiles),
		Publisher:     a.dispatcher,
		StrictCatalog: cfg.StrictCatalog,
		Logger:        logger,
	})

	var l limiter.Limiter
	if bucket := limiter.New(cfg.RateLimit.Requests, cfg.RateLimit.Burst, cfg.RateLimit.Window); bucket != nil {
		l = bucket
	}

	if cfg.HTTPAddr != "" {
		a.gateway = gateway.NewServer(cfg.HTTPAddr, a.svc, gateway.Options{
			Limiter: l,
			Hub:     a.hub,
			Journal: history,
			Logger:  logger,
		})
	}
	if cfg.GRPCAddr != "" {
		a.grpcServer, a.health = server.NewGRPCServer(a.svc, l)
	}

	return a, nil
}

// serves until ctx is done or a listener fails, then shuts everything down
func (a *app) run(ctx context.Context) error {
	errCh := make(chan error, 2)

	if a.grpcServer != nil {
		lis, err := net.Listen("tcp", a.cfg.GRPCAddr)
		if err != nil {
			a.shutdown()
			return fmt.Errorf("failed to listen on %s: %w", a.cfg.GRPCAddr, err)
		}
		a.logger.Info("gRPC server listening", "addr", lis.Addr().String())
		go func() {
			if err := a.grpcServer.Serve(lis); err != nil {
				errCh <- fmt.Errorf("gRPC server failed: %w", err)
			}
		}()
	}

	if a.gateway != nil {
		a.logger.Info("HTTP gateway listening", "addr", a.cfg.HTTPAddr)
		go func() {
			if err := a.gateway.Start(); err != nil {
				errCh <- err
			}
		}()
	}

	a.logger.Info("handset is ready", "mobiles", a.svc.Health().Mobiles, "strict_catalog", a.cfg.StrictCatalog)

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutting down gracefully")
	case runErr = <-errCh:
		a.logger.Error("server failed, shutting down", "error", runErr)
	}

	if err := a.shutdown(); err != nil {
		runErr = errors.Join(runErr, err)
	}
	return runErr
}

func (a *app) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	var errs []error
	if a.health != nil {
		a.health.Shutdown()
	}
	if a.gateway != nil {
		if err := a.gateway.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop HTTP gateway: %w", err))
		}
	}
	if a.grpcServer != nil {
		stopGRPC(ctx, a.grpcServer)
	}

	// drain pending events before the sinks go away
	if err := a.dispatcher.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("drain notifications: %w", err))
	}
	if a.hub != nil {
		a.hub.Close()
	}
	if err := a.closeClients(); err != nil {
		errs = append(errs, err)
	}

	a.logger.Info("shutdown complete")
	return errors.Join(errs...)
}

func (a *app) closeClients() error {
	var errs []error
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close journal: %w", err))
		}
		a.journal = nil
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
		a.redis = nil
	}
	return errors.Join(errs...)
}

// GracefulStop with a deadline; in-flight calls are cut off once ctx expires
func stopGRPC(ctx context.Context, s *grpc.Server) {
	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.Stop()
		<-done
	}
}
