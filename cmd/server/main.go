package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"webshop/internal/identity"
	"webshop/internal/platform/config"
	"webshop/internal/platform/health"
	"webshop/internal/platform/logger"
	"webshop/internal/platform/metrics"
	"webshop/internal/platform/middleware"
	"webshop/internal/platform/tracing"
	"webshop/internal/session/device"
	"webshop/internal/session/handler"
	sessionmetrics "webshop/internal/session/metrics"
	"webshop/internal/session/service"
	"webshop/internal/session/workers/cleanup"
	"webshop/pkg/domain"
)

// main wires the session bridge: identity backend, document store, local
// state, audit sink and the websocket endpoint. Session logic lives in
// internal/session.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "webshop:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("initializing webshop session bridge",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"docstore", cfg.DocStore.Backend,
		"local_state", cfg.LocalState.Backend,
	)

	checks := health.New(cfg.Environment)

	infra, err := openInfra(ctx, cfg, checks)
	if err != nil {
		return err
	}
	defer infra.close()

	docs, err := newDocStore(cfg, infra, log)
	if err != nil {
		return err
	}
	local, err := newLocalState(cfg, infra, log)
	if err != nil {
		return err
	}
	sink, err := newAuditPublisher(cfg, log, checks)
	if err != nil {
		return err
	}
	defer sink.close()

	verifier, err := identity.NewVerifier(cfg.Identity.JWKSURL, cfg.Identity.Issuer(), cfg.Identity.ProjectID, log)
	if err != nil {
		return err
	}
	defer verifier.Close()

	factory := service.NewFactory(service.FactoryConfig{
		Client: identity.NewClient(identity.ClientConfig{
			APIKey:   cfg.Identity.APIKey,
			BaseURL:  cfg.Identity.BaseURL,
			TokenURL: cfg.Identity.TokenURL,
			Timeout:  cfg.Identity.HTTPTimeout,
		}),
		Verifier:               verifier,
		Local:                  local.store,
		Documents:              docs.store,
		CustomerCollection:     cfg.DocStore.CustomerCollection,
		FareContractCollection: cfg.DocStore.FareContracts,
		Location:               domain.LoadLocation(cfg.Session.TimeZone),
		PhoneRegion:            cfg.Identity.PhoneRegion,
		Logger:                 log,
		Audit:                  sink.publisher,
		Metrics:                sessionmetrics.New(nil),
		Tracer:                 tracing.NewOTel(),
		RefreshLead:            cfg.Session.RefreshLead,
		RetryDelay:             cfg.Session.RetryDelay,
		RetryBudget:            cfg.Session.RetryBudget,
	})
	sessions := handler.New(
		handler.SessionFactoryFunc(func(installID domain.InstallID, info device.Info, notifier service.Notifier) handler.Session {
			return factory.NewManager(installID, info, notifier)
		}),
		handler.WithLogger(log),
		handler.WithAllowedOrigins(cfg.AllowedOrigins),
	)

	trusted, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return err
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientIP(trusted))
	r.Use(middleware.Logger(log, metrics.New(nil)))
	r.Use(middleware.Recovery(log))
	sessions.Register(r)
	checks.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		// Websocket handlers watch this context to close on shutdown.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	sweeper, err := cleanup.New(local.sweepable,
		cleanup.WithCleanupInterval(cfg.LocalState.CleanupInterval),
		cleanup.WithCleanupLogger(log),
	)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return ignoreCanceled(sweeper.Start(gctx))
	})
	if docs.listen != nil {
		g.Go(func() error {
			return docs.listen(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", "error", err)
		return err
	}
	log.Info("server stopped")
	return nil
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
