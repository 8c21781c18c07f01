package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"opsboard/internal/amqp"
	"opsboard/internal/app"
	"opsboard/internal/backend"
	"opsboard/internal/cache"
	"opsboard/internal/cli"
	"opsboard/internal/config"
	apphttp "opsboard/internal/http"
	applog "opsboard/internal/log"
	"opsboard/internal/services"
	"opsboard/internal/settings"
	"opsboard/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		logger.Error("Configuration validation failed", "error", err, applog.FieldOperation, applog.OpValidate)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(cfg *config.Config, logger *applog.Logger) error {
	store, err := cli.OpenSettingsStore(logger.WithComponent(applog.ComponentStorage).Logger, cfg.SettingsDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := cli.GracefulShutdown(logger.Logger)
	defer cancel()

	supervisor := app.NewSupervisor(logger.WithComponent(applog.ComponentApp).Logger, cfg.ShutdownTimeout)

	opts := []settings.Option{settings.WithLogger(logger.WithComponent(applog.ComponentSettings).Logger)}
	var broker *amqp.Client
	if cfg.AMQPURL != "" {
		broker, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Warn("AMQP unavailable, settings changes will not be shared", "error", err)
		} else {
			defer broker.Close()
			opts = append(opts, settings.WithNotifier(broker))
		}
	}
	front := app.NewHandlerSwitch(cfg.ShutdownTimeout)
	restart := settings.RestartFunc(func() {
		front.Hold()
		supervisor.Restart()
	})
	registry := settings.NewRegistry(store, restart, opts...)

	if broker != nil {
		w := worker.NewSettingsWorker(registry)
		go func() {
			if err := w.Run(ctx, broker); err != nil && !errors.Is(err, context.Canceled) {
				logger.WithComponent(applog.ComponentAMQP).Error("Settings consumer stopped", "error", err)
			}
		}()
		logger.Info("Settings fan-out enabled", "exchange", cfg.AMQPExchange, applog.FieldOrigin, broker.Origin())
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	factory := backend.NewFactory(logger)

	httpServer := apphttp.NewHTTPServer(":"+cfg.Port, front)

	build := func(ctx context.Context, gen int) (*app.Instance, error) {
		endpoint, err := registry.Load(ctx)
		if err != nil {
			return nil, err
		}
		genLogger := logger.With(applog.FieldGeneration, gen)
		genLogger.Info("Building application",
			applog.FieldBackend, backendCfg.Type.String(),
			applog.FieldState, endpoint.State().String())

		caches := cache.NewManager(genLogger.WithComponent(applog.ComponentCache).Logger)
		var (
			dashboard  apphttp.DashboardProvider
			backendErr error
			cleanup    backend.CleanupFunc
		)
		res, err := factory.CreateBackend(ctx, backendCfg, endpoint)
		switch {
		case errors.Is(err, backend.ErrUnconfigured):
			backendErr = err
			genLogger.Info("Waiting for an endpoint to be configured")
		case err != nil:
			backendErr = err
			genLogger.Error("Backend unavailable", "error", err)
		default:
			svc := services.NewDashboardService(res.Source, services.DashboardServiceConfig{
				CacheTTL:     cfg.CacheTTL,
				FetchTimeout: cfg.FetchTimeout,
			})
			if c := svc.Cache(); c != nil {
				caches.Register(c)
				caches.StartCleanup(cfg.CacheTTL)
			}
			dashboard = svc
			cleanup = res.Cleanup
		}

		srv, err := apphttp.NewServer(apphttp.Options{
			Backend:          backendCfg.Type.String(),
			RequiresEndpoint: backendCfg.Type.RequiresEndpoint(),
			Endpoint:         endpoint,
			Dashboard:        dashboard,
			BackendErr:       backendErr,
			Settings:         registry,
			Locale:           cfg.Locale(),
			CurrencySuffix:   cfg.CurrencySuffix,
			Generation:       gen,
			Logger:           logger,
		})
		if err != nil {
			caches.Stop()
			if cleanup != nil {
				_ = cleanup()
			}
			return nil, err
		}

		unmount := front.Mount(srv)
		genLogger.Info("Generation serving", "port", cfg.Port)

		return &app.Instance{
			Shutdown: unmount,
			Cleanup: func() error {
				srv.Close()
				caches.Stop()
				if cleanup != nil {
					return cleanup()
				}
				return nil
			},
		}, nil
	}

	// One listener for the whole process; generations only swap the handler behind it.
	ln, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", httpServer.Addr, err)
	}
	logger.Info("Starting opsboard server", "port", cfg.Port)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		runErr := supervisor.Run(gctx, build)

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancelShutdown()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "error", err)
		}
		return runErr
	})
	return g.Wait()
}
