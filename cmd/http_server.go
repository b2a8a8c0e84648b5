package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"

	"github.com/frahmantamala/checkout-gateway/internal"
	"github.com/frahmantamala/checkout-gateway/internal/checkout"
	"github.com/frahmantamala/checkout-gateway/internal/core/events"
	"github.com/frahmantamala/checkout-gateway/internal/provider"
	"github.com/frahmantamala/checkout-gateway/internal/transport"
	"github.com/frahmantamala/checkout-gateway/internal/transport/rest"
	"github.com/frahmantamala/checkout-gateway/internal/transport/swagger"
	"github.com/frahmantamala/checkout-gateway/internal/webhook"
	"github.com/frahmantamala/checkout-gateway/pkg/logger"
	"github.com/frahmantamala/checkout-gateway/pkg/tracing"
)

func newHTTPServerCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Start HTTP server",
		Long:  `Start the HTTP server to handle checkout and webhook requests`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return startHTTPServer(cmd.Context(), *configPath)
		},
	}
}

type Dependencies struct {
	Config          *internal.Config
	Logger          *slog.Logger
	Provider        *provider.Client
	EventBus        *events.EventBus
	Publisher       webhook.Publisher
	Router          *chi.Mux
	ShutdownTracing tracing.ShutdownFunc
}

func startHTTPServer(ctx context.Context, configPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	deps, err := initializeDependencies(ctx, configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server",
		"address", addr,
		"shape", deps.Provider.ShapeName(),
		"configured", deps.Provider.Configured())

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	var serveErr error
	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), deps.Config.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("server failed to start: %w", err)
		}
	}

	deps.Close(context.Background())
	deps.Logger.Info("Server stopped")
	return serveErr
}

// Close waits for in-flight webhook handlers, then releases the broker
// connection and flushes pending spans.
func (d *Dependencies) Close(ctx context.Context) {
	drainCtx, cancel := context.WithTimeout(ctx, d.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := d.EventBus.Drain(drainCtx); err != nil {
		d.Logger.Error("Event bus drain error", "error", err)
	}
	if d.Publisher != nil {
		if err := d.Publisher.Close(); err != nil {
			d.Logger.Error("Webhook publisher close error", "error", err)
		}
	}
	if d.ShutdownTracing != nil {
		if err := d.ShutdownTracing(drainCtx); err != nil {
			d.Logger.Error("Tracer shutdown error", "error", err)
		}
	}
}

func initializeDependencies(ctx context.Context, configPath string) (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.LoggerWrapper()

	if _, err := swagger.Load(ctx); err != nil {
		return nil, err
	}

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		Enabled:      config.Observability.Tracing.Enabled,
		ServiceName:  config.Observability.Tracing.ServiceName,
		Environment:  config.Env,
		SamplingRate: config.Observability.Tracing.SamplingRate,
		Endpoint:     config.Observability.Tracing.Endpoint,
		Insecure:     config.Observability.Tracing.Insecure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	client, err := provider.NewClient(config.Provider.ClientConfig(), log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize payment provider: %w", err)
	}
	if !client.Configured() {
		log.Warn("payment provider API keys are not configured; checkout requests will be rejected",
			"shape", client.ShapeName())
	}

	bus, publisher, err := newEventBus(config.Webhook, log)
	if err != nil {
		return nil, err
	}

	service := checkout.NewService(client, log, checkout.WithDefaultCurrency(config.Provider.DefaultCurrency))
	base := transport.NewBaseHandler(log)

	router := rest.NewRouter(rest.RouterConfig{
		AllowedOrigins: config.Server.Origins(),
		MetricsEnabled: config.Observability.Metrics.Enabled,
		MetricsPath:    config.Observability.Metrics.Path,
	}, rest.Handlers{
		Checkout: checkout.NewHandler(base, service),
		Webhook:  webhook.NewHandler(base, webhook.NewDispatcher(bus, log)),
		Provider: client,
	}, log)

	return &Dependencies{
		Config:          config,
		Logger:          log,
		Provider:        client,
		EventBus:        bus,
		Publisher:       publisher,
		Router:          router,
		ShutdownTracing: shutdownTracing,
	}, nil
}

// newEventBus wires the default webhook handlers and, when a sink is
// configured, the broker forwarder. publisher is nil without a sink.
func newEventBus(cfg internal.WebhookConfig, log *slog.Logger) (*events.EventBus, webhook.Publisher, error) {
	bus := events.NewEventBus(log)
	webhook.NewEventHandler(log).RegisterEventHandlers(bus)

	publisher, err := webhook.NewPublisher(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize webhook sink: %w", err)
	}
	if publisher != nil {
		webhook.NewForwarder(publisher, log).Register(bus)
		log.Info("webhook events forwarded", "sink", cfg.Sink)
	}

	return bus, publisher, nil
}
