package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jasonmurdy-collab/MarketPulse/internal/config"
	apierrors "github.com/jasonmurdy-collab/MarketPulse/internal/errors"
	"github.com/jasonmurdy-collab/MarketPulse/internal/feeds"
	"github.com/jasonmurdy-collab/MarketPulse/internal/infrastructure"
	customMiddleware "github.com/jasonmurdy-collab/MarketPulse/internal/middleware"
	"github.com/jasonmurdy-collab/MarketPulse/internal/services"
	"github.com/jasonmurdy-collab/MarketPulse/internal/store"
	handlers "github.com/jasonmurdy-collab/MarketPulse/internal/transport/http"
	ws "github.com/jasonmurdy-collab/MarketPulse/internal/websocket"
	"github.com/jasonmurdy-collab/MarketPulse/pkg/contracts"
	"github.com/jasonmurdy-collab/MarketPulse/pkg/contracts/events"
)

const AppName = "MarketPulse"

// Application holds every long lived component of the service
type Application struct {
	Config        *config.Config
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics

	Store     *store.MarketStore
	Ingestion *services.IngestionService
	Market    *services.MarketService
	Health    *services.HealthService
	Hub       *ws.Hub

	Router chi.Router
	Server *http.Server

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	serverErr chan error
}

// Option customizes application construction
type Option func(*options)

type options struct {
	fetcher feeds.Fetcher
	sources *config.Sources
}

// WithFetcher replaces the feed client
func WithFetcher(f feeds.Fetcher) Option {
	return func(o *options) { o.fetcher = f }
}

// WithSources skips loading the sources file
func WithSources(s *config.Sources) Option {
	return func(o *options) { o.sources = s }
}

// NewApplication loads configuration and builds the application
func NewApplication(opts ...Option) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version))

	return New(cfg, logger, opts...)
}

// New builds the application from an already loaded configuration
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Application, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	if o.sources == nil {
		o.sources, err = config.LoadSources(cfg.Feeds.SourcesFile)
		if err != nil {
			return nil, err
		}
	}
	if o.fetcher == nil {
		o.fetcher = feeds.NewClient(cfg.Fetch, logger)
	}

	a := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
		Metrics:       metrics,
		serverErr:     make(chan error, 1),
	}

	a.initializeServices(o.sources, o.fetcher)
	a.setupRouter()
	a.createServer()

	return a, nil
}

// initializeServices creates the store, services and WebSocket hub
func (a *Application) initializeServices(sources *config.Sources, fetcher feeds.Fetcher) {
	a.Store = store.New()

	a.Hub = ws.NewHub(a.Logger,
		ws.WithHubMetrics(a.Metrics),
		ws.WithGreeting(func(clientID string) []events.WebSocketMessage {
			return []events.WebSocketMessage{events.NewMarketStatus(clientID, a.Store.Snapshot().Status())}
		}),
	)

	a.Ingestion = services.NewIngestionService(sources, fetcher, a.Store, a.Logger,
		services.WithMetrics(a.Metrics),
		services.WithTracer(a.OTelProviders.Tracer),
		services.WithReportListener(a.Hub.BroadcastReport),
	)
	a.Market = services.NewMarketService(a.Store, a.Logger)
	a.Health = services.NewHealthService(a.Store, a.Ingestion, a.Hub, a.Logger)
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	errorHandler := apierrors.NewErrorHandler(a.Logger, false)

	r.Use(customMiddleware.RequestID)
	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	// The WebSocket upgrade needs the raw connection, so it stays outside
	// the wrapping middleware below.
	r.Handle("/ws", ws.NewHandler(a.Hub, a.Config.WebSocket, a.allowedOrigins(), a.Logger))

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(otelhttp.NewMiddleware(a.Config.Telemetry.ServiceName))
		r.Use(customMiddleware.Metrics(a.Metrics))
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(errorHandler.Recoverer)
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
				Logger:         a.Logger,
			}))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		r.Route("/api", func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

			healthHandler := handlers.NewHealthHandler(a.Health, a.Logger)
			r.Get("/health", healthHandler.HealthCheck)
			r.Get("/health/ready", healthHandler.ReadinessCheck)
			r.Get("/health/live", healthHandler.LivenessCheck)
			r.Get("/version", healthHandler.Version)

			marketHandler := handlers.NewMarketHandler(a.Market, a.Ingestion, a.Logger, errorHandler)
			r.Mount("/market", marketHandler.Routes())
		})
	})

	a.Router = r
}

func (a *Application) allowedOrigins() []string {
	if !a.Config.Security.EnableCORS {
		return nil
	}
	return a.Config.Security.AllowedOrigins
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Address(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// StartBackground starts the hub, the snapshot relay and ingestion without
// serving HTTP.
func (a *Application) StartBackground(ctx context.Context) {
	bgCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.Hub.Start()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ws.Relay(bgCtx, a.Hub, a.Store)
	}()

	if a.Config.Feeds.IngestOnStart {
		if err := a.Ingestion.Start(bgCtx); err != nil {
			a.Logger.WarnContext(ctx, "initial ingestion not started", slog.String("error", err.Error()))
		}
	}

	if interval := a.Config.Feeds.RefreshInterval; interval > 0 {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.Ingestion.Schedule(bgCtx, interval)
		}()
	}
}

// Start starts background work and the HTTP server
func (a *Application) Start(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("address", a.Server.Addr),
		slog.String("sources_file", a.Config.Feeds.SourcesFile))

	a.StartBackground(ctx)

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			a.serverErr <- err
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", a.Server.Addr))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()
	a.Hub.Stop()

	if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
		a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	if err := infrastructure.CloseLogFile(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Run runs the application until interrupted or the server fails
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		return err
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.Logger.Info("Received interrupt signal")
	case runErr = <-a.serverErr:
	}

	// ctx is already cancelled on interrupt; shutdown gets a fresh one.
	if err := a.Stop(context.WithoutCancel(ctx)); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}
