package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"github.com/wilbersoares/projeto-fatec/internal/config"
	"github.com/wilbersoares/projeto-fatec/internal/dashboard"
	"github.com/wilbersoares/projeto-fatec/internal/dataset"
	apierrors "github.com/wilbersoares/projeto-fatec/internal/errors"
	"github.com/wilbersoares/projeto-fatec/internal/infrastructure"
	customMiddleware "github.com/wilbersoares/projeto-fatec/internal/middleware"
	"github.com/wilbersoares/projeto-fatec/internal/services"
	"github.com/wilbersoares/projeto-fatec/internal/session"
	handlers "github.com/wilbersoares/projeto-fatec/internal/transport/http"
	ws "github.com/wilbersoares/projeto-fatec/internal/websocket"
	"github.com/wilbersoares/projeto-fatec/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	ErrorHandler  *apierrors.ErrorHandler

	Loader        *dataset.Loader
	Sessions      *session.Store
	Dashboard     *services.DashboardService
	HealthService *services.HealthService
	WebSocketHub  *ws.Hub
	Stream        *ws.Handler
}

// NewApplication loads configuration, initializes the global logger and
// builds the application.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New wires every component from cfg. A nil logger uses the global one.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	version := contracts.GetVersionInfo()
	logger.Info("Application starting",
		slog.String("name", version.Name),
		slog.String("version", version.Version),
		slog.Int("port", cfg.Server.Port))

	paths, err := cfg.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	otelProviders, err := infrastructure.InitializeOTel(
		infrastructure.OTelConfigFrom(cfg.Telemetry, version.Version), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, false),
	}

	app.initializeServices(paths)
	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices builds the dataset pipeline, the session store and
// the services on top of them.
func (a *Application) initializeServices(paths *config.Paths) {
	var source dataset.Source
	if paths.LocalDir != "" {
		source = dataset.LocalSource{Dir: paths.LocalDir}
	} else {
		source = dataset.NewKaggleSource(dataset.KaggleConfig{
			BaseURL:         a.Config.Dataset.BaseURL,
			CacheDir:        paths.CacheDir,
			FileName:        a.Config.Dataset.FileName,
			CredentialsFile: paths.CredentialsFile,
			Timeout:         a.Config.Dataset.HTTPTimeout,
		}, nil, a.Logger)
	}

	a.Loader = dataset.NewLoader(
		source,
		dataset.Reader{FileName: a.Config.Dataset.FileName},
		a.Config.Dataset.Identifier,
		a.Logger,
		a.Metrics,
	)

	a.Sessions = session.NewStore(a.Config.Session.TTL, a.Logger, a.Metrics)

	a.Dashboard = services.NewDashboardService(
		a.Loader,
		a.Sessions,
		dashboard.LimitsFrom(a.Config.Dashboard),
		a.Logger,
		a.Metrics,
	)

	a.WebSocketHub = ws.NewHub(a.Logger, a.Metrics)
	a.Stream = ws.NewHandler(a.Dashboard, a.WebSocketHub, a.Config.WebSocket,
		a.Config.Security.AllowedOrigins, a.Logger)

	a.HealthService = services.NewHealthService(
		contracts.GetVersionInfo(),
		a.Dashboard,
		services.CounterFunc(a.Sessions.Len),
		a.WebSocketHub,
		a.Logger,
	)
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Only middleware that leaves the ResponseWriter unwrapped runs ahead of
	// the websocket route, so the upgrade can hijack the connection.
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StripSlashes)

	wsHandler := handlers.NewWebSocketHandler(a.Stream, a.Logger, a.ErrorHandler)
	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).
		Get("/ws/dashboard/{id}", wsHandler.ServeHTTP)

	metricsHandler := handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.WebSocketHub)
	r.Handle("/metrics", metricsHandler.Prometheus())

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer → headers → limits
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics, a.Logger).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.DefaultSecureHeaders().Handler)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
				ExposedHeaders: []string{"X-Request-ID", "Location", "Content-Disposition"},
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

		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		a.setupAPIRoutes(r, metricsHandler)
	})

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router, metricsHandler *handlers.MetricsHandler) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/health/detailed", healthHandler.DetailedHealth)
		r.Get("/version", healthHandler.Version)

		r.Mount("/metrics", metricsHandler.Routes())

		validator := customMiddleware.NewValidationMiddleware(
			customMiddleware.DefaultMaxBodySize, a.Logger, a.ErrorHandler)
		dashboardHandler := handlers.NewDashboardHandler(
			a.Dashboard, a.Config.Dashboard.MaxPageSize, a.Logger, a.ErrorHandler)

		r.Route("/dashboard", func(r chi.Router) {
			r.Use(validator.ValidateRequest)
			r.Use(customMiddleware.ContentTypeValidator(a.ErrorHandler, "application/json"))
			r.Mount("/", dashboardHandler.Routes())
		})
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully. The
// dataset is loaded in the background so the server answers health checks
// while the download runs.
func (a *Application) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "HTTP server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.Sessions.Run(gctx, a.Config.Session.CleanupInterval)
	})

	g.Go(func() error {
		a.WarmUp(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.Shutdown()
	})

	return g.Wait()
}

// WarmUp triggers the one dataset load and logs its outcome. A failed load
// is not fatal: the dashboard reports the diagnostic instead.
func (a *Application) WarmUp(ctx context.Context) {
	result := a.Loader.Load(ctx)
	if !result.OK() {
		a.Logger.ErrorContext(ctx, "dataset unavailable",
			slog.String("error_type", string(result.ErrType)),
			slog.String("diagnostic", result.Diagnostic))
		return
	}
	a.Logger.InfoContext(ctx, "dataset ready",
		slog.Int("rows", result.Dataset.Len()),
		slog.Duration("duration", result.Duration))
}

// Shutdown stops the server, closes every websocket client and flushes
// telemetry.
func (a *Application) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	a.Logger.InfoContext(ctx, "Shutting down application")

	var errs []error
	if err := a.Server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}

	a.Stream.Shutdown()

	if err := a.OTelProviders.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		errs = append(errs, fmt.Errorf("close log file: %w", err))
	}

	a.Logger.Info("Application stopped")
	return errors.Join(errs...)
}
