// Package app is the composition root: it builds stores, services and the
// router from config and owns the process lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	authhandler "shortlink/internal/auth/handler"
	authmetrics "shortlink/internal/auth/metrics"
	authservice "shortlink/internal/auth/service"
	sessionstore "shortlink/internal/auth/store/session"
	userstore "shortlink/internal/auth/store/user"
	"shortlink/internal/auth/token"
	linkshandler "shortlink/internal/links/handler"
	"shortlink/internal/links/images"
	linksmetrics "shortlink/internal/links/metrics"
	linksservice "shortlink/internal/links/service"
	linkstore "shortlink/internal/links/store"
	"shortlink/internal/platform/config"
	"shortlink/internal/platform/database"
	"shortlink/internal/platform/health"
	"shortlink/internal/platform/kafka/producer"
	"shortlink/internal/platform/metrics"
	platformredis "shortlink/internal/platform/redis"
	"shortlink/internal/platform/tracer"
	ratelimitconfig "shortlink/internal/ratelimit/config"
	"shortlink/internal/ratelimit/limiter"
	ratelimitmetrics "shortlink/internal/ratelimit/metrics"
	ratelimitmw "shortlink/internal/ratelimit/middleware"
	redirecthandler "shortlink/internal/redirect/handler"
	redirectmetrics "shortlink/internal/redirect/metrics"
	httptransport "shortlink/internal/transport/http"
	"shortlink/migrations"
	"shortlink/pkg/platform/audit"
	auditmetrics "shortlink/pkg/platform/audit/metrics"
	"shortlink/pkg/platform/audit/publisher"
	"shortlink/pkg/platform/audit/sinks"
	"shortlink/pkg/platform/circuit"
	authmw "shortlink/pkg/platform/middleware/auth"
	"shortlink/pkg/platform/middleware/metadata"
)

const poolStatsInterval = 15 * time.Second

// App holds the wired process. Handler is ready to serve once New returns.
type App struct {
	cfg    config.Server
	logger *slog.Logger

	handler   http.Handler
	limiter   *limiter.Limiter
	publisher *publisher.Publisher
	db        *database.Pool
	redis     *platformredis.Client
	producer  *producer.Producer
}

// New connects the configured backends and wires every feature. Empty
// DATABASE_URL, REDIS_URL and KAFKA_BROKERS select in-memory stores and the
// log-only audit sink.
func New(ctx context.Context, cfg config.Server, logger *slog.Logger) (_ *App, err error) {
	a := &App{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.closeBackends(context.Background())
		}
	}()

	m := metrics.New()
	reg := m.Registry()
	healthHandler := health.New(cfg.Environment)
	trace := tracer.NewOTel()

	a.db, err = database.New(ctx, database.DefaultConfig(cfg.Database.URL), database.NewPoolMetrics(reg))
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if a.db != nil {
		applied, err := a.db.Migrate(ctx, migrations.FS)
		if err != nil {
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		logger.Info("database ready", "migrations_applied", applied)
		healthHandler.RegisterCheck("postgres", a.db.Health)
	}

	a.redis, err = platformredis.New(ctx, cfg.Redis, platformredis.NewPoolMetrics(reg))
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if a.redis != nil {
		healthHandler.RegisterCheck("redis", a.redis.Health)
	}

	auditMetrics := auditmetrics.New(reg)
	sink, err := a.auditSink(auditMetrics)
	if err != nil {
		return nil, err
	}
	if a.producer != nil {
		healthHandler.RegisterCheck("kafka", a.producer.Check)
	}
	a.publisher = publisher.NewPublisher(sink,
		publisher.WithPublisherLogger(logger),
		publisher.WithMetrics(auditMetrics),
	)

	// Auth
	users, sessions := a.authStores()
	authSvc := authservice.New(users, sessions, token.NewJWTService(cfg.JWTSigningKey),
		authservice.WithLogger(logger),
		authservice.WithAuditPublisher(a.publisher),
		authservice.WithMetrics(authmetrics.New(reg)),
		authservice.WithSessionTTL(cfg.SessionTTL),
	)
	authHTTP := authhandler.New(authSvc, logger,
		authhandler.WithSecureCookie(cfg.IsProduction()),
		authhandler.WithCookieMaxAge(cfg.SessionTTL),
	)

	// Links
	imageStore, err := images.NewDiskStorage(cfg.Uploads.Dir, cfg.Uploads.MaxBytes)
	if err != nil {
		return nil, err
	}
	linksSvc := linksservice.New(a.linkStore(), imageStore,
		linksservice.WithLogger(logger),
		linksservice.WithAuditPublisher(a.publisher),
		linksservice.WithMetrics(linksmetrics.New(reg)),
		linksservice.WithTracer(trace),
		linksservice.WithMaxImageBytes(cfg.Uploads.MaxBytes),
	)
	linksHTTP := linkshandler.New(linksSvc, logger,
		linkshandler.WithPublicOrigin(cfg.PublicOrigin),
		linkshandler.WithMaxImageBytes(cfg.Uploads.MaxBytes),
	)

	// Redirect
	redirectHTTP := redirecthandler.New(linksSvc, logger,
		redirecthandler.WithMetrics(redirectmetrics.New(reg)),
		redirecthandler.WithTracer(trace),
		redirecthandler.WithDelay(cfg.Redirect.Delay),
	)

	// Admission
	a.limiter = limiter.New(ratelimitconfig.Config{
		Limit:         cfg.RateLimit.Limit,
		Window:        cfg.RateLimit.Window,
		SweepInterval: cfg.RateLimit.SweepInterval,
	},
		limiter.WithLogger(logger),
		limiter.WithMetrics(ratelimitmetrics.New(reg)),
	)

	proxies, err := metadata.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("parse TRUSTED_PROXIES: %w", err)
	}

	a.handler = httptransport.NewRouter(httptransport.Deps{
		Logger:         logger,
		ClientMetadata: metadata.NewMiddleware(metadata.Config{TrustedProxies: proxies}).Handler,
		Admission:      ratelimitmw.New(a.limiter, logger).Admission,
		RequireAuth:    authmw.RequireAuth(authSvc, logger),
		Auth:           authHTTP,
		Links:          linksHTTP,
		Redirect:       redirectHTTP,
		Health:         healthHandler,
		Metrics:        m,
		MetricsToken:   cfg.MetricsToken,
		UploadDir:      imageStore.Dir(),
	})

	return a, nil
}

// Handler is the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Start launches the background workers: the limiter sweep and the pool
// stats recorders of the configured backends. They stop when ctx is done or
// on Shutdown.
func (a *App) Start(ctx context.Context) {
	a.limiter.Start(ctx)
	if a.db != nil {
		go a.db.StartPoolStats(ctx, poolStatsInterval, a.logger)
	}
	if a.redis != nil {
		go a.redis.StartPoolStats(ctx, poolStatsInterval, a.logger)
	}
}

// Run serves on cfg.Addr until ctx is cancelled, then shuts down within
// cfg.ShutdownTimeout.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.cfg.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	a.Start(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("starting http server", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down server gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("graceful shutdown failed", "error", err)
		}
		return a.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Shutdown stops the limiter sweep, drains the audit publisher and closes
// the backends, in that order. The HTTP server must already be stopped.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.limiter.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stop limiter: %w", err))
	}
	if err := a.publisher.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("drain audit publisher: %w", err))
	}
	errs = append(errs, a.closeBackends(ctx)...)
	return errors.Join(errs...)
}

func (a *App) closeBackends(ctx context.Context) []error {
	var errs []error
	if err := a.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	if err := a.redis.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close redis: %w", err))
	}
	if a.producer != nil {
		if err := a.producer.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close kafka producer: %w", err))
		}
	}
	return errs
}

func (a *App) authStores() (authservice.UserStore, authservice.SessionStore) {
	var users authservice.UserStore = userstore.NewInMemoryUserStore()
	if a.db != nil {
		users = userstore.NewPostgres(a.db.DB())
	}
	var sessions authservice.SessionStore = sessionstore.NewInMemorySessionStore()
	if a.redis != nil {
		sessions = sessionstore.NewRedis(a.redis)
	}
	return users, sessions
}

func (a *App) linkStore() linksservice.Store {
	if a.db != nil {
		return linkstore.NewPostgres(a.db.DB())
	}
	return linkstore.NewInMemory()
}

// auditSink writes to Kafka behind a circuit breaker when brokers are
// configured and to the structured log otherwise.
func (a *App) auditSink(m *auditmetrics.Metrics) (audit.Sink, error) {
	logSink := sinks.NewLogSink(a.logger)
	if len(a.cfg.Kafka.Brokers) == 0 {
		return logSink, nil
	}

	p, err := producer.New(producer.DefaultConfig(a.cfg.Kafka.Brokers), a.logger)
	if err != nil {
		return nil, fmt.Errorf("connect kafka: %w", err)
	}
	a.producer = p
	return sinks.NewKafkaSink(p, a.cfg.Kafka.AuditTopic, a.logger,
		sinks.WithBreaker(circuit.New("kafka-audit")),
		sinks.WithFallback(logSink),
		sinks.WithMetrics(m),
	), nil
}
