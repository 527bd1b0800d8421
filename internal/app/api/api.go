package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/lyssareba/flika-app-sub001/internal/analytics"
	"github.com/lyssareba/flika-app-sub001/internal/cache"
	"github.com/lyssareba/flika-app-sub001/internal/config"
	"github.com/lyssareba/flika-app-sub001/internal/entitlement"
	"github.com/lyssareba/flika-app-sub001/internal/features"
	"github.com/lyssareba/flika-app-sub001/internal/gate"
	"github.com/lyssareba/flika-app-sub001/internal/lib/jwt"
	"github.com/lyssareba/flika-app-sub001/internal/lib/rabbitmq"
	"github.com/lyssareba/flika-app-sub001/internal/lib/sl"
	"github.com/lyssareba/flika-app-sub001/internal/migrations"
	"github.com/lyssareba/flika-app-sub001/internal/prompts"
	"github.com/lyssareba/flika-app-sub001/internal/purchases"
	accessservice "github.com/lyssareba/flika-app-sub001/internal/services/access"
	promptservice "github.com/lyssareba/flika-app-sub001/internal/services/prompts"
	"github.com/lyssareba/flika-app-sub001/internal/storage"
)

// App HTTP сервис с его ресурсами.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
	events *analytics.RabbitSink
}

// brokerDialer открывает соединение и канал брокера аналитики.
type brokerDialer func(cfg *config.Config) (*amqp.Connection, *amqp.Channel, error)

func dialBroker(cfg *config.Config) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetAnalyticsQueues())
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}
	return conn, ch, nil
}

// setupAnalytics выбирает приёмник аналитики. Недоступный брокер не мешает
// запуску: события уходят в debug лог.
func (a *App) setupAnalytics(cfg *config.Config, dial brokerDialer) analytics.Sink {
	if cfg.RabbitMQURL == "" {
		a.logger.Warn("rabbitmq url is empty, analytics events go to log only")
		return analytics.NewLogSink(a.logger)
	}
	conn, ch, err := dial(cfg)
	if err != nil {
		a.logger.Warn("analytics broker is unavailable, events go to log only", sl.Err(err))
		return analytics.NewLogSink(a.logger)
	}
	a.conn = conn
	a.ch = ch
	a.events = analytics.NewRabbitSink(ch, a.logger, cfg.AnalyticsBuffer)
	return a.events
}

// New поднимает хранилище, кеш, брокер аналитики и собирает сервисы.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.api.New"

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	app := &App{
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}

	sink := app.setupAnalytics(cfg, dialBroker)

	reconciler := entitlement.NewReconciler(
		entitlement.FromRegistry(purchases.NewRegistry(cfg.Purchases)),
		cacheRedis,
		cfg.Purchases.Timeout,
		cfg.Purchases.CacheTTL,
		logger,
	)
	premiumGate := gate.New(sink, gate.NewLogNavigator(logger), logger)
	accessService := accessservice.NewAccessService(reconciler, features.NewResolver(cfg.Engine), db, premiumGate, logger)

	rules := prompts.NewRules(cfg.Engine)
	promptService := promptservice.NewPromptService(
		db,
		cache.NewMilestoneStore(cacheRedis),
		prompts.NewGenerator(rules),
		prompts.NewScheduler(rules, cache.NewDismissalStore(cacheRedis), logger),
		logger,
	)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Deps{
		Access:    accessService,
		Prompts:   promptService,
		Tokens:    jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL),
		Health:    db,
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

// Run запускает HTTP сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.events != nil {
		a.events.Close()
	}
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close cache", sl.Err(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("failed to close storage", sl.Err(err))
		}
	}
}
