// Package scheduler собирает фоновый планировщик напоминаний о свиданиях.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/lyssareba/flika-app-sub001/internal/cache"
	"github.com/lyssareba/flika-app-sub001/internal/config"
	"github.com/lyssareba/flika-app-sub001/internal/lib/rabbitmq"
	"github.com/lyssareba/flika-app-sub001/internal/lib/sl"
	"github.com/lyssareba/flika-app-sub001/internal/prompts"
	schedulerservice "github.com/lyssareba/flika-app-sub001/internal/services/scheduler"
	"github.com/lyssareba/flika-app-sub001/internal/storage"
)

// App представляет приложение планировщика.
type App struct {
	schedulerService *schedulerservice.SchedulerService
	interval         time.Duration
	conn             *amqp.Connection
	ch               *amqp.Channel
	db               *storage.Storage
	cache            *cache.Cache
	logger           *slog.Logger
}

func waitForDB(db *storage.Storage) error {
	for range 10 {
		err := storage.CheckDatabaseReady(db)
		if err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения планировщика.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetReminderQueues())
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := waitForDB(db); err != nil {
		closeResources(ch, conn, logger)
		_ = db.Close()
		return nil, err
	}

	dismissals, cacheRedis := sentMarks(ctx, cfg.RedisConnection, cache.InitServer, logger)

	schedulerService := schedulerservice.NewSchedulerService(
		db,
		dismissals,
		prompts.NewRules(cfg.Engine),
		cfg.Scheduler.BatchSize,
		logger,
	)

	return &App{
		schedulerService: schedulerService,
		interval:         cfg.Scheduler.Interval,
		conn:             conn,
		ch:               ch,
		db:               db,
		cache:            cacheRedis,
		logger:           logger,
	}, nil
}

type cacheInit func(ctx context.Context, cfg config.RedisConnection) (*cache.Cache, error)

// sentMarks хранилище отметок об отправленных напоминаниях. Без redis отметки
// живут в памяти процесса: после перезапуска напоминание может уйти повторно.
func sentMarks(ctx context.Context, cfg config.RedisConnection, initCache cacheInit, logger *slog.Logger) (prompts.DismissalStore, *cache.Cache) {
	cacheRedis, err := initCache(ctx, cfg)
	if err != nil {
		logger.Warn("cache not initialized, reminder marks are kept in memory", sl.Err(err))
		return prompts.NewMemoryStore(), nil
	}
	return cache.NewDismissalStore(cacheRedis), cacheRedis
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", sl.Err(err))
		}
	}
}

// Run запускает планировщик и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	a.schedulerService.Run(ctx, a.ch, a.interval)

	a.logger.Info("shutting down scheduler service")

	closeResources(a.ch, a.conn, a.logger)
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close cache", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
	return nil
}
