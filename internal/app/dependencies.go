package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/orders/internal/health"
	"github.com/vladislavdragonenkov/orders/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/orders/internal/service/orders"
	"github.com/vladislavdragonenkov/orders/internal/service/products"
	"github.com/vladislavdragonenkov/orders/internal/storage/memory"
	"github.com/vladislavdragonenkov/orders/internal/storage/postgres"
	"github.com/vladislavdragonenkov/orders/internal/version"
)

// Dependencies содержит собранные зависимости приложения.
type Dependencies struct {
	Store    domain.Store
	Orders   *orders.Service
	Products *products.Service
	Health   *healthcheck.Handler
	Logger   *log.Entry

	pgStore  *postgres.Store
	producer *kafka.Producer
}

// NewDependencies выбирает хранилище по конфигурации (PostgreSQL при
// заданном DSN, иначе in-memory), опционально поднимает Kafka producer
// и собирает сервисы.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	deps := &Dependencies{
		Health: healthcheck.NewHandler(version.GetVersion()),
		Logger: logger,
	}

	if cfg.PostgresDSN != "" {
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		deps.Store = store
		deps.pgStore = store
		deps.Health.RegisterChecker("postgres", healthcheck.NewSimpleChecker("postgres", func() error {
			return store.Ping(context.Background())
		}))
		logger.Info("postgres store initialized")
	} else {
		deps.Store = memory.NewStore()
		deps.Health.RegisterChecker("storage", healthcheck.NewSimpleChecker("storage", func() error {
			return nil
		}))
		logger.Info("in-memory store initialized")
	}

	// Kafka опционален: без брокеров события просто не публикуются.
	var events domain.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		} else {
			deps.producer = producer
			events = producer
			logger.WithField("brokers", cfg.KafkaBrokers).Info("kafka producer initialized")
		}
	}

	deps.Orders = orders.NewService(deps.Store, events, logger.WithField("layer", "orders"))
	deps.Products = products.NewService(deps.Store, events, logger.WithField("layer", "products"))

	return deps, nil
}

// Close освобождает внешние ресурсы зависимостей.
func (d *Dependencies) Close() {
	if d.producer != nil {
		if err := d.producer.Close(); err != nil {
			d.Logger.WithError(err).Warn("failed to close kafka producer")
		} else {
			d.Logger.Info("kafka producer closed")
		}
	}
	if d.pgStore != nil {
		if err := d.pgStore.Close(); err != nil {
			d.Logger.WithError(err).Warn("failed to close postgres store")
		}
	}
}
