package api

import (
	"context"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	ordercatalog "github.com/plantnet/plantnet-api/internal/domains/orders/adapters/catalog"
	ordermemory "github.com/plantnet/plantnet-api/internal/domains/orders/adapters/memory"
	orderobs "github.com/plantnet/plantnet-api/internal/domains/orders/adapters/observability"
	"github.com/plantnet/plantnet-api/internal/domains/orders/adapters/payments/offline"
	stripegateway "github.com/plantnet/plantnet-api/internal/domains/orders/adapters/payments/stripe"
	ordermongo "github.com/plantnet/plantnet-api/internal/domains/orders/adapters/persistence/mongo"
	orderpostgres "github.com/plantnet/plantnet-api/internal/domains/orders/adapters/persistence/postgres"
	orderapp "github.com/plantnet/plantnet-api/internal/domains/orders/application"
	orderports "github.com/plantnet/plantnet-api/internal/domains/orders/ports"
	plantmemory "github.com/plantnet/plantnet-api/internal/domains/plants/adapters/memory"
	plantobs "github.com/plantnet/plantnet-api/internal/domains/plants/adapters/observability"
	plantmongo "github.com/plantnet/plantnet-api/internal/domains/plants/adapters/persistence/mongo"
	plantpostgres "github.com/plantnet/plantnet-api/internal/domains/plants/adapters/persistence/postgres"
	plantsearch "github.com/plantnet/plantnet-api/internal/domains/plants/adapters/search/elasticsearch"
	plantapp "github.com/plantnet/plantnet-api/internal/domains/plants/application"
	plantports "github.com/plantnet/plantnet-api/internal/domains/plants/ports"
	statsmemory "github.com/plantnet/plantnet-api/internal/domains/stats/adapters/cache/memory"
	statsredis "github.com/plantnet/plantnet-api/internal/domains/stats/adapters/cache/redis"
	statsmongo "github.com/plantnet/plantnet-api/internal/domains/stats/adapters/ledger/mongo"
	statspostgres "github.com/plantnet/plantnet-api/internal/domains/stats/adapters/ledger/postgres"
	statsobs "github.com/plantnet/plantnet-api/internal/domains/stats/adapters/observability"
	"github.com/plantnet/plantnet-api/internal/domains/stats/adapters/sources"
	statsapp "github.com/plantnet/plantnet-api/internal/domains/stats/application"
	statsports "github.com/plantnet/plantnet-api/internal/domains/stats/ports"
	usermemory "github.com/plantnet/plantnet-api/internal/domains/users/adapters/memory"
	userobs "github.com/plantnet/plantnet-api/internal/domains/users/adapters/observability"
	usermongo "github.com/plantnet/plantnet-api/internal/domains/users/adapters/persistence/mongo"
	userpostgres "github.com/plantnet/plantnet-api/internal/domains/users/adapters/persistence/postgres"
	userredis "github.com/plantnet/plantnet-api/internal/domains/users/adapters/revocations/redis"
	userapp "github.com/plantnet/plantnet-api/internal/domains/users/application"
	userports "github.com/plantnet/plantnet-api/internal/domains/users/ports"
	"github.com/plantnet/plantnet-api/internal/platform/auth"
	platformes "github.com/plantnet/plantnet-api/internal/platform/elasticsearch"
	platformkafka "github.com/plantnet/plantnet-api/internal/platform/kafka"
	"github.com/plantnet/plantnet-api/internal/platform/memtx"
	"github.com/plantnet/plantnet-api/internal/platform/migrations"
	platformmongo "github.com/plantnet/plantnet-api/internal/platform/mongo"
	platformobservability "github.com/plantnet/plantnet-api/internal/platform/observability"
	platformpostgres "github.com/plantnet/plantnet-api/internal/platform/postgres"
	platformredis "github.com/plantnet/plantnet-api/internal/platform/redis"
	"github.com/plantnet/plantnet-api/internal/shared/events"
)

// Storage holds the repositories of the selected driver. Close releases the
// underlying connections.
type Storage struct {
	Driver      string
	Plants      plantports.Repository
	Orders      orderports.Repository
	Users       userports.Repository
	Revocations userports.RevocationStore
	Tx          orderports.Transactor
	Ledger      statsports.OrderLedger
	cleanup     func()
}

func (s *Storage) Close() {
	if s != nil && s.cleanup != nil {
		s.cleanup()
	}
}

// OpenStorage connects the configured driver. A failed connection falls back
// to in-memory storage so the process still serves.
func OpenStorage(ctx context.Context, cfg Config, logger *slog.Logger) *Storage {
	switch cfg.StorageDriver {
	case DriverPostgres:
		storage, err := openPostgres(ctx, cfg)
		if err == nil {
			logger.Info("storage configured with postgres")
			return storage
		}
		logger.Warn("failed to connect to postgres, falling back to memory", slog.String("error", err.Error()))
	case DriverMongo:
		storage, err := openMongo(ctx, cfg)
		if err == nil {
			logger.Info("storage configured with mongodb", slog.String("database", cfg.MongoDatabase))
			return storage
		}
		logger.Warn("failed to connect to mongodb, falling back to memory", slog.String("error", err.Error()))
	default:
		logger.Warn("no database configured, falling back to in-memory storage")
	}
	return openMemory()
}

func openMemory() *Storage {
	orders := ordermemory.NewRepository()
	return &Storage{
		Driver:      DriverMemory,
		Plants:      plantmemory.NewRepository(),
		Orders:      orders,
		Users:       usermemory.NewRepository(),
		Revocations: usermemory.NewRevocationStore(),
		Tx:          memtx.NewTransactor(),
		Ledger:      sources.NewOrderLedger(orders),
		cleanup:     func() {},
	}
}

func openPostgres(ctx context.Context, cfg Config) (*Storage, error) {
	db, cleanup, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if err := migrations.Run(db); err != nil {
		cleanup()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	orders := orderpostgres.NewRepository(db)
	return &Storage{
		Driver:      DriverPostgres,
		Plants:      plantpostgres.NewRepository(db),
		Orders:      orders,
		Users:       userpostgres.NewRepository(db),
		Revocations: userpostgres.NewRevocationStore(db),
		Tx:          platformpostgres.NewTransactor(db, platformpostgres.DefaultTxOptions()),
		Ledger:      statspostgres.NewLedger(orders),
		cleanup:     cleanup,
	}, nil
}

func openMongo(ctx context.Context, cfg Config) (*Storage, error) {
	db, cleanup, err := platformmongo.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, err
	}
	if err := migrations.EnsureMongoIndexes(ctx, db); err != nil {
		cleanup()
		return nil, err
	}
	orders := ordermongo.NewRepository(db)
	return &Storage{
		Driver:      DriverMongo,
		Plants:      plantmongo.NewRepository(db),
		Orders:      orders,
		Users:       usermongo.NewRepository(db),
		Revocations: usermongo.NewRevocationStore(db),
		Tx:          platformmongo.NewTransactor(db),
		Ledger:      statsmongo.NewLedger(orders.Collection()),
		cleanup:     cleanup,
	}, nil
}

// Services are the decorated use cases shared by every process.
type Services struct {
	Plants plantports.Service
	Orders orderports.Service
	Users  userports.Service
	Stats  statsports.Service
	// Payments names the gateway behind Orders: PaymentsStripe or PaymentsOffline.
	Payments string

	cleanups []func()
}

func (s *Services) Close() {
	if s == nil {
		return
	}
	for i := len(s.cleanups) - 1; i >= 0; i-- {
		s.cleanups[i]()
	}
}

// BuildServices wires the bounded contexts over storage plus whichever
// optional integrations are configured.
func BuildServices(ctx context.Context, cfg Config, instruments *platformobservability.Instruments, storage *Storage) (*Services, error) {
	logger := instruments.Logger
	services := &Services{}

	issuer, err := auth.NewIssuer(cfg.TokenSecret, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}

	var publisher events.Publisher = events.NoopPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := platformkafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			logger.Warn("kafka publisher unavailable, events are dropped", slog.String("error", err.Error()))
		} else {
			publisher = kp
			services.cleanups = append(services.cleanups, func() { _ = kp.Close() })
			logger.Info("domain events published to kafka", slog.String("topic", cfg.KafkaTopic))
		}
	}

	var redisClient *goredis.Client
	if cfg.RedisAddr != "" {
		client, cleanup, err := platformredis.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, 0)
		if err != nil {
			logger.Warn("redis unavailable, falling back to in-process cache", slog.String("error", err.Error()))
		} else {
			redisClient = client
			services.cleanups = append(services.cleanups, cleanup)
		}
	}

	plantOpts := []plantapp.Option{plantapp.WithLogger(logger)}
	if cfg.ElasticsearchURL != "" {
		client, err := platformes.NewClient(ctx, platformes.Config{
			URL:      cfg.ElasticsearchURL,
			Username: cfg.ElasticsearchUsername,
			Password: cfg.ElasticsearchPassword,
		})
		if err != nil {
			logger.Warn("elasticsearch unavailable, search scans the catalogue", slog.String("error", err.Error()))
		} else {
			plantOpts = append(plantOpts, plantapp.WithSearchIndex(plantsearch.NewIndex(client, cfg.ElasticsearchIndex)))
		}
	}
	services.Plants = plantobs.New(
		plantapp.NewService(storage.Plants, plantOpts...),
		plantobs.WithLogger(logger),
		plantobs.WithTracer(instruments.Tracer("internal.plants.application")),
		plantobs.WithMeter(instruments.Meter("internal.plants.application")),
	)

	var gateway orderports.PaymentGateway
	if cfg.StripeSecretKey != "" {
		sg, err := stripegateway.New(cfg.StripeSecretKey)
		if err != nil {
			return nil, err
		}
		gateway = sg
		services.Payments = PaymentsStripe
	} else {
		logger.Warn("STRIPE_SK_KEY not set, falling back to offline payment gateway")
		gateway = offline.NewGateway()
		services.Payments = PaymentsOffline
	}
	services.Orders = orderobs.New(
		orderapp.NewService(storage.Orders, ordercatalog.NewPlants(storage.Plants), storage.Tx,
			orderapp.WithPaymentGateway(gateway),
			orderapp.WithPublisher(publisher),
			orderapp.WithCurrency(cfg.PaymentCurrency),
			orderapp.WithLogger(logger),
		),
		orderobs.WithLogger(logger),
		orderobs.WithTracer(instruments.Tracer("internal.orders.application")),
		orderobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	var revocations userports.RevocationStore = storage.Revocations
	if redisClient != nil {
		revocations = userredis.NewStore(redisClient)
	}
	services.Users = userobs.New(
		userapp.NewService(storage.Users,
			userapp.WithTokenIssuer(issuer),
			userapp.WithRevocationStore(revocations),
			userapp.WithPublisher(publisher),
			userapp.WithLogger(logger),
		),
		userobs.WithLogger(logger),
		userobs.WithTracer(instruments.Tracer("internal.users.application")),
		userobs.WithMeter(instruments.Meter("internal.users.application")),
	)

	var cache statsports.Cache = statsmemory.NewCache()
	if redisClient != nil {
		cache = statsredis.NewCache(redisClient)
	}
	services.Stats = statsobs.New(
		statsapp.NewService(storage.Users, storage.Plants, storage.Ledger,
			statsapp.WithCache(cache, cfg.StatsCacheTTL),
			statsapp.WithLogger(logger),
		),
		statsobs.WithLogger(logger),
		statsobs.WithTracer(instruments.Tracer("internal.stats.application")),
		statsobs.WithMeter(instruments.Meter("internal.stats.application")),
	)
	return services, nil
}
