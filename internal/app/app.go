package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/currency"
	"github.com/fjod/go_cart/storefront/internal/events"
	"github.com/fjod/go_cart/storefront/internal/identity"
	"github.com/fjod/go_cart/storefront/internal/orders"
	"github.com/fjod/go_cart/storefront/internal/publisher"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Storefront owns every stateful component of one client installation. It is
// created once at startup and closed at exit.
type Storefront struct {
	Config  config.Config
	Bus     *events.Bus
	Session *identity.Session
	Catalog *catalog.Service
	Cart    *cart.Store
	Orders  *orders.Submitter
	Form    *orders.Form

	closers []func(context.Context) error
}

// Deps are the adapters to external systems.
type Deps struct {
	Orders       repository.OrderRepository
	Snapshots    repository.SnapshotStore
	CatalogCache cache.CatalogCache
	Identity     identity.Provider
	Converter    catalog.PriceConverter
	Placed       orders.PlacedPublisher // optional
}

// New connects to the configured infrastructure and assembles the storefront.
func New(ctx context.Context, cfg config.Config) (*Storefront, error) {
	var closers []func(context.Context) error
	fail := func(err error) (*Storefront, error) {
		closeAll(ctx, closers)
		return nil, err
	}

	snapshots, err := repository.NewSQLiteSnapshotStore(cfg.SnapshotDBPath)
	if err != nil {
		return fail(fmt.Errorf("open snapshot store: %w", err))
	}
	closers = append(closers, func(context.Context) error { return snapshots.Close() })
	if err := snapshots.RunMigrations(); err != nil {
		return fail(fmt.Errorf("migrate snapshot store: %w", err))
	}
	log.Printf("Cart snapshots stored in %s", cfg.SnapshotDBPath)

	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, func(ctx context.Context) error { return mongoDB.Client().Disconnect(ctx) })
	orderRepo := repository.NewMongoOrderRepository(mongoDB)
	if err := repository.EnsureOrderIndexes(ctx, orderRepo); err != nil {
		return fail(err)
	}
	log.Printf("Connected to MongoDB at %s", cfg.MongoURI)

	var catalogCache cache.CatalogCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		closers = append(closers, func(context.Context) error { return redisClient.Close() })
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fail(fmt.Errorf("redis connection failed: %w", err))
		}
		catalogCache = cache.NewRedisCache(redisClient)
		log.Printf("Redis ping succeeded")
	} else {
		catalogCache = cache.NewMemoryCache(0)
		log.Printf("REDIS_ADDR not set, catalog cached in memory")
	}

	var placed orders.PlacedPublisher
	if len(cfg.KafkaBrokers) > 0 {
		p := publisher.NewOrdersPublisher(cfg.KafkaOrdersTopic, cfg.KafkaBrokers...)
		closers = append(closers, func(context.Context) error { return p.Close() })
		placed = p
		log.Printf("Publishing placed orders to %s on %v", cfg.KafkaOrdersTopic, cfg.KafkaBrokers)
	}

	deps := Deps{
		Orders:       orderRepo,
		Snapshots:    snapshots,
		CatalogCache: catalogCache,
		Identity:     identity.NewRESTProvider(newRestClient(cfg.IdentityBaseURL, cfg.RequestTimeout), cfg.IdentityAPIKey),
		Converter:    currency.NewConverter(newRestClient("", cfg.RequestTimeout), cfg.RatesURL),
		Placed:       placed,
	}

	s := Assemble(ctx, cfg, deps)
	s.closers = append(closers, s.closers...)
	return s, nil
}

// Assemble wires the components over already-built adapters.
func Assemble(ctx context.Context, cfg config.Config, deps Deps) *Storefront {
	if cfg.SessionID == "" {
		cfg.SessionID = uuid.NewString()
	}

	bus := events.NewBus()
	if cfg.LogEvents {
		bus.Subscribe(func(ev events.Event) {
			log.Printf("event #%d %s", ev.Seq, ev.Topic)
		})
	}

	session := identity.NewSession(deps.Identity, bus)
	catalogClient := newRestClient(cfg.CatalogBaseURL, cfg.RequestTimeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})
	catalogSvc := catalog.NewService(catalogClient, deps.Converter, deps.CatalogCache, cfg.SessionID)
	cartStore := cart.NewStore(ctx, deps.Snapshots, session, bus)
	submitter := orders.NewSubmitter(deps.Orders, session, bus, deps.Placed)
	form := orders.NewForm(cartStore, session, submitter, bus)

	return &Storefront{
		Config:  cfg,
		Bus:     bus,
		Session: session,
		Catalog: catalogSvc,
		Cart:    cartStore,
		Orders:  submitter,
		Form:    form,
		closers: []func(context.Context) error{
			func(context.Context) error { bus.Close(); return nil },
		},
	}
}

// Close releases everything New opened, most recent first.
func (s *Storefront) Close(ctx context.Context) error {
	return closeAll(ctx, s.closers)
}

func closeAll(ctx context.Context, closers []func(context.Context) error) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func newRestClient(baseURL string, timeout time.Duration) *resty.Client {
	client := resty.New().
		SetTransport(otelhttp.NewTransport(http.DefaultTransport)).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if baseURL != "" {
		client.SetBaseURL(baseURL)
	}
	return client
}
