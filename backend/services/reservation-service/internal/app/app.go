package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	libredis "smartcharge/backend/libs/redis"
	"smartcharge/backend/services/reservation-service/internal/cache"
	appconfig "smartcharge/backend/services/reservation-service/internal/config"
	"smartcharge/backend/services/reservation-service/internal/db"
	"smartcharge/backend/services/reservation-service/internal/events"
	httpserver "smartcharge/backend/services/reservation-service/internal/http"
	"smartcharge/backend/services/reservation-service/internal/http/handlers"
	"smartcharge/backend/services/reservation-service/internal/http/middleware"
	"smartcharge/backend/services/reservation-service/internal/metrics"
	"smartcharge/backend/services/reservation-service/internal/pricing"
	"smartcharge/backend/services/reservation-service/internal/repository"
	"smartcharge/backend/services/reservation-service/internal/repository/memory"
	"smartcharge/backend/services/reservation-service/internal/service"
	"smartcharge/backend/services/reservation-service/internal/ws"
)

type stores struct {
	stations     service.StationStore
	reservations service.ReservationStore
	campaigns    service.CampaignStore
	users        service.UserStore
	badges       service.BadgeStore
}

// App wires dependencies for the reservation service.
type App struct {
	server  *httpserver.Server
	hub     *ws.Hub
	db      *sql.DB
	redis   *goredis.Client
	closers []io.Closer
	cancel  context.CancelFunc
	logger  *zap.Logger
}

// New builds application graph.
func New(cfg *appconfig.Config, logger *zap.Logger) (*App, error) {
	a := &App{logger: logger}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	st, err := a.openStores(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Redis.Addr != "" {
		client, err := libredis.NewRedisClient(libredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("app: redis: %w", err)
		}
		a.redis = client
		st.stations = cache.NewStationCache(st.stations, client, cfg.Redis.TTL, logger)
	}

	broker, err := a.openBroker(cfg)
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	estimator := pricing.DensityLoadEstimator{Fallback: pricing.NewTimeSeededLoadEstimator()}
	generator := pricing.NewGenerator(estimator, cfg.Pricing.DefaultBasePrice, loc)

	m := metrics.New()
	a.hub = ws.NewHub()
	publisher := events.Multi{broker, a.hub, m}

	reservationSvc := service.NewReservationService(st.reservations, st.campaigns, publisher, logger)
	stationSvc := service.NewStationService(st.stations, st.campaigns, generator, logger)
	campaignSvc := service.NewCampaignService(st.campaigns, st.users, logger)
	userSvc := service.NewUserService(st.users, st.badges, logger)

	auth := middleware.NewAuthenticator(cfg.JWT.Secret, cfg.JWT.Issuer)
	identify := func(r *http.Request) (int64, bool) {
		identity, err := auth.Authenticate(r)
		if err != nil {
			return 0, false
		}
		return identity.UserID, true
	}
	wsCtx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	wsServer := ws.NewServer(wsCtx, a.hub, identify, cfg.WebSocket.PingInterval, cfg.WebSocket.WriteTimeout, logger)

	router := httpserver.NewRouter(httpserver.RouterDeps{
		Reservations: handlers.NewReservationHandlers(reservationSvc, logger),
		Stations:     handlers.NewStationHandlers(stationSvc, logger),
		Campaigns:    handlers.NewCampaignHandlers(campaignSvc, logger),
		Users:        handlers.NewUserHandlers(userSvc, logger),
		Health:       handlers.NewHealthHandler(),
		WebSocket:    wsServer.HandleWS,
		Metrics:      m.Handler(),
	}, auth.Middleware, m.Middleware)

	a.server = httpserver.NewServer(cfg.HTTPAddress(), router, logger,
		middleware.RequestID,
		middleware.Logging(logger),
		middleware.Recovery(logger),
	)

	logger.Info("reservation service configured",
		zap.String("store", cfg.Database.Driver),
		zap.String("events", cfg.Events.Driver),
		zap.Bool("station_cache", a.redis != nil),
		zap.String("timezone", loc.String()),
	)
	ok = true
	return a, nil
}

func (a *App) openStores(cfg *appconfig.Config) (*stores, error) {
	if cfg.Database.Driver == appconfig.DriverMemory {
		store := memory.New()
		if cfg.Database.SeedDemo {
			memory.SeedDemo(store)
		}
		return &stores{
			stations:     store.Stations(),
			reservations: store.Reservations(),
			campaigns:    store.Campaigns(),
			users:        store.Users(),
			badges:       store.Badges(),
		}, nil
	}

	sqlDB, err := db.NewPostgres(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("app: postgres: %w", err)
	}
	a.db = sqlDB
	return &stores{
		stations:     repository.NewStationRepository(sqlDB),
		reservations: repository.NewReservationRepository(sqlDB),
		campaigns:    repository.NewCampaignRepository(sqlDB),
		users:        repository.NewUserRepository(sqlDB),
		badges:       repository.NewBadgeRepository(sqlDB),
	}, nil
}

func (a *App) openBroker(cfg *appconfig.Config) (events.Publisher, error) {
	switch cfg.Events.Driver {
	case appconfig.EventsKafka:
		p, err := events.NewKafkaPublisher(events.KafkaConfig{
			Brokers: cfg.Events.Brokers,
			Topic:   cfg.Events.Topic,
		}, a.logger)
		if err != nil {
			return nil, fmt.Errorf("app: kafka: %w", err)
		}
		a.closers = append(a.closers, p)
		return p, nil
	case appconfig.EventsAMQP:
		p, err := events.NewAMQPPublisher(events.AMQPConfig{
			URL:   cfg.Events.AMQPURL,
			Queue: cfg.Events.Queue,
		}, a.logger)
		if err != nil {
			return nil, fmt.Errorf("app: amqp: %w", err)
		}
		a.closers = append(a.closers, p)
		return p, nil
	default:
		return events.Nop{}, nil
	}
}

// Run starts serving HTTP traffic until context cancellation.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases acquired resources.
func (a *App) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.hub != nil {
		a.hub.CloseAll()
	}
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn("failed to close event publisher", zap.Error(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
}
