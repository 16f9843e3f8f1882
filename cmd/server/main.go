package main // Entry point package

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-room-allocation/internal/allocator"
	"github.com/iliyamo/hotel-room-allocation/internal/config"
	"github.com/iliyamo/hotel-room-allocation/internal/database"
	"github.com/iliyamo/hotel-room-allocation/internal/handler"
	"github.com/iliyamo/hotel-room-allocation/internal/logger"
	"github.com/iliyamo/hotel-room-allocation/internal/middleware"
	"github.com/iliyamo/hotel-room-allocation/internal/queue"
	"github.com/iliyamo/hotel-room-allocation/internal/repository"
	"github.com/iliyamo/hotel-room-allocation/internal/router"
	"github.com/iliyamo/hotel-room-allocation/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, "hotel-room-allocation")
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := allocator.New(
		allocator.WithResetPolicy(allocator.ParseResetPolicy(cfg.ResetPolicy)),
		allocator.WithLogger(log.Named("allocator")),
	)
	opts := []service.Option{
		service.WithLogger(log.Named("service")),
		service.WithPersistTimeout(cfg.PersistTimeout),
		service.WithDefaultFraction(cfg.RandomOccupancy),
	}

	// Accounts and snapshots live in MySQL when it is configured, otherwise
	// in memory for the lifetime of the process.
	var (
		users  handler.UserStore  = repository.NewMemoryUserRepo()
		tokens handler.TokenStore = repository.NewMemoryTokenRepo()
	)
	if cfg.PersistenceEnabled() {
		db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatal("database unavailable", zap.Error(err))
		}
		defer db.Close()
		if err := repository.Migrate(ctx, db); err != nil {
			log.Fatal("migration failed", zap.Error(err))
		}
		store := repository.NewSnapshotRepo(db)
		switch snap, err := store.Load(ctx); {
		case errors.Is(err, repository.ErrNoSnapshot):
			log.Info("no stored snapshot, starting empty")
		case err != nil:
			log.Fatal("snapshot load failed", zap.Error(err))
		default:
			if err := engine.Restore(snap); err != nil {
				log.Fatal("snapshot restore failed", zap.Error(err))
			}
			log.Info("snapshot restored", zap.Uint64("version", snap.Version), zap.Int("bookings", len(snap.Bookings)))
		}
		users, tokens = repository.NewUserRepo(db), repository.NewTokenRepo(db)
		opts = append(opts, service.WithStore(store))
	} else {
		log.Warn("DB_HOST not set, running without persistence")
	}

	cacheCfg := config.LoadCacheConfig()
	var rdb *redis.Client
	if client, err := config.NewRedisClient(ctx, config.LoadRedisConfig()); err != nil {
		log.Warn("redis unavailable, cache and rate limiting disabled", zap.Error(err))
	} else {
		rdb = client
		defer rdb.Close()
		opts = append(opts, service.WithCachePurger(middleware.NewCachePurger(rdb, cacheCfg.Prefix)))
	}

	if cfg.AMQPURL != "" {
		pub := service.NewAMQPPublisher(cfg.AMQPURL, log.Named("publisher"))
		defer pub.Close()
		opts = append(opts, service.WithPublisher(pub))
		if cfg.ConsumerEnabled {
			go func() {
				err := queue.StartBookingConsumer(ctx, cfg.AMQPURL, cfg.BookingLogDir, log.Named("consumer"))
				if err != nil && !errors.Is(err, context.Canceled) {
					log.Error("booking consumer stopped", zap.Error(err))
				}
			}()
		}
	}

	svc := service.NewBookingService(engine, opts...)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.AllowOrigins}))
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			log.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.Error(v.Error))
			return nil
		},
	}))

	router.RegisterRoutes(e, router.Deps{
		Auth:      handler.NewAuthHandler(cfg, users, tokens),
		Rooms:     handler.NewRoomHandler(engine),
		Bookings:  handler.NewBookingHandler(svc),
		Admin:     handler.NewAdminHandler(svc),
		Status:    handler.Status(engine, cfg.PersistenceEnabled()),
		JWTSecret: cfg.JWTSecret,
		Cache:     middleware.NewRedisCache(cacheCfg, rdb, log.Named("cache")),
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log.Named("ratelimit")),
	})

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
}
