package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/restaurant-pos/internal/config"
	"github.com/iliyamo/restaurant-pos/internal/database"
	"github.com/iliyamo/restaurant-pos/internal/handler"
	"github.com/iliyamo/restaurant-pos/internal/jobs"
	"github.com/iliyamo/restaurant-pos/internal/logger"
	"github.com/iliyamo/restaurant-pos/internal/middleware"
	"github.com/iliyamo/restaurant-pos/internal/order"
	"github.com/iliyamo/restaurant-pos/internal/payment"
	"github.com/iliyamo/restaurant-pos/internal/queue"
	"github.com/iliyamo/restaurant-pos/internal/repository"
	"github.com/iliyamo/restaurant-pos/internal/router"
	"github.com/iliyamo/restaurant-pos/internal/sms"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()
	log := logger.New("restaurant-pos", cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.EnsureSchema(ctx, db); err != nil {
		return err
	}

	users := repository.NewUserRepo(db)
	if cfg.AdminPassword != "" {
		created, err := users.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword, cfg.BcryptCost)
		if err != nil {
			return err
		}
		if created {
			log.Info("admin account created", "username", cfg.AdminUsername)
		}
	}

	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
	}

	store := repository.NewStore(db)
	menu := repository.NewMenuRepo(db)

	var events order.EventPublisher
	if cfg.RabbitURL != "" {
		events = queue.NewPublisher(cfg.RabbitURL, log)
		sender := sms.NewSender(config.LoadSMSConfig(), log)
		if !sender.Enabled() {
			log.Info("sms disabled: twilio credentials not set")
		}
		sink := &queue.EventLogger{Dir: cfg.LogDir, SMS: sender, Log: log}
		go func() {
			if err := queue.StartOrderEventConsumer(ctx, cfg.RabbitURL, log, sink.Handle); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("order event consumer stopped", "err", err)
			}
		}()
	} else {
		log.Info("order events disabled: RABBITMQ_URL not set")
	}

	orders := order.NewService(store, menu, events, log)

	scheduler := jobs.NewScheduler(log)
	if err := scheduler.AddTableReconcile(cfg.ReconcileSpec, orders, 30*time.Second); err != nil {
		return err
	}
	scheduler.Start()

	payCfg := config.LoadPaymentConfig()
	gateway := payment.NewGateway(payment.NewRegistry(payCfg, &http.Client{Timeout: payCfg.Timeout}), log)

	e := newEcho(log)
	orderHandler := handler.NewOrderHandler(orders)
	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, repository.NewTokenRepo(db)), cfg.JWTSecret)
	router.RegisterPublic(e, router.Public{
		Orders:   orderHandler,
		Menu:     handler.NewMenuHandler(menu),
		Payments: handler.NewPaymentHandler(gateway),
	},
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log),
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb, log),
	)
	router.RegisterStaff(e, router.Staff{
		Orders:    orderHandler,
		Tables:    handler.NewTableHandler(store.TableRepo, cfg.PublicBaseURL),
		Sales:     handler.NewSalesHandler(store.SaleRepo),
		Analytics: handler.NewAnalyticsHandler(repository.NewStatsRepo(db)),
		Config: &handler.ConfigHandler{
			Env:           cfg.Env,
			Currency:      cfg.Currency,
			PublicBaseURL: cfg.PublicBaseURL,
			Gateway:       gateway,
		},
	}, cfg.JWTSecret)

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	scheduler.Stop(shutdownCtx)
	return e.Shutdown(shutdownCtx)
}

func newEcho(log *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method, "uri", v.URI, "status", v.Status,
				"latency_ms", v.Latency.Milliseconds(), "request_id", v.RequestID,
			}
			if v.Error != nil {
				log.Error("request", append(attrs, "err", v.Error)...)
			} else {
				log.Info("request", attrs...)
			}
			return nil
		},
	}))
	return e
}
