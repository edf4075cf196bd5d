package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-maintenance/internal/auth"
	"github.com/ukydev/fleet-maintenance/internal/config"
	"github.com/ukydev/fleet-maintenance/internal/dashboard"
	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/handlers"
	"github.com/ukydev/fleet-maintenance/internal/metrics"
	"github.com/ukydev/fleet-maintenance/internal/middleware"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"github.com/ukydev/fleet-maintenance/internal/notify"
)

// server holds the wired dependencies of the API
type server struct {
	store     db.Store
	dashboard *dashboard.Service
	auth      *auth.Service
	limiter   *middleware.RateLimitMiddleware
	checks    []handlers.Check
	log       *log.Logger
}

func setupLogger(cfg *config.Config) (*log.Logger, error) {
	logger := log.New()
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(level)
	if cfg.LogFormat == "json" {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}

// routes registers every endpoint. /health and /metrics are public; /api
// routes need a bearer token and a role allowed to perform the action.
func (s *server) routes() http.Handler {
	authMW := middleware.NewAuthMiddleware(s.auth)
	protect := func(action string, h http.HandlerFunc) http.Handler {
		return authMW.Protect(action, h)
	}

	dashboardHandler := handlers.NewDashboardHandler(s.dashboard, s.log)
	vehicleHandler := handlers.NewVehicleHandler(s.dashboard, s.store, s.log)
	ruleHandler := handlers.NewRuleHandler(s.store, s.dashboard, s.log)
	reportHandler := handlers.NewReportHandler(s.dashboard, s.log)
	healthHandler := handlers.NewHealthHandler(s.log, s.checks...)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.Handle("GET /api/dashboard/stats", protect(models.ActionViewDashboard, dashboardHandler.Stats))
	mux.Handle("GET /api/dashboard/notifications", protect(models.ActionViewDashboard, dashboardHandler.Notifications))

	mux.Handle("GET /api/vehicles/due", protect(models.ActionViewVehicles, vehicleHandler.DueList))
	mux.Handle("GET /api/vehicles/{id}/due", protect(models.ActionViewVehicles, vehicleHandler.Due))
	mux.Handle("GET /api/vehicles/{id}/rules", protect(models.ActionViewRules, vehicleHandler.Rules))
	mux.Handle("GET /api/vehicles/{id}/history", protect(models.ActionViewVehicles, vehicleHandler.History))
	mux.Handle("PATCH /api/vehicles/{id}/mileage", protect(models.ActionUpdateMileage, vehicleHandler.UpdateMileage))

	mux.Handle("GET /api/rules", protect(models.ActionViewRules, ruleHandler.List))
	mux.Handle("POST /api/rules", authMW.Authenticate(
		authMW.RequireRole(models.RoleManager)(http.HandlerFunc(ruleHandler.Create)),
	))

	mux.Handle("GET /api/reports/due.xlsx", protect(models.ActionExportReports, reportHandler.DueReport))

	var h http.Handler = mux
	if s.limiter != nil {
		h = s.limiter.RateLimit(h)
	}
	return middleware.Logging(s.log)(h)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger, err := setupLogger(cfg)
	if err != nil {
		log.Fatalf("Invalid log level %q: %v", cfg.LogLevel, err)
	}
	metrics.RegisterDefault()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &server{
		auth:    auth.NewService(cfg.JWTSecret, cfg.JWTExpiry),
		limiter: middleware.NewRateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst),
		log:     logger,
	}

	if cfg.MongoURI != "" {
		client, err := db.ConnectMongo(cfg.MongoURI)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to MongoDB")
		}
		defer func() {
			_ = client.Disconnect(context.Background())
		}()
		mongoStore := db.NewMongoStore(client.Database(cfg.MongoDB), logger)
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			logger.WithError(err).Warn("Failed to create indexes")
		}
		srv.store = mongoStore
		srv.checks = append(srv.checks, handlers.Check{Name: "mongo", Ping: func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		}})
		logger.WithField("database", cfg.MongoDB).Info("Connected to MongoDB")
	} else {
		srv.store = db.NewMemory()
		logger.Warn("MONGO_URI not set, using in-memory store")
	}

	var cache dashboard.Cache
	if cfg.RedisURL != "" {
		redisCache, err := dashboard.NewRedisCache(cfg.RedisURL, cfg.DashboardCacheTTL)
		if err != nil {
			logger.WithError(err).Fatal("Invalid REDIS_URL")
		}
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			logger.WithError(err).Warn("Redis not reachable, dashboard cache will miss")
		}
		cache = redisCache
		srv.checks = append(srv.checks, handlers.Check{Name: "redis", Ping: redisCache.Ping})
	}

	var publisher dashboard.Publisher = notify.LogPublisher{Log: logger}
	if cfg.MQTTBroker != "" {
		mqttPublisher, err := notify.NewMQTTPublisher(notify.Config{
			Broker:   cfg.MQTTBroker,
			ClientID: cfg.MQTTClientID,
			Topic:    cfg.MQTTTopic,
		}, logger)
		if err != nil {
			logger.WithError(err).Warn("MQTT broker not reachable, logging notifications instead")
		} else {
			defer mqttPublisher.Close()
			publisher = mqttPublisher
		}
	}

	agg := dashboard.NewAggregator(cfg.Windows, logger)
	agg.ActivityLimit = cfg.ActivityLimit
	srv.dashboard = dashboard.NewService(srv.store, agg, cache, publisher, logger)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("HTTP server error")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
	}
}
