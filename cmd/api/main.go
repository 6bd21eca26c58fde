package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin/binding"
	playgroundValidator "github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/carepulse/hms-api/internal/config"
	"github.com/carepulse/hms-api/internal/email"
	appointmentHandler "github.com/carepulse/hms-api/internal/handler/appointment"
	authHandler "github.com/carepulse/hms-api/internal/handler/auth"
	eventHandler "github.com/carepulse/hms-api/internal/handler/event"
	healthHandler "github.com/carepulse/hms-api/internal/handler/health"
	healthtipHandler "github.com/carepulse/hms-api/internal/handler/healthtip"
	notificationHandler "github.com/carepulse/hms-api/internal/handler/notification"
	"github.com/carepulse/hms-api/internal/middleware"
	"github.com/carepulse/hms-api/internal/repository/postgres"
	"github.com/carepulse/hms-api/internal/router"
	appointmentService "github.com/carepulse/hms-api/internal/service/appointment"
	authService "github.com/carepulse/hms-api/internal/service/auth"
	healthtipService "github.com/carepulse/hms-api/internal/service/healthtip"
	"github.com/carepulse/hms-api/internal/service/notifier"
	reminderService "github.com/carepulse/hms-api/internal/service/reminder"
	"github.com/carepulse/hms-api/internal/ws"
	"github.com/carepulse/hms-api/pkg/auth"
	"github.com/carepulse/hms-api/pkg/logger"
	"github.com/carepulse/hms-api/pkg/messaging"
	"github.com/carepulse/hms-api/pkg/messaging/redis"
	"github.com/carepulse/hms-api/pkg/metrics"
	"github.com/carepulse/hms-api/pkg/security"
	"github.com/carepulse/hms-api/pkg/validator"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)
	m := metrics.NewMetrics("hms", prometheus.DefaultRegisterer)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	notificationRepo := postgres.NewNotificationRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	healthTipRepo := postgres.NewHealthTipRepository(db)
	userRepo := postgres.NewUserRepository(db)

	// Optional Redis mirror for out-of-process notification consumers.
	var broker messaging.Broker
	if cfg.Redis.Enabled {
		broker, err = redis.NewRedisBroker(redis.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, &log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
	}

	var emailSvc email.Service
	if cfg.SMTP.Enabled {
		emailSvc = email.NewSMTPService(email.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}

	// Websocket hub and notification fan-out
	hub := ws.NewHub(appLogger, m)
	notifSvc := notifier.NewService(hub, notificationRepo, broker, appLogger, m)

	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Scheduler.Timezone).Msg("failed to load timezone")
	}

	reminderSched := reminderService.NewScheduler(
		appointmentRepo,
		doctorRepo,
		patientRepo,
		notificationRepo,
		notifSvc,
		emailSvc,
		reminderService.Config{Interval: cfg.Scheduler.ReminderInterval, Location: loc},
		appLogger,
		m,
	)

	tipSched, err := healthtipService.NewScheduler(
		healthTipRepo,
		notifSvc,
		healthtipService.NewSeasonalGenerator(loc),
		healthtipService.Config{Interval: cfg.Scheduler.HealthTipInterval, Timezone: cfg.Scheduler.Timezone},
		appLogger,
		m,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize health tip scheduler")
	}

	// Services
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryHours)
	hasher := security.NewBcryptHasher(0)
	authSvc := authService.NewService(userRepo, jwtSvc, hasher)
	appointmentSvc := appointmentService.NewService(appointmentRepo, doctorRepo, notifSvc, appLogger)

	// Handlers
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)
	authH := authHandler.NewHandler(authSvc)
	appointmentH := appointmentHandler.NewHandler(appointmentSvc)
	notificationH := notificationHandler.NewHandler(notificationRepo)
	healthTipH := healthtipHandler.NewHandler(tipSched, healthTipRepo)
	eventH := eventHandler.NewHandler(notifSvc)
	wsH := ws.NewHandler(hub, appLogger)
	healthH := healthHandler.NewHandler(db)

	if v, ok := binding.Validator.Engine().(*playgroundValidator.Validate); ok {
		if err := validator.Register(v); err != nil {
			log.Fatal().Err(err).Msg("failed to register validation rules")
		}
	}

	routerCfg := router.Config{CORS: middleware.DefaultCORSConfig()}
	if cfg.RateLimit.Enabled {
		routerCfg.RateLimit = rate.Limit(cfg.RateLimit.RequestsPerSecond)
		routerCfg.RateBurst = cfg.RateLimit.Burst
	}
	r := router.NewRouter(authMiddleware, authH, appointmentH, notificationH, healthTipH, eventH, wsH, healthH, routerCfg)

	// Background schedulers
	schedCtx, stopSchedulers := context.WithCancel(context.Background())
	reminderSched.Start(schedCtx)
	tipSched.Start(schedCtx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	stopSchedulers()
	reminderSched.Stop()
	tipSched.Stop()
	hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
