package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/config"
	"github.com/clinic/clinic/internal/domain/clinical"
	"github.com/clinic/clinic/internal/domain/documents"
	"github.com/clinic/clinic/internal/domain/patient"
	"github.com/clinic/clinic/internal/domain/scheduling"
	"github.com/clinic/clinic/internal/domain/staff"
	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/internal/platform/middleware"
	"github.com/clinic/clinic/internal/platform/notification"
	"github.com/clinic/clinic/internal/platform/reporting"
)

// app holds every component. It is the only place they are constructed.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	loc    *time.Location

	pool  *pgxpool.Pool
	redis *redis.Client

	patients   *patient.Service
	roster     *staff.Roster
	book       *scheduling.Service
	ledger     *clinical.Service
	docs       *documents.Generator
	engine     *reporting.Engine
	dispatcher *notification.Dispatcher
}

// newLogger writes console output in development and JSON otherwise.
func newLogger(cfg *config.Config, out io.Writer) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: out}).With().Timestamp().Logger()
	}
	return zerolog.New(out).With().Timestamp().Logger()
}

func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, loc: loc}

	roster, err := staff.LoadRoster(cfg.RosterFile)
	if err != nil {
		return nil, err
	}
	a.roster = roster

	var (
		patientRepo patient.Repository
		apptRepo    scheduling.AppointmentRepository
	)
	if cfg.UsePostgres() {
		pool, err := db.NewPool(ctx, db.PoolOptions{URL: cfg.DatabaseURL, MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns})
		if err != nil {
			return nil, err
		}
		a.pool = pool
		patientRepo = patient.NewRepoPG(pool)
		apptRepo = scheduling.NewAppointmentRepoPG(pool)
		logger.Info().Msg("connected to database")
	} else {
		patientRepo = patient.NewRepoMemory()
		apptRepo = scheduling.NewAppointmentRepoMemory()
		logger.Info().Msg("using in-memory storage")
	}

	var transport notification.Transport = notification.NewLogTransport(logger)
	switch cfg.ReminderTransport {
	case config.TransportRedis:
		client, err := notification.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			a.close()
			return nil, err
		}
		a.redis = client
		transport = notification.NewRedisOutbox(client, cfg.ReminderQueue)
		logger.Info().Str("queue", cfg.ReminderQueue).Msg("reminders go to redis outbox")
	case config.TransportWebhook:
		wh, err := notification.NewWebhookTransport(cfg.WebhookURL, cfg.WebhookSecret)
		if err != nil {
			a.close()
			return nil, err
		}
		transport = wh
		logger.Info().Str("url", cfg.WebhookURL).Msg("reminders go to webhook gateway")
	}

	a.patients = patient.NewService(patientRepo, logger)
	a.book = scheduling.NewService(apptRepo, logger)
	a.ledger = clinical.NewService(a.patients, logger)
	a.docs = documents.NewGenerator(a.patients)
	a.engine = reporting.NewEngine(a.book, a.patients, logger)
	a.dispatcher = notification.NewDispatcher(transport, logger)
	return a, nil
}

func (a *app) close() {
	if a.redis != nil {
		a.redis.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

func (a *app) server() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(a.logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(a.logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RequestTimeout(a.cfg.RequestTimeout))
	if a.cfg.BodyLimit != "" {
		e.Use(echomw.BodyLimit(a.cfg.BodyLimit))
	}
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: a.cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Content-Type", middleware.RequestIDHeader},
	}))

	apiV1 := e.Group("/api/v1")
	patient.NewHandler(a.patients).RegisterRoutes(apiV1)
	staff.NewHandler(a.roster).RegisterRoutes(apiV1)
	scheduling.NewHandler(a.book, a.patients, a.roster).RegisterRoutes(apiV1)
	clinical.NewHandler(a.ledger, a.roster, a.book).RegisterRoutes(apiV1)
	documents.NewHandler(a.docs, a.roster).RegisterRoutes(apiV1)
	reporting.NewHandler(a.engine, a.loc).RegisterRoutes(apiV1)
	notification.NewHandler(a.engine, a.dispatcher, a.loc).RegisterRoutes(apiV1)

	e.GET("/health", db.HealthHandler(a.pool))
	return e
}
