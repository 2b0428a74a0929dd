package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Booking BookingService
	Admin   SlotAdminService
	Queries QueryService
	PgPool  *pgxpool.Pool
	Redis   *redis.Client
	Logger  *zap.Logger
	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Post("/reservations", createReservationHandler(cfg.Booking))
	r.Get("/reservations", listReservationsHandler(cfg.Queries))
	r.Get("/reservations/{id}", getReservationHandler(cfg.Queries))
	r.Patch("/reservations/{id}/cancel", cancelReservationHandler(cfg.Booking))

	r.Get("/slots/available", availableSlotsHandler(cfg.Queries))
	r.Put("/slots/{id}/close", closeSlotHandler(cfg.Admin))
	r.Put("/slots/{id}/open", openSlotHandler(cfg.Admin))

	r.Get("/departments", listDepartmentsHandler(cfg.Queries))
	r.Get("/departments/{id}/doctors", listDoctorsHandler(cfg.Queries))

	return r
}
