package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/ejidepharmacy/pharmabot-backend/api/responses"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/config"
	pkgerrors "github.com/ejidepharmacy/pharmabot-backend/pkg/errors"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/logger"
)

const (
	envHeader    = "X-Pharmabot-Env"
	readyTimeout = 2 * time.Second
)

// Pinger is anything the readiness probe can check.
type Pinger interface {
	Ping(ctx context.Context) error
}

var features = []string{
	"ai_chat",
	"cart",
	"checkout",
	"medication_reminders",
	"admin_reports",
	"csv_inventory_upload",
}

// Health reports the service identity and enabled features.
func Health(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]any{
			"status":   "healthy",
			"service":  cfg.Store.Name + " AI Assistant",
			"features": features,
		})
	}
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the database and, when configured, redis. A nil redis
// pinger is reported as disabled.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP Pinger, redisP Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		checks := map[string]string{"database": "ok", "redis": "disabled"}
		if dbP == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "database not configured"))
			return
		}
		if err := dbP.Ping(ctx); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database not ready"))
			return
		}
		if redisP != nil {
			if err := redisP.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis not ready"))
				return
			}
			checks["redis"] = "ok"
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
