package controllers

import (
	"context"
	"net/http"

	"github.com/mvaldes-dev/storecraft-backend/api/responses"
	"github.com/mvaldes-dev/storecraft-backend/pkg/config"
	pkgerrors "github.com/mvaldes-dev/storecraft-backend/pkg/errors"
	"github.com/mvaldes-dev/storecraft-backend/pkg/logger"
)

const envHeader = "X-Storecraft-Env"

type pinger interface {
	Ping(ctx context.Context) error
}

// NamedPinger pairs a readiness dependency with the name reported when it
// fails the check.
type NamedPinger struct {
	Name   string
	Pinger pinger
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, deps ...NamedPinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		for _, dep := range deps {
			if dep.Pinger == nil {
				continue
			}
			if err := dep.Pinger.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, dep.Name+" unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
