package handler

import (
	"context"
	"net/http"
)

// Pinger reports whether the database can be reached.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ConnChecker reports whether a broker connection is still open.
type ConnChecker interface {
	IsClosed() bool
}

type HealthHandler struct {
	service string
	version string
	env     string

	db     Pinger      // nil when not configured
	broker ConnChecker // nil when not configured
}

func NewHealthHandler(service, version, env string, db Pinger, broker ConnChecker) *HealthHandler {
	return &HealthHandler{
		service: service,
		version: version,
		env:     env,
		db:      db,
		broker:  broker,
	}
}

// Live is the liveness probe: no storage dependency, always fast.
func (hh *HealthHandler) Live(rw http.ResponseWriter, r *http.Request) {
	respond(r.Context(), rw, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": hh.service,
		"version": hh.version,
		"env":     hh.env,
	})
}

// Ready reports per-dependency readiness. A degraded dependency answers
// 503 so orchestrators can pull the instance from rotation; the ingest
// pipeline itself keeps accepting traffic either way.
func (hh *HealthHandler) Ready(rw http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	deps := make(map[string]string)

	if hh.db != nil {
		if err := hh.db.PingContext(ctx); err != nil {
			deps["database"] = "unhealthy: " + err.Error()
		} else {
			deps["database"] = "healthy"
		}
	} else {
		deps["database"] = "not configured"
	}

	if hh.broker != nil {
		if hh.broker.IsClosed() {
			deps["broker"] = "unhealthy: connection closed"
		} else {
			deps["broker"] = "healthy"
		}
	} else {
		deps["broker"] = "not configured"
	}

	status := http.StatusOK
	overall := "ready"
	for _, state := range deps {
		if state != "healthy" && state != "not configured" {
			status = http.StatusServiceUnavailable
			overall = "degraded"
			break
		}
	}

	respond(ctx, rw, status, map[string]interface{}{
		"status":       overall,
		"dependencies": deps,
	})
}
