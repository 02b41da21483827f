package handlers

import (
	"context"
	"net/http"
	"time"
)

const (
	serviceName = "fablink-backend"
	apiVersion  = "1.0.0"
)

func (h *Handler) RootHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "FabLink API Server",
		"version": apiVersion,
	})
}

// PingHandler отвечает "ok" для проверки сервера
func (h *Handler) PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// HealthHandler liveness: процесс жив, зависимости не проверяются
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":      "healthy",
		"service":     serviceName,
		"environment": h.Env,
	})
}

type readinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Errors []string          `json:"errors,omitempty"`
}

// ReadyHandler readiness и startup: PostgreSQL и MongoDB отвечают на ping
func (h *Handler) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	resp := readinessResponse{Status: "ready", Checks: map[string]string{}}
	check := func(name string, ping func(context.Context) error) {
		if err := ping(ctx); err != nil {
			resp.Checks[name] = "error"
			resp.Errors = append(resp.Errors, name+": "+err.Error())
			return
		}
		resp.Checks[name] = "ok"
	}
	check("database", h.Store.Ping)
	check("mongodb", h.Progress.Ping)

	status := http.StatusOK
	if len(resp.Errors) > 0 {
		resp.Status = "not_ready"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
