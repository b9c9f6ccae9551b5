package handler

import (
	"net/http"
)

type HealthHandler struct {
	env        string
	dbProvider string
	aiProvider string
	logSink    string
}

func NewHealthHandler(env, dbProvider, aiProvider, logSink string) *HealthHandler {
	return &HealthHandler{env: env, dbProvider: dbProvider, aiProvider: aiProvider, logSink: logSink}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"env":    h.env,
		"db":     h.dbProvider,
		"ai":     h.aiProvider,
		"logs":   h.logSink,
	})
}

// NotFound answers unknown routes with the JSON error shape.
func (h *HealthHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorBody{"not_found", "route not found"})
}
