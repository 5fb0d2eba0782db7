package server

import (
	"net/http"

	"github.com/filisonic/easyhr/internal/tasks"
)

// HealthHandler answers GET /health with database and workflow status.
type HealthHandler struct {
	engine *tasks.Engine
}

func NewHealthHandler(engine *tasks.Engine) *HealthHandler {
	return &HealthHandler{engine: engine}
}

func (h *HealthHandler) Routes() []string {
	return []string{"GET /health"}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{"status": "ok", "database": "ok", "workflow": "configured"}
	status := http.StatusOK

	if err := h.engine.Store().DB.PingContext(r.Context()); err != nil {
		body["status"] = "degraded"
		body["database"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	if h.engine.Workflow() == nil {
		body["workflow"] = "disabled"
	}
	writeJSON(w, status, body)
}

var _ Handler = (*HealthHandler)(nil)
