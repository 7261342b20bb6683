package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"folio/api/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const healthTimeout = 2 * time.Second

type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandlers reports whether every backing store answers a ping.
type HealthHandlers struct {
	Checks map[string]Pinger
	Log    logrus.FieldLogger
}

func NewHealthHandlers(checks map[string]Pinger, log logrus.FieldLogger) *HealthHandlers {
	return &HealthHandlers{Checks: checks, Log: log}
}

func (h *HealthHandlers) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	names := make([]string, 0, len(h.Checks))
	for name := range h.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := models.HealthResponse{Status: "ok", Checks: make(map[string]string, len(names))}
	status := http.StatusOK
	for _, name := range names {
		if err := h.Checks[name].PingContext(ctx); err != nil {
			h.Log.WithError(err).WithField("check", name).Error("health check failed")
			resp.Checks[name] = "unavailable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	c.JSON(status, resp)
}
