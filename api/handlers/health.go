package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tmoesl/leadscore/internal/model"
)

type HealthHandler struct {
	clf model.Classifier
}

func NewHealthHandler(clf model.Classifier) *HealthHandler {
	return &HealthHandler{clf: clf}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Health reports overall service health. The only dependency is the model
// handle, which is loaded before the server starts; once Ready the service
// stays ready for the process lifetime.
func (h *HealthHandler) Health(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"
	statusCode := http.StatusOK

	if h.clf == nil {
		checks["model"] = "unhealthy: not loaded"
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	} else {
		checks["model"] = "healthy"
	}

	c.JSON(statusCode, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

func (h *HealthHandler) Ready(c *gin.Context) {
	if h.clf == nil {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Status:    "not ready",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ready",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "alive",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
