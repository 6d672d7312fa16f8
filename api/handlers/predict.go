package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tmoesl/leadscore/internal/logger"
	"github.com/tmoesl/leadscore/internal/metrics"
	"github.com/tmoesl/leadscore/internal/predictor"
	"github.com/tmoesl/leadscore/pkg/schema"
)

type PredictHandler struct {
	svc *predictor.Service
}

func NewPredictHandler(svc *predictor.Service) *PredictHandler {
	return &PredictHandler{svc: svc}
}

// Root godoc
// @Summary Service banner
// @Description Confirms the model API is up and serving
// @Produce json
// @Success 200 {object} map[string]string
// @Router / [get]
func (h *PredictHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "ML Model API is running"})
}

// Predict godoc
// @Summary Score a batch of leads
// @Description Validates a JSON array of lead records and returns conversion predictions with class probabilities, in request order
// @Accept json
// @Produce json
// @Success 200 {object} predictor.Result
// @Failure 400 {object} map[string]string "Malformed body or failed validation"
// @Failure 500 {object} map[string]string "Model invocation failure"
// @Router /predict/ [post]
func (h *PredictHandler) Predict(c *gin.Context) {
	ctx := c.Request.Context()

	// Decode with UseNumber so integer fields can reject non-integral
	// floats instead of silently truncating them.
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()

	var raws []map[string]interface{}
	if err := dec.Decode(&raws); err != nil || raws == nil {
		// A nil slice with no decode error means the body was JSON null,
		// which is not an array either.
		c.JSON(http.StatusBadRequest, gin.H{
			"detail": "request body must be a JSON array of lead records",
		})
		return
	}

	records, err := schema.ValidateBatch(raws)
	if err != nil {
		metrics.ValidationFailures.Inc()
		logger.WarnCtxf(ctx, "validation failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	result, err := h.svc.Predict(ctx, records)
	if err != nil {
		// Cause is logged inside the service; never leak it to the caller.
		metrics.PredictionFaults.Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Prediction error"})
		return
	}

	for _, label := range result.Predictions {
		metrics.PredictionsTotal.WithLabelValues(strconv.Itoa(label)).Inc()
	}

	c.JSON(http.StatusOK, result)
}
