// Package predictor runs validated lead records through the classifier and
// shapes the results for the wire: labels and class probabilities in request
// order, probabilities rounded to 3 decimals.
package predictor

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/tmoesl/leadscore/internal/logger"
	"github.com/tmoesl/leadscore/internal/model"
	"github.com/tmoesl/leadscore/pkg/schema"
)

// ErrPrediction signals a fault inside the model invocation. The underlying
// cause is logged server-side and never reaches the caller.
var ErrPrediction = errors.New("prediction failed")

// Result holds one prediction per input record, in submission order.
// Probabilities[i] is [P(class=0), P(class=1)] for record i.
type Result struct {
	Predictions   []int        `json:"prediction"`
	Probabilities [][2]float64 `json:"probability"`
}

type Service struct {
	clf model.Classifier
}

func New(clf model.Classifier) *Service {
	return &Service{clf: clf}
}

// Predict scores every record in order. An empty batch yields an empty
// result. Requests are independent: the service holds no per-request state
// and the classifier is read-only, so concurrent calls need no locking.
func (s *Service) Predict(ctx context.Context, records []schema.LeadRecord) (*Result, error) {
	result := &Result{
		Predictions:   make([]int, 0, len(records)),
		Probabilities: make([][2]float64, 0, len(records)),
	}

	for i, rec := range records {
		features := rec.Features()

		label, err := s.clf.Predict(features)
		if err != nil {
			logger.ErrorCtxf(ctx, "model predict failed for record %d: %v", i, err)
			return nil, fmt.Errorf("%w: record %d", ErrPrediction, i)
		}

		proba, err := s.clf.PredictProba(features)
		if err != nil {
			logger.ErrorCtxf(ctx, "model predict_proba failed for record %d: %v", i, err)
			return nil, fmt.Errorf("%w: record %d", ErrPrediction, i)
		}

		result.Predictions = append(result.Predictions, label)
		result.Probabilities = append(result.Probabilities, [2]float64{
			round3(proba[0]),
			round3(proba[1]),
		})
	}

	return result, nil
}

// round3 fixes the wire precision. Internal computation keeps full
// precision; only the response is rounded.
func round3(p float64) float64 {
	return math.Round(p*1000) / 1000
}
