package client

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/tmoesl/leadscore/pkg/schema"
)

// Row pairs one submitted record with its prediction. Probability is the
// probability of the predicted class, matching how the original export
// reported confidence.
type Row struct {
	schema.LeadRecord
	Prediction  int     `json:"prediction"`
	Outcome     string  `json:"outcome"`
	Probability float64 `json:"probability"`
}

// Combine zips records with the prediction result, preserving order.
func Combine(records []schema.LeadRecord, pred *Prediction) ([]Row, error) {
	if len(pred.Labels) != len(records) {
		return nil, fmt.Errorf("combine: %d records but %d predictions", len(records), len(pred.Labels))
	}

	rows := make([]Row, len(records))
	for i, rec := range records {
		label := pred.Labels[i]
		rows[i] = Row{
			LeadRecord:  rec,
			Prediction:  label,
			Outcome:     Outcome(label),
			Probability: pred.Probabilities[i][label],
		}
	}
	return rows, nil
}

// WriteCSV writes rows as CSV: one column per feature (booleans as 0/1)
// followed by prediction, outcome, and probability.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)

	header := append(schema.FeatureNames(), "prediction", "outcome", "probability")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, row := range rows {
		features := row.Features()
		record := make([]string, 0, len(features)+3)
		for _, f := range features {
			record = append(record, strconv.FormatFloat(f, 'f', -1, 64))
		}
		record = append(record,
			strconv.Itoa(row.Prediction),
			row.Outcome,
			strconv.FormatFloat(row.Probability, 'f', 3, 64),
		)
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSON writes rows as a JSON array of flat objects.
func WriteJSON(w io.Writer, rows []Row) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
