package client

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmoesl/leadscore/pkg/schema"
)

func testPrediction() *Prediction {
	return &Prediction{
		Labels:        []int{1, 0},
		Probabilities: [][2]float64{{0.18, 0.82}, {0.9, 0.1}},
	}
}

func testRecords() []schema.LeadRecord {
	second := validRecord()
	second.Age = 36
	second.EducationalChannelsYes = false
	second.DigitalMediaYes = true
	return []schema.LeadRecord{validRecord(), second}
}

func TestCombine(t *testing.T) {
	rows, err := Combine(testRecords(), testPrediction())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 1, rows[0].Prediction)
	assert.Equal(t, "CONVERT", rows[0].Outcome)
	// Probability of the predicted class, not always of class 1.
	assert.Equal(t, 0.82, rows[0].Probability)

	assert.Equal(t, 0, rows[1].Prediction)
	assert.Equal(t, "NOT CONVERT", rows[1].Outcome)
	assert.Equal(t, 0.9, rows[1].Probability)
}

func TestCombine_LengthMismatch(t *testing.T) {
	_, err := Combine(testRecords()[:1], testPrediction())
	assert.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	rows, err := Combine(testRecords(), testPrediction())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	parsed, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, parsed, 3)

	header := parsed[0]
	assert.Equal(t, "age", header[0])
	assert.Equal(t, "prediction", header[16])
	assert.Equal(t, "outcome", header[17])
	assert.Equal(t, "probability", header[18])

	assert.Equal(t, "57", parsed[1][0])
	assert.Equal(t, "1", parsed[1][16])
	assert.Equal(t, "CONVERT", parsed[1][17])
	assert.Equal(t, "0.820", parsed[1][18])

	assert.Equal(t, "36", parsed[2][0])
	assert.Equal(t, "NOT CONVERT", parsed[2][17])
}

func TestWriteJSON(t *testing.T) {
	rows, err := Combine(testRecords(), testPrediction())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, rows))

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)

	assert.Equal(t, float64(57), decoded[0]["age"])
	assert.Equal(t, float64(1), decoded[0]["prediction"])
	assert.Equal(t, "CONVERT", decoded[0]["outcome"])
	assert.Equal(t, 0.82, decoded[0]["probability"])
}
