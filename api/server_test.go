package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmoesl/leadscore/internal/model"
	"github.com/tmoesl/leadscore/pkg/config"
	"github.com/tmoesl/leadscore/pkg/schema"
)

func testModel() *model.LogisticModel {
	return &model.LogisticModel{
		FeatureNames: schema.FeatureNames(),
		Coefficients: []float64{
			0.0124, -0.0213, 0.0015, 0.0408,
			-0.8491, -0.2477, 1.6032, -1.9268,
			-1.1043, -0.3519, 0.5527, -0.0981,
			-0.0462, -0.1204, -0.3017, 1.4226,
		},
		Intercept: -2.4135,
	}
}

func newTestServer(t *testing.T, clf model.Classifier) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{}
	cfg.App.Mode = "production"
	cfg.API.Port = 8000
	return NewServer(cfg, clf)
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

const validLead = `{
	"age": 57, "website_visits": 1, "time_spent_on_website": 582,
	"page_views_per_visit": 2.197,
	"current_occupation_student": false, "current_occupation_unemployed": false,
	"first_interaction_website": false, "profile_completed_low": false,
	"profile_completed_medium": false, "last_activity_phone": false,
	"last_activity_website": false, "print_media_type1_yes": false,
	"print_media_type2_yes": false, "digital_media_yes": false,
	"educational_channels_yes": true, "referral_yes": false
}`

type predictResponse struct {
	Prediction  []int        `json:"prediction"`
	Probability [][2]float64 `json:"probability"`
}

func TestRootEndpoint(t *testing.T) {
	s := newTestServer(t, testModel())

	w := doRequest(s, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message": "ML Model API is running"}`, w.Body.String())
}

func TestPredict_SingleLead(t *testing.T) {
	s := newTestServer(t, testModel())

	w := doRequest(s, http.MethodPost, "/predict/", "["+validLead+"]")
	require.Equal(t, http.StatusOK, w.Code)

	var resp predictResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	require.Len(t, resp.Prediction, 1)
	assert.Contains(t, []int{0, 1}, resp.Prediction[0])

	require.Len(t, resp.Probability, 1)
	pair := resp.Probability[0]
	for _, p := range pair {
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}
	assert.InDelta(t, 1.0, pair[0]+pair[1], 0.001)
}

func TestPredict_EmptyBatch(t *testing.T) {
	s := newTestServer(t, testModel())

	w := doRequest(s, http.MethodPost, "/predict/", "[]")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"prediction": [], "probability": []}`, w.Body.String())
}

func TestPredict_OrderPreserved(t *testing.T) {
	s := newTestServer(t, testModel())

	leads := make([]string, 3)
	for i, age := range []int{18, 57, 92} {
		leads[i] = strings.Replace(validLead, `"age": 57`, fmt.Sprintf(`"age": %d`, age), 1)
	}
	w := doRequest(s, http.MethodPost, "/predict/", "["+strings.Join(leads, ",")+"]")
	require.Equal(t, http.StatusOK, w.Code)

	var batch predictResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &batch))
	require.Len(t, batch.Prediction, 3)
	require.Len(t, batch.Probability, 3)

	// Each position must match the result of submitting that lead alone.
	for i, lead := range leads {
		w := doRequest(s, http.MethodPost, "/predict/", "["+lead+"]")
		require.Equal(t, http.StatusOK, w.Code)

		var single predictResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &single))
		assert.Equal(t, single.Prediction[0], batch.Prediction[i])
		assert.Equal(t, single.Probability[0], batch.Probability[i])
	}
}

func TestPredict_ValidationFailure(t *testing.T) {
	s := newTestServer(t, testModel())

	lead := strings.Replace(validLead, `"age": 57`, `"age": 150`, 1)
	w := doRequest(s, http.MethodPost, "/predict/", "["+lead+"]")

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body["detail"], "age")
	assert.Contains(t, body["detail"], "record 0")
}

func TestPredict_MalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "not json at all"},
		{name: "object instead of array", body: validLead},
		{name: "json null", body: "null"},
		{name: "array of scalars", body: "[1, 2, 3]"},
	}

	s := newTestServer(t, testModel())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(s, http.MethodPost, "/predict/", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["detail"])
		})
	}
}

type brokenClassifier struct{}

func (brokenClassifier) Predict([]float64) (int, error) {
	return 0, errors.New("boom: internal state dump")
}

func (brokenClassifier) PredictProba([]float64) ([2]float64, error) {
	return [2]float64{}, errors.New("boom: internal state dump")
}

func TestPredict_ModelFaultHidesDetail(t *testing.T) {
	s := newTestServer(t, brokenClassifier{})

	w := doRequest(s, http.MethodPost, "/predict/", "["+validLead+"]")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail": "Prediction error"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, testModel())

	for _, path := range []string{"/health", "/health/ready", "/health/live"} {
		w := doRequest(s, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestHealth_NoModel(t *testing.T) {
	s := newTestServer(t, nil)

	w := doRequest(s, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
