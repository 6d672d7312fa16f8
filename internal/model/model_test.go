package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("valid artifact", func(t *testing.T) {
		m, err := Load("testdata/model.json")
		require.NoError(t, err)
		assert.Equal(t, 16, m.NumFeatures())
		assert.Equal(t, "age", m.FeatureNames[0])
	})

	t.Run("coefficient dimension mismatch", func(t *testing.T) {
		_, err := Load("testdata/bad_dims.json")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 coefficients for 2 features")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load("testdata/does_not_exist.json")
		assert.Error(t, err)
	})
}

func TestLogisticModel_PredictProba(t *testing.T) {
	m, err := Load("testdata/model.json")
	require.NoError(t, err)

	features := make([]float64, m.NumFeatures())
	features[0] = 57  // age
	features[1] = 1   // website_visits
	features[2] = 582 // time_spent_on_website
	features[3] = 2.197

	proba, err := m.PredictProba(features)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, proba[0], 0.0)
	assert.LessOrEqual(t, proba[0], 1.0)
	assert.GreaterOrEqual(t, proba[1], 0.0)
	assert.LessOrEqual(t, proba[1], 1.0)
	assert.InDelta(t, 1.0, proba[0]+proba[1], 1e-9)
}

func TestLogisticModel_PredictMatchesProba(t *testing.T) {
	m, err := Load("testdata/model.json")
	require.NoError(t, err)

	vectors := [][]float64{
		make([]float64, 16),
		{57, 1, 582, 2.197, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0},
		{25, 10, 2500, 6.5, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 0, 1},
	}

	for _, features := range vectors {
		label, err := m.Predict(features)
		require.NoError(t, err)
		proba, err := m.PredictProba(features)
		require.NoError(t, err)

		if proba[1] >= 0.5 {
			assert.Equal(t, 1, label)
		} else {
			assert.Equal(t, 0, label)
		}
	}
}

func TestLogisticModel_FeatureVectorShapeMismatch(t *testing.T) {
	m, err := Load("testdata/model.json")
	require.NoError(t, err)

	_, err = m.Predict([]float64{1, 2, 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model expects 16")

	_, err = m.PredictProba(nil)
	assert.Error(t, err)
}
