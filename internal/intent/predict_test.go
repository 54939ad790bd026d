package intent

import (
	"testing"
	"time"

	"gundash/domain/artifact"
	"gundash/internal/config"
	"gundash/internal/errors"
	"gundash/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func age(v float64) *float64 { return &v }

func TestPredictSampleModel(t *testing.T) {
	m := testkit.SampleModel("fp", artifact.Inputs{Age: 30, Sex: "Male", Race: "White"}, time.Now())

	young, err := Predict(m, PredictRequest{Age: age(20), Sex: "Male", Race: "Black"})
	require.NoError(t, err)
	old, err := Predict(m, PredictRequest{Age: age(70), Sex: "Male", Race: "White"})
	require.NoError(t, err)

	assert.Equal(t, "Homicide", young.Intent)
	assert.Equal(t, "Suicide", old.Intent)
	assert.InDelta(t, 1.0, young.Probabilities["Homicide"]+young.Probabilities["Suicide"], 1e-9)
	assert.Empty(t, young.Filled)
}

func TestPredictFillsMissingFieldsFromModes(t *testing.T) {
	mdl := preparedModel(t, testkit.TrainerTable(t, 300, 8, 0), config.DefaultModelConfig())
	require.NoError(t, mdl.TrainModel(t.Context()))
	art, err := mdl.Artifact()
	require.NoError(t, err)

	p, err := Predict(art, PredictRequest{Age: age(45), Sex: "Female", Race: "White"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Education", "Time", "Place of Death", "Police Presence"}, p.Filled)
	assert.Contains(t, art.Classes, p.Intent)

	sum := 0.0
	for _, v := range p.Probabilities {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestPredictValidatesRequest(t *testing.T) {
	m := testkit.SampleModel("fp", artifact.Inputs{Age: 30, Sex: "Male", Race: "White"}, time.Now())
	tests := []struct {
		req  PredictRequest
		code string
	}{
		{PredictRequest{Sex: "Male", Race: "White"}, errors.CodeInvalidInput},
		{PredictRequest{Age: age(-1), Sex: "Male", Race: "White"}, errors.CodeValidationError},
		{PredictRequest{Age: age(30), Race: "White"}, errors.CodeInvalidInput},
	}
	for _, tt := range tests {
		_, err := Predict(m, tt.req)
		require.Error(t, err)
		assert.Equal(t, tt.code, errors.GetCode(err))
	}
}
