package testkit

import (
	"errors"
	"testing"
	"time"

	"gundash/domain/artifact"
	"gundash/domain/core"
	"gundash/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SampleModel returns a small, valid two-feature model artifact
func SampleModel(fingerprint core.Hash, inputs artifact.Inputs, created time.Time) *artifact.Model {
	return &artifact.Model{
		ID:                 core.NewModelID(),
		CreatedAt:          created.UTC(),
		DatasetFingerprint: fingerprint,
		Inputs:             inputs,
		Columns: []artifact.Column{
			{Name: "Age", Kind: artifact.KindNumeric},
			{Name: "Sex", Kind: artifact.KindCategorical, Levels: []string{"Female", "Male"}},
		},
		Features:  []string{"Age", "Sex_Female", "Sex_Male"},
		Scaler:    artifact.Scaler{Mean: []float64{40, 0.2, 0.8}, Scale: []float64{15, 0.4, 0.4}},
		Classes:   []string{"Homicide", "Suicide"},
		Coef:      [][]float64{{-0.8, 0.1, -0.1}, {0.8, -0.1, 0.1}},
		Intercept: []float64{0.05, -0.05},
		Modes:     map[string]string{"Age": "30", "Sex": "Male"},
		Accuracy:  0.75,
		Report:    "report",
		TrainRows: 80,
		TestRows:  20,
		MaxIter:   1000,
		Seed:      42,
	}
}

// RunModelRepositoryContract exercises the behaviour every ModelRepository shares
func RunModelRepositoryContract(t *testing.T, newRepo func(t *testing.T) ports.ModelRepository) {
	t.Run("save and get", func(t *testing.T) {
		repo := newRepo(t)
		in := artifact.Inputs{Age: 30, Sex: "Male", Race: "White"}
		m := SampleModel("abc", in, time.Now())
		require.NoError(t, repo.Save(t.Context(), m))

		got, err := repo.Get(t.Context(), m.ID)
		require.NoError(t, err)
		assert.Equal(t, m.ID, got.ID)
		assert.True(t, m.CreatedAt.Equal(got.CreatedAt))
		assert.Equal(t, m.Features, got.Features)
		assert.Equal(t, m.Coef, got.Coef)
		assert.Equal(t, m.Modes, got.Modes)
		assert.Equal(t, in, got.Inputs)
	})

	t.Run("missing", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Get(t.Context(), core.NewModelID())
		assert.True(t, errors.Is(err, core.ErrModelNotFound))
		_, err = repo.Latest(t.Context())
		assert.True(t, errors.Is(err, core.ErrModelNotFound))
		err = repo.Delete(t.Context(), core.NewModelID())
		assert.True(t, errors.Is(err, core.ErrModelNotFound))
	})

	t.Run("latest and find by key", func(t *testing.T) {
		repo := newRepo(t)
		base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		white := artifact.Inputs{Age: 30, Sex: "Male", Race: "White"}
		black := artifact.Inputs{Age: 30, Sex: "Male", Race: "Black"}

		old := SampleModel("fp1", white, base)
		newer := SampleModel("fp1", white, base.Add(time.Hour))
		other := SampleModel("fp1", black, base.Add(2*time.Hour))
		for _, m := range []*artifact.Model{old, newer, other} {
			require.NoError(t, repo.Save(t.Context(), m))
		}

		latest, err := repo.Latest(t.Context())
		require.NoError(t, err)
		assert.Equal(t, other.ID, latest.ID)

		found, err := repo.FindByKey(t.Context(), "fp1", white)
		require.NoError(t, err)
		assert.Equal(t, newer.ID, found.ID)

		_, err = repo.FindByKey(t.Context(), "fp2", white)
		assert.True(t, errors.Is(err, core.ErrModelNotFound))

		list, err := repo.List(t.Context(), 2)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, other.ID, list[0].ID)
		assert.Equal(t, newer.ID, list[1].ID)

		require.NoError(t, repo.Delete(t.Context(), other.ID))
		latest, err = repo.Latest(t.Context())
		require.NoError(t, err)
		assert.Equal(t, newer.ID, latest.ID)
	})

	t.Run("rejects invalid", func(t *testing.T) {
		repo := newRepo(t)
		m := SampleModel("fp", artifact.Inputs{Age: 1, Sex: "Male", Race: "White"}, time.Now())
		m.Coef = m.Coef[:1]
		assert.Error(t, repo.Save(t.Context(), m))
	})
}
