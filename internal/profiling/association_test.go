package profiling

import (
	"testing"

	"gundash/domain/incident"
	"gundash/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableOf(t *testing.T, pairs map[[2]string]int) *incident.Table {
	t.Helper()
	var recs [][]string
	for _, k := range [][2]string{{"M", "Suicide"}, {"M", "Homicide"}, {"F", "Suicide"}, {"F", "Homicide"}} {
		for i := 0; i < pairs[k]; i++ {
			recs = append(recs, []string{k[0], k[1]})
		}
	}
	tbl, err := incident.NewTable("pairs", []string{"sex", "intent"}, recs)
	require.NoError(t, err)
	return tbl
}

func TestChiSquarePerfectAssociation(t *testing.T) {
	tbl := tableOf(t, map[[2]string]int{{"M", "Suicide"}: 10, {"F", "Homicide"}: 10})
	a := ChiSquare(tbl, incident.FieldSex, incident.FieldIntent)

	assert.Equal(t, 20, a.N)
	assert.Equal(t, 1, a.DoF)
	assert.InDelta(t, 20.0, a.ChiSquare, 1e-9)
	assert.InDelta(t, 1.0, a.CramersV, 1e-9)
	assert.Less(t, a.PValue, 1e-4)
	assert.Equal(t, "very strong", a.Strength)
}

func TestChiSquareIndependent(t *testing.T) {
	tbl := tableOf(t, map[[2]string]int{
		{"M", "Suicide"}: 5, {"M", "Homicide"}: 5,
		{"F", "Suicide"}: 5, {"F", "Homicide"}: 5,
	})
	a := ChiSquare(tbl, incident.FieldSex, incident.FieldIntent)

	assert.InDelta(t, 0.0, a.ChiSquare, 1e-12)
	assert.InDelta(t, 1.0, a.PValue, 1e-12)
	assert.Equal(t, "weak", a.Strength)
}

func TestChiSquareDegenerate(t *testing.T) {
	tbl := tableOf(t, map[[2]string]int{{"M", "Suicide"}: 4, {"M", "Homicide"}: 3})
	a := ChiSquare(tbl, incident.FieldSex, incident.FieldIntent)
	assert.Equal(t, 1.0, a.PValue)
	assert.Equal(t, 0, a.DoF)

	a = ChiSquare(tbl, incident.FieldAge, incident.FieldIntent)
	assert.Equal(t, "none", a.Strength)
}

func TestProfileIncludesIntentAssociations(t *testing.T) {
	info := NewDataProfiler().Profile(testkit.GeneratedTable(t, 500, 3))
	require.NotEmpty(t, info.Associations)
	for _, a := range info.Associations {
		assert.Equal(t, incident.FieldIntent, a.Y)
		assert.NotEqual(t, incident.FieldIntent, a.X)
		assert.False(t, a.X.IsNumeric())
	}
}
