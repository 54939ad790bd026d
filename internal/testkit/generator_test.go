package testkit

import (
	"path/filepath"
	"testing"

	"gundash/adapters/excel"
	"gundash/domain/incident"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIsDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rows = 50

	a, err := Generate(cfg)
	require.NoError(t, err)
	b, err := Generate(cfg)
	require.NoError(t, err)

	assert.Equal(t, a.Rows, b.Rows)
	assert.Len(t, a.Rows, 50)
	assert.Equal(t, DashboardHeaders, a.Headers)
}

func TestGenerateRejectsBadConfig(t *testing.T) {
	_, err := Generate(Config{Rows: 0, Years: 1})
	assert.Error(t, err)
	_, err = Generate(Config{Rows: 1, Years: 1, MissingRate: 1})
	assert.Error(t, err)
}

func TestGeneratedYearsStayInRange(t *testing.T) {
	tbl := GeneratedTable(t, 500, 3)

	lo, hi, ok := tbl.Extent(incident.FieldYear)
	require.True(t, ok)
	assert.Equal(t, 2012.0, lo)
	assert.Equal(t, 2014.0, hi)
	assert.ElementsMatch(t, intents, tbl.Distinct(incident.FieldIntent))
}

func TestTrainerHeadersRoundTripThroughCSVAndXLSX(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rows = 40
	cfg.TrainerHeaders = true
	cfg.MissingRate = 0.1
	ds, err := Generate(cfg)
	require.NoError(t, err)

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "guns_cleaned.csv")
	xlsxPath := filepath.Join(dir, "guns_cleaned.xlsx")
	require.NoError(t, WriteCSV(csvPath, ds))
	require.NoError(t, WriteXLSX(xlsxPath, ds))

	ctx := t.Context()
	fromCSV, err := excel.NewDataReader(csvPath).Read(ctx)
	require.NoError(t, err)
	fromXLSX, err := excel.NewDataReader(xlsxPath).Read(ctx)
	require.NoError(t, err)

	assert.Equal(t, 40, fromCSV.Len())
	assert.Equal(t, 40, fromXLSX.Len())
	for r := 0; r < 40; r++ {
		assert.Equal(t, fromCSV.Text(incident.FieldIntent, r), fromXLSX.Text(incident.FieldIntent, r))
		assert.Equal(t, fromCSV.IsNull(incident.FieldAge, r), fromXLSX.IsNull(incident.FieldAge, r))
	}
	assert.False(t, fromCSV.Fingerprint().IsEmpty())
}
