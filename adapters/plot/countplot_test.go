package plot

import (
	"bytes"
	"testing"

	"gundash/domain/incident"
	"gundash/internal/errors"
	"gundash/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountsKeepFirstSeenOrder(t *testing.T) {
	tbl := testkit.SmallTable(t)
	cats, hues, counts, err := IntentByRace().Counts(tbl)
	require.NoError(t, err)

	require.Len(t, counts, len(hues))
	total := 0.0
	for _, row := range counts {
		require.Len(t, row, len(cats))
		for _, c := range row {
			total += c
		}
	}
	assert.Equal(t, tbl.Distinct("intent")[0], cats[0])
	assert.LessOrEqual(t, int(total), tbl.Len())
}

func TestRenderWritesPNG(t *testing.T) {
	tbl := testkit.GeneratedTable(t, 400, 7)
	var buf bytes.Buffer
	require.NoError(t, IntentByRace().Render(&buf, tbl))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestCountsMissingColumn(t *testing.T) {
	tbl := testkit.SmallTable(t)
	cp := IntentByRace()
	cp.Hue = incident.FieldTime
	_, _, _, err := cp.Counts(tbl)
	assert.Equal(t, errors.CodeDataError, errors.GetCode(err))
}
