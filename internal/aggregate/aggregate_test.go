package aggregate

import (
	"strconv"
	"testing"

	"gundash/domain/incident"
	"gundash/internal/filter"
	"gundash/internal/testkit"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaceAndAgeFilterTotals(t *testing.T) {
	tbl := testkit.SmallTable(t)
	v := filter.Apply(tbl.All(),
		filter.OneOf{Field: incident.FieldRace, Values: []string{"White"}},
		filter.Range{Field: incident.FieldAge, Lo: 0, Hi: 30},
	)

	agg := GroupCount(v, []incident.Field{incident.FieldIntent}, OrderFirstSeen)
	assert.Equal(t, 3, agg.Total())

	binned := BinnedCount(v, incident.FieldAge, 30, []incident.Field{incident.FieldRace}, OrderKeyAsc)
	assert.Equal(t, 3, binned.Total())
	assert.Zero(t, binned.Dropped)
}

func TestBucketSumEqualsViewSize(t *testing.T) {
	tbl := testkit.GeneratedTable(t, 600, 11)
	views := []incident.View{
		tbl.All(),
		filter.Apply(tbl.All(), filter.Equals{Field: incident.FieldPlace, Value: "Home"}),
		filter.Apply(tbl.All(), filter.Range{Field: incident.FieldYear, Lo: 2013, Hi: 2013}),
	}
	groupings := [][]incident.Field{
		nil,
		{incident.FieldIntent},
		{incident.FieldPlace, incident.FieldIntent},
		{incident.FieldDate, incident.FieldIntent, incident.FieldEducation},
	}

	for _, v := range views {
		for _, by := range groupings {
			for _, order := range []Order{OrderFirstSeen, OrderKeyAsc, OrderCountDesc} {
				agg := GroupCount(v, by, order)
				assert.Equal(t, v.Len(), agg.Total(), "by=%v order=%s", by, order)
			}
		}
	}
}

func TestUnfilteredAggregateReproducesDistribution(t *testing.T) {
	tbl := testkit.GeneratedTable(t, 500, 5)

	want := make(map[string]int)
	for r := 0; r < tbl.Len(); r++ {
		want[tbl.Text(incident.FieldRace, r)]++
	}

	got := make(map[string]int)
	for _, b := range GroupCount(tbl.All(), []incident.Field{incident.FieldRace}, OrderFirstSeen).Buckets {
		got[b.Keys[0]] = b.Count
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("distribution mismatch (-want +got):\n%s", diff)
	}
}

func TestOrders(t *testing.T) {
	tbl := testkit.SmallTable(t)
	by := []incident.Field{incident.FieldIntent}

	keys := func(a Aggregate) []string {
		out := make([]string, len(a.Buckets))
		for i, b := range a.Buckets {
			out[i] = b.Keys[0]
		}
		return out
	}

	assert.Equal(t, []string{"Suicide", "Homicide", "Accidental", "Undetermined"}, keys(GroupCount(tbl.All(), by, OrderFirstSeen)))
	assert.Equal(t, []string{"Accidental", "Homicide", "Suicide", "Undetermined"}, keys(GroupCount(tbl.All(), by, OrderKeyAsc)))
	assert.Equal(t, []string{"Homicide", "Suicide", "Accidental", "Undetermined"}, keys(GroupCount(tbl.All(), by, OrderCountDesc)))
}

func TestKeyAscIsNumericForNumericFields(t *testing.T) {
	tbl, err := incident.NewTable("ages", []string{"age"}, [][]string{{"100"}, {"9"}, {"25"}})
	require.NoError(t, err)

	agg := GroupCount(tbl.All(), []incident.Field{incident.FieldAge}, OrderKeyAsc)
	assert.Equal(t, "9", agg.Buckets[0].Keys[0])
	assert.Equal(t, "100", agg.Buckets[2].Keys[0])
	assert.Equal(t, 9.0, agg.Records()[0]["age"])
}

func TestEmptyViewYieldsEmptyAggregate(t *testing.T) {
	tbl := testkit.SmallTable(t)
	empty := filter.Apply(tbl.All(), filter.OneOf{Field: incident.FieldRace})

	agg := GroupCount(empty, []incident.Field{incident.FieldIntent}, OrderCountDesc)
	assert.Empty(t, agg.Buckets)
	assert.Zero(t, agg.Total())
	assert.Zero(t, agg.Max())
	assert.Empty(t, agg.Records())

	binned := BinnedCount(empty, incident.FieldAge, 20, nil, OrderKeyAsc)
	assert.Empty(t, binned.Buckets)
}

func TestBinnedCountDropsNulls(t *testing.T) {
	tbl, err := incident.NewTable("ages", []string{"age", "race"}, [][]string{{"3", "A"}, {"", "A"}, {"17", "B"}, {"18", "A"}})
	require.NoError(t, err)

	agg := BinnedCount(tbl.All(), incident.FieldAge, 3, nil, OrderKeyAsc)
	assert.Equal(t, 1, agg.Dropped)
	assert.Equal(t, 3, agg.Total())
	assert.Equal(t, 10.0, agg.BinStep, "step 5 would need four bins over 3..18")
	require.Len(t, agg.Buckets, 2)
	assert.Equal(t, Bin{Start: 0, End: 10}, *agg.Buckets[0].Bin)
	assert.Equal(t, Bin{Start: 10, End: 20}, *agg.Buckets[1].Bin)
	assert.Equal(t, 2, agg.Buckets[1].Count)
	assert.Equal(t, []string{BinStartField, BinEndField, CountField}, agg.Columns())
}

func TestNiceStep(t *testing.T) {
	cases := []struct {
		lo, hi float64
		bins   int
		want   float64
	}{
		{0, 100, 30, 5},
		{0, 100, 20, 5},
		{0, 100, 10, 10},
		{0, 107, 50, 5},
		{1, 2, 30, 0.05},
		{5, 5, 10, 1},
		{0, 10, 0, 10},
		{15, 114, 10, 20},
		{3, 18, 3, 10},
	}
	for _, c := range cases {
		assert.InDelta(t, c.want, NiceStep(c.lo, c.hi, c.bins), 1e-12, "%v", c)
	}
}

func TestBinnedCountKeepsMaximumInLastBin(t *testing.T) {
	records := make([][]string, 0, 101)
	for age := 0; age <= 100; age++ {
		records = append(records, []string{strconv.Itoa(age)})
	}
	tbl, err := incident.NewTable("ages", []string{"age"}, records)
	require.NoError(t, err)

	for _, maxBins := range []int{5, 10, 20, 30} {
		agg := BinnedCount(tbl.All(), incident.FieldAge, maxBins, nil, OrderKeyAsc)
		assert.LessOrEqual(t, len(agg.Buckets), maxBins, "maxBins=%d", maxBins)
		assert.Equal(t, 101, agg.Total())
		lastBin := agg.Buckets[len(agg.Buckets)-1].Bin
		assert.Equal(t, 100.0, lastBin.End, "maxBins=%d", maxBins)
	}

	agg := BinnedCount(tbl.All(), incident.FieldAge, 10, nil, OrderKeyAsc)
	require.Len(t, agg.Buckets, 10)
	assert.Equal(t, Bin{Start: 90, End: 100}, *agg.Buckets[9].Bin)
	assert.Equal(t, 11, agg.Buckets[9].Count)
}

func TestParseOrder(t *testing.T) {
	o, err := ParseOrder("")
	require.NoError(t, err)
	assert.Equal(t, OrderFirstSeen, o)

	_, err = ParseOrder("random")
	assert.Error(t, err)
}
