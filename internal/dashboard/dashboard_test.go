package dashboard

import (
	"encoding/json"
	"net/url"
	"strings"
	"testing"

	"gundash/domain/incident"
	"gundash/internal/errors"
	"gundash/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func defaultCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat, err := DefaultCatalog()
	require.NoError(t, err)
	return cat
}

func render(t *testing.T, id string, tbl *incident.Table, sel Selections) *Result {
	t.Helper()
	comp, err := defaultCatalog(t).Get(id)
	require.NoError(t, err)
	res, err := comp.Render(tbl, sel)
	require.NoError(t, err)
	return res
}

func specJSON(t *testing.T, res *Result) string {
	t.Helper()
	raw, err := json.Marshal(res.Spec)
	require.NoError(t, err)
	return string(raw)
}

func TestDefaultCatalogHasEveryChart(t *testing.T) {
	cat := defaultCatalog(t)
	assert.Equal(t, []string{
		"age_race_histogram", "place_year_donut", "age_education_histogram",
		"monthly_trend_line", "intent_area_trend", "location_intent_bar",
		"police_bar", "gender_bar", "intent_race_grouped_bar",
		"intent_education_trend", "age_victims_scatter", "intent_bar",
		"intent_race_count",
	}, cat.IDs())
	assert.Len(t, cat.Components(PageMain), 6)
	assert.Len(t, cat.Components(PageInsights), 6)
	assert.Len(t, cat.Components(PageModel), 1)
}

func TestGetUnknownChart(t *testing.T) {
	_, err := defaultCatalog(t).Get("nope")
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestEveryChartRendersWithDefaults(t *testing.T) {
	tbl := testkit.GeneratedTable(t, 400, 3)
	for _, comp := range defaultCatalog(t).Components("") {
		t.Run(comp.ID(), func(t *testing.T) {
			res, err := comp.Render(tbl, nil)
			require.NoError(t, err)
			doc := specJSON(t, res)
			assert.Equal(t, "https://vega.github.io/schema/vega-lite/v5.json", gjson.Get(doc, "$schema").String())
			assert.True(t, gjson.Get(doc, "data.values").IsArray())
			assert.Equal(t, res.Rows, res.Aggregate.Total()+res.Aggregate.Dropped)
		})
	}
}

func TestRaceAndAgeFilterTotals(t *testing.T) {
	res := render(t, "age_race_histogram", testkit.SmallTable(t), Selections{
		"race_options":     {"White"},
		"age_range_slider": {"0,30"},
	})
	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, 3, res.Aggregate.Total())

	doc := specJSON(t, res)
	assert.Equal(t, "bin_start", gjson.Get(doc, "encoding.x.field").String())
	assert.True(t, gjson.Get(doc, "encoding.x.bin.binned").Bool())
	assert.Equal(t, "bin_end", gjson.Get(doc, "encoding.x2.field").String())
	assert.Equal(t, "scales", gjson.Get(doc, "params.0.bind").String())
	assert.True(t, gjson.Get(doc, "encoding.y").Get("stack").Exists())
	gjson.Get(doc, "data.values").ForEach(func(_, v gjson.Result) bool {
		assert.Equal(t, "White", v.Get("race").String())
		return true
	})
}

func TestRangeAcceptsTwoValues(t *testing.T) {
	res := render(t, "age_race_histogram", testkit.SmallTable(t), Selections{
		"race_options":     {"White"},
		"age_range_slider": {"0", "30"},
	})
	assert.Equal(t, 3, res.Rows)
}

func TestEmptyRaceSelectionMeansAll(t *testing.T) {
	tbl := testkit.SmallTable(t)
	res := render(t, "age_race_histogram", tbl, Selections{"race_options": nil})
	assert.Equal(t, tbl.Len(), res.Rows)
}

func TestEmptyLocationSelectionMatchesNothing(t *testing.T) {
	res := render(t, "location_intent_bar", testkit.SmallTable(t), Selections{"location_filter": nil})
	assert.Zero(t, res.Rows)
	assert.Empty(t, res.Aggregate.Buckets)
	assert.Equal(t, "[]", gjson.Get(specJSON(t, res), "data.values").Raw)
}

func TestIntentMultiselectKeepsOnlySelected(t *testing.T) {
	tbl := testkit.GeneratedTable(t, 500, 9)
	res := render(t, "intent_area_trend", tbl, Selections{"intent_multiselect": {"Suicide"}})
	require.NotEmpty(t, res.Aggregate.Buckets)
	for _, b := range res.Aggregate.Buckets {
		assert.Equal(t, "Suicide", b.Keys[1])
	}
}

func TestAllSentinelDisablesFilter(t *testing.T) {
	tbl := testkit.SmallTable(t)
	res := render(t, "place_year_donut", tbl, Selections{"place_filter": {"All"}, "year_filter": {"All"}})
	assert.Equal(t, tbl.Len(), res.Rows)
	assert.Empty(t, res.Filters)
}

func TestDonutYearSelection(t *testing.T) {
	res := render(t, "place_year_donut", testkit.SmallTable(t), Selections{"place_filter": {"Home"}, "year_filter": {"2013"}})
	assert.Equal(t, 2, res.Rows)
	doc := specJSON(t, res)
	assert.Equal(t, "arc", gjson.Get(doc, "mark.type").String())
	assert.EqualValues(t, 50, gjson.Get(doc, "mark.innerRadius").Int())
}

func TestYearOptionsAreSorted(t *testing.T) {
	comp, err := defaultCatalog(t).Get("place_year_donut")
	require.NoError(t, err)
	states := comp.Widgets(testkit.SmallTable(t), nil)
	require.Len(t, states, 2)
	assert.Equal(t, []string{"All", "Home", "Street", "Other specified"}, states[0].Options)
	assert.Equal(t, []string{"All", "2012", "2013", "2014"}, states[1].Options)
	assert.Equal(t, []string{"All"}, states[1].Value)
}

func TestLineChartPinsYDomain(t *testing.T) {
	res := render(t, "monthly_trend_line", testkit.SmallTable(t), nil)
	doc := specJSON(t, res)
	assert.EqualValues(t, 0, gjson.Get(doc, "encoding.y.scale.domain.0").Int())
	assert.EqualValues(t, res.Aggregate.Max(), gjson.Get(doc, "encoding.y.scale.domain.1").Int())
}

func TestNoLegendRendersNull(t *testing.T) {
	doc := specJSON(t, render(t, "police_bar", testkit.SmallTable(t), nil))
	legend := gjson.Get(doc, "encoding.color.legend")
	assert.True(t, legend.Exists())
	assert.Equal(t, gjson.Null, legend.Type)
}

func TestBinCountWidget(t *testing.T) {
	tbl := testkit.GeneratedTable(t, 300, 4)
	coarse := render(t, "age_race_histogram", tbl, Selections{"bin_size_slider": {"5"}})
	fine := render(t, "age_race_histogram", tbl, Selections{"bin_size_slider": {"50"}})
	assert.Greater(t, coarse.Aggregate.BinStep, fine.Aggregate.BinStep)
	assert.Equal(t, coarse.Rows, coarse.Aggregate.Total()+coarse.Aggregate.Dropped)
}

func TestInvalidSelections(t *testing.T) {
	comp, err := defaultCatalog(t).Get("age_race_histogram")
	require.NoError(t, err)
	tbl := testkit.SmallTable(t)

	for _, sel := range []Selections{
		{"age_range_slider": {"ten,twenty"}},
		{"age_range_slider": {"1"}},
		{"bin_size_slider": {"0"}},
		{"bin_size_slider": {"x"}},
	} {
		_, err := comp.Render(tbl, sel)
		require.Error(t, err, "%v", sel)
		assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	}
}

func TestRenderLeavesTableUntouched(t *testing.T) {
	tbl := testkit.SmallTable(t)
	before := tbl.Distinct(incident.FieldRace)
	render(t, "location_intent_bar", tbl, Selections{"location_filter": {"Home"}})
	render(t, "location_intent_bar", tbl, Selections{"location_filter": {"Street"}})
	assert.Equal(t, 9, tbl.Len())
	assert.Equal(t, before, tbl.Distinct(incident.FieldRace))
}

func TestRenderFailsOnMissingColumn(t *testing.T) {
	tbl, err := incident.NewTable("partial", []string{"intent", "race"}, [][]string{{"Suicide", "White"}})
	require.NoError(t, err)
	comp, err := defaultCatalog(t).Get("police_bar")
	require.NoError(t, err)
	_, err = comp.Render(tbl, nil)
	require.Error(t, err)
	assert.Equal(t, errors.CodeDataError, errors.GetCode(err))
}

func TestSelectionsFromQuery(t *testing.T) {
	q, err := url.ParseQuery("race_options=White&race_options=Black&location_filter=&age_range_slider=0,30")
	require.NoError(t, err)
	sel := SelectionsFromQuery(q)
	assert.Equal(t, []string{"White", "Black"}, sel["race_options"])
	v, ok := sel["location_filter"]
	assert.True(t, ok)
	assert.Empty(t, v)
}

func TestParseAssignments(t *testing.T) {
	sel, err := ParseAssignments([]string{"intent_filter=Suicide", "intent_filter=Homicide", "race_filter="})
	require.NoError(t, err)
	assert.Equal(t, []string{"Suicide", "Homicide"}, sel["intent_filter"])
	_, ok := sel["race_filter"]
	assert.True(t, ok)

	_, err = ParseAssignments([]string{"novalue"})
	assert.Error(t, err)
}

func TestLoadCatalogRejectsBadDefinitions(t *testing.T) {
	cases := map[string]string{
		"unknown field": `
- id: x
  page: main
  mark: {type: bar}
  aggregate: {group_by: [colour]}`,
		"range on text": `
- id: x
  page: main
  mark: {type: bar}
  widgets: [{key: r, kind: range, field: race}]`,
		"duplicate id": `
- {id: x, page: main, mark: {type: bar}}
- {id: x, page: main, mark: {type: bar}}`,
		"unknown key": `
- {id: x, page: main, mark: {type: bar}, colour: red}`,
		"bin without size": `
- id: x
  page: main
  mark: {type: bar}
  aggregate: {bin: {field: age}}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadCatalog(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}
