// Package aggregate builds group-by-count projections of incident views.
package aggregate

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gundash/domain/incident"
)

// CountField is the column name counts are reported under
const CountField = "count"

// Bin column names for binned aggregates
const (
	BinStartField = "bin_start"
	BinEndField   = "bin_end"
)

// Order controls bucket ordering
type Order string

const (
	// OrderFirstSeen keeps buckets in the order their key first appears
	OrderFirstSeen Order = "first_seen"
	// OrderKeyAsc sorts by key tuple, numeric fields numerically
	OrderKeyAsc Order = "key_asc"
	// OrderCountDesc sorts by descending count; ties keep first-seen order
	OrderCountDesc Order = "count_desc"
)

// ParseOrder validates an order name; empty means first_seen
func ParseOrder(s string) (Order, error) {
	switch Order(s) {
	case "", OrderFirstSeen:
		return OrderFirstSeen, nil
	case OrderKeyAsc, OrderCountDesc:
		return Order(s), nil
	}
	return "", fmt.Errorf("unknown aggregate order %q", s)
}

// Bin is a half-open numeric interval [Start, End)
type Bin struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Bucket is one group of the aggregate
type Bucket struct {
	Keys  []string `json:"keys"`
	Bin   *Bin     `json:"bin,omitempty"`
	Count int      `json:"count"`
}

// Aggregate is a group-by-count projection of a view
type Aggregate struct {
	By       []incident.Field `json:"by"`
	BinField incident.Field   `json:"bin_field,omitempty"`
	BinStep  float64          `json:"bin_step,omitempty"`
	Buckets  []Bucket         `json:"buckets"`

	// Dropped counts rows left out because the binned field was null
	Dropped int `json:"dropped,omitempty"`
}

// Total is the sum of all bucket counts
func (a Aggregate) Total() int {
	n := 0
	for _, b := range a.Buckets {
		n += b.Count
	}
	return n
}

// Max is the largest bucket count, 0 when empty
func (a Aggregate) Max() int {
	m := 0
	for _, b := range a.Buckets {
		m = max(m, b.Count)
	}
	return m
}

// Columns lists the record column names in output order
func (a Aggregate) Columns() []string {
	cols := make([]string, 0, len(a.By)+3)
	if a.BinField != "" {
		cols = append(cols, BinStartField, BinEndField)
	}
	for _, f := range a.By {
		cols = append(cols, string(f))
	}
	return append(cols, CountField)
}

// Records flattens buckets into chart data rows. Numeric group fields are
// emitted as numbers.
func (a Aggregate) Records() []map[string]any {
	out := make([]map[string]any, 0, len(a.Buckets))
	for _, b := range a.Buckets {
		rec := make(map[string]any, len(a.By)+3)
		for i, f := range a.By {
			rec[string(f)] = keyValue(f, b.Keys[i])
		}
		if b.Bin != nil {
			rec[BinStartField] = b.Bin.Start
			rec[BinEndField] = b.Bin.End
		}
		rec[CountField] = b.Count
		out = append(out, rec)
	}
	return out
}

// Rows returns the records as positional cells in Columns order
func (a Aggregate) Rows() [][]any {
	cols := a.Columns()
	recs := a.Records()
	out := make([][]any, len(recs))
	for i, rec := range recs {
		row := make([]any, len(cols))
		for j, c := range cols {
			row[j] = rec[c]
		}
		out[i] = row
	}
	return out
}

func keyValue(f incident.Field, s string) any {
	if f.IsNumeric() && s != "" {
		if x, err := strconv.ParseFloat(s, 64); err == nil {
			return x
		}
	}
	return s
}

// GroupCount counts view rows per distinct key tuple of by. Null cells group
// under "". With no fields the result is a single bucket holding the view size.
func GroupCount(v incident.View, by []incident.Field, order Order) Aggregate {
	agg := Aggregate{By: by}
	index := make(map[string]int)
	t := v.Table()
	for i := 0; i < v.Len(); i++ {
		row := v.Row(i)
		keys := make([]string, len(by))
		for j, f := range by {
			keys[j] = t.Text(f, row)
		}
		agg.add(index, keys, nil)
	}
	agg.sort(order)
	return agg
}

// BinnedCount bins the numeric field with a nice step derived from maxBins
// over the view's extent, then counts per (bin, by...) tuple. Rows whose
// binned field is null are counted in Dropped.
func BinnedCount(v incident.View, field incident.Field, maxBins int, by []incident.Field, order Order) Aggregate {
	agg := Aggregate{By: by, BinField: field}
	lo, hi, ok := v.Extent(field)
	if !ok {
		agg.Dropped = v.Len()
		return agg
	}
	step := NiceStep(lo, hi, maxBins)
	start := math.Floor(lo/step) * step
	last := float64(binCount(lo, hi, step) - 1)
	agg.BinStep = step

	index := make(map[string]int)
	t := v.Table()
	for i := 0; i < v.Len(); i++ {
		row := v.Row(i)
		x, ok := t.Float(field, row)
		if !ok {
			agg.Dropped++
			continue
		}
		k := math.Min(math.Floor(round((x-start)/step)), last)
		b := &Bin{Start: round(start + k*step), End: round(start + (k+1)*step)}
		keys := make([]string, len(by))
		for j, f := range by {
			keys[j] = t.Text(f, row)
		}
		agg.add(index, keys, b)
	}
	agg.sort(order)
	return agg
}

func (a *Aggregate) add(index map[string]int, keys []string, bin *Bin) {
	id := strings.Join(keys, "\x1f")
	if bin != nil {
		id = strconv.FormatFloat(bin.Start, 'g', -1, 64) + "\x1e" + id
	}
	if i, ok := index[id]; ok {
		a.Buckets[i].Count++
		return
	}
	index[id] = len(a.Buckets)
	a.Buckets = append(a.Buckets, Bucket{Keys: keys, Bin: bin, Count: 1})
}

func (a *Aggregate) sort(order Order) {
	switch order {
	case OrderKeyAsc:
		sort.SliceStable(a.Buckets, func(i, j int) bool {
			return a.lessKeys(a.Buckets[i], a.Buckets[j])
		})
	case OrderCountDesc:
		sort.SliceStable(a.Buckets, func(i, j int) bool {
			return a.Buckets[i].Count > a.Buckets[j].Count
		})
	}
}

func (a *Aggregate) lessKeys(x, y Bucket) bool {
	if x.Bin != nil && y.Bin != nil && x.Bin.Start != y.Bin.Start {
		return x.Bin.Start < y.Bin.Start
	}
	for i, f := range a.By {
		if x.Keys[i] == y.Keys[i] {
			continue
		}
		if f.IsNumeric() {
			xv, errX := strconv.ParseFloat(x.Keys[i], 64)
			yv, errY := strconv.ParseFloat(y.Keys[i], 64)
			if errX == nil && errY == nil {
				return xv < yv
			}
		}
		return x.Keys[i] < y.Keys[i]
	}
	return false
}

// NiceStep picks the smallest 1/2/5 x 10^k bin width whose aligned bins cover
// [lo, hi] in at most maxBins bins. hi itself falls in the last bin.
func NiceStep(lo, hi float64, maxBins int) float64 {
	if maxBins < 1 {
		maxBins = 1
	}
	span := hi - lo
	if span <= 0 {
		return 1
	}
	raw := span / float64(maxBins)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	step := raw
	for i := 0; i < 40; i, mag = i+1, mag*10 {
		for _, m := range []float64{1, 2, 5} {
			step = round(m * mag)
			if step < raw || step <= 0 {
				continue
			}
			if binCount(lo, hi, step) <= maxBins {
				return step
			}
		}
	}
	return step
}

// binCount is the number of step-aligned bins needed for [lo, hi] when the
// last bin is closed on the right.
func binCount(lo, hi, step float64) int {
	start := math.Floor(lo/step) * step
	n := int(math.Ceil(round((hi - start) / step)))
	if n < 1 {
		n = 1
	}
	return n
}

func round(x float64) float64 {
	return math.Round(x*1e9) / 1e9
}
