package dashboard

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"gundash/domain/incident"
	"gundash/internal/errors"
	"gundash/internal/filter"
)

// WidgetKind is the UI control type
type WidgetKind string

const (
	KindRange       WidgetKind = "range"
	KindSelect      WidgetKind = "select"
	KindMultiSelect WidgetKind = "multiselect"
	KindBins        WidgetKind = "bins"
)

// Widget declares one UI control and the filter it drives
type Widget struct {
	Key           string     `yaml:"key" json:"key"`
	Kind          WidgetKind `yaml:"kind" json:"kind"`
	Field         string     `yaml:"field" json:"field,omitempty"`
	Label         string     `yaml:"label" json:"label"`
	EmptyMeansAll bool       `yaml:"empty_means_all" json:"empty_means_all,omitempty"`
	Sorted        bool       `yaml:"sorted" json:"-"`
	Min           *float64   `yaml:"min" json:"-"`
	Max           *float64   `yaml:"max" json:"-"`
	Default       []string   `yaml:"default" json:"-"`

	field incident.Field
}

func (w *Widget) validate() error {
	if w.Key == "" {
		return errors.ConfigInvalid("widget key is required")
	}
	switch w.Kind {
	case KindRange, KindSelect, KindMultiSelect:
		f, ok := incident.ParseField(w.Field)
		if !ok {
			return errors.ConfigInvalid(fmt.Sprintf("widget %q: unknown field %q", w.Key, w.Field))
		}
		if w.Kind == KindRange && !f.IsNumeric() {
			return errors.ConfigInvalid(fmt.Sprintf("widget %q: range needs a numeric field", w.Key))
		}
		w.field = f
	case KindBins:
		if len(w.Default) != 1 {
			return errors.ConfigInvalid(fmt.Sprintf("widget %q: bins needs one default", w.Key))
		}
		if _, err := strconv.Atoi(w.Default[0]); err != nil {
			return errors.ConfigInvalid(fmt.Sprintf("widget %q: bins default must be an integer", w.Key))
		}
	default:
		return errors.ConfigInvalid(fmt.Sprintf("widget %q: unknown kind %q", w.Key, w.Kind))
	}
	return nil
}

// Selections holds raw widget values keyed by widget key. A key that is not
// present means "use the default"; a key present with no values is an empty
// multiselect.
type Selections map[string][]string

// SelectionsFromQuery reads selections from URL query parameters
func SelectionsFromQuery(q url.Values) Selections {
	sel := make(Selections, len(q))
	for k, vals := range q {
		var out []string
		for _, v := range vals {
			if v == "" {
				continue
			}
			out = append(out, v)
		}
		sel[k] = out
	}
	return sel
}

// ParseAssignments reads key=value pairs; repeated keys accumulate. "key=" sets an empty selection.
func ParseAssignments(pairs []string) (Selections, error) {
	sel := make(Selections)
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, errors.InvalidInput(fmt.Sprintf("expected key=value, got %q", p))
		}
		if _, seen := sel[k]; !seen {
			sel[k] = nil
		}
		if v != "" {
			sel[k] = append(sel[k], v)
		}
	}
	return sel, nil
}

// WidgetState is a widget with its options and effective value resolved against data
type WidgetState struct {
	Widget
	Options []string  `json:"options,omitempty"`
	Bounds  []float64 `json:"bounds,omitempty"`
	Value   []string  `json:"value"`
}

// bounds returns the slider limits: declared values, else the data extent
func (w *Widget) bounds(t *incident.Table) (float64, float64) {
	if w.Kind == KindBins {
		lo, hi := 1.0, 100.0
		if w.Min != nil {
			lo = *w.Min
		}
		if w.Max != nil {
			hi = *w.Max
		}
		return lo, hi
	}
	lo, hi, _ := t.Extent(w.field)
	if w.Min != nil {
		lo = *w.Min
	}
	if w.Max != nil {
		hi = *w.Max
	}
	return lo, hi
}

// options lists choices for select widgets: All followed by distinct values
func (w *Widget) options(t *incident.Table) []string {
	var vals []string
	if w.Sorted {
		vals = t.SortedDistinct(w.field)
	} else {
		vals = t.Distinct(w.field)
	}
	if w.Kind == KindMultiSelect && w.EmptyMeansAll {
		return vals
	}
	return append([]string{filter.All}, vals...)
}

// defaultValue is the value used when the selection omits the key
func (w *Widget) defaultValue(t *incident.Table) []string {
	switch w.Kind {
	case KindRange:
		lo, hi := w.bounds(t)
		return []string{fmtNum(lo), fmtNum(hi)}
	case KindSelect:
		if len(w.Default) > 0 {
			return w.Default
		}
		return []string{filter.All}
	default:
		return w.Default
	}
}

// State resolves options and the effective value for the UI
func (w *Widget) State(t *incident.Table, sel Selections) WidgetState {
	st := WidgetState{Widget: *w, Value: w.value(t, sel)}
	switch w.Kind {
	case KindRange, KindBins:
		lo, hi := w.bounds(t)
		st.Bounds = []float64{lo, hi}
	default:
		st.Options = w.options(t)
	}
	return st
}

func (w *Widget) value(t *incident.Table, sel Selections) []string {
	if v, ok := sel[w.Key]; ok {
		return v
	}
	return w.defaultValue(t)
}

// predicate turns the widget's effective value into a filter; nil means no filter
func (w *Widget) predicate(t *incident.Table, sel Selections) (filter.Predicate, error) {
	val := w.value(t, sel)
	switch w.Kind {
	case KindRange:
		lo, hi, err := parseRange(val)
		if err != nil {
			return nil, errors.InvalidInput(fmt.Sprintf("widget %s: %v", w.Key, err))
		}
		return filter.Range{Field: w.field, Lo: lo, Hi: hi}, nil
	case KindSelect:
		if len(val) > 1 {
			return nil, errors.InvalidInput(fmt.Sprintf("widget %s: select takes one value, got %d", w.Key, len(val)))
		}
		if len(val) == 0 {
			return nil, nil
		}
		return filter.Select(w.field, val[0]), nil
	case KindMultiSelect:
		return filter.MultiSelect(w.field, splitList(val), w.EmptyMeansAll), nil
	}
	return nil, nil
}

// maxBins reads a bins widget
func (w *Widget) maxBins(t *incident.Table, sel Selections) (int, error) {
	val := w.value(t, sel)
	if len(val) != 1 {
		return 0, errors.InvalidInput(fmt.Sprintf("widget %s: expected one bin count", w.Key))
	}
	n, err := strconv.Atoi(strings.TrimSpace(val[0]))
	if err != nil || n < 1 {
		return 0, errors.InvalidInput(fmt.Sprintf("widget %s: bin count %q must be a positive integer", w.Key, val[0]))
	}
	return n, nil
}

// parseRange accepts ["lo,hi"] or ["lo", "hi"]
func parseRange(val []string) (float64, float64, error) {
	parts := splitList(val)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("range needs two bounds, got %v", val)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad lower bound %q", parts[0])
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad upper bound %q", parts[1])
	}
	return lo, hi, nil
}

// splitList expands comma-separated values
func splitList(val []string) []string {
	var out []string
	for _, v := range val {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func fmtNum(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
