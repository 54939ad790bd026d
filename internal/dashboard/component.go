package dashboard

import (
	"gundash/domain/incident"
	"gundash/internal/aggregate"
	"gundash/internal/chart"
	"gundash/internal/errors"
	"gundash/internal/filter"
)

const defaultMaxBins = 30

// Component is one filter-chart pair built from a Definition
type Component struct {
	def      Definition
	widgets  map[string]*Widget
	groupBy  []incident.Field
	binField incident.Field
	order    aggregate.Order
	tooltip  []chart.Channel
}

// Result is a rendered component
type Result struct {
	ID        string              `json:"id"`
	Spec      *chart.Spec         `json:"spec"`
	Aggregate aggregate.Aggregate `json:"-"`
	Filters   filter.Set          `json:"-"`
	Widgets   []WidgetState       `json:"widgets"`
	// Rows is the size of the filtered view before aggregation
	Rows int `json:"rows"`
}

// Definition returns the catalog entry
func (c *Component) Definition() Definition { return c.def }

// ID returns the chart id
func (c *Component) ID() string { return c.def.ID }

// Title returns the chart title
func (c *Component) Title() string { return c.def.Title }

// Fields lists every dataset column the component reads
func (c *Component) Fields() []incident.Field {
	seen := make(map[incident.Field]bool)
	var out []incident.Field
	add := func(f incident.Field) {
		if f != "" && !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	for _, w := range c.def.Widgets {
		add(w.field)
	}
	for _, f := range c.groupBy {
		add(f)
	}
	add(c.binField)
	return out
}

// Widgets resolves every widget's options and value against t
func (c *Component) Widgets(t *incident.Table, sel Selections) []WidgetState {
	out := make([]WidgetState, 0, len(c.def.Widgets))
	for i := range c.def.Widgets {
		out = append(out, c.def.Widgets[i].State(t, sel))
	}
	return out
}

// Filters converts selections into the component's predicate set
func (c *Component) Filters(t *incident.Table, sel Selections) (filter.Set, error) {
	preds := make([]filter.Predicate, 0, len(c.def.Widgets))
	for i := range c.def.Widgets {
		p, err := c.def.Widgets[i].predicate(t, sel)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	return filter.Compact(preds...), nil
}

// Render filters t by the selections, aggregates the result and binds it to
// a fresh chart spec. The table is never modified.
func (c *Component) Render(t *incident.Table, sel Selections) (*Result, error) {
	if t == nil {
		return nil, errors.DataError("no dataset loaded", nil)
	}
	if err := t.Require(c.Fields()...); err != nil {
		return nil, errors.DataError("dataset is missing a column for chart "+c.def.ID, err)
	}

	preds, err := c.Filters(t, sel)
	if err != nil {
		return nil, err
	}
	view := preds.Apply(t.All())

	var agg aggregate.Aggregate
	if c.def.Aggregate.Bin != nil {
		maxBins := c.def.Aggregate.Bin.MaxBins
		if p := c.def.Aggregate.Bin.Param; p != "" {
			if maxBins, err = c.widgets[p].maxBins(t, sel); err != nil {
				return nil, err
			}
		}
		if maxBins <= 0 {
			maxBins = defaultMaxBins
		}
		agg = aggregate.BinnedCount(view, c.binField, maxBins, c.groupBy, c.order)
	} else {
		agg = aggregate.GroupCount(view, c.groupBy, c.order)
	}

	enc := c.def.Encoding
	enc.Tooltip = c.tooltip
	b := chart.New(c.def.Mark).
		Title(c.def.Title).
		Size(c.def.Width, c.def.Height).
		Values(agg.Records()).
		Encode(enc)
	if c.binField != "" {
		b.BinnedX(aggregate.BinStartField, aggregate.BinEndField, agg.BinStep)
	}
	if c.def.YDomainFromMax {
		b.YDomain(0, agg.Max())
	}
	if c.def.Interactive {
		b.Interactive()
	}

	return &Result{
		ID:        c.def.ID,
		Spec:      b.Spec(),
		Aggregate: agg,
		Filters:   preds,
		Widgets:   c.Widgets(t, sel),
		Rows:      view.Len(),
	}, nil
}
