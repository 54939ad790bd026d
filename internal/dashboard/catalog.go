// Package dashboard turns declarative chart definitions into filter-chart
// components: widget selections become filter predicates, the filtered view
// is aggregated, and the aggregate is bound to a Vega-Lite spec.
package dashboard

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"slices"

	"gundash/domain/core"
	"gundash/domain/incident"
	"gundash/internal/aggregate"
	"gundash/internal/chart"
	"gundash/internal/errors"

	"gopkg.in/yaml.v3"
)

//go:embed charts.yaml
var defaultCatalogYAML []byte

// Pages group charts for the HTML views
const (
	PageMain     = "main"
	PageInsights = "insights"
	PageModel    = "model"
)

// Definition is one catalog entry
type Definition struct {
	ID             string         `yaml:"id" json:"id"`
	Page           string         `yaml:"page" json:"page"`
	Title          string         `yaml:"title" json:"title"`
	Width          int            `yaml:"width" json:"width,omitempty"`
	Height         int            `yaml:"height" json:"height,omitempty"`
	Interactive    bool           `yaml:"interactive" json:"interactive,omitempty"`
	YDomainFromMax bool           `yaml:"y_domain_from_max" json:"-"`
	Mark           chart.Mark     `yaml:"mark" json:"mark"`
	Widgets        []Widget       `yaml:"widgets" json:"widgets"`
	Aggregate      AggregateDef   `yaml:"aggregate" json:"aggregate"`
	Encoding       chart.Encoding `yaml:"encoding" json:"-"`
	Tooltip        []string       `yaml:"tooltip" json:"-"`
}

// AggregateDef declares the group-by projection
type AggregateDef struct {
	GroupBy []string `yaml:"group_by" json:"group_by"`
	Bin     *BinDef  `yaml:"bin" json:"bin,omitempty"`
	Order   string   `yaml:"order" json:"order,omitempty"`
}

// BinDef bins a numeric field. MaxBins is fixed unless Param names a bins widget.
type BinDef struct {
	Field   string `yaml:"field" json:"field"`
	MaxBins int    `yaml:"max_bins" json:"max_bins,omitempty"`
	Param   string `yaml:"param" json:"param,omitempty"`
}

// Catalog is the validated, ordered set of chart components
type Catalog struct {
	order      []string
	components map[string]*Component
}

// DefaultCatalog parses the embedded catalog
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(bytes.NewReader(defaultCatalogYAML))
}

// LoadCatalog parses and validates a YAML catalog
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var defs []Definition
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&defs); err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "failed to parse chart catalog")
	}

	cat := &Catalog{components: make(map[string]*Component, len(defs))}
	for i := range defs {
		c, err := newComponent(defs[i])
		if err != nil {
			return nil, errors.Wrapf(err, "chart %q", defs[i].ID)
		}
		if _, dup := cat.components[c.def.ID]; dup {
			return nil, errors.ConfigInvalid(fmt.Sprintf("duplicate chart id %q", c.def.ID))
		}
		cat.components[c.def.ID] = c
		cat.order = append(cat.order, c.def.ID)
	}
	return cat, nil
}

// Get returns the component for id
func (c *Catalog) Get(id string) (*Component, error) {
	comp, ok := c.components[id]
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("chart %q", id), core.ErrChartNotFound)
	}
	return comp, nil
}

// Components returns all components in catalog order, optionally limited to a page
func (c *Catalog) Components(page string) []*Component {
	out := make([]*Component, 0, len(c.order))
	for _, id := range c.order {
		comp := c.components[id]
		if page == "" || comp.def.Page == page {
			out = append(out, comp)
		}
	}
	return out
}

// IDs returns every chart id in catalog order
func (c *Catalog) IDs() []string {
	return slices.Clone(c.order)
}

// newComponent validates a definition and resolves its field references
func newComponent(def Definition) (*Component, error) {
	if def.ID == "" {
		return nil, errors.ConfigInvalid("chart id is required")
	}
	switch def.Page {
	case PageMain, PageInsights, PageModel:
	default:
		return nil, errors.ConfigInvalid(fmt.Sprintf("unknown page %q", def.Page))
	}
	if def.Mark.Type == "" {
		return nil, errors.ConfigInvalid("mark type is required")
	}

	comp := &Component{def: def, widgets: make(map[string]*Widget, len(def.Widgets))}

	for i := range def.Widgets {
		w := &comp.def.Widgets[i]
		if err := w.validate(); err != nil {
			return nil, err
		}
		if _, dup := comp.widgets[w.Key]; dup {
			return nil, errors.ConfigInvalid(fmt.Sprintf("duplicate widget key %q", w.Key))
		}
		comp.widgets[w.Key] = w
	}

	for _, name := range def.Aggregate.GroupBy {
		f, ok := incident.ParseField(name)
		if !ok {
			return nil, errors.ConfigInvalid(fmt.Sprintf("unknown group_by field %q", name))
		}
		comp.groupBy = append(comp.groupBy, f)
	}

	order, err := aggregate.ParseOrder(def.Aggregate.Order)
	if err != nil {
		return nil, errors.ConfigInvalid(err.Error())
	}
	comp.order = order

	if b := def.Aggregate.Bin; b != nil {
		f, ok := incident.ParseField(b.Field)
		if !ok || !f.IsNumeric() {
			return nil, errors.ConfigInvalid(fmt.Sprintf("bin field %q must be numeric", b.Field))
		}
		comp.binField = f
		if b.Param != "" {
			w, ok := comp.widgets[b.Param]
			if !ok || w.Kind != KindBins {
				return nil, errors.ConfigInvalid(fmt.Sprintf("bin param %q is not a bins widget", b.Param))
			}
		} else if b.MaxBins <= 0 {
			return nil, errors.ConfigInvalid("bin needs max_bins or param")
		}
	}

	for _, ref := range def.Tooltip {
		ch, err := chart.ParseShorthand(ref)
		if err != nil {
			return nil, errors.ConfigInvalid(err.Error())
		}
		comp.tooltip = append(comp.tooltip, ch)
	}
	return comp, nil
}
