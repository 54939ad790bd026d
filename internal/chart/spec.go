// Package chart builds declarative Vega-Lite specifications from aggregates.
package chart

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SchemaURL is the Vega-Lite schema every spec declares
const SchemaURL = "https://vega.github.io/schema/vega-lite/v5.json"

// Spec is a Vega-Lite top-level unit specification
type Spec struct {
	Schema   string   `json:"$schema"`
	Title    string   `json:"title,omitempty"`
	Width    int      `json:"width,omitempty"`
	Height   int      `json:"height,omitempty"`
	Data     Data     `json:"data"`
	Mark     Mark     `json:"mark"`
	Encoding Encoding `json:"encoding"`
	Params   []Param  `json:"params,omitempty"`
}

// Data carries inline values
type Data struct {
	Values []map[string]any `json:"values"`
}

// Mark is the mark definition object
type Mark struct {
	Type        string   `json:"type" yaml:"type"`
	Opacity     *float64 `json:"opacity,omitempty" yaml:"opacity"`
	InnerRadius *float64 `json:"innerRadius,omitempty" yaml:"inner_radius"`
	Size        *float64 `json:"size,omitempty" yaml:"size"`
	Color       string   `json:"color,omitempty" yaml:"color"`
	Point       *bool    `json:"point,omitempty" yaml:"point"`
	Interpolate string   `json:"interpolate,omitempty" yaml:"interpolate"`
}

// Encoding holds the channels used by the dashboard charts
type Encoding struct {
	X       *Channel  `json:"x,omitempty" yaml:"x"`
	X2      *Channel  `json:"x2,omitempty" yaml:"x2"`
	Y       *Channel  `json:"y,omitempty" yaml:"y"`
	Theta   *Channel  `json:"theta,omitempty" yaml:"theta"`
	Color   *Channel  `json:"color,omitempty" yaml:"color"`
	XOffset *Channel  `json:"xOffset,omitempty" yaml:"x_offset"`
	Tooltip []Channel `json:"tooltip,omitempty" yaml:"-"`
}

// Channel is one encoding channel definition
type Channel struct {
	Field  string  `json:"field,omitempty" yaml:"field"`
	Type   string  `json:"type,omitempty" yaml:"type"`
	Title  string  `json:"title,omitempty" yaml:"title"`
	Bin    any     `json:"bin,omitempty" yaml:"-"`
	Stack  any     `json:"stack,omitempty" yaml:"-"`
	Sort   string  `json:"sort,omitempty" yaml:"sort"`
	Scale  *Scale  `json:"scale,omitempty" yaml:"scale"`
	Legend *Legend `json:"legend,omitempty" yaml:"legend"`

	// NoLegend renders "legend": null
	NoLegend bool `json:"-" yaml:"no_legend"`
	// Unstacked renders "stack": null
	Unstacked bool `json:"-" yaml:"unstacked"`
}

// MarshalJSON emits explicit nulls for disabled legend and stack
func (c Channel) MarshalJSON() ([]byte, error) {
	type plain Channel
	raw, err := json.Marshal(plain(c))
	if err != nil || (!c.NoLegend && !c.Unstacked) {
		return raw, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	if c.NoLegend {
		m["legend"] = nil
	}
	if c.Unstacked {
		m["stack"] = nil
	}
	return json.Marshal(m)
}

// Scale is the scale definition
type Scale struct {
	Scheme string `json:"scheme,omitempty" yaml:"scheme"`
	Domain []any  `json:"domain,omitempty" yaml:"-"`
}

// Legend configures legend placement
type Legend struct {
	Orient string `json:"orient,omitempty" yaml:"orient"`
}

// Param is a selection parameter
type Param struct {
	Name   string         `json:"name"`
	Select map[string]any `json:"select"`
	Bind   string         `json:"bind,omitempty"`
}

// vegaTypes maps shorthand suffixes to encoding types
var vegaTypes = map[string]string{
	"Q": "quantitative",
	"N": "nominal",
	"O": "ordinal",
	"T": "temporal",
}

// ParseShorthand parses "field:Q" style references. The type suffix is optional.
func ParseShorthand(s string) (Channel, error) {
	field, suffix, found := strings.Cut(strings.TrimSpace(s), ":")
	if field == "" {
		return Channel{}, fmt.Errorf("empty field in %q", s)
	}
	ch := Channel{Field: field}
	if found {
		typ, ok := vegaTypes[suffix]
		if !ok {
			return Channel{}, fmt.Errorf("unknown type %q in %q", suffix, s)
		}
		ch.Type = typ
	}
	return ch, nil
}
