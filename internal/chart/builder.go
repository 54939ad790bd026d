package chart

// Builder assembles a Spec step by step. Every call returns the builder.
type Builder struct {
	spec Spec
}

// New starts a spec with the given mark
func New(mark Mark) *Builder {
	return &Builder{spec: Spec{Schema: SchemaURL, Mark: mark, Data: Data{Values: []map[string]any{}}}}
}

// Title sets the chart title
func (b *Builder) Title(title string) *Builder {
	b.spec.Title = title
	return b
}

// Size sets width and height in pixels; zero leaves the renderer default
func (b *Builder) Size(width, height int) *Builder {
	b.spec.Width = width
	b.spec.Height = height
	return b
}

// Values binds inline data rows
func (b *Builder) Values(rows []map[string]any) *Builder {
	if rows == nil {
		rows = []map[string]any{}
	}
	b.spec.Data.Values = rows
	return b
}

// Encode sets the encoding. Channels are copied so later edits do not leak
// back into the caller's template.
func (b *Builder) Encode(enc Encoding) *Builder {
	b.spec.Encoding = Encoding{
		X:       cloneChannel(enc.X),
		X2:      cloneChannel(enc.X2),
		Y:       cloneChannel(enc.Y),
		Theta:   cloneChannel(enc.Theta),
		Color:   cloneChannel(enc.Color),
		XOffset: cloneChannel(enc.XOffset),
		Tooltip: append([]Channel(nil), enc.Tooltip...),
	}
	return b
}

// BinnedX marks x as pre-binned data: x reads start, x2 reads end
func (b *Builder) BinnedX(startField, endField string, step float64) *Builder {
	if b.spec.Encoding.X == nil {
		b.spec.Encoding.X = &Channel{Type: "quantitative"}
	}
	b.spec.Encoding.X.Field = startField
	b.spec.Encoding.X.Bin = map[string]any{"binned": true, "step": step}
	b.spec.Encoding.X2 = &Channel{Field: endField}
	return b
}

// YDomain pins the y scale domain
func (b *Builder) YDomain(lo, hi any) *Builder {
	if b.spec.Encoding.Y == nil {
		return b
	}
	if b.spec.Encoding.Y.Scale == nil {
		b.spec.Encoding.Y.Scale = &Scale{}
	}
	b.spec.Encoding.Y.Scale.Domain = []any{lo, hi}
	return b
}

// Interactive adds an interval selection bound to the scales (pan and zoom)
func (b *Builder) Interactive() *Builder {
	b.spec.Params = append(b.spec.Params, Param{
		Name:   "grid",
		Select: map[string]any{"type": "interval"},
		Bind:   "scales",
	})
	return b
}

// Spec returns the finished spec
func (b *Builder) Spec() *Spec {
	out := b.spec
	return &out
}

func cloneChannel(c *Channel) *Channel {
	if c == nil {
		return nil
	}
	cp := *c
	if c.Scale != nil {
		s := *c.Scale
		s.Domain = append([]any(nil), c.Scale.Domain...)
		cp.Scale = &s
	}
	if c.Legend != nil {
		l := *c.Legend
		cp.Legend = &l
	}
	return &cp
}
