// Package plot renders static PNG charts with gonum/plot.
package plot

import (
	"fmt"
	"io"
	"slices"

	"gundash/domain/incident"
	"gundash/internal/aggregate"
	"gundash/internal/errors"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// CountPlot describes a grouped bar chart of row counts: one group per X
// category, one bar per Hue category. Categories keep first-seen order.
type CountPlot struct {
	Title  string
	X      incident.Field
	Hue    incident.Field
	XLabel string
	YLabel string
	Width  vg.Length
	Height vg.Length
}

// IntentByRace is the trainer page's Intent vs. Race count plot
func IntentByRace() CountPlot {
	return CountPlot{
		Title:  "Intent vs. Race",
		X:      incident.FieldIntent,
		Hue:    incident.FieldRace,
		XLabel: "Intent",
		YLabel: "Count",
		Width:  8 * vg.Inch,
		Height: 5 * vg.Inch,
	}
}

// Counts returns the category orders and a hue-by-category count matrix.
// Rows with a null X or Hue are skipped.
func (cp CountPlot) Counts(t *incident.Table) (cats, hues []string, counts [][]float64, err error) {
	if err := t.Require(cp.X, cp.Hue); err != nil {
		return nil, nil, nil, errors.DataError("count plot", err)
	}
	agg := aggregate.GroupCount(t.All(), []incident.Field{cp.X, cp.Hue}, aggregate.OrderFirstSeen)

	for _, b := range agg.Buckets {
		x, h := b.Keys[0], b.Keys[1]
		if x == "" || h == "" {
			continue
		}
		if !slices.Contains(cats, x) {
			cats = append(cats, x)
		}
		if !slices.Contains(hues, h) {
			hues = append(hues, h)
		}
	}

	counts = make([][]float64, len(hues))
	for i := range counts {
		counts[i] = make([]float64, len(cats))
	}
	for _, b := range agg.Buckets {
		ci := slices.Index(cats, b.Keys[0])
		hi := slices.Index(hues, b.Keys[1])
		if ci < 0 || hi < 0 {
			continue
		}
		counts[hi][ci] += float64(b.Count)
	}
	return cats, hues, counts, nil
}

// Render draws the plot for t and writes it to w as PNG
func (cp CountPlot) Render(w io.Writer, t *incident.Table) error {
	cats, hues, counts, err := cp.Counts(t)
	if err != nil {
		return err
	}
	if len(cats) == 0 {
		return errors.DataError("count plot", fmt.Errorf("no rows with both %s and %s", cp.X, cp.Hue))
	}

	p := plot.New()
	p.Title.Text = cp.Title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = cp.XLabel
	p.Y.Label.Text = cp.YLabel
	p.Legend.Top = true

	barWidth := vg.Points(60 / float64(max(len(hues), 1)))
	offset := -barWidth * vg.Length(len(hues)-1) / 2
	for i, hue := range hues {
		bars, err := plotter.NewBarChart(plotter.Values(counts[i]), barWidth)
		if err != nil {
			return errors.Wrapf(err, "bar chart for %s", hue)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(i)
		bars.Offset = offset + barWidth*vg.Length(i)
		p.Add(bars)
		p.Legend.Add(hue, bars)
	}
	p.Add(plotter.NewGrid())
	p.NominalX(cats...)

	width, height := cp.Width, cp.Height
	if width == 0 {
		width = 8 * vg.Inch
	}
	if height == 0 {
		height = 5 * vg.Inch
	}
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return errors.Wrap(err, "failed to create png writer")
	}
	_, err = wt.WriteTo(w)
	return err
}
