package ui

import (
	"bytes"
	"fmt"
	"net/http"

	"gundash/adapters/excel"
	"gundash/internal/dashboard"
	"gundash/internal/errors"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// chartSummary is one entry of the catalog listing
type chartSummary struct {
	ID          string                  `json:"id"`
	Page        string                  `json:"page"`
	Title       string                  `json:"title"`
	Width       int                     `json:"width,omitempty"`
	Height      int                     `json:"height,omitempty"`
	Interactive bool                    `json:"interactive,omitempty"`
	Widgets     []dashboard.WidgetState `json:"widgets"`
	Error       string                  `json:"error,omitempty"`
}

// handleDatasetInfo returns row counts and per-column profiles
func (s *Server) handleDatasetInfo(c *gin.Context) {
	t, ok := s.table(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.profiler.Profile(t))
}

// handleChartList lists catalog charts with their resolved widget states.
// A chart whose columns are absent is listed with its error so the page can
// show it in place.
func (s *Server) handleChartList(c *gin.Context) {
	page := c.Query("page")
	switch page {
	case "", dashboard.PageMain, dashboard.PageInsights, dashboard.PageModel:
	default:
		respondError(c, errors.InvalidInput(fmt.Sprintf("unknown page %q", page)))
		return
	}

	t, ok := s.table(c)
	if !ok {
		return
	}

	comps := s.catalog.Components(page)
	charts := make([]chartSummary, 0, len(comps))
	for _, comp := range comps {
		def := comp.Definition()
		item := chartSummary{
			ID:          def.ID,
			Page:        def.Page,
			Title:       def.Title,
			Width:       def.Width,
			Height:      def.Height,
			Interactive: def.Interactive,
		}
		if err := t.Require(comp.Fields()...); err != nil {
			item.Error = err.Error()
			item.Widgets = []dashboard.WidgetState{}
		} else {
			item.Widgets = comp.Widgets(t, nil)
		}
		charts = append(charts, item)
	}
	c.JSON(http.StatusOK, gin.H{"page": page, "charts": charts})
}

// render resolves the chart and renders it for the request's query selections
func (s *Server) render(c *gin.Context) (*dashboard.Result, bool) {
	comp, err := s.catalog.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	t, ok := s.table(c)
	if !ok {
		return nil, false
	}
	res, err := comp.Render(t, dashboard.SelectionsFromQuery(c.Request.URL.Query()))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return res, true
}

// handleChartSpec returns the Vega-Lite spec plus widget states
func (s *Server) handleChartSpec(c *gin.Context) {
	res, ok := s.render(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, res)
}

// handleChartAggregate returns the aggregate rows behind a chart
func (s *Server) handleChartAggregate(c *gin.Context) {
	res, ok := s.render(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":      res.ID,
		"columns": res.Aggregate.Columns(),
		"records": res.Aggregate.Records(),
		"total":   res.Aggregate.Total(),
		"dropped": res.Aggregate.Dropped,
		"rows":    res.Rows,
	})
}

// handleChartExport downloads the aggregate as a workbook
func (s *Server) handleChartExport(c *gin.Context) {
	res, ok := s.render(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	sheet := excel.Sheet{Name: sheetName(res.ID), Headers: res.Aggregate.Columns(), Rows: res.Aggregate.Rows()}
	if err := excel.WriteXLSX(&buf, sheet); err != nil {
		respondError(c, errors.Wrap(err, "failed to write workbook"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, res.ID))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// sheetName trims an id to the 31 characters a worksheet name allows
func sheetName(id string) string {
	if len(id) > 31 {
		return id[:31]
	}
	return id
}
