package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"gundash/internal/config"
	"gundash/internal/container"
	"gundash/internal/errors"
	"gundash/internal/testkit"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/xuri/excelize/v2"
)

const testRows = 600

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gen := testkit.DefaultConfig()
	gen.Rows = testRows
	ds, err := testkit.Generate(gen)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "guns_cleaned.csv")
	require.NoError(t, testkit.WriteCSV(path, ds))

	cfg := &config.Config{
		Data:  config.DataConfig{Path: path},
		Model: config.DefaultModelConfig(),
	}
	cfg.Model.MaxIter = 200

	c, err := container.New(cfg)
	require.NoError(t, err)
	require.NoError(t, c.Init(t.Context()))
	t.Cleanup(func() { c.Shutdown(t.Context()) })

	s, err := NewServer(c)
	require.NoError(t, err)
	return s
}

func do(t *testing.T, s *Server, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestPagesRender(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Gun Violence in America Analysis")
	assert.Contains(t, w.Body.String(), `<h2 id="acknowledgments">Acknowledgments</h2>`)
	assert.Contains(t, w.Body.String(), `target="_blank"`)
	assert.Contains(t, w.Body.String(), `data-page="main"`)

	w = do(t, s, http.MethodGet, "/insights", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `data-page="insights"`)

	w = do(t, s, http.MethodGet, "/model", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<option>White</option>")
	assert.Contains(t, w.Body.String(), "<option>Male</option>")
}

func TestStaticAssets(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodGet, "/static/js/dashboard.js", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "vegaEmbed")
}

func TestChartList(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		page  string
		count int
	}{
		{"main", 6},
		{"insights", 6},
		{"model", 1},
		{"", 13},
	}
	for _, tt := range tests {
		t.Run("page="+tt.page, func(t *testing.T) {
			w := do(t, s, http.MethodGet, "/api/charts?page="+tt.page, nil)
			require.Equal(t, http.StatusOK, w.Code)
			assert.EqualValues(t, tt.count, gjson.Get(w.Body.String(), "charts.#").Int())
		})
	}

	w := do(t, s, http.MethodGet, "/api/charts?page=main", nil)
	first := gjson.Get(w.Body.String(), "charts.0")
	assert.Equal(t, "age_race_histogram", first.Get("id").String())
	assert.Equal(t, "race_options", first.Get("widgets.0.key").String())
	assert.Equal(t, "30", first.Get("widgets.2.value.0").String())
}

func TestChartListRejectsUnknownPage(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodGet, "/api/charts?page=nowhere", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_INPUT", gjson.Get(w.Body.String(), "code").String())
}

func TestChartSpec(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/api/charts/age_race_histogram?race_options=White&age_range_slider=0,30", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Equal(t, "bar", gjson.Get(body, "spec.mark.type").String())
	assert.True(t, gjson.Get(body, "spec.$schema").Exists())
	for _, rec := range gjson.Get(body, "spec.data.values").Array() {
		assert.Equal(t, "White", rec.Get("race").String())
		assert.LessOrEqual(t, rec.Get("bin_start").Float(), 30.0)
	}
}

func TestChartErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"unknown chart", "/api/charts/nope", http.StatusNotFound},
		{"bad range", "/api/charts/age_race_histogram?age_range_slider=young", http.StatusBadRequest},
		{"bad bins", "/api/charts/age_race_histogram?bin_size_slider=0", http.StatusBadRequest},
		{"unknown export", "/api/charts/nope/export", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodGet, tt.target, nil)
			assert.Equal(t, tt.status, w.Code)
			assert.NotEmpty(t, gjson.Get(w.Body.String(), "error").String())
		})
	}
}

func TestChartAggregateTotalsMatchRows(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodGet, "/api/charts/intent_bar/aggregate", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	sum := int64(0)
	for _, rec := range gjson.Get(body, "records").Array() {
		sum += rec.Get("count").Int()
	}
	assert.Equal(t, gjson.Get(body, "total").Int(), sum)
	cols := gjson.Get(body, "columns").Array()
	require.NotEmpty(t, cols)
	assert.Equal(t, "count", cols[len(cols)-1].String())
}

func TestChartExport(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodGet, "/api/charts/intent_bar/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "intent_bar.xlsx")

	f, err := excelize.OpenReader(w.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("intent_bar")
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, "count", rows[0][len(rows[0])-1])
}

func TestDatasetInfo(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodGet, "/api/dataset/info", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, testRows, gjson.Get(w.Body.String(), "rows").Int())
	assert.True(t, gjson.Get(w.Body.String(), `columns.#(field=="age").summary.mean`).Exists())
}

func TestModelLifecycle(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/api/model/latest", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodPost, "/api/model/train", map[string]any{"age": 30, "sex": "Male", "race": "White"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := w.Body.String()
	acc := gjson.Get(body, "accuracy").Float()
	assert.True(t, acc >= 0 && acc <= 1)
	assert.Contains(t, gjson.Get(body, "report").String(), "weighted avg")
	assert.False(t, gjson.Get(body, "reused").Bool())
	id := gjson.Get(body, "model_id").String()

	w = do(t, s, http.MethodPost, "/api/model/train", map[string]any{"age": 30, "sex": "Male", "race": "White"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gjson.Get(w.Body.String(), "reused").Bool())
	assert.Equal(t, id, gjson.Get(w.Body.String(), "model_id").String())

	w = do(t, s, http.MethodGet, "/api/model/latest", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, gjson.Get(w.Body.String(), "id").String())

	w = do(t, s, http.MethodPost, "/api/model/predict", map[string]any{"age": 45, "sex": "M", "race": "White"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body = w.Body.String()
	assert.NotEmpty(t, gjson.Get(body, "intent").String())
	total := 0.0
	gjson.Get(body, "probabilities").ForEach(func(_, v gjson.Result) bool {
		total += v.Float()
		return true
	})
	assert.InDelta(t, 1.0, total, 1e-9)

	w = do(t, s, http.MethodGet, "/api/models?limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, gjson.Get(w.Body.String(), "models.#").Int())

	w = do(t, s, http.MethodDelete, "/api/models/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, s, http.MethodDelete, "/api/models/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, s, http.MethodDelete, "/api/models/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodGet, "/api/models", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, gjson.Get(w.Body.String(), "models.#").Int())
}

func TestModelValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		target string
		body   any
		status int
	}{
		{"age out of range", "/api/model/train", map[string]any{"age": 150, "sex": "Male", "race": "White"}, http.StatusBadRequest},
		{"missing race", "/api/model/train", map[string]any{"age": 20, "sex": "Male"}, http.StatusBadRequest},
		{"bad model id", "/api/model/predict", map[string]any{"model_id": "x", "age": 20, "sex": "M", "race": "White"}, http.StatusBadRequest},
		{"no model yet", "/api/model/predict", map[string]any{"age": 20, "sex": "M", "race": "White"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, tt.target, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/model/train", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestModelPlot(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodGet, "/api/model/plot.png", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{errors.InvalidInput("bad"), http.StatusBadRequest},
		{errors.ValidationError("bad"), http.StatusBadRequest},
		{errors.NotFound("chart", nil), http.StatusNotFound},
		{errors.DataError("missing column", nil), http.StatusInternalServerError},
		{errors.DatabaseError("save", fmt.Errorf("closed")), http.StatusInternalServerError},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, errorStatus(tt.err), tt.err.Error())
	}
}
