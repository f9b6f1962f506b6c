package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tourstat/compass/internal/app"
	"github.com/tourstat/compass/internal/domain/model"
	"github.com/tourstat/compass/internal/domain/similarity"
)

// stubProvider serves canned results.
type stubProvider struct {
	results map[string]*app.Result
	order   []string
}

func (p *stubProvider) Result(reportID string) (*app.Result, bool) {
	res, ok := p.results[reportID]
	return res, ok
}

func (p *stubProvider) ReportIDs() []string { return p.order }

func newTestMux(p Provider) *http.ServeMux {
	mux := http.NewServeMux()
	NewServer(p).Register(mux)
	return mux
}

func sampleResult() *app.Result {
	return &app.Result{
		RunID:    "run-1",
		ReportID: "market-positioning",
		Schemes: []app.SchemeResult{
			{
				SchemeID: "opportunity",
				Rows: []model.Row{
					{
						EntityID:   "FRA",
						Rank:       1,
						Score:      model.Some(0.9),
						Bucket:     1,
						Label:      "leader",
						Indicators: map[string]model.Scalar{"growth": model.Some(0.04)},
						Normalized: map[string]model.Scalar{"growth": model.Some(1.0)},
					},
					{
						EntityID:   "FJI",
						Score:      model.Null(),
						Indicators: map[string]model.Scalar{"growth": model.Null()},
						Normalized: map[string]model.Scalar{"growth": model.Null()},
					},
				},
			},
		},
		Excluded: []string{"VUT"},
		Peers:    map[string][]similarity.Peer{"FRA": {{EntityID: "FJI", Distance: 0.2}}},
	}
}

func TestHealthz(t *testing.T) {
	mux := newTestMux(&stubProvider{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestListReports(t *testing.T) {
	p := &stubProvider{order: []string{"market-positioning", "risk-return"}}
	mux := newTestMux(p)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"reports":["market-positioning","risk-return"]}`, rec.Body.String())
}

func TestGetReport(t *testing.T) {
	p := &stubProvider{
		results: map[string]*app.Result{"market-positioning": sampleResult()},
		order:   []string{"market-positioning"},
	}
	mux := newTestMux(p)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/market-positioning", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		RunID    string   `json:"run_id"`
		ReportID string   `json:"report_id"`
		Excluded []string `json:"excluded"`
		Schemes  []struct {
			SchemeID string `json:"scheme_id"`
			Rows     []struct {
				EntityID string              `json:"entity_id"`
				Rank     int                 `json:"rank"`
				Score    *float64            `json:"score"`
				Label    string              `json:"label"`
				Growth   map[string]*float64 `json:"indicators"`
			} `json:"rows"`
		} `json:"schemes"`
		Peers map[string][]struct {
			EntityID string  `json:"entity_id"`
			Distance float64 `json:"distance"`
		} `json:"peers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "run-1", body.RunID)
	assert.Equal(t, []string{"VUT"}, body.Excluded)
	require.Len(t, body.Schemes, 1)
	rows := body.Schemes[0].Rows
	require.Len(t, rows, 2)

	require.NotNil(t, rows[0].Score)
	assert.InDelta(t, 0.9, *rows[0].Score, 1e-9)
	assert.Equal(t, "leader", rows[0].Label)

	// Null scalars must encode as JSON null, not zero.
	assert.Nil(t, rows[1].Score)
	assert.Zero(t, rows[1].Rank)
	require.Contains(t, rows[1].Growth, "growth")
	assert.Nil(t, rows[1].Growth["growth"])

	require.Contains(t, body.Peers, "FRA")
	assert.Equal(t, "FJI", body.Peers["FRA"][0].EntityID)
}

func TestGetReport_NotFound(t *testing.T) {
	mux := newTestMux(&stubProvider{results: map[string]*app.Result{}})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/absent", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_found", body.Code)
}

func TestGetReport_BadPath(t *testing.T) {
	mux := newTestMux(&stubProvider{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/a/b", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	mux := newTestMux(&stubProvider{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reports", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	mux := newTestMux(&stubProvider{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Body.String())
}
