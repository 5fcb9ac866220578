package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/etnz/allocation"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPortfolio() (*allocation.Portfolio, error) {
	p := allocation.NewPortfolio("JPY")
	p.Market().Upsert(allocation.MarketEntry{Ticker: "AAA", Currency: "USD", Price: allocation.V(100)})
	p.Market().Upsert(allocation.MarketEntry{Ticker: "CASH", Currency: "JPY", Price: allocation.V(1)})
	if err := p.FX().Set("USD", allocation.V(150)); err != nil {
		return nil, err
	}
	aaa := allocation.NewHolding("AAA")
	aaa.Quantity = allocation.V(2)
	aaa.TargetWeight = allocation.V(60)
	cash := allocation.NewHolding("CASH")
	cash.Quantity = allocation.V(30000)
	cash.TargetWeight = allocation.V(40)
	return p, p.ReplaceHoldings([]*allocation.Holding{aaa, cash})
}

func newTestServer(load func() (*allocation.Portfolio, error)) *Server {
	return New(Config{Addr: ":0", Load: load, Log: zerolog.Nop()})
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestServer(testPortfolio), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestIndex(t *testing.T) {
	rec := get(t, newTestServer(testPortfolio), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Portfolio allocation in JPY</h1>")
	assert.Contains(t, body, "<table>")
	assert.Contains(t, body, `<img src="/chart/allocation.png"`)
}

func TestReport(t *testing.T) {
	rec := get(t, newTestServer(testPortfolio), "/api/report")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var report struct {
		Base   string `json:"base"`
		Rows   []map[string]any
		Totals map[string]any
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "JPY", report.Base)
	require.Len(t, report.Rows, 2)
	assert.Equal(t, 60000.0, report.Totals["value"])
	assert.Equal(t, 50.0, report.Rows[0]["actualWeightPct"])
	assert.Equal(t, -10.0, report.Rows[0]["deviationPct"])
	assert.Equal(t, "Underweight", report.Rows[0]["status"])
}

func TestRow(t *testing.T) {
	s := newTestServer(testPortfolio)

	rec := get(t, s, "/api/report/AAA")
	require.Equal(t, http.StatusOK, rec.Code)
	var row map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &row))
	assert.Equal(t, 30000.0, row["valueBase"])

	rec = get(t, s, "/api/report/ZZZ")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "no holding")
}

func TestDocuments(t *testing.T) {
	s := newTestServer(testPortfolio)

	rec := get(t, s, "/api/fx")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"JPY":1,"USD":150}`, rec.Body.String())

	rec = get(t, s, "/api/market")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ticker":"AAA"`)

	rec = get(t, s, "/api/holdings")
	require.Equal(t, http.StatusOK, rec.Code)
	var holdings []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &holdings))
	assert.Len(t, holdings, 2)

	rec = get(t, s, "/api/config")
	require.Equal(t, http.StatusOK, rec.Code)
	var cfg allocation.Config
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	require.Len(t, cfg.Assets, 2)
	assert.True(t, cfg.Assets[0].TargetWeight.Equal(allocation.V(0.6)), "got %v", cfg.Assets[0].TargetWeight)
}

func TestCharts(t *testing.T) {
	s := newTestServer(testPortfolio)
	for _, path := range []string{"/chart/allocation.png", "/chart/deviation.png"} {
		rec := get(t, s, path)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.Equal(t, []byte("\x89PNG"), rec.Body.Bytes()[:4])
	}

	empty := newTestServer(func() (*allocation.Portfolio, error) { return allocation.NewPortfolio("JPY"), nil })
	rec := get(t, empty, "/chart/allocation.png")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoadFailure(t *testing.T) {
	s := newTestServer(func() (*allocation.Portfolio, error) { return nil, errors.New("corrupted state") })
	for _, path := range []string{"/", "/api/report", "/api/holdings", "/chart/deviation.png"} {
		rec := get(t, s, path)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "corrupted state")
	}
}

func TestUnknownRoute(t *testing.T) {
	rec := get(t, newTestServer(testPortfolio), "/api/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
