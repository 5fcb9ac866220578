package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/etnz/allocation"
	"github.com/etnz/allocation/chart"
	"github.com/etnz/allocation/renderer"
	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Portfolio allocation</title>
<style>
body { font-family: sans-serif; max-width: 72em; margin: auto; }
table { border-collapse: collapse; }
th, td { padding: 0.2em 0.6em; border-bottom: 1px solid #ddd; }
</style>
</head>
<body>
{{.Report}}
<p><img src="/chart/allocation.png" alt="allocation"> <img src="/chart/deviation.png" alt="deviation"></p>
</body>
</html>
`))

// portfolio loads the portfolio, or writes an error.
func (s *Server) portfolio(w http.ResponseWriter) (*allocation.Portfolio, bool) {
	p, err := s.load()
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load portfolio")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return p, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	p, ok := s.portfolio(w)
	if !ok {
		return
	}
	md := renderer.RenderReport(renderer.NewReport(p.Compute(), p.FX(), p.Stats()))

	var body bytes.Buffer
	if err := markdown.Convert([]byte(md), &body); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Execute(w, struct{ Report template.HTML }{template.HTML(body.String())}); err != nil {
		s.log.Error().Err(err).Msg("Failed to write page")
	}
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.portfolio(w); ok {
		s.writeJSON(w, http.StatusOK, p.Compute())
	}
}

func (s *Server) handleRow(w http.ResponseWriter, r *http.Request) {
	p, ok := s.portfolio(w)
	if !ok {
		return
	}
	row, err := p.Compute().Row(chi.URLParam(r, "ticker"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, row)
}

func (s *Server) handleHoldings(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.portfolio(w); ok {
		s.writeJSON(w, http.StatusOK, p.Holdings())
	}
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.portfolio(w); ok {
		s.writeJSON(w, http.StatusOK, p.Market())
	}
}

func (s *Server) handleFX(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.portfolio(w); ok {
		s.writeJSON(w, http.StatusOK, p.FX())
	}
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.portfolio(w); ok {
		s.writeJSON(w, http.StatusOK, p.ExportConfig())
	}
}

func (s *Server) handleAllocationChart(w http.ResponseWriter, r *http.Request) {
	s.writeChart(w, chart.Allocation)
}

func (s *Server) handleDeviationChart(w http.ResponseWriter, r *http.Request) {
	s.writeChart(w, chart.Deviation)
}

func (s *Server) writeChart(w http.ResponseWriter, draw func(*allocation.Report) ([]byte, error)) {
	p, ok := s.portfolio(w)
	if !ok {
		return
	}
	png, err := draw(p.Compute())
	if errors.Is(err, chart.ErrNoData) {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("cannot draw chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
