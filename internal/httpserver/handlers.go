package httpserver

import (
	"fmt"
	"net/http"
)

// handleHealth handles GET /health
func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Version: s.opts.Version,
	}
	s.mu.RLock()
	if !s.lastScan.IsZero() {
		at := s.lastScan
		resp.LastScan = &at
	}
	s.mu.RUnlock()

	respondJSON(w, http.StatusOK, resp)
}

// handleReport handles GET /report
func (s *HTTPServer) handleReport(w http.ResponseWriter, r *http.Request) {
	res, at, err := s.Latest(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, fmt.Sprintf("scan failed: %v", err))
		return
	}

	respondJSON(w, http.StatusOK, ReportResponse{
		Report: res.Report,
		Scan:   newScanSummary(res.Stats, at),
	})
}

// handleRefresh handles POST /report/refresh
func (s *HTTPServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	res, err := s.Scan(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, fmt.Sprintf("scan failed: %v", err))
		return
	}

	s.mu.RLock()
	at := s.lastScan
	s.mu.RUnlock()

	respondJSON(w, http.StatusOK, ReportResponse{
		Report: res.Report,
		Scan:   newScanSummary(res.Stats, at),
	})
}
