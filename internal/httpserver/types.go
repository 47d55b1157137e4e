package httpserver

import (
	"time"

	"agentload/internal/stats"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string     `json:"status"`
	Version  string     `json:"version"`
	LastScan *time.Time `json:"last_scan,omitempty"`
}

// ReportResponse wraps the latest report with scan details
type ReportResponse struct {
	Report stats.Report `json:"report"`
	Scan   ScanSummary  `json:"scan"`
}

// ScanSummary is the JSON view of stats.ScanStats
type ScanSummary struct {
	Candidates map[string]int `json:"candidates"`
	Accepted   map[string]int `json:"accepted"`
	Rejected   map[string]int `json:"rejected"`
	DurationMS int64          `json:"duration_ms"`
	ScannedAt  time.Time      `json:"scanned_at"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// wsMessage is sent to WebSocket clients after each scan
type wsMessage struct {
	Type   string        `json:"type"`
	Report *stats.Report `json:"report,omitempty"`
	Error  string        `json:"error,omitempty"`
}

func newScanSummary(st stats.ScanStats, at time.Time) ScanSummary {
	out := ScanSummary{
		Candidates: make(map[string]int, len(st.Candidates)),
		Accepted:   make(map[string]int, len(st.Accepted)),
		Rejected:   make(map[string]int, len(st.Rejected)),
		DurationMS: st.Duration.Milliseconds(),
		ScannedAt:  at,
	}
	for role, n := range st.Candidates {
		out.Candidates[string(role)] = n
	}
	for role, n := range st.Accepted {
		out.Accepted[string(role)] = n
	}
	for reason, n := range st.Rejected {
		out.Rejected[reason.String()] = n
	}
	return out
}
