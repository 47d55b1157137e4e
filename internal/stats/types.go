package stats

import (
	"time"
)

// Role attributes a session file to direct user interaction or to a delegated agent run.
type Role string

const (
	RoleMain Role = "main"
	RoleSub  Role = "sub"
)

// ProjectName is the human label derived from a Claude project directory name.
type ProjectName string

// SessionCandidate is a session file discovered by the Scanner.
type SessionCandidate struct {
	Path      string
	Role      Role
	Project   ProjectName
	SizeBytes int64
	Index     int // discovery order, used as a stable tie-break key
}

// BoundaryRecord holds the first and last non-blank lines sampled from a file.
// Either line may be a truncated record.
type BoundaryRecord struct {
	FirstLine string
	LastLine  string
}

// ValidatedSession is a candidate that passed validation.
// DurationHours is always in [0, 168).
type ValidatedSession struct {
	Project       ProjectName
	Role          Role
	Start         time.Time
	DurationHours float64
	Index         int
}

// RejectReason tells why a candidate contributed nothing.
type RejectReason int

const (
	RejectNone RejectReason = iota
	RejectUndersized
	RejectUnreadable
	RejectNoTimestamp
	RejectNegative
	RejectTooLong
)

func (r RejectReason) String() string {
	switch r {
	case RejectNone:
		return "none"
	case RejectUndersized:
		return "undersized"
	case RejectUnreadable:
		return "unreadable"
	case RejectNoTimestamp:
		return "no_timestamp"
	case RejectNegative:
		return "negative_span"
	case RejectTooLong:
		return "too_long"
	default:
		return "unknown"
	}
}

// GhostDay is a date with sub-agent hours and no main-session hours.
type GhostDay struct {
	Date  string  `json:"date" yaml:"date"`
	Hours float64 `json:"hours" yaml:"hours"`
}

// ProjectLoad is one row of the top-projects ranking.
type ProjectLoad struct {
	Name  ProjectName `json:"name" yaml:"name"`
	Total float64     `json:"total" yaml:"total"`
	Main  float64     `json:"main" yaml:"main"`
	Sub   float64     `json:"sub" yaml:"sub"`
}

// DayLoad is the per-date calendar cell, rounded to 2 decimals.
type DayLoad struct {
	Main float64 `json:"main" yaml:"main"`
	Sub  float64 `json:"sub" yaml:"sub"`
}

// Report is the aggregate view consumed by renderers, the HTTP API and MCP tools.
type Report struct {
	Version          string             `json:"version" yaml:"version"`
	TotalHours       float64            `json:"totalHours" yaml:"totalHours"`
	MainHours        float64            `json:"mainHours" yaml:"mainHours"`
	SubagentHours    float64            `json:"subagentHours" yaml:"subagentHours"`
	MainSessions     int                `json:"mainSessions" yaml:"mainSessions"`
	SubagentSessions int                `json:"subagentSessions" yaml:"subagentSessions"`
	AutonomyRatio    float64            `json:"autonomyRatio" yaml:"autonomyRatio"`
	MainPct          int                `json:"mainPct" yaml:"mainPct"`
	SubPct           int                `json:"subPct" yaml:"subPct"`
	TopProjects      []ProjectLoad      `json:"topProjects" yaml:"topProjects"`
	GhostDays        int                `json:"ghostDays" yaml:"ghostDays"`
	GhostHours       float64            `json:"ghostHours" yaml:"ghostHours"`
	LongestGhostDay  *GhostDay          `json:"longestGhostDay" yaml:"longestGhostDay"`
	ByDate           map[string]DayLoad `json:"byDate" yaml:"byDate"`

	// GhostDayList is the full sorted list, unrounded. Renderers only.
	GhostDayList []GhostDay `json:"-" yaml:"-"`
}

// ScanStats describes what one Engine run looked at.
type ScanStats struct {
	Candidates map[Role]int
	Accepted   map[Role]int
	Rejected   map[RejectReason]int
	Duration   time.Duration
}

// Result is the outcome of a complete scan.
type Result struct {
	Report Report
	Main   *Bucket
	Sub    *Bucket
	Stats  ScanStats
}
