package stats

import "time"

const (
	// MinSessionBytes is the smallest file treated as a real session.
	// Smaller files are warm-up placeholders.
	MinSessionBytes = 50
	// MaxSessionSpan caps the first-to-last record span. Longer spans are
	// resumed sessions whose elapsed wall time means nothing.
	MaxSessionSpan = 7 * 24 * time.Hour
)

// ValidateSize rejects placeholder files before any read happens.
func ValidateSize(size int64) RejectReason {
	if size < MinSessionBytes {
		return RejectUndersized
	}
	return RejectNone
}

// Validate decides whether a sampled candidate counts as a session.
// ok is the flag returned by SampleBoundary. The zero ValidatedSession is
// returned with any reason other than RejectNone.
func Validate(c SessionCandidate, b BoundaryRecord, ok bool) (ValidatedSession, RejectReason) {
	if reason := ValidateSize(c.SizeBytes); reason != RejectNone {
		return ValidatedSession{}, reason
	}
	if !ok {
		return ValidatedSession{}, RejectUnreadable
	}

	start, okStart := ExtractTimestamp(b.FirstLine)
	end, okEnd := ExtractTimestamp(b.LastLine)
	if !okStart || !okEnd {
		return ValidatedSession{}, RejectNoTimestamp
	}

	span := end.Sub(start)
	if span < 0 {
		return ValidatedSession{}, RejectNegative
	}
	if span >= MaxSessionSpan {
		return ValidatedSession{}, RejectTooLong
	}

	return ValidatedSession{
		Project:       c.Project,
		Role:          c.Role,
		Start:         start,
		DurationHours: span.Hours(),
		Index:         c.Index,
	}, RejectNone
}
