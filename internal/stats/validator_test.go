package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func boundary(start, end time.Time) BoundaryRecord {
	return BoundaryRecord{FirstLine: record(start), LastLine: record(end)}
}

func TestValidate(t *testing.T) {
	start := at("2024-01-01T00:00:00Z")
	c := SessionCandidate{Path: "s.jsonl", Role: RoleMain, Project: "alpha", SizeBytes: 500, Index: 3}

	tests := []struct {
		name      string
		size      int64
		rec       BoundaryRecord
		ok        bool
		wantHours float64
		want      RejectReason
	}{
		{
			name:      "two and a half hours",
			size:      500,
			rec:       boundary(start, at("2024-01-01T02:30:00Z")),
			ok:        true,
			wantHours: 2.5,
			want:      RejectNone,
		},
		{
			name:      "zero duration is valid",
			size:      500,
			rec:       boundary(start, start),
			ok:        true,
			wantHours: 0,
			want:      RejectNone,
		},
		{
			name: "undersized file with valid timestamps",
			size: 30,
			rec:  boundary(start, start.Add(time.Hour)),
			ok:   true,
			want: RejectUndersized,
		},
		{
			name: "size 49 is undersized",
			size: MinSessionBytes - 1,
			rec:  boundary(start, start.Add(time.Hour)),
			ok:   true,
			want: RejectUndersized,
		},
		{
			name: "unreadable",
			size: 500,
			ok:   false,
			want: RejectUnreadable,
		},
		{
			name: "truncated last record",
			size: 500,
			rec:  BoundaryRecord{FirstLine: record(start), LastLine: `{"timestamp":"2024-01`},
			ok:   true,
			want: RejectNoTimestamp,
		},
		{
			name: "end before start",
			size: 500,
			rec:  boundary(start, start.Add(-time.Minute)),
			ok:   true,
			want: RejectNegative,
		},
		{
			name: "nine days",
			size: 500,
			rec:  boundary(start, start.Add(9*24*time.Hour)),
			ok:   true,
			want: RejectTooLong,
		},
		{
			name: "exactly seven days",
			size: 500,
			rec:  boundary(start, start.Add(MaxSessionSpan)),
			ok:   true,
			want: RejectTooLong,
		},
		{
			name:      "just under seven days",
			size:      500,
			rec:       boundary(start, start.Add(MaxSessionSpan-time.Hour)),
			ok:        true,
			wantHours: 167,
			want:      RejectNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cand := c
			cand.SizeBytes = tt.size
			s, reason := Validate(cand, tt.rec, tt.ok)
			assert.Equal(t, tt.want, reason)
			if tt.want != RejectNone {
				assert.Equal(t, ValidatedSession{}, s)
				return
			}
			assert.InDelta(t, tt.wantHours, s.DurationHours, 1e-9)
			assert.Equal(t, ProjectName("alpha"), s.Project)
			assert.Equal(t, RoleMain, s.Role)
			assert.Equal(t, 3, s.Index)
			assert.True(t, start.Equal(s.Start))
		})
	}
}

func TestRejectReasonString(t *testing.T) {
	assert.Equal(t, "undersized", RejectUndersized.String())
	assert.Equal(t, "too_long", RejectTooLong.String())
	assert.Equal(t, "unknown", RejectReason(99).String())
}
