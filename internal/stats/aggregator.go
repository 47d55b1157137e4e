package stats

import (
	"time"
)

// DateLayout is the calendar day key format.
const DateLayout = "2006-01-02"

// Bucket accumulates validated sessions for one role. Values only grow.
type Bucket struct {
	TotalHours     float64
	SessionCount   int
	HoursByProject map[ProjectName]float64
	HoursByDate    map[string]float64

	// firstSeen is the smallest discovery index that contributed to a project.
	firstSeen map[ProjectName]int
}

// NewBucket returns an empty bucket.
func NewBucket() *Bucket {
	return &Bucket{
		HoursByProject: make(map[ProjectName]float64),
		HoursByDate:    make(map[string]float64),
		firstSeen:      make(map[ProjectName]int),
	}
}

// Fold adds one session. The day key is the session start in loc;
// a nil loc means time.Local.
func (b *Bucket) Fold(s ValidatedSession, loc *time.Location) {
	if loc == nil {
		loc = time.Local
	}
	b.TotalHours += s.DurationHours
	b.SessionCount++
	b.HoursByProject[s.Project] += s.DurationHours
	b.HoursByDate[s.Start.In(loc).Format(DateLayout)] += s.DurationHours
	b.seen(s.Project, s.Index)
}

// Merge folds another bucket into b. Merge order does not change which
// project ranks first on ties, because first-seen indices merge by minimum.
func (b *Bucket) Merge(other *Bucket) {
	if other == nil {
		return
	}
	b.TotalHours += other.TotalHours
	b.SessionCount += other.SessionCount
	for p, h := range other.HoursByProject {
		b.HoursByProject[p] += h
	}
	for d, h := range other.HoursByDate {
		b.HoursByDate[d] += h
	}
	for p, idx := range other.firstSeen {
		b.seen(p, idx)
	}
}

// FirstSeen returns the discovery index of the first session folded for p.
func (b *Bucket) FirstSeen(p ProjectName) (int, bool) {
	idx, ok := b.firstSeen[p]
	return idx, ok
}

func (b *Bucket) seen(p ProjectName, idx int) {
	if cur, ok := b.firstSeen[p]; !ok || idx < cur {
		b.firstSeen[p] = idx
	}
}
