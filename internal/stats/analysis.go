package stats

import (
	"sort"

	"github.com/samber/lo"
)

// DefaultTopProjects is the ranking length used when none is configured.
const DefaultTopProjects = 6

// GhostDays returns the dates with sub-agent hours and no main hours,
// longest first; equal hours sort by date ascending.
func GhostDays(main, sub *Bucket) []GhostDay {
	dates := lo.Union(lo.Keys(main.HoursByDate), lo.Keys(sub.HoursByDate))

	days := lo.FilterMap(dates, func(d string, _ int) (GhostDay, bool) {
		subH := sub.HoursByDate[d]
		return GhostDay{Date: d, Hours: subH}, main.HoursByDate[d] == 0 && subH > 0
	})

	sort.Slice(days, func(i, j int) bool {
		if days[i].Hours != days[j].Hours {
			return days[i].Hours > days[j].Hours
		}
		return days[i].Date < days[j].Date
	})
	return days
}

// GhostHours sums the hours of the given ghost days.
func GhostHours(days []GhostDay) float64 {
	return lo.SumBy(days, func(d GhostDay) float64 { return d.Hours })
}

// AutonomyRatio is sub hours per main hour, 0 when there are no main hours.
func AutonomyRatio(main, sub *Bucket) float64 {
	if main.TotalHours > 0 {
		return sub.TotalHours / main.TotalHours
	}
	return 0
}

// Shares returns the main and sub fractions of all hours, both 0 when
// nothing was recorded.
func Shares(main, sub *Bucket) (mainShare, subShare float64) {
	total := main.TotalHours + sub.TotalHours
	if total <= 0 {
		return 0, 0
	}
	return main.TotalHours / total, sub.TotalHours / total
}

// TopProjects ranks projects by combined main+sub hours and keeps the
// first n. Ties keep discovery order: projects with main sessions first,
// by their first main session, then sub-only projects by their first sub
// session.
func TopProjects(main, sub *Bucket, n int) []ProjectLoad {
	names := lo.Union(lo.Keys(main.HoursByProject), lo.Keys(sub.HoursByProject))

	loads := lo.Map(names, func(p ProjectName, _ int) ProjectLoad {
		m, s := main.HoursByProject[p], sub.HoursByProject[p]
		return ProjectLoad{Name: p, Total: m + s, Main: m, Sub: s}
	})

	sort.SliceStable(loads, func(i, j int) bool {
		if loads[i].Total != loads[j].Total {
			return loads[i].Total > loads[j].Total
		}
		return discoveredBefore(main, sub, loads[i].Name, loads[j].Name)
	})

	if n >= 0 && len(loads) > n {
		loads = loads[:n]
	}
	return loads
}

func discoveredBefore(main, sub *Bucket, a, b ProjectName) bool {
	ta, ia := discoveryKey(main, sub, a)
	tb, ib := discoveryKey(main, sub, b)
	if ta != tb {
		return ta < tb
	}
	if ia != ib {
		return ia < ib
	}
	return a < b
}

func discoveryKey(main, sub *Bucket, p ProjectName) (tier, idx int) {
	if i, ok := main.FirstSeen(p); ok {
		return 0, i
	}
	if i, ok := sub.FirstSeen(p); ok {
		return 1, i
	}
	return 2, 0
}

// Verdict is the one-line reading of an autonomy ratio.
func Verdict(ratio float64) string {
	switch {
	case ratio >= 2:
		return "Your AI is working harder than you."
	case ratio >= 1:
		return "Your AI matches your pace."
	case ratio >= 0.5:
		return "You're in the driver's seat."
	default:
		return "You're driving manually."
	}
}
