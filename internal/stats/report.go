package stats

import (
	"math"

	"github.com/samber/lo"
)

// ReportVersion identifies the machine-readable report layout.
const ReportVersion = "1.2"

// BuildReport assembles the report view from the two role buckets.
// topN <= 0 means DefaultTopProjects.
func BuildReport(main, sub *Bucket, topN int) Report {
	if topN <= 0 {
		topN = DefaultTopProjects
	}

	ghosts := GhostDays(main, sub)
	mainShare, subShare := Shares(main, sub)

	r := Report{
		Version:          ReportVersion,
		TotalHours:       main.TotalHours + sub.TotalHours,
		MainHours:        main.TotalHours,
		SubagentHours:    sub.TotalHours,
		MainSessions:     main.SessionCount,
		SubagentSessions: sub.SessionCount,
		AutonomyRatio:    roundHalfUp(AutonomyRatio(main, sub), 2),
		MainPct:          int(roundHalfUp(mainShare*100, 0)),
		SubPct:           int(roundHalfUp(subShare*100, 0)),
		TopProjects:      TopProjects(main, sub, topN),
		GhostDays:        len(ghosts),
		GhostHours:       roundHalfUp(GhostHours(ghosts), 1),
		ByDate:           calendar(main, sub),
		GhostDayList:     ghosts,
	}
	if len(ghosts) > 0 {
		r.LongestGhostDay = &GhostDay{
			Date:  ghosts[0].Date,
			Hours: roundHalfUp(ghosts[0].Hours, 1),
		}
	}
	return r
}

// calendar merges both buckets' per-day hours, rounded to 2 decimals.
func calendar(main, sub *Bucket) map[string]DayLoad {
	dates := lo.Union(lo.Keys(main.HoursByDate), lo.Keys(sub.HoursByDate))
	out := make(map[string]DayLoad, len(dates))
	for _, d := range dates {
		out[d] = DayLoad{
			Main: roundHalfUp(main.HoursByDate[d], 2),
			Sub:  roundHalfUp(sub.HoursByDate[d], 2),
		}
	}
	return out
}

// roundHalfUp rounds x to the given decimal places with halves going up.
func roundHalfUp(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Floor(x*p+0.5) / p
}
