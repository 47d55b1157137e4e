package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"agentload/internal/stats"
)

const (
	shareBarWidth   = 24
	projectBarWidth = 12
	projectNameCols = 20
	heatmapWeeks    = 12
	ghostListFull   = 5
	ghostListShort  = 3
)

var (
	mainColor  = lipgloss.Color("#06B6D4") // cyan
	subColor   = lipgloss.Color("#F59E0B") // yellow
	ghostColor = lipgloss.Color("#A855F7") // purple
	mixedColor = lipgloss.Color("#10B981") // green
	mutedColor = lipgloss.Color("#6B7280") // gray

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(mainColor)
	sectionStyle = lipgloss.NewStyle().Bold(true)
	mainStyle    = lipgloss.NewStyle().Foreground(mainColor)
	subStyle     = lipgloss.NewStyle().Foreground(subColor)
	ghostStyle   = lipgloss.NewStyle().Foreground(ghostColor)
	mixedStyle   = lipgloss.NewStyle().Foreground(mixedColor)
	dimStyle     = lipgloss.NewStyle().Foreground(mutedColor)
	boldStyle    = lipgloss.NewStyle().Bold(true)
)

// Heatmap cells
const (
	cellEmpty = "·"
	cellMain  = "▒"
	cellGhost = "█"
	cellMixed = "▓"
)

// RenderOptions controls the human report.
type RenderOptions struct {
	Root     string         // shown in the header
	Now      time.Time      // last heatmap day; zero means time.Now()
	Location *time.Location // heatmap day keys; nil means time.Local
}

// RenderReport renders the human-readable report.
func RenderReport(r stats.Report, opts RenderOptions) string {
	var b strings.Builder
	line := func(s string) {
		b.WriteString("  ")
		b.WriteString(s)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	line(titleStyle.Render("agentload"))
	line(strings.Repeat("═", 45))
	if opts.Root != "" {
		line(dimStyle.Render("Scanning: " + opts.Root))
	}
	b.WriteString("\n")

	var mainShare, subShare float64
	if r.TotalHours > 0 {
		mainShare = r.MainHours / r.TotalHours
		subShare = r.SubagentHours / r.TotalHours
	}

	line(sectionStyle.Render("▸ Your Time vs AI Time"))
	b.WriteString("\n")
	line(fmt.Sprintf("%s  %s  %.1fh (%d%%)  %d sessions",
		mainStyle.Render("You "), Bar(mainShare, shareBarWidth), r.MainHours, r.MainPct, r.MainSessions))
	line(fmt.Sprintf("%s  %s  %.1fh (%d%%)  %d sessions",
		subStyle.Render("AI  "), Bar(subShare, shareBarWidth), r.SubagentHours, r.SubPct, r.SubagentSessions))
	b.WriteString("\n")

	ratio := fmt.Sprintf("%.1fx", r.AutonomyRatio)
	line(sectionStyle.Render("▸ AI Autonomy Ratio"))
	line(fmt.Sprintf("%s %s  AI ran %s longer than you",
		subStyle.Render(ratioBar(r.AutonomyRatio)), boldStyle.Render(ratio), ratio))
	b.WriteString("\n")
	line(verdictStyle(r.AutonomyRatio).Render(stats.Verdict(r.AutonomyRatio)))

	if len(r.TopProjects) > 0 {
		b.WriteString("\n")
		line(sectionStyle.Render("▸ Top Projects (AI load)"))
		for _, p := range r.TopProjects {
			line(projectRow(p))
		}
	}

	if len(r.GhostDayList) > 0 {
		b.WriteString("\n")
		line(sectionStyle.Render("▸ Ghost Days") + "  " + dimStyle.Render("(AI worked, you didn't)"))
		b.WriteString("\n")
		line(fmt.Sprintf("%s  AI ran without you  %s",
			subStyle.Render(fmt.Sprintf("%d days", r.GhostDays)),
			subStyle.Render(fmt.Sprintf("%.1fh total", r.GhostHours))))
		if r.LongestGhostDay != nil {
			line(dimStyle.Render(fmt.Sprintf("Longest: %s (%.1fh)", r.LongestGhostDay.Date, r.LongestGhostDay.Hours)))
		}
		for _, l := range ghostLines(r.GhostDayList) {
			line(dimStyle.Render(l))
		}
	}

	b.WriteString("\n")
	line(dimStyle.Render("── Activity Calendar ──"))
	for _, l := range Heatmap(r.ByDate, opts.now(), opts.location()) {
		line(l)
	}
	line(dimStyle.Render(fmt.Sprintf("%s you  %s AI only  %s both",
		mainStyle.Render(cellMain), ghostStyle.Render(cellGhost), mixedStyle.Render(cellMixed))))

	b.WriteString("\n")
	line(dimStyle.Render("── Share ──"))
	line(dimStyle.Render(ShareLine(r)))
	b.WriteString("\n")

	return b.String()
}

// Bar renders a fraction in [0,1] as filled and empty cells.
func Bar(frac float64, width int) string {
	filled := int(math.Round(clamp(frac, 0, 1) * float64(width)))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// ShareLine is the one-line summary meant for pasting elsewhere.
func ShareLine(r stats.Report) string {
	return fmt.Sprintf("My AI agent load: %d%% subagent / %d%% me, %.1fx autonomy ratio",
		r.SubPct, r.MainPct, r.AutonomyRatio)
}

func ratioBar(ratio float64) string {
	n := int(math.Round(ratio * 4))
	if n > shareBarWidth {
		n = shareBarWidth
	}
	if n < 0 {
		n = 0
	}
	return strings.Repeat("█", n)
}

func verdictStyle(ratio float64) lipgloss.Style {
	switch {
	case ratio >= 2:
		return ghostStyle
	case ratio >= 1:
		return subStyle
	case ratio >= 0.5:
		return mainStyle
	default:
		return mixedStyle
	}
}

func projectRow(p stats.ProjectLoad) string {
	name := string(p.Name)
	if len([]rune(name)) > projectNameCols {
		name = string([]rune(name)[:projectNameCols])
	}
	name = fmt.Sprintf("%-*s", projectNameCols, name)

	var subFrac float64
	if p.Total > 0 {
		subFrac = p.Sub / p.Total
	}
	subCells := int(math.Round(subFrac * projectBarWidth))
	return fmt.Sprintf("%s  %s%s  %.1fh total",
		dimStyle.Render(name),
		subStyle.Render(strings.Repeat("█", subCells)),
		dimStyle.Render(strings.Repeat("░", projectBarWidth-subCells)),
		p.Total)
}

// ghostLines lists every ghost day when there are few, else the top ones
// followed by a count of the rest.
func ghostLines(days []stats.GhostDay) []string {
	shown := days
	if len(days) > ghostListFull {
		shown = days[:ghostListShort]
	}
	out := make([]string, 0, len(shown)+1)
	for _, d := range shown {
		out = append(out, fmt.Sprintf("  %s  %.1fh", d.Date, d.Hours))
	}
	if len(shown) < len(days) {
		out = append(out, fmt.Sprintf("  ... and %d more", len(days)-len(shown)))
	}
	return out
}

// Heatmap renders one row per weekday (Sunday first) and one column per
// week, ending with the week that contains now.
func Heatmap(byDate map[string]stats.DayLoad, now time.Time, loc *time.Location) []string {
	now = now.In(loc)
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	start := end.AddDate(0, 0, -int(end.Weekday())-7*(heatmapWeeks-1))

	labels := [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	rows := make([]string, 7)
	for wd := 0; wd < 7; wd++ {
		var b strings.Builder
		b.WriteString(dimStyle.Render(labels[wd]))
		b.WriteString(" ")
		for w := 0; w < heatmapWeeks; w++ {
			day := start.AddDate(0, 0, w*7+wd)
			if day.After(end) {
				b.WriteString("  ")
				continue
			}
			b.WriteString(" ")
			b.WriteString(heatCell(byDate[day.Format(stats.DateLayout)]))
		}
		rows[wd] = b.String()
	}
	return rows
}

func heatCell(d stats.DayLoad) string {
	switch {
	case d.Main > 0 && d.Sub > 0:
		return mixedStyle.Render(cellMixed)
	case d.Sub > 0:
		return ghostStyle.Render(cellGhost)
	case d.Main > 0:
		return mainStyle.Render(cellMain)
	default:
		return dimStyle.Render(cellEmpty)
	}
}

func (o RenderOptions) now() time.Time {
	if o.Now.IsZero() {
		return time.Now()
	}
	return o.Now
}

func (o RenderOptions) location() *time.Location {
	if o.Location == nil {
		return time.Local
	}
	return o.Location
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
