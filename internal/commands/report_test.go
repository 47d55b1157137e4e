package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"agentload/internal/output"
	"agentload/internal/stats"
)

func writeSession(t *testing.T, path, start, end string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	content := `{"type":"user","timestamp":"` + start + `"}` + "\n" +
		`{"type":"assistant","timestamp":"` + end + `"}` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// testRuntime writes a config pointing at a fixture tree with one main
// session (2h on Jan 1) and one sub session (10h on Jan 3).
func testRuntime(t *testing.T, flags GlobalFlags) *Runtime {
	t.Helper()
	dir := t.TempDir()
	root := filepath.Join(dir, "projects")
	project := filepath.Join(root, "-home-alice-projects-demo")
	writeSession(t, filepath.Join(project, "main.jsonl"), "2024-01-01T09:00:00Z", "2024-01-01T11:00:00Z")
	writeSession(t, filepath.Join(project, "s1", "subagents", "agent.jsonl"), "2024-01-03T00:00:00Z", "2024-01-03T10:00:00Z")

	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("scan:\n  projects_dir: "+root+"\n  timezone: UTC\n  workers: 2\n"), 0o644))

	flags.ConfigPath = cfgPath
	rt, err := newRuntime(flags)
	require.NoError(t, err)
	return rt
}

func TestRunReportJSON(t *testing.T) {
	rt := testRuntime(t, GlobalFlags{JSON: true})
	assert.Equal(t, output.FormatJSON, rt.Format)

	var stdout, stderr bytes.Buffer
	require.NoError(t, RunReport(context.Background(), rt, &stdout, &stderr))
	assert.Empty(t, stderr.String())

	var report stats.Report
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	assert.Equal(t, stats.ReportVersion, report.Version)
	assert.Equal(t, 2.0, report.MainHours)
	assert.Equal(t, 10.0, report.SubagentHours)
	assert.Equal(t, 5.0, report.AutonomyRatio)
	assert.Equal(t, 17, report.MainPct)
	assert.Equal(t, 83, report.SubPct)
	assert.Equal(t, 1, report.GhostDays)
	require.NotNil(t, report.LongestGhostDay)
	assert.Equal(t, "2024-01-03", report.LongestGhostDay.Date)
	assert.Equal(t, stats.DayLoad{Main: 2}, report.ByDate["2024-01-01"])
}

func TestRunReportYAML(t *testing.T) {
	rt := testRuntime(t, GlobalFlags{Format: "yaml"})

	var stdout bytes.Buffer
	require.NoError(t, RunReport(context.Background(), rt, &stdout, &bytes.Buffer{}))

	var report stats.Report
	require.NoError(t, yaml.Unmarshal(stdout.Bytes(), &report))
	assert.Equal(t, 12.0, report.TotalHours)
	require.Len(t, report.TopProjects, 1)
	assert.Equal(t, stats.ProjectName("demo"), report.TopProjects[0].Name)
}

func TestRunReportText(t *testing.T) {
	rt := testRuntime(t, GlobalFlags{Format: "text"})

	var stdout, stderr bytes.Buffer
	require.NoError(t, RunReport(context.Background(), rt, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "Your AI is working harder than you.")
	assert.Contains(t, stdout.String(), "2024-01-03")
	// stderr is not a terminal
	assert.NotContains(t, stderr.String(), "Analyzing")
}

func TestRunReportMissingRoot(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("scan:\n  projects_dir: "+filepath.Join(dir, "nope")+"\n"), 0o644))

	rt, err := newRuntime(GlobalFlags{ConfigPath: cfgPath, JSON: true})
	require.NoError(t, err)

	var stdout bytes.Buffer
	require.NoError(t, RunReport(context.Background(), rt, &stdout, &bytes.Buffer{}))

	var report stats.Report
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	assert.Zero(t, report.TotalHours)
	assert.Nil(t, report.LongestGhostDay)
}

func TestRunReportCancelled(t *testing.T) {
	rt := testRuntime(t, GlobalFlags{JSON: true})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout bytes.Buffer
	assert.ErrorIs(t, RunReport(ctx, rt, &stdout, &bytes.Buffer{}), context.Canceled)
	assert.Empty(t, stdout.String())
}

func TestRunViewFallsBackWithoutTerminal(t *testing.T) {
	rt := testRuntime(t, GlobalFlags{JSON: true})

	var stdout bytes.Buffer
	require.NoError(t, RunView(context.Background(), rt, &stdout, &bytes.Buffer{}))
	assert.Contains(t, stdout.String(), `"mainHours": 2`)
}
