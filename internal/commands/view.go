package commands

import (
	"context"
	"io"

	"agentload/internal/output"
	"agentload/internal/tui"
	"agentload/internal/ui"
)

// RunView starts the interactive report. Without a terminal, or with a
// machine format, it prints the plain report instead.
func RunView(ctx context.Context, rt *Runtime, stdout, stderr io.Writer) error {
	if rt.Format != output.FormatText || !isTerminal(stdout) {
		return RunReport(ctx, rt, stdout, stderr)
	}

	loc, _ := rt.Config.Location()
	return tui.Run(ctx, rt.Config.Engine(rt.Logger), ui.RenderOptions{
		Root:     rt.Config.Scan.ProjectsDir,
		Location: loc,
	})
}
