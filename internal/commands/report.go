package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"agentload/internal/output"
	"agentload/internal/ui"
)

// RunReport scans and writes the report to stdout. The only error is a
// cancelled context or a failed write.
func RunReport(ctx context.Context, rt *Runtime, stdout, stderr io.Writer) error {
	engine := rt.Config.Engine(rt.Logger)

	if rt.Format == output.FormatText && isTerminal(stderr) {
		ui.ShowLoading(stderr, "Analyzing")
	}

	res, err := engine.Run(ctx)
	if err != nil {
		return err
	}

	loc, _ := rt.Config.Location()
	return output.Print(stdout, rt.Format, res.Report, func() {
		fmt.Fprint(stdout, ui.RenderReport(res.Report, ui.RenderOptions{
			Root:     rt.Config.Scan.ProjectsDir,
			Location: loc,
		}))
	})
}

// isTerminal reports whether w is a TTY.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
