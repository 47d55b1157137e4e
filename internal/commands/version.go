package commands

import (
	"fmt"
	"io"

	"agentload/internal/output"
)

// Version information, set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

type versionInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
}

func RunVersion(w io.Writer, format output.Format) error {
	return output.Print(w, format, versionInfo{Version, Commit, Date}, func() {
		fmt.Fprintf(w, "agentload version %s (commit %s, built %s)\n", Version, Commit, Date)
	})
}
