package ui

import (
	"fmt"
	"io"
)

// ShowLoading writes a progress line. Callers pass stderr so stdout only
// carries the report.
func ShowLoading(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, " %s...\n", fmt.Sprintf(format, args...))
}

func ShowError(w io.Writer, msg string, err error) {
	if err != nil {
		fmt.Fprintf(w, " ✗ %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(w, " ✗ %s\n", msg)
	}
}
