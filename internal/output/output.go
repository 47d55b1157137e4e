package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"agentload/internal/ui"
)

// Format selects how a report is written
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a --format value
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json or yaml)", s)
	}
}

// Machine reports whether the format is machine-readable
func (f Format) Machine() bool {
	return f == FormatJSON || f == FormatYAML
}

// errorResult is the machine-readable error shape
type errorResult struct {
	Success bool   `json:"success" yaml:"success"`
	Error   string `json:"error" yaml:"error"`
}

// Print writes data in the given format. In text format it calls textFn.
func Print(w io.Writer, format Format, data interface{}, textFn func()) error {
	switch format {
	case FormatJSON:
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		return enc.Close()
	default:
		textFn()
		return nil
	}
}

// PrintError outputs an error. Machine formats get a structured error on
// stdout; text goes to stderr.
func PrintError(format Format, err error) {
	printError(os.Stdout, os.Stderr, format, err)
}

func printError(stdout, stderr io.Writer, format Format, err error) {
	if format.Machine() {
		_ = Print(stdout, format, errorResult{Success: false, Error: err.Error()}, func() {})
		return
	}
	ui.ShowError(stderr, "Error", err)
}
