package commands

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentload/internal/output"
)

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		name    string
		flags   GlobalFlags
		want    output.Format
		wantErr bool
	}{
		{"default", GlobalFlags{Format: "text"}, output.FormatText, false},
		{"json flag", GlobalFlags{JSON: true}, output.FormatJSON, false},
		{"json flag wins", GlobalFlags{JSON: true, Format: "yaml"}, output.FormatJSON, false},
		{"yaml", GlobalFlags{Format: "yaml"}, output.FormatYAML, false},
		{"unknown", GlobalFlags{Format: "csv"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.flags.OutputFormat()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewRuntimeLogLevelOverride(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	rt, err := newRuntime(GlobalFlags{ConfigPath: missing, Format: "text", LogLevel: "DEBUG"})
	require.NoError(t, err)
	assert.Equal(t, "debug", rt.Config.Logging.Level)

	_, err = newRuntime(GlobalFlags{ConfigPath: missing, Format: "text", LogLevel: "chatty"})
	assert.Error(t, err)
}

func TestRunVersion(t *testing.T) {
	var text bytes.Buffer
	require.NoError(t, RunVersion(&text, output.FormatText))
	assert.Contains(t, text.String(), "agentload version dev")

	var js bytes.Buffer
	require.NoError(t, RunVersion(&js, output.FormatJSON))
	var info versionInfo
	require.NoError(t, json.Unmarshal(js.Bytes(), &info))
	assert.Equal(t, Version, info.Version)
}
