package stats

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// record renders one transcript line. The padding keeps files well above
// MinSessionBytes.
func record(ts time.Time) string {
	return fmt.Sprintf(`{"type":"assistant","sessionId":"abc","timestamp":%q}`, ts.Format(time.RFC3339Nano))
}

// writeFile creates path (and its parents) with the given lines joined by
// newlines and a trailing newline.
func writeFile(t *testing.T, path string, lines ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

// writeSession writes a transcript whose first and last records are start
// and end, with a filler record in between.
func writeSession(t *testing.T, path string, start, end time.Time) {
	t.Helper()
	writeFile(t, path,
		record(start),
		`{"type":"user","message":{"role":"user","content":"keep going"}}`,
		record(end),
	)
}

func at(s string) time.Time {
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return ts
}
