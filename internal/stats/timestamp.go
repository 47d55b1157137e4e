package stats

import (
	"math"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// timestampFields lists the record fields that may carry the event time,
// in lookup order.
var timestampFields = []string{"timestamp", "ts"}

// maxEpochMillis bounds numeric timestamps to ±100,000,000 days around
// the epoch.
const maxEpochMillis = 8.64e15

// localLayouts have no zone and are interpreted in the local time zone.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// zonedLayouts either carry a zone or are date-only (read as UTC).
var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.ANSIC,
}

// ExtractTimestamp returns the time carried by a single JSONL record.
// The boolean is false when the line is not valid JSON, carries neither
// field, or the value cannot be parsed. Boundary lines are routinely
// truncated, so false is expected and is not an error.
func ExtractTimestamp(record string) (time.Time, bool) {
	if !gjson.Valid(record) {
		return time.Time{}, false
	}
	doc := gjson.Parse(record)
	if !doc.IsObject() {
		return time.Time{}, false
	}

	for _, field := range timestampFields {
		v := doc.Get(field)
		if !truthy(v) {
			continue
		}
		return parseTimestampValue(v)
	}
	return time.Time{}, false
}

// truthy reports whether a field counts as present. Empty strings, zero,
// false and null fall through to the next field.
func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.String:
		return v.Str != ""
	case gjson.Number:
		return v.Num != 0
	case gjson.True:
		return true
	case gjson.JSON:
		return true
	default:
		return false
	}
}

func parseTimestampValue(v gjson.Result) (time.Time, bool) {
	switch v.Type {
	case gjson.Number:
		// Numbers are epoch milliseconds.
		if math.Abs(v.Num) > maxEpochMillis {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(v.Num)).UTC(), true
	case gjson.String:
		return parseTimestampString(v.Str)
	default:
		return time.Time{}, false
	}
}

func parseTimestampString(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range zonedLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	for _, layout := range localLayouts {
		if ts, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
