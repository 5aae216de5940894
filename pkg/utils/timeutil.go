package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// SourceDateEpochEnv is the reproducible-builds override for "now".
const SourceDateEpochEnv = "SOURCE_DATE_EPOCH"

// Layouts used for every date and timestamp value.
const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// ParseRFC3339 parses an RFC3339 timestamp.
func ParseRFC3339(s string) (time.Time, error) { return time.Parse(time.RFC3339, s) }

// ParseSourceDateEpoch parses a unix timestamp in seconds, as used by
// SOURCE_DATE_EPOCH. The result is in UTC.
func ParseSourceDateEpoch(s string) (time.Time, error) {
	secs, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: %w", SourceDateEpochEnv, s, err)
	}
	return time.Unix(secs, 0).UTC(), nil
}

// LookupSourceDateEpoch reports whether SOURCE_DATE_EPOCH is set and, if so,
// the time it encodes.
func LookupSourceDateEpoch() (time.Time, bool, error) {
	v, ok := os.LookupEnv(SourceDateEpochEnv)
	if !ok {
		return time.Time{}, false, nil
	}
	ts, err := ParseSourceDateEpoch(v)
	if err != nil {
		return time.Time{}, true, err
	}
	return ts, true, nil
}

// InZone converts t to local time when local is true and to UTC otherwise.
func InZone(t time.Time, local bool) time.Time {
	if local {
		return t.Local()
	}
	return t.UTC()
}

// FormatDate formats t as YYYY-MM-DD.
func FormatDate(t time.Time) string { return t.Format(DateLayout) }

// FormatTimestamp formats t as RFC3339 with nanosecond precision.
func FormatTimestamp(t time.Time) string { return t.Format(TimestampLayout) }
