package clock

import "time"

// Timestamp formats used in persisted documents and API responses.
// Stamp and Day match the registry and stats document fields; Now is the
// wire timestamp of API response envelopes.
const (
	stampLayout = "2006-01-02 15:04:05"
	dayLayout   = "2006-01-02"
	wireLayout  = "2006-01-02T15:04:05Z"
)

func Now() string {
	return time.Now().UTC().Format(wireLayout)
}

// Stamp renders a time for the last_seen / last_updated document fields.
func Stamp(t time.Time) string {
	return t.UTC().Format(stampLayout)
}

// Day renders a time for the last_reset document field.
func Day(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

// ParseStamp parses a Stamp-formatted value back into a UTC time.
func ParseStamp(s string) (time.Time, error) {
	return time.Parse(stampLayout, s)
}
