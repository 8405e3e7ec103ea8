package domain

import "time"

// DefaultLocation is used for calendar parts when no zone is configured.
const DefaultLocation = "Europe/Oslo"

// BackendTime is the document store's time representation.
type BackendTime struct {
	Seconds     int64 `json:"seconds"`
	Nanoseconds int32 `json:"nanoseconds"`
}

// CalendarParts is a wall-clock breakdown of a timestamp in the UI's zone.
type CalendarParts struct {
	Year   int `json:"year"`
	Month  int `json:"month"`
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
	Second int `json:"second"`
}

// NormalizedTime is the plain time value handed to the UI layer.
// Timestamp is milliseconds since the Unix epoch.
type NormalizedTime struct {
	Timestamp int64         `json:"timestamp"`
	Parts     CalendarParts `json:"parts"`
}

// BackendTimeOf converts a Go time to the backend representation.
func BackendTimeOf(t time.Time) BackendTime {
	return BackendTime{Seconds: t.Unix(), Nanoseconds: int32(t.Nanosecond())}
}

// Time returns the instant as a Go time in UTC.
func (t BackendTime) Time() time.Time {
	return time.Unix(t.Seconds, int64(t.Nanoseconds)).UTC()
}

// Millis returns milliseconds since the Unix epoch, truncating sub-millisecond precision.
func (t BackendTime) Millis() int64 {
	return t.Seconds*1000 + int64(t.Nanoseconds)/int64(time.Millisecond)
}

// NormalizeTime is a pure conversion from the backend representation to the
// UI representation. A nil location falls back to UTC.
func NormalizeTime(t BackendTime, loc *time.Location) NormalizedTime {
	if loc == nil {
		loc = time.UTC
	}
	local := t.Time().In(loc)
	return NormalizedTime{
		Timestamp: t.Millis(),
		Parts: CalendarParts{
			Year:   local.Year(),
			Month:  int(local.Month()),
			Day:    local.Day(),
			Hour:   local.Hour(),
			Minute: local.Minute(),
			Second: local.Second(),
		},
	}
}

// NormalizeOptional converts an optional backend time; nil stays nil.
func NormalizeOptional(t *BackendTime, loc *time.Location) *NormalizedTime {
	if t == nil {
		return nil
	}
	n := NormalizeTime(*t, loc)
	return &n
}

// LoadLocation resolves the configured zone, falling back to UTC when the
// zone database lacks it.
func LoadLocation(name string) *time.Location {
	if name == "" {
		name = DefaultLocation
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
