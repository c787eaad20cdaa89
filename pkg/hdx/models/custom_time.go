package models

import (
	"encoding/json"
	"strings"
	"time"
)

// CustomTime handles the timestamps found in HDX check records, which are
// ISO-8601 strings usually without timezone information. The raw string is
// always kept so that a record with an odd timestamp still renders.
type CustomTime struct {
	time.Time
	Raw string
}

var timeFormats = []string{
	"2006-01-02T15:04:05.999999", // Format from check records
	"2006-01-02T15:04:05",        // Without microseconds
	time.RFC3339,                 // Standard format with timezone
	time.RFC3339Nano,             // With nanoseconds
	"2006-01-02 15:04:05.999999",
	"2006-01-02",
}

// ParseCustomTime parses s with the known formats. Unparseable input yields
// a CustomTime with a zero Time and the raw string preserved.
func ParseCustomTime(s string) CustomTime {
	s = strings.TrimSpace(s)
	ct := CustomTime{Raw: s}
	for _, format := range timeFormats {
		if t, err := time.Parse(format, s); err == nil {
			ct.Time = t
			break
		}
	}
	return ct
}

// UnmarshalJSON never fails on a malformed string; see ParseCustomTime.
func (ct *CustomTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		// null or a non-string value
		*ct = CustomTime{}
		return nil
	}
	*ct = ParseCustomTime(s)
	return nil
}

// MarshalJSON writes the raw string back out
func (ct CustomTime) MarshalJSON() ([]byte, error) {
	if ct.Raw == "" && ct.Time.IsZero() {
		return []byte("null"), nil
	}
	if ct.Raw != "" {
		return json.Marshal(ct.Raw)
	}
	return json.Marshal(ct.Time.Format(time.RFC3339))
}

// Date returns the day-precision form YYYY-MM-DD
func (ct CustomTime) Date() string {
	if !ct.Time.IsZero() {
		return ct.Time.Format("2006-01-02")
	}
	if len(ct.Raw) >= 10 {
		return ct.Raw[:10]
	}
	return ct.Raw
}
