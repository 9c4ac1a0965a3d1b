package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// layouts accepted when decoding. The Python backend emits naive ISO-8601
// without a zone, which time.Time's own decoder rejects.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Timestamp is a server-assigned instant, serialized as ISO-8601
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t in UTC
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t.UTC()}
}

// ParseTimestamp parses any accepted layout; zone-less values are UTC
func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{t.UTC()}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid timestamp %q", s)
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.UTC().Format(time.RFC3339Nano))
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*ts = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*ts = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}

// Display formats the instant in local time for list rows
func (ts Timestamp) Display() string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("Jan 2, 2006 3:04 PM")
}
