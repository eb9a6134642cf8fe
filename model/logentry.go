package model

import "time"

// LogEntry represents a single decoded tinydns query log line.
type LogEntry struct {
	Timestamp *time.Time `json:"timestamp,omitempty"` // nil when the line carries no TAI64N stamp
	Address   Address    `json:"address"`
	Port      uint16     `json:"port"`
	QueryID   string     `json:"query_id"` // opaque, kept verbatim
	Code      string     `json:"code"`     // CodeTable label or UNKNOWN
	Type      string     `json:"type"`     // TypeTable label or UNKNOWN
	Name      string     `json:"name"`
	RawCode   string     `json:"raw_code"`
	RawType   string     `json:"raw_type"`
}

// HasTimestamp reports whether the line carried a timestamp token.
func (e LogEntry) HasTimestamp() bool {
	return e.Timestamp != nil
}
