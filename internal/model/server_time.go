package model

import (
	"encoding/json"
	"time"
)

// ServerTime tags a server-assigned timestamp as either pending (the row has
// not round-tripped through the store yet) or resolved. It replaces the
// loosely-typed "maybe a timestamp, maybe a placeholder" field the document
// store hands back for writes that are still in flight.
type ServerTime struct {
	resolved bool
	t        time.Time
}

// PendingServerTime is the zero-information placeholder for an unresolved write.
func PendingServerTime() ServerTime { return ServerTime{} }

// ResolvedServerTime wraps a concrete server timestamp.
func ResolvedServerTime(t time.Time) ServerTime { return ServerTime{resolved: true, t: t} }

func (s ServerTime) Resolved() bool { return s.resolved }

// Time returns the resolved timestamp and whether it is valid.
func (s ServerTime) Time() (time.Time, bool) { return s.t, s.resolved }

// MarshalJSON emits the RFC 3339 timestamp, or null while pending.
func (s ServerTime) MarshalJSON() ([]byte, error) {
	if !s.resolved {
		return []byte("null"), nil
	}
	return json.Marshal(s.t.Format(time.RFC3339Nano))
}

func (s *ServerTime) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = ServerTime{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return err
	}
	*s = ServerTime{resolved: true, t: t}
	return nil
}
