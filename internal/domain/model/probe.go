package model

import "time"

// ProbeTimeLayout is the wire format of probe and health timestamps (ISO-8601, millisecond precision, UTC).
const ProbeTimeLayout = "2006-01-02T15:04:05.000Z07:00"

const (
	MsgDatabaseNotConfigured = "Database not configured"
	MsgDatabaseConnected     = "Database connection successful"
	MsgCacheNotConfigured    = "Cache not configured"
	MsgCacheConnected        = "Cache connection successful"
)

// ProbeResult is the outcome of a single liveness probe. It is built fresh for
// every probe and never mutated afterwards.
type ProbeResult struct {
	Connected bool   `json:"connected"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp,omitempty"`
}

func NotConfigured(msg string) *ProbeResult {
	return &ProbeResult{Connected: false, Message: msg}
}

func Connected(msg string, at time.Time) *ProbeResult {
	return &ProbeResult{Connected: true, Message: msg, Timestamp: FormatTime(at)}
}

func Failed(err error) *ProbeResult {
	return &ProbeResult{Connected: false, Message: err.Error()}
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(ProbeTimeLayout)
}
