package model

// APIResponse is the payload returned by the health check.
type APIResponse struct {
	Message   string         `json:"message"`
	Timestamp string         `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// TimestampLayout renders instants the way a browser's toISOString does.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
