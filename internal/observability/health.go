package observability

import "time"

// HealthStatus is the body of the host's liveness endpoint.
type HealthStatus struct {
	Status    string          `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
	Version   string          `json:"version"`
	Uptime    string          `json:"uptime"`
	Checks    map[string]bool `json:"checks"`
}

// NewHealthStatus reports healthy when every check passes.
func NewHealthStatus(now, started time.Time, version string, checks map[string]bool) HealthStatus {
	status := "healthy"
	for _, ok := range checks {
		if !ok {
			status = "degraded"
			break
		}
	}
	return HealthStatus{
		Status:    status,
		Timestamp: now,
		Version:   version,
		Uptime:    now.Sub(started).String(),
		Checks:    checks,
	}
}
