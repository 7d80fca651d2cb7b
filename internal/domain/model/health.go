package model

const (
	StatusHealthy = "healthy"
)

// HealthReport is the /health document. Cache is omitted when no cache is configured.
type HealthReport struct {
	Status    string       `json:"status"`
	Timestamp string       `json:"timestamp"`
	Database  *ProbeResult `json:"database"`
	Cache     *ProbeResult `json:"cache,omitempty"`
}

// ReadinessReport is the /ready document.
type ReadinessReport struct {
	Ready     bool         `json:"ready"`
	Timestamp string       `json:"timestamp"`
	Database  *ProbeResult `json:"database"`
	Cache     *ProbeResult `json:"cache,omitempty"`
}
