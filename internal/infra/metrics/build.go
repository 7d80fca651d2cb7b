package metrics

import "github.com/prometheus/client_golang/prometheus"

// RegisterBuildInfo registers build_info and sets it to 1 for the given version and commit.
func RegisterBuildInfo(r *Registry, version, commit string) {
	g := r.RegisterGaugeVec(
		"build_info",
		"A constant metric with labels for version and commit hash.",
		"version", "commit",
	)
	g.With(prometheus.Labels{"version": version, "commit": commit}).Set(1)
}
