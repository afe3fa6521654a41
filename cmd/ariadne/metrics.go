package main

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bayleafwalker/ariadne/internal/analyzer"
)

// writeMetrics writes a one-shot snapshot of a run in the node exporter
// textfile collector format.
func writeMetrics(path string, res analyzer.Result, elapsed time.Duration) error {
	reg := prometheus.NewRegistry()

	gauges := []struct {
		name  string
		help  string
		value float64
	}{
		{"ariadne_analysis_artifacts", "Number of artifacts in the dependency graph.", float64(res.Stats.Artifacts)},
		{"ariadne_analysis_internal_artifacts", "Number of internal artifacts.", float64(res.Stats.Internal)},
		{"ariadne_analysis_vulnerable_artifacts", "Number of artifacts with findings.", float64(res.Stats.Vulnerable)},
		{"ariadne_analysis_findings", "Number of findings attributed to the graph.", float64(res.Stats.Findings)},
		{"ariadne_analysis_implicated_artifacts", "Number of internal artifacts that need an upgrade.", float64(res.Stats.Implicated)},
		{"ariadne_analysis_tiers", "Number of upgrade tiers.", float64(res.Stats.Tiers)},
		{"ariadne_analysis_orphan_findings", "Number of vulnerable artifacts nothing depends on.", float64(len(res.Diagnostics.OrphanFindings))},
		{"ariadne_analysis_duration_seconds", "Wall time of the run.", elapsed.Seconds()},
		{"ariadne_analysis_last_run_timestamp_seconds", "Unix time the run finished.", float64(time.Now().Unix())},
	}
	for _, g := range gauges {
		gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: g.name, Help: g.help})
		gauge.Set(g.value)
		if err := reg.Register(gauge); err != nil {
			return err
		}
	}
	return prometheus.WriteToTextfile(path, reg)
}
