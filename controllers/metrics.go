package controllers

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	ariadneControllerReconcileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ariadne_controller_reconcile_total",
			Help: "Number of reconciliations by controller.",
		},
		[]string{"controller"},
	)
	ariadneControllerReconcileErrorTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ariadne_controller_reconcile_error_total",
			Help: "Number of reconciliation errors by controller.",
		},
		[]string{"controller"},
	)

	upgradePlanAnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ariadne_upgradeplan_analysis_duration_seconds",
			Help:    "Time taken to parse inputs and compute tiers for an UpgradePlan.",
			Buckets: prometheus.DefBuckets,
		},
	)

	upgradePlanImplicatedArtifacts = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ariadne_upgradeplan_implicated_artifacts",
			Help: "Number of internal artifacts that need an upgrade, per UpgradePlan.",
		},
		[]string{"namespace", "plan"},
	)
	upgradePlanTiers = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ariadne_upgradeplan_tiers",
			Help: "Number of upgrade tiers, per UpgradePlan.",
		},
		[]string{"namespace", "plan"},
	)
)

func init() {
	metrics.Registry.MustRegister(
		ariadneControllerReconcileTotal,
		ariadneControllerReconcileErrorTotal,
		upgradePlanAnalysisDuration,
		upgradePlanImplicatedArtifacts,
		upgradePlanTiers,
	)
}
