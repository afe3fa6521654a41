package controllers

import (
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	ariadnev1alpha1 "github.com/bayleafwalker/ariadne/api/v1alpha1"
)

const (
	PlanConditionInputsLoaded = "InputsLoaded"
	PlanConditionAnalyzed     = "Analyzed"
)

func setPlanCondition(plan *ariadnev1alpha1.UpgradePlan, condition metav1.Condition) {
	if plan == nil {
		return
	}
	condition.ObservedGeneration = plan.Generation
	meta.SetStatusCondition(&plan.Status.Conditions, condition)
}

func notAnalyzed(reason string) metav1.Condition {
	return metav1.Condition{
		Type:    PlanConditionAnalyzed,
		Status:  metav1.ConditionFalse,
		Reason:  reason,
		Message: "Cannot compute tiers until inputs are loaded",
	}
}
