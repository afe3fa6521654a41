package controllers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-logr/logr"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/handler"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	ariadnev1alpha1 "github.com/bayleafwalker/ariadne/api/v1alpha1"
	"github.com/bayleafwalker/ariadne/internal/analyzer"
	"github.com/bayleafwalker/ariadne/internal/reader"
)

const (
	upgradePlanController = "UpgradePlan"

	// configMapRefsIndex indexes UpgradePlans by every ConfigMap name they read.
	configMapRefsIndex = ".spec.configMapRefs"
)

// errInputs marks failures caused by the referenced data rather than by the
// cluster. They are reported in status and not retried.
var errInputs = errors.New("invalid inputs")

// UpgradePlanReconciler computes remediation tiers for an UpgradePlan from
// the dependency and finding data held in ConfigMaps.
//
// RBAC:
// +kubebuilder:rbac:groups=ariadne.platform,resources=upgradeplans,verbs=get;list;watch
// +kubebuilder:rbac:groups=ariadne.platform,resources=upgradeplans/status,verbs=get;update;patch
// +kubebuilder:rbac:groups="",resources=configmaps,verbs=get;list;watch
// +kubebuilder:rbac:groups="",resources=events,verbs=create;patch;update
type UpgradePlanReconciler struct {
	client.Client
	Scheme   *runtime.Scheme
	Recorder record.EventRecorder
}

func (r *UpgradePlanReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	ariadneControllerReconcileTotal.WithLabelValues(upgradePlanController).Inc()

	logger := log.FromContext(ctx).WithValues(
		"controller", upgradePlanController,
		"namespace", req.Namespace,
		"plan", req.Name,
	)

	var plan ariadnev1alpha1.UpgradePlan
	if err := r.Get(ctx, req.NamespacedName, &plan); err != nil {
		if client.IgnoreNotFound(err) == nil {
			upgradePlanImplicatedArtifacts.DeleteLabelValues(req.Namespace, req.Name)
			upgradePlanTiers.DeleteLabelValues(req.Namespace, req.Name)
			return ctrl.Result{}, nil
		}
		ariadneControllerReconcileErrorTotal.WithLabelValues(upgradePlanController).Inc()
		return ctrl.Result{}, err
	}
	logger.Info("reconciling upgrade plan")

	previousPhase := plan.Status.Phase

	// 1) Load and parse the referenced ConfigMaps.
	start := time.Now()
	input, err := r.loadInput(ctx, &plan, logger)
	if err != nil {
		if !errors.Is(err, errInputs) {
			logger.Error(err, "failed to load inputs")
			ariadneControllerReconcileErrorTotal.WithLabelValues(upgradePlanController).Inc()
			return ctrl.Result{}, err
		}
		reason := "InputsInvalid"
		var missing *missingInputError
		if errors.As(err, &missing) {
			reason = missing.reason
		}
		if perr := r.patchPlanStatus(ctx, &plan, nil, err.Error(),
			metav1.Condition{
				Type:    PlanConditionInputsLoaded,
				Status:  metav1.ConditionFalse,
				Reason:  reason,
				Message: err.Error(),
			},
			notAnalyzed("InputsNotLoaded"),
		); perr != nil {
			logger.Error(perr, "failed to patch plan status")
			return ctrl.Result{}, perr
		}
		logger.Info("inputs not loaded; marking plan error", "reason", reason)
		r.recordEventf(&plan, "Warning", reason, "%v", err)
		return ctrl.Result{}, nil
	}

	// 2) Analyze.
	a, err := analyzer.NewDefault(analyzer.Config{
		InternalIdentifiers: plan.Spec.InternalIdentifiers,
		Suppressions:        suppressions(plan.Spec.Suppressions),
		Logger:              logger,
	})
	var res analyzer.Result
	if err == nil {
		res, err = a.Analyze(ctx, input)
	}
	upgradePlanAnalysisDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			return ctrl.Result{}, ctx.Err()
		}
		reason := "AnalysisFailed"
		if errors.Is(err, analyzer.ErrInvalidSuppression) {
			reason = "InvalidSuppression"
		}
		if perr := r.patchPlanStatus(ctx, &plan, nil, err.Error(),
			metav1.Condition{
				Type:    PlanConditionInputsLoaded,
				Status:  metav1.ConditionTrue,
				Reason:  "Loaded",
				Message: inputsMessage(&plan),
			},
			metav1.Condition{
				Type:    PlanConditionAnalyzed,
				Status:  metav1.ConditionFalse,
				Reason:  reason,
				Message: err.Error(),
			},
		); perr != nil {
			logger.Error(perr, "failed to patch plan status")
			return ctrl.Result{}, perr
		}
		logger.Info("analysis failed; marking plan error", "reason", reason, "error", err.Error())
		r.recordEventf(&plan, "Warning", reason, "%v", err)
		return ctrl.Result{}, nil
	}

	// 3) Publish.
	summary := fmt.Sprintf("%d artifacts to update in %d tiers", res.Stats.Implicated, res.Stats.Tiers)
	if err := r.patchPlanStatus(ctx, &plan, &res, summary,
		metav1.Condition{
			Type:    PlanConditionInputsLoaded,
			Status:  metav1.ConditionTrue,
			Reason:  "Loaded",
			Message: inputsMessage(&plan),
		},
		metav1.Condition{
			Type:    PlanConditionAnalyzed,
			Status:  metav1.ConditionTrue,
			Reason:  "TiersComputed",
			Message: summary,
		},
	); err != nil {
		logger.Error(err, "failed to patch plan status")
		ariadneControllerReconcileErrorTotal.WithLabelValues(upgradePlanController).Inc()
		return ctrl.Result{}, err
	}

	upgradePlanImplicatedArtifacts.WithLabelValues(req.Namespace, req.Name).Set(float64(res.Stats.Implicated))
	upgradePlanTiers.WithLabelValues(req.Namespace, req.Name).Set(float64(res.Stats.Tiers))

	logger.Info("plan analyzed",
		"implicated", res.Stats.Implicated,
		"tiers", res.Stats.Tiers,
		"orphans", len(res.Diagnostics.OrphanFindings),
	)
	if previousPhase != ariadnev1alpha1.UpgradePlanPhaseAnalyzed {
		r.recordEventf(&plan, "Normal", "Analyzed", "%s", summary)
	}
	return ctrl.Result{}, nil
}

type missingInputError struct {
	reason string
	msg    string
}

func (e *missingInputError) Error() string { return e.msg }

func (e *missingInputError) Unwrap() error { return errInputs }

// loadInput reads every referenced ConfigMap entry and parses it. Missing
// ConfigMaps or keys and unparseable data wrap errInputs.
func (r *UpgradePlanReconciler) loadInput(ctx context.Context, plan *ariadnev1alpha1.UpgradePlan, logger logr.Logger) (analyzer.Input, error) {
	cache := make(map[string]*corev1.ConfigMap)
	data := func(ref ariadnev1alpha1.ConfigMapKeyRef) (string, error) {
		cm, ok := cache[ref.Name]
		if !ok {
			cm = &corev1.ConfigMap{}
			if err := r.Get(ctx, types.NamespacedName{Namespace: plan.Namespace, Name: ref.Name}, cm); err != nil {
				if apierrors.IsNotFound(err) {
					return "", &missingInputError{
						reason: "ConfigMapNotFound",
						msg:    fmt.Sprintf("ConfigMap %q not found", ref.Name),
					}
				}
				return "", err
			}
			cache[ref.Name] = cm
		}
		v, ok := cm.Data[ref.Key]
		if !ok {
			return "", &missingInputError{
				reason: "ConfigMapKeyNotFound",
				msg:    fmt.Sprintf("ConfigMap %q has no key %q", ref.Name, ref.Key),
			}
		}
		return v, nil
	}

	var in analyzer.Input
	for _, src := range plan.Spec.Dependencies {
		p, err := reader.DependencyParserFor(reader.Format(src.Format), logger)
		if err != nil {
			return analyzer.Input{}, fmt.Errorf("%w: dependencies from %s: %v", errInputs, describe(src), err)
		}
		raw, err := data(src.ConfigMapRef)
		if err != nil {
			return analyzer.Input{}, err
		}
		deps, err := p.ParseDependencies(strings.NewReader(raw))
		if err != nil {
			return analyzer.Input{}, fmt.Errorf("%w: dependencies from %s: %v", errInputs, describe(src), err)
		}
		in.Dependencies = append(in.Dependencies, deps...)
	}
	for _, src := range plan.Spec.Findings {
		p, err := reader.FindingParserFor(reader.Format(src.Format), logger)
		if err != nil {
			return analyzer.Input{}, fmt.Errorf("%w: findings from %s: %v", errInputs, describe(src), err)
		}
		raw, err := data(src.ConfigMapRef)
		if err != nil {
			return analyzer.Input{}, err
		}
		findings, err := p.ParseFindings(strings.NewReader(raw))
		if err != nil {
			return analyzer.Input{}, fmt.Errorf("%w: findings from %s: %v", errInputs, describe(src), err)
		}
		in.Findings = append(in.Findings, findings...)
	}
	return in, nil
}

func describe(src ariadnev1alpha1.InputSource) string {
	return fmt.Sprintf("%s/%s (%s)", src.ConfigMapRef.Name, src.ConfigMapRef.Key, src.Format)
}

func inputsMessage(plan *ariadnev1alpha1.UpgradePlan) string {
	return fmt.Sprintf("%d dependency sources, %d finding sources", len(plan.Spec.Dependencies), len(plan.Spec.Findings))
}

func suppressions(in []ariadnev1alpha1.Suppression) []analyzer.Suppression {
	if len(in) == 0 {
		return nil
	}
	out := make([]analyzer.Suppression, 0, len(in))
	for _, s := range in {
		out = append(out, analyzer.Suppression{Artifact: s.Artifact, Versions: s.Versions, Reason: s.Reason})
	}
	return out
}

// patchPlanStatus writes the outcome of one reconcile. A nil result marks the
// plan as failed and clears any previously published tiers.
func (r *UpgradePlanReconciler) patchPlanStatus(ctx context.Context, plan *ariadnev1alpha1.UpgradePlan, res *analyzer.Result, message string, conds ...metav1.Condition) error {
	before := plan.DeepCopy()
	plan.Status.ObservedGeneration = plan.Generation
	plan.Status.Message = message
	if res == nil {
		plan.Status.Phase = ariadnev1alpha1.UpgradePlanPhaseError
		plan.Status.TierCount = 0
		plan.Status.ImplicatedCount = 0
		plan.Status.VulnerableCount = 0
		plan.Status.OrphanFindings = nil
		plan.Status.Artifacts = nil
	} else {
		plan.Status.Phase = ariadnev1alpha1.UpgradePlanPhaseAnalyzed
		plan.Status.TierCount = int32(res.Stats.Tiers)
		plan.Status.ImplicatedCount = int32(res.Stats.Implicated)
		plan.Status.VulnerableCount = int32(res.Stats.Vulnerable)
		plan.Status.OrphanFindings = res.Diagnostics.OrphanFindings
		plan.Status.Artifacts = plannedArtifacts(res)
	}
	for _, c := range conds {
		setPlanCondition(plan, c)
	}
	return r.Status().Patch(ctx, plan, client.MergeFrom(before))
}

func plannedArtifacts(res *analyzer.Result) []ariadnev1alpha1.PlannedArtifact {
	implicated := res.Implicated()
	if len(implicated) == 0 {
		return nil
	}
	out := make([]ariadnev1alpha1.PlannedArtifact, 0, len(implicated))
	for _, a := range implicated {
		p := ariadnev1alpha1.PlannedArtifact{
			Name:             a.Name(),
			Tier:             int32(a.Tier()),
			InternalUpgrades: a.InternalUpgrades(),
		}
		ext := a.ExternalUpgrades()
		deps := make([]string, 0, len(ext))
		for dep := range ext {
			deps = append(deps, dep)
		}
		sort.Strings(deps)
		for _, dep := range deps {
			p.ExternalUpgrades = append(p.ExternalUpgrades, ariadnev1alpha1.ExternalUpgrade{
				Dependency: dep,
				Roots:      ext[dep],
			})
		}
		out = append(out, p)
	}
	return out
}

func (r *UpgradePlanReconciler) recordEventf(obj client.Object, eventType, reason, messageFmt string, args ...any) {
	if r.Recorder == nil || obj == nil {
		return
	}
	r.Recorder.Eventf(obj, eventType, reason, messageFmt, args...)
}

func (r *UpgradePlanReconciler) SetupWithManager(mgr ctrl.Manager) error {
	if err := mgr.GetFieldIndexer().IndexField(context.Background(), &ariadnev1alpha1.UpgradePlan{}, configMapRefsIndex, indexConfigMapRefs); err != nil {
		return err
	}

	return ctrl.NewControllerManagedBy(mgr).
		For(&ariadnev1alpha1.UpgradePlan{}).
		Watches(&corev1.ConfigMap{}, enqueuePlansForConfigMap(mgr.GetClient())).
		Complete(r)
}

func indexConfigMapRefs(obj client.Object) []string {
	plan, ok := obj.(*ariadnev1alpha1.UpgradePlan)
	if !ok {
		return nil
	}
	return plan.Spec.ConfigMapNames()
}

// enqueuePlansForConfigMap returns an event handler that enqueues the
// UpgradePlans reading a ConfigMap.
func enqueuePlansForConfigMap(c client.Client) handler.EventHandler {
	return handler.EnqueueRequestsFromMapFunc(func(ctx context.Context, obj client.Object) []reconcile.Request {
		cm, ok := obj.(*corev1.ConfigMap)
		if !ok {
			return nil
		}

		var plans ariadnev1alpha1.UpgradePlanList
		if err := c.List(ctx, &plans,
			client.InNamespace(cm.Namespace),
			client.MatchingFields{configMapRefsIndex: cm.Name},
		); err != nil {
			return nil
		}

		out := make([]reconcile.Request, 0, len(plans.Items))
		for i := range plans.Items {
			p := &plans.Items[i]
			out = append(out, reconcile.Request{NamespacedName: types.NamespacedName{Namespace: p.Namespace, Name: p.Name}})
		}
		return out
	})
}
