package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
)

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *UpgradePlan) DeepCopyInto(out *UpgradePlan) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	in.Spec.DeepCopyInto(&out.Spec)
	in.Status.DeepCopyInto(&out.Status)
}

// DeepCopy copies the receiver, creating a new UpgradePlan.
func (in *UpgradePlan) DeepCopy() *UpgradePlan {
	if in == nil {
		return nil
	}
	out := new(UpgradePlan)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject copies the receiver, creating a new runtime.Object.
func (in *UpgradePlan) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *UpgradePlanList) DeepCopyInto(out *UpgradePlanList) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ListMeta.DeepCopyInto(&out.ListMeta)
	if in.Items != nil {
		out.Items = make([]UpgradePlan, len(in.Items))
		for i := range in.Items {
			in.Items[i].DeepCopyInto(&out.Items[i])
		}
	}
}

// DeepCopy copies the receiver, creating a new UpgradePlanList.
func (in *UpgradePlanList) DeepCopy() *UpgradePlanList {
	if in == nil {
		return nil
	}
	out := new(UpgradePlanList)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject copies the receiver, creating a new runtime.Object.
func (in *UpgradePlanList) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *UpgradePlanSpec) DeepCopyInto(out *UpgradePlanSpec) {
	*out = *in
	if in.InternalIdentifiers != nil {
		out.InternalIdentifiers = append([]string(nil), in.InternalIdentifiers...)
	}
	if in.Dependencies != nil {
		out.Dependencies = append([]InputSource(nil), in.Dependencies...)
	}
	if in.Findings != nil {
		out.Findings = append([]InputSource(nil), in.Findings...)
	}
	if in.Suppressions != nil {
		out.Suppressions = append([]Suppression(nil), in.Suppressions...)
	}
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *UpgradePlanStatus) DeepCopyInto(out *UpgradePlanStatus) {
	*out = *in
	if in.OrphanFindings != nil {
		out.OrphanFindings = append([]string(nil), in.OrphanFindings...)
	}
	if in.Artifacts != nil {
		out.Artifacts = make([]PlannedArtifact, len(in.Artifacts))
		for i := range in.Artifacts {
			in.Artifacts[i].DeepCopyInto(&out.Artifacts[i])
		}
	}
	if in.Conditions != nil {
		out.Conditions = make([]metav1.Condition, len(in.Conditions))
		for i := range in.Conditions {
			in.Conditions[i].DeepCopyInto(&out.Conditions[i])
		}
	}
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *PlannedArtifact) DeepCopyInto(out *PlannedArtifact) {
	*out = *in
	if in.InternalUpgrades != nil {
		out.InternalUpgrades = append([]string(nil), in.InternalUpgrades...)
	}
	if in.ExternalUpgrades != nil {
		out.ExternalUpgrades = make([]ExternalUpgrade, len(in.ExternalUpgrades))
		for i := range in.ExternalUpgrades {
			in.ExternalUpgrades[i].DeepCopyInto(&out.ExternalUpgrades[i])
		}
	}
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *ExternalUpgrade) DeepCopyInto(out *ExternalUpgrade) {
	*out = *in
	if in.Roots != nil {
		out.Roots = append([]string(nil), in.Roots...)
	}
}
