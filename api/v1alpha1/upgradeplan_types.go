package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const (
	UpgradePlanPhaseAnalyzed = "Analyzed"
	UpgradePlanPhaseError    = "Error"
)

// UpgradePlan computes remediation tiers for the internal artifacts found in
// the referenced dependency and vulnerability data.
//
// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:scope=Namespaced,shortName=up
// +kubebuilder:printcolumn:name="Phase",type=string,JSONPath=`.status.phase`
// +kubebuilder:printcolumn:name="Tiers",type=integer,JSONPath=`.status.tierCount`
// +kubebuilder:printcolumn:name="Implicated",type=integer,JSONPath=`.status.implicatedCount`
// +kubebuilder:printcolumn:name="Vulnerable",type=integer,JSONPath=`.status.vulnerableCount`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`
type UpgradePlan struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   UpgradePlanSpec   `json:"spec"`
	Status UpgradePlanStatus `json:"status,omitempty"`
}

type UpgradePlanSpec struct {
	// InternalIdentifiers are substrings that mark a group:name as in-house.
	// +kubebuilder:validation:MinItems=1
	InternalIdentifiers []string `json:"internalIdentifiers"`

	// +kubebuilder:validation:MinItems=1
	Dependencies []InputSource `json:"dependencies"`

	// +kubebuilder:validation:MinItems=1
	Findings []InputSource `json:"findings"`

	Suppressions []Suppression `json:"suppressions,omitempty"`
}

// ConfigMapNames returns the distinct ConfigMap names referenced by the spec.
func (s *UpgradePlanSpec) ConfigMapNames() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range [][]InputSource{s.Dependencies, s.Findings} {
		for _, src := range list {
			name := src.ConfigMapRef.Name
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

type UpgradePlanStatus struct {
	ObservedGeneration int64  `json:"observedGeneration,omitempty"`
	Phase              string `json:"phase,omitempty"`
	Message            string `json:"message,omitempty"`

	TierCount       int32 `json:"tierCount"`
	ImplicatedCount int32 `json:"implicatedCount"`
	VulnerableCount int32 `json:"vulnerableCount"`

	// OrphanFindings lists vulnerable artifacts nothing depends on.
	OrphanFindings []string `json:"orphanFindings,omitempty"`

	// Artifacts holds the implicated internal artifacts ordered by name.
	Artifacts []PlannedArtifact `json:"artifacts,omitempty"`

	Conditions []metav1.Condition `json:"conditions,omitempty"`
}

// PlannedArtifact is one internal artifact and the upgrades it needs.
type PlannedArtifact struct {
	Name             string            `json:"name"`
	Tier             int32             `json:"tier"`
	InternalUpgrades []string          `json:"internalUpgrades,omitempty"`
	ExternalUpgrades []ExternalUpgrade `json:"externalUpgrades,omitempty"`
}

// ExternalUpgrade names a direct external dependency and the vulnerable
// artifacts reached through it.
type ExternalUpgrade struct {
	Dependency string   `json:"dependency"`
	Roots      []string `json:"roots"`
}

// +kubebuilder:object:root=true
type UpgradePlanList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []UpgradePlan `json:"items"`
}

func init() {
	SchemeBuilder.Register(&UpgradePlan{}, &UpgradePlanList{})
}
