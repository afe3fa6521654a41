package v1alpha1

// ConfigMapKeyRef selects one key of a ConfigMap in the plan's namespace.
type ConfigMapKeyRef struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

// InputSource is a ConfigMap entry holding dependency or finding data in a
// reader format such as "pom-explorer", "mvn-tree" or "findings-csv".
type InputSource struct {
	ConfigMapRef ConfigMapKeyRef `json:"configMapRef"`

	// +kubebuilder:validation:MinLength=1
	Format string `json:"format"`
}

// Suppression drops findings for an accepted risk.
type Suppression struct {
	// Artifact is the group:name coordinate.
	Artifact string `json:"artifact"`
	// Versions is a semantic version constraint; empty matches every version.
	Versions string `json:"versions,omitempty"`
	Reason   string `json:"reason,omitempty"`
}
