package analyzer

import "context"

// Analyzer turns dependency edges and vulnerability findings into an upgrade plan:
// every internal artifact implicated by a vulnerable external artifact gets a tier
// and the set of upgrades it must pick up.
type Analyzer interface {
	Analyze(ctx context.Context, in Input) (Result, error)
}
