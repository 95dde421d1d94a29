package evaluator

// DefaultMaxCallDepth bounds nested calls when no budget is configured.
const DefaultMaxCallDepth = 1024

// Budget holds the resource limits for a program execution.
// Zero means unlimited.
type Budget struct {
	MaxCallDepth  int
	MaxIterations int64
}

// DefaultBudget returns the limits used when the host sets none.
func DefaultBudget() Budget {
	return Budget{MaxCallDepth: DefaultMaxCallDepth}
}

// BudgetTracker tracks resource consumption during execution.
type BudgetTracker struct {
	Calls      int64
	Iterations int64
	PeakDepth  int
}
