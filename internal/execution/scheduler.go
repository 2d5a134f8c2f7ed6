package execution

import (
	"slices"

	"ptc/internal/config"
	"ptc/internal/tree"
)

// Scheduler decides the order expanded cases are processed in
type Scheduler interface {
	Schedule(cases []*tree.Node) []*tree.Node
}

// DeclarationScheduler keeps expansion order: requested items in caller
// order, cases in declaration order.
type DeclarationScheduler struct{}

// Schedule returns cases unchanged
func (DeclarationScheduler) Schedule(cases []*tree.Node) []*tree.Node {
	return cases
}

// LIFOScheduler pops cases off the end of the expansion queue, so the last
// expanded case runs first.
type LIFOScheduler struct{}

// Schedule returns cases reversed
func (LIFOScheduler) Schedule(cases []*tree.Node) []*tree.Node {
	out := slices.Clone(cases)
	slices.Reverse(out)
	return out
}

// NewScheduler returns the scheduler for a configured run order
func NewScheduler(order string) Scheduler {
	if order == config.OrderLIFO {
		return LIFOScheduler{}
	}
	return DeclarationScheduler{}
}
