// Package saga runs the dual-write protocol: an ordered list of steps where
// each step may register a compensating action. When a step fails, the
// compensations of the completed steps run in reverse order. A failed
// compensation means the stores have diverged; that case is surfaced as a
// partial failure and logged for operators.
package saga

import (
	"context"
	"fmt"

	"custodia/internal/shared/errors"
	"custodia/internal/shared/logger"
)

// Step is one unit of a dual-write flow.
type Step struct {
	// Name identifies the step in logs.
	Name string
	// Run performs the step's forward action.
	Run func(ctx context.Context) error
	// Compensate undoes the forward action. Nil for steps with no local
	// side effect to undo (pre-checks, ledger invokes).
	Compensate func(ctx context.Context) error
}

// Execution runs steps in order with rollback on failure.
type Execution struct {
	name string
	log  logger.Interface
}

// New creates an execution named after the flow it runs, for log context.
func New(name string, log logger.Interface) *Execution {
	return &Execution{name: name, log: log}
}

// Run executes the steps in order. On the first step error, the
// compensations of all previously completed steps run in reverse order and
// the step's error is returned. If any compensation fails, the returned
// error is a partial failure instead, and every compensation error is logged
// as operator-critical.
func (e *Execution) Run(ctx context.Context, steps []Step) error {
	completed := make([]Step, 0, len(steps))

	for _, step := range steps {
		if err := step.Run(ctx); err != nil {
			return e.rollback(ctx, completed, step.Name, err)
		}
		completed = append(completed, step)
	}
	return nil
}

func (e *Execution) rollback(ctx context.Context, completed []Step, failedStep string, cause error) error {
	e.log.Warnw("rolling back flow",
		"flow", e.name,
		"failed_step", failedStep,
		"error", cause,
	)

	var compErrs []error
	for i := len(completed) - 1; i >= 0; i-- {
		step := completed[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			e.log.Errorw("OPERATOR ACTION REQUIRED: compensation failed, stores may have diverged",
				"flow", e.name,
				"failed_step", failedStep,
				"compensation_step", step.Name,
				"cause", cause,
				"error", err,
			)
			compErrs = append(compErrs, fmt.Errorf("%s: %w", step.Name, err))
		}
	}

	if len(compErrs) > 0 {
		return errors.NewPartialFailureError(
			"operation failed and could not be fully rolled back",
			fmt.Sprintf("cause: %v; failed compensations: %v", cause, compErrs),
		)
	}
	return cause
}
