package saga

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodia/internal/shared/errors"
	"custodia/internal/shared/logger"
)

func TestExecutionRun_AllStepsSucceed(t *testing.T) {
	var order []string

	steps := []Step{
		{
			Name: "first",
			Run: func(ctx context.Context) error {
				order = append(order, "first")
				return nil
			},
			Compensate: func(ctx context.Context) error {
				order = append(order, "undo first")
				return nil
			},
		},
		{
			Name: "second",
			Run: func(ctx context.Context) error {
				order = append(order, "second")
				return nil
			},
		},
	}

	err := New("test_flow", logger.NewLogger()).Run(context.Background(), steps)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestExecutionRun_RollbackInReverseOrder(t *testing.T) {
	var order []string
	cause := fmt.Errorf("ledger down")

	steps := []Step{
		{
			Name: "first",
			Run: func(ctx context.Context) error {
				order = append(order, "first")
				return nil
			},
			Compensate: func(ctx context.Context) error {
				order = append(order, "undo first")
				return nil
			},
		},
		{
			Name: "second",
			Run: func(ctx context.Context) error {
				order = append(order, "second")
				return nil
			},
			Compensate: func(ctx context.Context) error {
				order = append(order, "undo second")
				return nil
			},
		},
		{
			Name: "third",
			Run: func(ctx context.Context) error {
				return cause
			},
			Compensate: func(ctx context.Context) error {
				order = append(order, "undo third")
				return nil
			},
		},
	}

	err := New("test_flow", logger.NewLogger()).Run(context.Background(), steps)
	require.Error(t, err)
	assert.Equal(t, cause, err)
	// The failed step's own compensation never runs.
	assert.Equal(t, []string{"first", "second", "undo second", "undo first"}, order)
}

func TestExecutionRun_StepsWithoutCompensationAreSkipped(t *testing.T) {
	var undone bool

	steps := []Step{
		{
			Name: "pre-check",
			Run:  func(ctx context.Context) error { return nil },
		},
		{
			Name: "persist",
			Run:  func(ctx context.Context) error { return nil },
			Compensate: func(ctx context.Context) error {
				undone = true
				return nil
			},
		},
		{
			Name: "ledger",
			Run:  func(ctx context.Context) error { return fmt.Errorf("boom") },
		},
	}

	err := New("test_flow", logger.NewLogger()).Run(context.Background(), steps)
	require.Error(t, err)
	assert.True(t, undone)
}

func TestExecutionRun_FailedCompensationIsPartialFailure(t *testing.T) {
	steps := []Step{
		{
			Name: "persist",
			Run:  func(ctx context.Context) error { return nil },
			Compensate: func(ctx context.Context) error {
				return fmt.Errorf("delete failed")
			},
		},
		{
			Name: "ledger",
			Run:  func(ctx context.Context) error { return fmt.Errorf("ledger down") },
		},
	}

	err := New("test_flow", logger.NewLogger()).Run(context.Background(), steps)
	require.Error(t, err)
	assert.True(t, errors.IsPartialFailureError(err))
}

func TestExecutionRun_CompensationFailuresDoNotStopRollback(t *testing.T) {
	var order []string

	steps := []Step{
		{
			Name: "first",
			Run:  func(ctx context.Context) error { return nil },
			Compensate: func(ctx context.Context) error {
				order = append(order, "undo first")
				return nil
			},
		},
		{
			Name: "second",
			Run:  func(ctx context.Context) error { return nil },
			Compensate: func(ctx context.Context) error {
				order = append(order, "undo second")
				return fmt.Errorf("undo second failed")
			},
		},
		{
			Name: "third",
			Run:  func(ctx context.Context) error { return fmt.Errorf("boom") },
		},
	}

	err := New("test_flow", logger.NewLogger()).Run(context.Background(), steps)
	require.Error(t, err)
	assert.True(t, errors.IsPartialFailureError(err))
	assert.Equal(t, []string{"undo second", "undo first"}, order)
}

func TestExecutionRun_NoSteps(t *testing.T) {
	err := New("test_flow", logger.NewLogger()).Run(context.Background(), nil)
	assert.NoError(t, err)
}
