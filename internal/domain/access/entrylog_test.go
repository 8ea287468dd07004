package access

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntryLog(t *testing.T) {
	subject, err := NewSubject(KindResident, "RES-ABCDEFGH23")
	require.NoError(t, err)
	at := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)

	t.Run("valid enter", func(t *testing.T) {
		entry, err := NewEntryLog(subject, DirectionEnter, at)
		require.NoError(t, err)
		assert.Equal(t, DirectionEnter, entry.Direction())
		assert.Equal(t, LedgerStatusConfirmed, entry.LedgerStatus())
		assert.True(t, entry.OccurredAt().Equal(at))
	})

	t.Run("valid leave", func(t *testing.T) {
		entry, err := NewEntryLog(subject, DirectionLeave, at)
		require.NoError(t, err)
		assert.Equal(t, DirectionLeave, entry.Direction())
	})

	t.Run("invalid direction", func(t *testing.T) {
		_, err := NewEntryLog(subject, "sideways", at)
		assert.Error(t, err)
	})

	t.Run("zero subject", func(t *testing.T) {
		_, err := NewEntryLog(Subject{}, DirectionEnter, at)
		assert.Error(t, err)
	})

	t.Run("zero timestamp", func(t *testing.T) {
		_, err := NewEntryLog(subject, DirectionEnter, time.Time{})
		assert.Error(t, err)
	})
}

func TestEntryLogMarkLedgerFailed(t *testing.T) {
	subject, err := NewSubject(KindVisitor, "VIS-ABCDEFGH23")
	require.NoError(t, err)

	entry, err := NewEntryLog(subject, DirectionEnter, time.Now())
	require.NoError(t, err)
	require.Equal(t, LedgerStatusConfirmed, entry.LedgerStatus())

	entry.MarkLedgerFailed()
	assert.Equal(t, LedgerStatusFailed, entry.LedgerStatus())
}
