package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodia/internal/domain/access"
	"custodia/internal/shared/logger"
)

func TestListEntryLogs(t *testing.T) {
	subject, err := access.NewSubject(access.KindResident, "RES-ABCDEFGH23")
	require.NoError(t, err)
	entry, err := access.NewEntryLog(subject, access.DirectionEnter,
		time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, entry.SetID(1))

	uc := NewListEntryLogsUseCase(&fakeEntryLogRepo{
		entries: []*access.EntryLog{entry},
	}, logger.NewLogger())

	views, total, err := uc.Execute(context.Background(), ListEntryLogsCommand{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, views, 1)
	assert.Equal(t, uint(1), views[0].ID)
	assert.Equal(t, "resident", views[0].SubjectKind)
	assert.Equal(t, "RES-ABCDEFGH23", views[0].SubjectExternalID)
	assert.Equal(t, access.DirectionEnter, views[0].Direction)
	assert.Equal(t, "2026-03-10T12:00:00Z", views[0].OccurredAt)
	assert.Equal(t, access.LedgerStatusConfirmed, views[0].LedgerStatus)
}
