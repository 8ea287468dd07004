package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodia/internal/domain/visitrequest"
	"custodia/internal/shared/errors"
)

func createTestVisitRequest(t *testing.T, externalID, residentExternalID string) *visitrequest.VisitRequest {
	t.Helper()
	req, err := visitrequest.NewVisitRequest(
		externalID, 1, residentExternalID,
		"Jordan Doe", "+15551234567", "family", "visit", "",
		"10:00", "12:00", "2026-03-15",
	)
	require.NoError(t, err)
	return req
}

func TestVisitRequestRepository_Save(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVisitRequestRepository(db, testLogger())
	ctx := context.Background()

	t.Run("save assigns ID", func(t *testing.T) {
		req := createTestVisitRequest(t, "REQ-AAAAAAAA11", "RES-AAAAAAAA11")
		err := repo.Save(ctx, req)
		assert.NoError(t, err)
		assert.NotZero(t, req.ID())
	})

	t.Run("duplicate external ID is a conflict", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, createTestVisitRequest(t, "REQ-BBBBBBBB22", "RES-AAAAAAAA11")))

		err := repo.Save(ctx, createTestVisitRequest(t, "REQ-BBBBBBBB22", "RES-AAAAAAAA11"))
		require.Error(t, err)
		assert.True(t, errors.IsConflictError(err))
	})
}

func TestVisitRequestRepository_GetByExternalID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVisitRequestRepository(db, testLogger())
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		req := createTestVisitRequest(t, "REQ-AAAAAAAA11", "RES-AAAAAAAA11")
		require.NoError(t, repo.Save(ctx, req))

		found, err := repo.GetByExternalID(ctx, "REQ-AAAAAAAA11")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, req.ID(), found.ID())
		assert.Equal(t, "Jordan Doe", found.VisitorName())
		assert.Equal(t, "2026-03-15", found.VisitDate())
		assert.Equal(t, visitrequest.StatusPending, found.Status())
	})

	t.Run("unknown request returns nil without error", func(t *testing.T) {
		found, err := repo.GetByExternalID(ctx, "REQ-ZZZZZZZZ99")
		assert.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestVisitRequestRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVisitRequestRepository(db, testLogger())
	ctx := context.Background()

	req := createTestVisitRequest(t, "REQ-AAAAAAAA11", "RES-AAAAAAAA11")
	require.NoError(t, repo.Save(ctx, req))

	require.NoError(t, req.Decide(visitrequest.StatusAccepted, 9))
	require.NoError(t, req.AttachQR("REQ-AAAAAAAA11", "REQ-AAAAAAAA11.png"))
	require.NoError(t, repo.Update(ctx, req))

	found, err := repo.GetByID(ctx, req.ID())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, visitrequest.StatusAccepted, found.Status())
	assert.Equal(t, uint(9), found.DecidedByUserID())
	assert.Equal(t, "REQ-AAAAAAAA11", found.QRData())
	assert.Equal(t, "REQ-AAAAAAAA11.png", found.QRImage())
	// pre-decision fields untouched
	assert.Equal(t, "Jordan Doe", found.VisitorName())
	assert.Equal(t, "10:00", found.VisitTimeFrom())
}

func TestVisitRequestRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVisitRequestRepository(db, testLogger())
	ctx := context.Background()

	first := createTestVisitRequest(t, "REQ-AAAAAAAA11", "RES-AAAAAAAA11")
	second := createTestVisitRequest(t, "REQ-BBBBBBBB22", "RES-AAAAAAAA11")
	other := createTestVisitRequest(t, "REQ-CCCCCCCC33", "RES-BBBBBBBB22")
	for _, req := range []*visitrequest.VisitRequest{first, second, other} {
		require.NoError(t, repo.Save(ctx, req))
	}
	require.NoError(t, second.Decide(visitrequest.StatusRejected, 9))
	require.NoError(t, repo.Update(ctx, second))

	t.Run("filter by resident", func(t *testing.T) {
		rows, total, err := repo.List(ctx, visitrequest.Filter{ResidentExternalID: "RES-AAAAAAAA11"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, rows, 2)
		// newest first
		assert.Equal(t, "REQ-BBBBBBBB22", rows[0].ExternalID())
	})

	t.Run("filter by status", func(t *testing.T) {
		rows, total, err := repo.List(ctx, visitrequest.Filter{Status: visitrequest.StatusPending})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, rows, 2)
		for _, row := range rows {
			assert.Equal(t, visitrequest.StatusPending, row.Status())
		}
	})
}

func TestVisitRequestRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVisitRequestRepository(db, testLogger())
	ctx := context.Background()

	req := createTestVisitRequest(t, "REQ-AAAAAAAA11", "RES-AAAAAAAA11")
	require.NoError(t, repo.Save(ctx, req))

	require.NoError(t, repo.Delete(ctx, req.ID()))

	found, err := repo.GetByID(ctx, req.ID())
	assert.NoError(t, err)
	assert.Nil(t, found)
}

func TestVisitRequestRepository_DeleteByResident(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVisitRequestRepository(db, testLogger())
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, createTestVisitRequest(t, "REQ-AAAAAAAA11", "RES-AAAAAAAA11")))
	require.NoError(t, repo.Save(ctx, createTestVisitRequest(t, "REQ-BBBBBBBB22", "RES-AAAAAAAA11")))
	require.NoError(t, repo.Save(ctx, createTestVisitRequest(t, "REQ-CCCCCCCC33", "RES-BBBBBBBB22")))

	require.NoError(t, repo.DeleteByResident(ctx, "RES-AAAAAAAA11"))

	rows, total, err := repo.List(ctx, visitrequest.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, "REQ-CCCCCCCC33", rows[0].ExternalID())
}
