package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"custodia/internal/domain/access"
	"custodia/internal/infrastructure/persistence/models"
	"custodia/internal/shared/db"
	"custodia/internal/shared/logger"
)

// EntryLogRepositoryImpl implements the access.EntryLogRepository interface.
type EntryLogRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewEntryLogRepository creates a new entry log repository instance.
func NewEntryLogRepository(database *gorm.DB, logger logger.Interface) access.EntryLogRepository {
	return &EntryLogRepositoryImpl{db: database, logger: logger}
}

// Save appends a passage record.
func (r *EntryLogRepositoryImpl) Save(ctx context.Context, log *access.EntryLog) error {
	model := entryLogToModel(log)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create entry log in database", "subject", log.Subject().String(), "error", err)
		return fmt.Errorf("failed to create entry log: %w", err)
	}

	if err := log.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set entry log ID: %w", err)
	}
	return nil
}

// UpdateLedgerStatus annotates a passage record with the outcome of the
// ledger mirror write. Only the status column is touched.
func (r *EntryLogRepositoryImpl) UpdateLedgerStatus(ctx context.Context, logID uint, status string) error {
	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.EntryLogModel{}).
		Where("id = ?", logID).
		Update("ledger_status", status).Error; err != nil {
		r.logger.Errorw("failed to update entry log ledger status", "id", logID, "status", status, "error", err)
		return fmt.Errorf("failed to update entry log: %w", err)
	}
	return nil
}

// List retrieves passage records matching the filter, newest first.
func (r *EntryLogRepositoryImpl) List(ctx context.Context, filter access.EntryLogFilter) ([]*access.EntryLog, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.EntryLogModel{})
	if filter.SubjectKind != "" {
		query = query.Where("subject_kind = ?", string(filter.SubjectKind))
	}
	if filter.SubjectExternalID != "" {
		query = query.Where("subject_external_id = ?", filter.SubjectExternalID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count entry logs: %w", err)
	}

	var rows []models.EntryLogModel
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	if err := query.Order("occurred_at DESC").Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list entry logs", "error", err)
		return nil, 0, fmt.Errorf("failed to list entry logs: %w", err)
	}

	entities := make([]*access.EntryLog, 0, len(rows))
	for i := range rows {
		entity, err := entryLogToEntity(&rows[i])
		if err != nil {
			return nil, 0, err
		}
		entities = append(entities, entity)
	}
	return entities, total, nil
}

// DeleteBySubject removes every passage record for a subject.
func (r *EntryLogRepositoryImpl) DeleteBySubject(ctx context.Context, subject access.Subject) error {
	if err := db.GetTxFromContext(ctx, r.db).
		Where("subject_kind = ? AND subject_external_id = ?", string(subject.Kind()), subject.ExternalID()).
		Delete(&models.EntryLogModel{}).Error; err != nil {
		r.logger.Errorw("failed to delete entry logs by subject", "subject", subject.String(), "error", err)
		return fmt.Errorf("failed to delete entry logs: %w", err)
	}
	return nil
}

func entryLogToModel(log *access.EntryLog) *models.EntryLogModel {
	return &models.EntryLogModel{
		ID:                log.ID(),
		SubjectKind:       string(log.Subject().Kind()),
		SubjectExternalID: log.Subject().ExternalID(),
		Direction:         log.Direction(),
		OccurredAt:        log.OccurredAt(),
		LedgerStatus:      log.LedgerStatus(),
	}
}

func entryLogToEntity(model *models.EntryLogModel) (*access.EntryLog, error) {
	subject, err := access.NewSubject(access.SubjectKind(model.SubjectKind), model.SubjectExternalID)
	if err != nil {
		return nil, fmt.Errorf("failed to map entry log subject: %w", err)
	}
	entity, err := access.ReconstructEntryLog(model.ID, subject, model.Direction, model.OccurredAt, model.LedgerStatus)
	if err != nil {
		return nil, fmt.Errorf("failed to map entry log model: %w", err)
	}
	return entity, nil
}
