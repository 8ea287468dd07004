package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"custodia/internal/domain/access"
	"custodia/internal/infrastructure/persistence/models"
	"custodia/internal/shared/db"
	"custodia/internal/shared/errors"
	"custodia/internal/shared/logger"
)

// BlockRepositoryImpl implements the access.BlockRepository interface.
type BlockRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewBlockRepository creates a new block repository instance.
func NewBlockRepository(database *gorm.DB, logger logger.Interface) access.BlockRepository {
	return &BlockRepositoryImpl{db: database, logger: logger}
}

// Save creates a new block. The composite unique index on the subject
// turns a second concurrent block into a conflict.
func (r *BlockRepositoryImpl) Save(ctx context.Context, block *access.Block) error {
	model := blockToModel(block)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("subject is already blocked")
		}
		r.logger.Errorw("failed to create block in database", "subject", block.Subject().String(), "error", err)
		return fmt.Errorf("failed to create block: %w", err)
	}

	if err := block.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set block ID: %w", err)
	}
	return nil
}

// Delete removes a block by its ID.
func (r *BlockRepositoryImpl) Delete(ctx context.Context, blockID uint) error {
	if err := db.GetTxFromContext(ctx, r.db).Delete(&models.BlockModel{}, blockID).Error; err != nil {
		r.logger.Errorw("failed to delete block", "id", blockID, "error", err)
		return fmt.Errorf("failed to delete block: %w", err)
	}
	return nil
}

// GetBySubject retrieves the block for a subject, if one exists.
func (r *BlockRepositoryImpl) GetBySubject(ctx context.Context, subject access.Subject) (*access.Block, error) {
	var model models.BlockModel

	err := db.GetTxFromContext(ctx, r.db).
		Where("subject_kind = ? AND subject_external_id = ?", string(subject.Kind()), subject.ExternalID()).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get block by subject", "subject", subject.String(), "error", err)
		return nil, fmt.Errorf("failed to get block: %w", err)
	}
	return blockToEntity(&model)
}

// ListExpired retrieves every block whose end moment falls before the
// given instant.
func (r *BlockRepositoryImpl) ListExpired(ctx context.Context, before time.Time) ([]*access.Block, error) {
	var rows []models.BlockModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("to_date_time < ?", before).
		Order("to_date_time ASC").
		Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list expired blocks", "error", err)
		return nil, fmt.Errorf("failed to list expired blocks: %w", err)
	}
	return blocksToEntities(rows)
}

// List retrieves all blocks.
func (r *BlockRepositoryImpl) List(ctx context.Context) ([]*access.Block, error) {
	var rows []models.BlockModel

	if err := db.GetTxFromContext(ctx, r.db).Order("id ASC").Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list blocks", "error", err)
		return nil, fmt.Errorf("failed to list blocks: %w", err)
	}
	return blocksToEntities(rows)
}

// DeleteBySubject removes any block held against a subject.
func (r *BlockRepositoryImpl) DeleteBySubject(ctx context.Context, subject access.Subject) error {
	if err := db.GetTxFromContext(ctx, r.db).
		Where("subject_kind = ? AND subject_external_id = ?", string(subject.Kind()), subject.ExternalID()).
		Delete(&models.BlockModel{}).Error; err != nil {
		r.logger.Errorw("failed to delete blocks by subject", "subject", subject.String(), "error", err)
		return fmt.Errorf("failed to delete blocks: %w", err)
	}
	return nil
}

func blockToModel(block *access.Block) *models.BlockModel {
	return &models.BlockModel{
		ID:                block.ID(),
		SubjectKind:       string(block.Subject().Kind()),
		SubjectExternalID: block.Subject().ExternalID(),
		Reason:            block.Reason(),
		FromDateTime:      block.FromDateTime(),
		ToDateTime:        block.ToDateTime(),
		CreatedAt:         block.CreatedAt(),
	}
}

func blockToEntity(model *models.BlockModel) (*access.Block, error) {
	subject, err := access.NewSubject(access.SubjectKind(model.SubjectKind), model.SubjectExternalID)
	if err != nil {
		return nil, fmt.Errorf("failed to map block subject: %w", err)
	}
	entity, err := access.ReconstructBlock(model.ID, subject, model.Reason, model.FromDateTime, model.ToDateTime, model.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to map block model: %w", err)
	}
	return entity, nil
}

func blocksToEntities(rows []models.BlockModel) ([]*access.Block, error) {
	entities := make([]*access.Block, 0, len(rows))
	for i := range rows {
		entity, err := blockToEntity(&rows[i])
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
