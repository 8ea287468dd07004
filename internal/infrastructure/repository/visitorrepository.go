package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"custodia/internal/domain/visitor"
	"custodia/internal/infrastructure/persistence/models"
	"custodia/internal/shared/db"
	"custodia/internal/shared/errors"
	"custodia/internal/shared/logger"
)

// VisitorRepositoryImpl implements the visitor.Repository interface.
type VisitorRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewVisitorRepository creates a new visitor repository instance.
func NewVisitorRepository(database *gorm.DB, logger logger.Interface) visitor.Repository {
	return &VisitorRepositoryImpl{db: database, logger: logger}
}

// Save creates a new visitor in the database.
func (r *VisitorRepositoryImpl) Save(ctx context.Context, vis *visitor.Visitor) error {
	model := visitorToModel(vis)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("visitor already exists")
		}
		r.logger.Errorw("failed to create visitor in database", "error", err)
		return fmt.Errorf("failed to create visitor: %w", err)
	}

	if err := vis.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set visitor ID: %w", err)
	}
	return nil
}

// Update persists the current state of a visitor.
func (r *VisitorRepositoryImpl) Update(ctx context.Context, vis *visitor.Visitor) error {
	model := visitorToModel(vis)

	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.VisitorModel{}).
		Where("id = ?", vis.ID()).
		Updates(map[string]interface{}{
			"full_name":       model.FullName,
			"phone":           model.Phone,
			"relationship":    model.Relationship,
			"visit_time_from": model.VisitTimeFrom,
			"visit_time_to":   model.VisitTimeTo,
			"updated_at":      model.UpdatedAt,
		}).Error; err != nil {
		r.logger.Errorw("failed to update visitor", "id", vis.ID(), "error", err)
		return fmt.Errorf("failed to update visitor: %w", err)
	}
	return nil
}

// Delete removes a visitor.
func (r *VisitorRepositoryImpl) Delete(ctx context.Context, id uint) error {
	if err := db.GetTxFromContext(ctx, r.db).Delete(&models.VisitorModel{}, id).Error; err != nil {
		r.logger.Errorw("failed to delete visitor", "id", id, "error", err)
		return fmt.Errorf("failed to delete visitor: %w", err)
	}
	return nil
}

// GetByID retrieves a visitor by its ID.
func (r *VisitorRepositoryImpl) GetByID(ctx context.Context, id uint) (*visitor.Visitor, error) {
	var model models.VisitorModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get visitor by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get visitor: %w", err)
	}
	return visitorToEntity(&model)
}

// GetByExternalID retrieves a visitor by its external ID.
func (r *VisitorRepositoryImpl) GetByExternalID(ctx context.Context, externalID string) (*visitor.Visitor, error) {
	var model models.VisitorModel

	if err := db.GetTxFromContext(ctx, r.db).Where("external_id = ?", externalID).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get visitor by external ID", "external_id", externalID, "error", err)
		return nil, fmt.Errorf("failed to get visitor: %w", err)
	}
	return visitorToEntity(&model)
}

// GetByPhone retrieves a visitor by phone.
func (r *VisitorRepositoryImpl) GetByPhone(ctx context.Context, phone string) (*visitor.Visitor, error) {
	var model models.VisitorModel

	if err := db.GetTxFromContext(ctx, r.db).Where("phone = ?", phone).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get visitor by phone", "error", err)
		return nil, fmt.Errorf("failed to get visitor: %w", err)
	}
	return visitorToEntity(&model)
}

// List retrieves visitors matching the filter with pagination.
func (r *VisitorRepositoryImpl) List(ctx context.Context, filter visitor.Filter) ([]*visitor.Visitor, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.VisitorModel{})
	if filter.ResidentExternalID != "" {
		query = query.Where("resident_external_id = ?", filter.ResidentExternalID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count visitors: %w", err)
	}

	var rows []models.VisitorModel
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	if err := query.Order("id ASC").Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list visitors", "error", err)
		return nil, 0, fmt.Errorf("failed to list visitors: %w", err)
	}

	entities := make([]*visitor.Visitor, 0, len(rows))
	for i := range rows {
		entity, err := visitorToEntity(&rows[i])
		if err != nil {
			return nil, 0, err
		}
		entities = append(entities, entity)
	}
	return entities, total, nil
}

// CountByResident returns the number of visitors registered to a resident.
func (r *VisitorRepositoryImpl) CountByResident(ctx context.Context, residentExternalID string) (int64, error) {
	var count int64
	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.VisitorModel{}).
		Where("resident_external_id = ?", residentExternalID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count visitors: %w", err)
	}
	return count, nil
}

// DeleteByResident removes every visitor belonging to a resident.
func (r *VisitorRepositoryImpl) DeleteByResident(ctx context.Context, residentExternalID string) error {
	if err := db.GetTxFromContext(ctx, r.db).
		Where("resident_external_id = ?", residentExternalID).
		Delete(&models.VisitorModel{}).Error; err != nil {
		r.logger.Errorw("failed to delete visitors by resident", "resident", residentExternalID, "error", err)
		return fmt.Errorf("failed to delete visitors: %w", err)
	}
	return nil
}

func visitorToModel(vis *visitor.Visitor) *models.VisitorModel {
	return &models.VisitorModel{
		ID:                 vis.ID(),
		ExternalID:         vis.ExternalID(),
		ResidentExternalID: vis.ResidentExternalID(),
		FullName:           vis.FullName(),
		Phone:              vis.Phone(),
		Relationship:       vis.Relationship(),
		VisitTimeFrom:      vis.VisitTimeFrom(),
		VisitTimeTo:        vis.VisitTimeTo(),
		CreatedAt:          vis.CreatedAt(),
		UpdatedAt:          vis.UpdatedAt(),
	}
}

func visitorToEntity(model *models.VisitorModel) (*visitor.Visitor, error) {
	entity, err := visitor.ReconstructVisitor(
		model.ID, model.ExternalID, model.ResidentExternalID,
		model.FullName, model.Phone, model.Relationship, model.VisitTimeFrom, model.VisitTimeTo,
		model.CreatedAt, model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to map visitor model: %w", err)
	}
	return entity, nil
}
