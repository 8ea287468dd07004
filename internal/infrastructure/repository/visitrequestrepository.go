package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"custodia/internal/domain/visitrequest"
	"custodia/internal/infrastructure/persistence/models"
	"custodia/internal/shared/db"
	"custodia/internal/shared/errors"
	"custodia/internal/shared/logger"
)

// VisitRequestRepositoryImpl implements the visitrequest.Repository
// interface.
type VisitRequestRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewVisitRequestRepository creates a new visit request repository instance.
func NewVisitRequestRepository(database *gorm.DB, logger logger.Interface) visitrequest.Repository {
	return &VisitRequestRepositoryImpl{db: database, logger: logger}
}

// Save creates a new visit request in the database.
func (r *VisitRequestRepositoryImpl) Save(ctx context.Context, req *visitrequest.VisitRequest) error {
	model := visitRequestToModel(req)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("visit request already exists")
		}
		r.logger.Errorw("failed to create visit request in database", "error", err)
		return fmt.Errorf("failed to create visit request: %w", err)
	}

	if err := req.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set visit request ID: %w", err)
	}
	return nil
}

// Update persists the current state of a visit request.
func (r *VisitRequestRepositoryImpl) Update(ctx context.Context, req *visitrequest.VisitRequest) error {
	model := visitRequestToModel(req)

	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.VisitRequestModel{}).
		Where("id = ?", req.ID()).
		Updates(map[string]interface{}{
			"status":             model.Status,
			"decided_by_user_id": model.DecidedByUserID,
			"qr_data":            model.QRData,
			"qr_image":           model.QRImage,
			"updated_at":         model.UpdatedAt,
		}).Error; err != nil {
		r.logger.Errorw("failed to update visit request", "id", req.ID(), "error", err)
		return fmt.Errorf("failed to update visit request: %w", err)
	}
	return nil
}

// Delete removes a visit request.
func (r *VisitRequestRepositoryImpl) Delete(ctx context.Context, id uint) error {
	if err := db.GetTxFromContext(ctx, r.db).Delete(&models.VisitRequestModel{}, id).Error; err != nil {
		r.logger.Errorw("failed to delete visit request", "id", id, "error", err)
		return fmt.Errorf("failed to delete visit request: %w", err)
	}
	return nil
}

// GetByID retrieves a visit request by its ID.
func (r *VisitRequestRepositoryImpl) GetByID(ctx context.Context, id uint) (*visitrequest.VisitRequest, error) {
	var model models.VisitRequestModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get visit request by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get visit request: %w", err)
	}
	return visitRequestToEntity(&model)
}

// GetByExternalID retrieves a visit request by its shared request ID.
func (r *VisitRequestRepositoryImpl) GetByExternalID(ctx context.Context, externalID string) (*visitrequest.VisitRequest, error) {
	var model models.VisitRequestModel

	if err := db.GetTxFromContext(ctx, r.db).Where("external_id = ?", externalID).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get visit request by external ID", "external_id", externalID, "error", err)
		return nil, fmt.Errorf("failed to get visit request: %w", err)
	}
	return visitRequestToEntity(&model)
}

// List retrieves visit requests matching the filter with pagination.
func (r *VisitRequestRepositoryImpl) List(ctx context.Context, filter visitrequest.Filter) ([]*visitrequest.VisitRequest, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.VisitRequestModel{})
	if filter.ResidentExternalID != "" {
		query = query.Where("resident_external_id = ?", filter.ResidentExternalID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count visit requests: %w", err)
	}

	var rows []models.VisitRequestModel
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	if err := query.Order("id DESC").Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list visit requests", "error", err)
		return nil, 0, fmt.Errorf("failed to list visit requests: %w", err)
	}

	entities := make([]*visitrequest.VisitRequest, 0, len(rows))
	for i := range rows {
		entity, err := visitRequestToEntity(&rows[i])
		if err != nil {
			return nil, 0, err
		}
		entities = append(entities, entity)
	}
	return entities, total, nil
}

// DeleteByResident removes every visit request targeting a resident.
func (r *VisitRequestRepositoryImpl) DeleteByResident(ctx context.Context, residentExternalID string) error {
	if err := db.GetTxFromContext(ctx, r.db).
		Where("resident_external_id = ?", residentExternalID).
		Delete(&models.VisitRequestModel{}).Error; err != nil {
		r.logger.Errorw("failed to delete visit requests by resident", "resident", residentExternalID, "error", err)
		return fmt.Errorf("failed to delete visit requests: %w", err)
	}
	return nil
}

func visitRequestToModel(req *visitrequest.VisitRequest) *models.VisitRequestModel {
	return &models.VisitRequestModel{
		ID:                 req.ID(),
		ExternalID:         req.ExternalID(),
		CreatedByUserID:    req.CreatedByUserID(),
		ResidentExternalID: req.ResidentExternalID(),
		VisitorName:        req.VisitorName(),
		VisitorPhone:       req.VisitorPhone(),
		VisitType:          req.VisitType(),
		VisitPurpose:       req.VisitPurpose(),
		CustomReason:       req.CustomReason(),
		VisitTimeFrom:      req.VisitTimeFrom(),
		VisitTimeTo:        req.VisitTimeTo(),
		VisitDate:          req.VisitDate(),
		Status:             req.Status(),
		DecidedByUserID:    req.DecidedByUserID(),
		QRData:             req.QRData(),
		QRImage:            req.QRImage(),
		CreatedAt:          req.CreatedAt(),
		UpdatedAt:          req.UpdatedAt(),
	}
}

func visitRequestToEntity(model *models.VisitRequestModel) (*visitrequest.VisitRequest, error) {
	entity, err := visitrequest.ReconstructVisitRequest(
		model.ID, model.ExternalID, model.CreatedByUserID,
		model.ResidentExternalID, model.VisitorName, model.VisitorPhone,
		model.VisitType, model.VisitPurpose, model.CustomReason,
		model.VisitTimeFrom, model.VisitTimeTo, model.VisitDate, model.Status,
		model.DecidedByUserID, model.QRData, model.QRImage,
		model.CreatedAt, model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to map visit request model: %w", err)
	}
	return entity, nil
}
