package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"custodia/internal/domain/resident"
	"custodia/internal/infrastructure/persistence/models"
	"custodia/internal/shared/db"
	"custodia/internal/shared/errors"
	"custodia/internal/shared/logger"
)

// ResidentRepositoryImpl implements the resident.Repository interface.
type ResidentRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewResidentRepository creates a new resident repository instance.
func NewResidentRepository(database *gorm.DB, logger logger.Interface) resident.Repository {
	return &ResidentRepositoryImpl{db: database, logger: logger}
}

// Save creates a new resident in the database.
func (r *ResidentRepositoryImpl) Save(ctx context.Context, res *resident.Resident) error {
	model := residentToModel(res)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("resident already exists")
		}
		r.logger.Errorw("failed to create resident in database", "error", err)
		return fmt.Errorf("failed to create resident: %w", err)
	}

	if err := res.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set resident ID: %w", err)
	}
	return nil
}

// Update persists the current state of a resident.
func (r *ResidentRepositoryImpl) Update(ctx context.Context, res *resident.Resident) error {
	model := residentToModel(res)

	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.ResidentModel{}).
		Where("id = ?", res.ID()).
		Updates(map[string]interface{}{
			"name":           model.Name,
			"email":          model.Email,
			"phone":          model.Phone,
			"gender":         model.Gender,
			"marital_status": model.MaritalStatus,
			"resident_type":  model.ResidentType,
			"apartment":      model.Apartment,
			"updated_at":     model.UpdatedAt,
		}).Error; err != nil {
		r.logger.Errorw("failed to update resident", "id", res.ID(), "error", err)
		return fmt.Errorf("failed to update resident: %w", err)
	}
	return nil
}

// Delete removes a resident.
func (r *ResidentRepositoryImpl) Delete(ctx context.Context, id uint) error {
	if err := db.GetTxFromContext(ctx, r.db).Delete(&models.ResidentModel{}, id).Error; err != nil {
		r.logger.Errorw("failed to delete resident", "id", id, "error", err)
		return fmt.Errorf("failed to delete resident: %w", err)
	}
	return nil
}

// GetByID retrieves a resident by its ID.
func (r *ResidentRepositoryImpl) GetByID(ctx context.Context, id uint) (*resident.Resident, error) {
	var model models.ResidentModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get resident by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get resident: %w", err)
	}
	return residentToEntity(&model)
}

// GetByExternalID retrieves a resident by its external ID.
func (r *ResidentRepositoryImpl) GetByExternalID(ctx context.Context, externalID string) (*resident.Resident, error) {
	var model models.ResidentModel

	if err := db.GetTxFromContext(ctx, r.db).Where("external_id = ?", externalID).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get resident by external ID", "external_id", externalID, "error", err)
		return nil, fmt.Errorf("failed to get resident: %w", err)
	}
	return residentToEntity(&model)
}

// GetByEmail retrieves a resident by email.
func (r *ResidentRepositoryImpl) GetByEmail(ctx context.Context, email string) (*resident.Resident, error) {
	var model models.ResidentModel

	if err := db.GetTxFromContext(ctx, r.db).Where("email = ?", email).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get resident by email", "error", err)
		return nil, fmt.Errorf("failed to get resident: %w", err)
	}
	return residentToEntity(&model)
}

// GetByPhone retrieves a resident by phone.
func (r *ResidentRepositoryImpl) GetByPhone(ctx context.Context, phone string) (*resident.Resident, error) {
	var model models.ResidentModel

	if err := db.GetTxFromContext(ctx, r.db).Where("phone = ?", phone).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get resident by phone", "error", err)
		return nil, fmt.Errorf("failed to get resident: %w", err)
	}
	return residentToEntity(&model)
}

// List retrieves residents matching the filter with pagination.
func (r *ResidentRepositoryImpl) List(ctx context.Context, filter resident.Filter) ([]*resident.Resident, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.ResidentModel{})
	if filter.Apartment != "" {
		query = query.Where("apartment = ?", filter.Apartment)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count residents: %w", err)
	}

	var rows []models.ResidentModel
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	if err := query.Order("id ASC").Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list residents", "error", err)
		return nil, 0, fmt.Errorf("failed to list residents: %w", err)
	}

	entities := make([]*resident.Resident, 0, len(rows))
	for i := range rows {
		entity, err := residentToEntity(&rows[i])
		if err != nil {
			return nil, 0, err
		}
		entities = append(entities, entity)
	}
	return entities, total, nil
}

// CountByApartment returns the number of residents registered to an
// apartment.
func (r *ResidentRepositoryImpl) CountByApartment(ctx context.Context, apartment string) (int64, error) {
	var count int64
	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.ResidentModel{}).
		Where("apartment = ?", apartment).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count apartment residents: %w", err)
	}
	return count, nil
}

func residentToModel(res *resident.Resident) *models.ResidentModel {
	return &models.ResidentModel{
		ID:            res.ID(),
		ExternalID:    res.ExternalID(),
		UserID:        res.UserID(),
		Name:          res.Name(),
		Email:         res.Email(),
		Phone:         res.Phone(),
		Gender:        res.Gender(),
		MaritalStatus: res.MaritalStatus(),
		ResidentType:  res.ResidentType(),
		Apartment:     res.Apartment(),
		CreatedAt:     res.CreatedAt(),
		UpdatedAt:     res.UpdatedAt(),
	}
}

func residentToEntity(model *models.ResidentModel) (*resident.Resident, error) {
	entity, err := resident.ReconstructResident(
		model.ID, model.ExternalID, model.UserID,
		model.Name, model.Email, model.Phone, model.Gender, model.MaritalStatus, model.ResidentType, model.Apartment,
		model.CreatedAt, model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to map resident model: %w", err)
	}
	return entity, nil
}
