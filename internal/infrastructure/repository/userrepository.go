package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"custodia/internal/domain/user"
	"custodia/internal/infrastructure/persistence/models"
	"custodia/internal/shared/db"
	"custodia/internal/shared/errors"
	"custodia/internal/shared/logger"
)

// UserRepositoryImpl implements the user.Repository interface.
type UserRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewUserRepository creates a new user repository instance.
func NewUserRepository(database *gorm.DB, logger logger.Interface) user.Repository {
	return &UserRepositoryImpl{db: database, logger: logger}
}

// Save creates a new user in the database.
func (r *UserRepositoryImpl) Save(ctx context.Context, acct *user.User) error {
	model := userToModel(acct)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("email already registered")
		}
		r.logger.Errorw("failed to create user in database", "error", err)
		return fmt.Errorf("failed to create user: %w", err)
	}

	if err := acct.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set user ID: %w", err)
	}
	return nil
}

// GetByID retrieves a user by its ID.
func (r *UserRepositoryImpl) GetByID(ctx context.Context, id uint) (*user.User, error) {
	var model models.UserModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get user by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return userToEntity(&model)
}

// GetByEmail retrieves a user by email.
func (r *UserRepositoryImpl) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var model models.UserModel

	email = strings.ToLower(strings.TrimSpace(email))
	if err := db.GetTxFromContext(ctx, r.db).Where("email = ?", email).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get user by email", "error", err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return userToEntity(&model)
}

// GetByExternalID retrieves a user by its resident external ID.
func (r *UserRepositoryImpl) GetByExternalID(ctx context.Context, externalID string) (*user.User, error) {
	var model models.UserModel

	if err := db.GetTxFromContext(ctx, r.db).Where("external_id = ?", externalID).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get user by external ID", "external_id", externalID, "error", err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return userToEntity(&model)
}

// Delete removes a user.
func (r *UserRepositoryImpl) Delete(ctx context.Context, id uint) error {
	if err := db.GetTxFromContext(ctx, r.db).Delete(&models.UserModel{}, id).Error; err != nil {
		r.logger.Errorw("failed to delete user", "id", id, "error", err)
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func userToModel(acct *user.User) *models.UserModel {
	return &models.UserModel{
		ID:           acct.ID(),
		Name:         acct.Name(),
		Email:        acct.Email(),
		PasswordHash: acct.PasswordHash(),
		Role:         acct.Role(),
		ExternalID:   acct.ExternalID(),
		CreatedAt:    acct.CreatedAt(),
		UpdatedAt:    acct.UpdatedAt(),
	}
}

func userToEntity(model *models.UserModel) (*user.User, error) {
	entity, err := user.ReconstructUser(
		model.ID, model.Name, model.Email, model.PasswordHash, model.Role, model.ExternalID,
		model.CreatedAt, model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to map user model: %w", err)
	}
	return entity, nil
}
