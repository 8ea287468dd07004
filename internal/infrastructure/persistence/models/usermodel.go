package models

import (
	"time"

	"custodia/internal/shared/constants"
)

// UserModel represents the database persistence model for accounts.
type UserModel struct {
	ID           uint   `gorm:"primarykey"`
	Name         string `gorm:"not null;size:100"`
	Email        string `gorm:"not null;size:255;uniqueIndex:idx_users_email"`
	PasswordHash string `gorm:"not null;size:100"`
	Role         string `gorm:"not null;size:20;index:idx_users_role"`
	ExternalID   string `gorm:"size:32;index:idx_users_external_id"` // resident external ID for resident accounts
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName specifies the table name for GORM.
func (UserModel) TableName() string {
	return constants.TableUsers
}
