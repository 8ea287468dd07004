package models

import (
	"time"

	"custodia/internal/shared/constants"
)

// ResidentModel represents the database persistence model for residents.
// ExternalID is the shared key with the ledger and is never reused.
type ResidentModel struct {
	ID            uint   `gorm:"primarykey"`
	ExternalID    string `gorm:"not null;size:32;uniqueIndex:idx_residents_external_id"`
	UserID        uint   `gorm:"not null;index:idx_residents_user_id"`
	Name          string `gorm:"not null;size:100"`
	Email         string `gorm:"not null;size:255;uniqueIndex:idx_residents_email"`
	Phone         string `gorm:"not null;size:32;uniqueIndex:idx_residents_phone"`
	Gender        string `gorm:"size:20"`
	MaritalStatus string `gorm:"size:20"`
	ResidentType  string `gorm:"not null;size:20"`
	Apartment     string `gorm:"not null;size:32;index:idx_residents_apartment"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName specifies the table name for GORM.
func (ResidentModel) TableName() string {
	return constants.TableResidents
}
