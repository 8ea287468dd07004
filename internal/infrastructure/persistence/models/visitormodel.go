package models

import (
	"time"

	"custodia/internal/shared/constants"
)

// VisitorModel represents the database persistence model for recurring
// visitors.
type VisitorModel struct {
	ID                 uint   `gorm:"primarykey"`
	ExternalID         string `gorm:"not null;size:32;uniqueIndex:idx_visitors_external_id"`
	ResidentExternalID string `gorm:"not null;size:32;index:idx_visitors_resident"`
	FullName           string `gorm:"not null;size:100"`
	Phone              string `gorm:"not null;size:32;uniqueIndex:idx_visitors_phone"`
	Relationship       string `gorm:"size:50"`
	VisitTimeFrom      string `gorm:"not null;size:5"` // HH:MM
	VisitTimeTo        string `gorm:"not null;size:5"` // HH:MM
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName specifies the table name for GORM.
func (VisitorModel) TableName() string {
	return constants.TableVisitors
}
