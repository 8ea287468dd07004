package models

import (
	"time"

	"custodia/internal/shared/constants"
)

// VisitRequestModel represents the database persistence model for one-time
// visit requests. ExternalID is the shared request ID and, once accepted,
// the QR token.
type VisitRequestModel struct {
	ID                 uint   `gorm:"primarykey"`
	ExternalID         string `gorm:"not null;size:32;uniqueIndex:idx_visit_requests_external_id"`
	CreatedByUserID    uint   `gorm:"not null;index:idx_visit_requests_created_by"`
	ResidentExternalID string `gorm:"not null;size:32;index:idx_visit_requests_resident"`
	VisitorName        string `gorm:"not null;size:100"`
	VisitorPhone       string `gorm:"not null;size:32"`
	VisitType          string `gorm:"size:50"`
	VisitPurpose       string `gorm:"size:100"`
	CustomReason       string `gorm:"size:500"`
	VisitTimeFrom      string `gorm:"not null;size:5"`  // HH:MM
	VisitTimeTo        string `gorm:"not null;size:5"`  // HH:MM
	VisitDate          string `gorm:"not null;size:10"` // YYYY-MM-DD
	Status             string `gorm:"not null;default:pending;size:20;index:idx_visit_requests_status"`
	DecidedByUserID    uint
	QRData             string `gorm:"size:32"`
	QRImage            string `gorm:"size:255"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName specifies the table name for GORM.
func (VisitRequestModel) TableName() string {
	return constants.TableVisitRequests
}
