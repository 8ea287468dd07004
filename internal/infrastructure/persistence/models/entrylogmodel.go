package models

import (
	"time"

	"custodia/internal/shared/constants"
)

// EntryLogModel represents the database persistence model for gate
// passages. Rows are append-only apart from the ledger status annotation.
type EntryLogModel struct {
	ID                uint      `gorm:"primarykey"`
	SubjectKind       string    `gorm:"not null;size:20;index:idx_entry_logs_subject"`
	SubjectExternalID string    `gorm:"not null;size:32;index:idx_entry_logs_subject"`
	Direction         string    `gorm:"not null;size:10"`
	OccurredAt        time.Time `gorm:"not null;index:idx_entry_logs_occurred_at"`
	LedgerStatus      string    `gorm:"not null;default:confirmed;size:20"`
	CreatedAt         time.Time
}

// TableName specifies the table name for GORM.
func (EntryLogModel) TableName() string {
	return constants.TableEntryLogs
}
