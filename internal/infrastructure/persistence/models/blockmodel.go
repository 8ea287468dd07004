package models

import (
	"time"

	"custodia/internal/shared/constants"
)

// BlockModel represents the database persistence model for access blocks.
// The composite unique index enforces at most one block per subject.
type BlockModel struct {
	ID                uint      `gorm:"primarykey"`
	SubjectKind       string    `gorm:"not null;size:20;uniqueIndex:idx_blocks_subject"`
	SubjectExternalID string    `gorm:"not null;size:32;uniqueIndex:idx_blocks_subject"`
	Reason            string    `gorm:"size:500"`
	FromDateTime      time.Time `gorm:"not null"`
	ToDateTime        time.Time `gorm:"not null;index:idx_blocks_to_date_time"`
	CreatedAt         time.Time
}

// TableName specifies the table name for GORM.
func (BlockModel) TableName() string {
	return constants.TableBlocks
}
