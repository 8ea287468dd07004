package access

import (
	"fmt"
	"time"

	"custodia/internal/shared/biztime"
)

// Block suspends a subject's gate access for a bounded period. At most one
// block exists per subject at a time; the storage layer enforces this with a
// unique index in addition to the use case pre-check.
type Block struct {
	id           uint
	subject      Subject
	reason       string
	fromDateTime time.Time
	toDateTime   time.Time
	createdAt    time.Time
}

func NewBlock(subject Subject, reason string, from, to time.Time) (*Block, error) {
	if subject.IsZero() {
		return nil, fmt.Errorf("block subject is required")
	}
	if subject.Kind() == KindVisitRequest {
		return nil, fmt.Errorf("visit requests cannot be blocked")
	}
	if from.IsZero() || to.IsZero() {
		return nil, fmt.Errorf("block period is required")
	}
	if !to.After(from) {
		return nil, fmt.Errorf("block end must be after block start")
	}
	return &Block{
		subject:      subject,
		reason:       reason,
		fromDateTime: from.UTC(),
		toDateTime:   to.UTC(),
		createdAt:    biztime.NowUTC(),
	}, nil
}

func ReconstructBlock(blockID uint, subject Subject, reason string, from, to, createdAt time.Time) (*Block, error) {
	if blockID == 0 {
		return nil, fmt.Errorf("block ID cannot be zero")
	}
	if subject.IsZero() {
		return nil, fmt.Errorf("block subject is required")
	}
	return &Block{
		id:           blockID,
		subject:      subject,
		reason:       reason,
		fromDateTime: from,
		toDateTime:   to,
		createdAt:    createdAt,
	}, nil
}

func (b *Block) ID() uint                { return b.id }
func (b *Block) Subject() Subject        { return b.subject }
func (b *Block) Reason() string          { return b.reason }
func (b *Block) FromDateTime() time.Time { return b.fromDateTime }
func (b *Block) ToDateTime() time.Time   { return b.toDateTime }
func (b *Block) CreatedAt() time.Time    { return b.createdAt }

func (b *Block) SetID(blockID uint) error {
	if b.id != 0 {
		return fmt.Errorf("block ID is already set")
	}
	if blockID == 0 {
		return fmt.Errorf("block ID cannot be zero")
	}
	b.id = blockID
	return nil
}

// IsExpired reports whether the block's end lies strictly before now.
func (b *Block) IsExpired(now time.Time) bool {
	return b.toDateTime.Before(now)
}
