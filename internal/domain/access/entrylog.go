package access

import (
	"fmt"
	"time"
)

// Direction of a gate passage.
const (
	DirectionEnter = "enter"
	DirectionLeave = "leave"
)

// Ledger mirroring status of an entry log row. The admit decision never
// depends on this; a failed mirror only annotates the row.
const (
	LedgerStatusConfirmed = "confirmed"
	LedgerStatusFailed    = "failed"
)

// EntryLog is one admitted gate passage. Rows are append-only; the only
// in-place change ever made is the ledger status annotation.
type EntryLog struct {
	id           uint
	subject      Subject
	direction    string
	occurredAt   time.Time
	ledgerStatus string
}

func NewEntryLog(subject Subject, direction string, occurredAt time.Time) (*EntryLog, error) {
	if subject.IsZero() {
		return nil, fmt.Errorf("entry log subject is required")
	}
	if direction != DirectionEnter && direction != DirectionLeave {
		return nil, fmt.Errorf("invalid direction: %s", direction)
	}
	if occurredAt.IsZero() {
		return nil, fmt.Errorf("entry log timestamp is required")
	}
	return &EntryLog{
		subject:      subject,
		direction:    direction,
		occurredAt:   occurredAt.UTC(),
		ledgerStatus: LedgerStatusConfirmed,
	}, nil
}

func ReconstructEntryLog(logID uint, subject Subject, direction string, occurredAt time.Time, ledgerStatus string) (*EntryLog, error) {
	if logID == 0 {
		return nil, fmt.Errorf("entry log ID cannot be zero")
	}
	if subject.IsZero() {
		return nil, fmt.Errorf("entry log subject is required")
	}
	return &EntryLog{
		id:           logID,
		subject:      subject,
		direction:    direction,
		occurredAt:   occurredAt,
		ledgerStatus: ledgerStatus,
	}, nil
}

func (e *EntryLog) ID() uint              { return e.id }
func (e *EntryLog) Subject() Subject      { return e.subject }
func (e *EntryLog) Direction() string     { return e.direction }
func (e *EntryLog) OccurredAt() time.Time { return e.occurredAt }
func (e *EntryLog) LedgerStatus() string  { return e.ledgerStatus }

func (e *EntryLog) SetID(logID uint) error {
	if e.id != 0 {
		return fmt.Errorf("entry log ID is already set")
	}
	if logID == 0 {
		return fmt.Errorf("entry log ID cannot be zero")
	}
	e.id = logID
	return nil
}

// MarkLedgerFailed annotates the row after a failed best-effort mirror.
func (e *EntryLog) MarkLedgerFailed() {
	e.ledgerStatus = LedgerStatusFailed
}
