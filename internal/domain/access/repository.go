package access

import (
	"context"
	"time"
)

type BlockRepository interface {
	Save(ctx context.Context, block *Block) error
	Delete(ctx context.Context, blockID uint) error
	GetBySubject(ctx context.Context, subject Subject) (*Block, error)
	ListExpired(ctx context.Context, before time.Time) ([]*Block, error)
	List(ctx context.Context) ([]*Block, error)
	DeleteBySubject(ctx context.Context, subject Subject) error
}

type EntryLogFilter struct {
	SubjectKind       SubjectKind
	SubjectExternalID string
	Page              int
	PageSize          int
}

type EntryLogRepository interface {
	Save(ctx context.Context, log *EntryLog) error
	UpdateLedgerStatus(ctx context.Context, logID uint, status string) error
	List(ctx context.Context, filter EntryLogFilter) ([]*EntryLog, int64, error)
	DeleteBySubject(ctx context.Context, subject Subject) error
}
