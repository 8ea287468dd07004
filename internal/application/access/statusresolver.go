// Package access holds the application services shared by the gate-side
// read paths.
package access

import (
	"context"
	"fmt"
	"time"

	domain "custodia/internal/domain/access"
	"custodia/internal/shared/biztime"
	"custodia/internal/shared/logger"
)

// Gate status values exposed by listings.
const (
	StatusActive  = "active"
	StatusBlocked = "blocked"
)

// StatusResolver computes a subject's gate status from the block table. An
// expired block encountered on the read path is deleted lazily; the ledger
// side is left to the reaper, whose unblock is idempotent.
type StatusResolver struct {
	blocks domain.BlockRepository
	logger logger.Interface

	now func() time.Time
}

func NewStatusResolver(blocks domain.BlockRepository, log logger.Interface) *StatusResolver {
	return &StatusResolver{
		blocks: blocks,
		logger: log.Named("status"),
		now:    biztime.NowUTC,
	}
}

// WithClock overrides the time source.
func (r *StatusResolver) WithClock(now func() time.Time) *StatusResolver {
	r.now = now
	return r
}

// ResolveResident returns the gate status of a resident.
func (r *StatusResolver) ResolveResident(ctx context.Context, externalID string) (string, error) {
	return r.resolve(ctx, domain.KindResident, externalID)
}

// ResolveVisitor returns the gate status of a visitor.
func (r *StatusResolver) ResolveVisitor(ctx context.Context, externalID string) (string, error) {
	return r.resolve(ctx, domain.KindVisitor, externalID)
}

// Resolve returns the gate status of an arbitrary subject.
func (r *StatusResolver) Resolve(ctx context.Context, subject domain.Subject) (string, error) {
	return r.resolve(ctx, subject.Kind(), subject.ExternalID())
}

func (r *StatusResolver) resolve(ctx context.Context, kind domain.SubjectKind, externalID string) (string, error) {
	subject, err := domain.NewSubject(kind, externalID)
	if err != nil {
		return "", fmt.Errorf("invalid subject: %w", err)
	}

	block, err := r.blocks.GetBySubject(ctx, subject)
	if err != nil {
		return "", fmt.Errorf("failed to get block: %w", err)
	}
	if block == nil {
		return StatusActive, nil
	}

	if block.IsExpired(r.now()) {
		if err := r.blocks.Delete(ctx, block.ID()); err != nil {
			r.logger.Warnw("failed to delete expired block lazily",
				"subject", subject.String(),
				"block_id", block.ID(),
				"error", err,
			)
		}
		return StatusActive, nil
	}
	return StatusBlocked, nil
}
