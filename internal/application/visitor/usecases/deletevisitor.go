package usecases

import (
	"context"
	"fmt"

	"custodia/internal/domain/access"
	"custodia/internal/domain/visitor"
	"custodia/internal/shared/errors"
	"custodia/internal/shared/logger"
)

// DeleteVisitorCommand represents the input for deleting a visitor.
type DeleteVisitorCommand struct {
	ExternalID string
}

// DeleteVisitorUseCase removes a visitor and its dependent local records.
// The ledger record stays as a tombstone.
type DeleteVisitorUseCase struct {
	visitors  visitor.Repository
	blocks    access.BlockRepository
	entryLogs access.EntryLogRepository
	qr        QRGenerator
	logger    logger.Interface
}

func NewDeleteVisitorUseCase(
	visitors visitor.Repository,
	blocks access.BlockRepository,
	entryLogs access.EntryLogRepository,
	qr QRGenerator,
	log logger.Interface,
) *DeleteVisitorUseCase {
	return &DeleteVisitorUseCase{
		visitors:  visitors,
		blocks:    blocks,
		entryLogs: entryLogs,
		qr:        qr,
		logger:    log,
	}
}

// Execute deletes a visitor.
func (uc *DeleteVisitorUseCase) Execute(ctx context.Context, cmd DeleteVisitorCommand) error {
	uc.logger.Infow("executing delete visitor use case", "external_id", cmd.ExternalID)

	vis, err := uc.visitors.GetByExternalID(ctx, cmd.ExternalID)
	if err != nil {
		return fmt.Errorf("failed to get visitor: %w", err)
	}
	if vis == nil {
		return errors.NewNotFoundError("visitor not found", cmd.ExternalID)
	}

	subject, err := access.NewSubject(access.KindVisitor, vis.ExternalID())
	if err != nil {
		return fmt.Errorf("failed to build subject: %w", err)
	}

	if err := uc.entryLogs.DeleteBySubject(ctx, subject); err != nil {
		return fmt.Errorf("failed to delete entry logs: %w", err)
	}
	if err := uc.blocks.DeleteBySubject(ctx, subject); err != nil {
		return fmt.Errorf("failed to delete blocks: %w", err)
	}
	if err := uc.visitors.Delete(ctx, vis.ID()); err != nil {
		return fmt.Errorf("failed to delete visitor: %w", err)
	}

	if err := uc.qr.Remove(qrCategoryVisitors, vis.ExternalID()); err != nil {
		uc.logger.Warnw("failed to remove QR artifact", "external_id", vis.ExternalID(), "error", err)
	}

	uc.logger.Infow("visitor deleted", "external_id", vis.ExternalID())
	return nil
}
