package usecases

import (
	"context"
	"fmt"

	"custodia/internal/domain/access"
	"custodia/internal/domain/resident"
	"custodia/internal/domain/user"
	"custodia/internal/domain/visitor"
	"custodia/internal/domain/visitrequest"
	"custodia/internal/shared/errors"
	"custodia/internal/shared/logger"
)

// DeleteResidentCommand represents the input for deleting a resident.
type DeleteResidentCommand struct {
	ExternalID string
}

// DeleteResidentUseCase removes a resident and everything hanging off it
// from the local store. The ledger record stays as a tombstone; external IDs
// are never reused, so the stale ledger entry can never be resolved again.
type DeleteResidentUseCase struct {
	residents resident.Repository
	users     user.Repository
	visitors  visitor.Repository
	requests  visitrequest.Repository
	blocks    access.BlockRepository
	entryLogs access.EntryLogRepository
	qr        QRGenerator
	tx        Transactor
	logger    logger.Interface
}

func NewDeleteResidentUseCase(
	residents resident.Repository,
	users user.Repository,
	visitors visitor.Repository,
	requests visitrequest.Repository,
	blocks access.BlockRepository,
	entryLogs access.EntryLogRepository,
	qr QRGenerator,
	tx Transactor,
	log logger.Interface,
) *DeleteResidentUseCase {
	return &DeleteResidentUseCase{
		residents: residents,
		users:     users,
		visitors:  visitors,
		requests:  requests,
		blocks:    blocks,
		entryLogs: entryLogs,
		qr:        qr,
		tx:        tx,
		logger:    log,
	}
}

// Execute deletes a resident and its dependent records.
func (uc *DeleteResidentUseCase) Execute(ctx context.Context, cmd DeleteResidentCommand) error {
	uc.logger.Infow("executing delete resident use case", "external_id", cmd.ExternalID)

	res, err := uc.residents.GetByExternalID(ctx, cmd.ExternalID)
	if err != nil {
		return fmt.Errorf("failed to get resident: %w", err)
	}
	if res == nil {
		return errors.NewNotFoundError("resident not found", cmd.ExternalID)
	}

	subject, err := access.NewSubject(access.KindResident, res.ExternalID())
	if err != nil {
		return fmt.Errorf("failed to build subject: %w", err)
	}

	err = uc.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.entryLogs.DeleteBySubject(txCtx, subject); err != nil {
			return fmt.Errorf("failed to delete entry logs: %w", err)
		}
		if err := uc.blocks.DeleteBySubject(txCtx, subject); err != nil {
			return fmt.Errorf("failed to delete blocks: %w", err)
		}
		if err := uc.visitors.DeleteByResident(txCtx, res.ExternalID()); err != nil {
			return fmt.Errorf("failed to delete visitors: %w", err)
		}
		if err := uc.requests.DeleteByResident(txCtx, res.ExternalID()); err != nil {
			return fmt.Errorf("failed to delete visit requests: %w", err)
		}
		if err := uc.residents.Delete(txCtx, res.ID()); err != nil {
			return fmt.Errorf("failed to delete resident: %w", err)
		}
		if res.UserID() != 0 {
			if err := uc.users.Delete(txCtx, res.UserID()); err != nil {
				return fmt.Errorf("failed to delete user: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := uc.qr.Remove(qrCategoryResidents, res.ExternalID()); err != nil {
		uc.logger.Warnw("failed to remove QR artifact", "external_id", res.ExternalID(), "error", err)
	}

	uc.logger.Infow("resident deleted", "external_id", res.ExternalID())
	return nil
}
