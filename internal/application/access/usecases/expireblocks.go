package usecases

import (
	"context"
	"fmt"
	"time"

	"custodia/internal/application/ledger"
	"custodia/internal/domain/access"
	"custodia/internal/domain/visitor"
	"custodia/internal/shared/biztime"
	"custodia/internal/shared/config"
	"custodia/internal/shared/errors"
	"custodia/internal/shared/logger"
)

// ExpireBlocksUseCase is the reaper cycle: it lifts every block whose end
// has passed, clearing the ledger flag first and deleting the local block
// only after the ledger acknowledged. A failed item stays blocked and is
// retried next cycle; the ledger unblock is idempotent, so the at-least-once
// cadence is safe.
type ExpireBlocksUseCase struct {
	blocks    access.BlockRepository
	visitors  visitor.Repository
	gateway   ledger.Gateway
	calls     ledger.CallBuilder
	ledgerCfg *config.LedgerConfig
	logger    logger.Interface

	// now is injectable for tests.
	now func() time.Time
}

func NewExpireBlocksUseCase(
	blocks access.BlockRepository,
	visitors visitor.Repository,
	gateway ledger.Gateway,
	calls ledger.CallBuilder,
	ledgerCfg *config.LedgerConfig,
	log logger.Interface,
) *ExpireBlocksUseCase {
	return &ExpireBlocksUseCase{
		blocks:    blocks,
		visitors:  visitors,
		gateway:   gateway,
		calls:     calls,
		ledgerCfg: ledgerCfg,
		logger:    log,
		now:       biztime.NowUTC,
	}
}

// WithClock overrides the time source.
func (uc *ExpireBlocksUseCase) WithClock(now func() time.Time) *ExpireBlocksUseCase {
	uc.now = now
	return uc
}

// Execute runs one reaper cycle and returns the number of blocks lifted.
func (uc *ExpireBlocksUseCase) Execute(ctx context.Context) (int, error) {
	expired, err := uc.blocks.ListExpired(ctx, uc.now())
	if err != nil {
		return 0, fmt.Errorf("failed to list expired blocks: %w", err)
	}
	if len(expired) == 0 {
		return 0, nil
	}

	uc.logger.Infow("reaping expired blocks", "count", len(expired))

	lifted := 0
	var firstErr error
	for _, block := range expired {
		if err := uc.liftBlock(ctx, block); err != nil {
			uc.logger.Errorw("failed to lift expired block, will retry next cycle",
				"subject", block.Subject().String(),
				"block_id", block.ID(),
				"error", err,
			)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		lifted++
	}

	if firstErr != nil {
		return lifted, fmt.Errorf("reaper cycle completed with failures: %w", firstErr)
	}
	return lifted, nil
}

func (uc *ExpireBlocksUseCase) liftBlock(ctx context.Context, block *access.Block) error {
	subject := block.Subject()

	var call ledger.Call
	switch subject.Kind() {
	case access.KindResident:
		call = uc.calls.Call(
			ledger.FnUnblockResident, subject.ExternalID(), uc.ledgerCfg.ResidentOrg,
			subject.ExternalID(),
		)
	case access.KindVisitor:
		vis, err := uc.visitors.GetByExternalID(ctx, subject.ExternalID())
		if err != nil {
			return fmt.Errorf("failed to get visitor: %w", err)
		}
		if vis == nil {
			// The visitor was deleted out from under the block. Nothing to
			// unblock on the ledger; drop the orphaned row.
			return uc.blocks.Delete(ctx, block.ID())
		}
		call = uc.calls.Call(
			ledger.FnUnblockVisitor, vis.ResidentExternalID(), uc.ledgerCfg.ResidentOrg,
			vis.ExternalID(),
			vis.ResidentExternalID(),
		)
	default:
		return errors.NewValidationError("unexpected blocked subject kind", string(subject.Kind()))
	}

	if _, err := uc.gateway.Invoke(ctx, call); err != nil {
		return err
	}
	if err := uc.blocks.Delete(ctx, block.ID()); err != nil {
		return fmt.Errorf("failed to delete lifted block: %w", err)
	}
	return nil
}
