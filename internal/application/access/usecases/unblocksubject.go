package usecases

import (
	"context"
	"fmt"

	"custodia/internal/application/ledger"
	"custodia/internal/application/saga"
	"custodia/internal/domain/access"
	"custodia/internal/domain/visitor"
	"custodia/internal/shared/config"
	"custodia/internal/shared/errors"
	"custodia/internal/shared/logger"
)

// UnblockSubjectCommand represents the input for lifting a subject's block.
type UnblockSubjectCommand struct {
	SubjectKind       access.SubjectKind
	SubjectExternalID string
}

// UnblockSubjectUseCase lifts a block in both stores. The local block is
// deleted first; the ledger flag is cleared next and a ledger failure
// re-creates the local block.
type UnblockSubjectUseCase struct {
	blocks    access.BlockRepository
	visitors  visitor.Repository
	gateway   ledger.Gateway
	calls     ledger.CallBuilder
	ledgerCfg *config.LedgerConfig
	logger    logger.Interface
}

func NewUnblockSubjectUseCase(
	blocks access.BlockRepository,
	visitors visitor.Repository,
	gateway ledger.Gateway,
	calls ledger.CallBuilder,
	ledgerCfg *config.LedgerConfig,
	log logger.Interface,
) *UnblockSubjectUseCase {
	return &UnblockSubjectUseCase{
		blocks:    blocks,
		visitors:  visitors,
		gateway:   gateway,
		calls:     calls,
		ledgerCfg: ledgerCfg,
		logger:    log,
	}
}

// Execute unblocks a subject.
func (uc *UnblockSubjectUseCase) Execute(ctx context.Context, cmd UnblockSubjectCommand) error {
	uc.logger.Infow("executing unblock subject use case",
		"kind", cmd.SubjectKind,
		"external_id", cmd.SubjectExternalID,
	)

	subject, err := access.NewSubject(cmd.SubjectKind, cmd.SubjectExternalID)
	if err != nil {
		return errors.NewValidationError(err.Error())
	}

	block, err := uc.blocks.GetBySubject(ctx, subject)
	if err != nil {
		return fmt.Errorf("failed to get block: %w", err)
	}
	if block == nil {
		return errors.NewNotFoundError("subject is not blocked", subject.String())
	}

	call, err := uc.buildUnblockCall(ctx, subject)
	if err != nil {
		return err
	}

	steps := []saga.Step{
		{
			Name: "delete local block",
			Run: func(ctx context.Context) error {
				if err := uc.blocks.Delete(ctx, block.ID()); err != nil {
					return fmt.Errorf("failed to delete block: %w", err)
				}
				return nil
			},
			Compensate: func(ctx context.Context) error {
				restored, err := access.NewBlock(subject, block.Reason(), block.FromDateTime(), block.ToDateTime())
				if err != nil {
					return err
				}
				return uc.blocks.Save(ctx, restored)
			},
		},
		{
			Name: "clear ledger flag",
			Run: func(ctx context.Context) error {
				_, err := uc.gateway.Invoke(ctx, call)
				return err
			},
		},
	}

	if err := saga.New("unblock_subject", uc.logger).Run(ctx, steps); err != nil {
		return err
	}

	uc.logger.Infow("subject unblocked", "subject", subject.String())
	return nil
}

func (uc *UnblockSubjectUseCase) buildUnblockCall(ctx context.Context, subject access.Subject) (ledger.Call, error) {
	switch subject.Kind() {
	case access.KindResident:
		return uc.calls.Call(
			ledger.FnUnblockResident, subject.ExternalID(), uc.ledgerCfg.ResidentOrg,
			subject.ExternalID(),
		), nil

	case access.KindVisitor:
		vis, err := uc.visitors.GetByExternalID(ctx, subject.ExternalID())
		if err != nil {
			return ledger.Call{}, fmt.Errorf("failed to get visitor: %w", err)
		}
		if vis == nil {
			return ledger.Call{}, errors.NewNotFoundError("visitor not found", subject.ExternalID())
		}
		return uc.calls.Call(
			ledger.FnUnblockVisitor, vis.ResidentExternalID(), uc.ledgerCfg.ResidentOrg,
			vis.ExternalID(),
			vis.ResidentExternalID(),
		), nil

	default:
		return ledger.Call{}, errors.NewValidationError("subject kind cannot be unblocked", string(subject.Kind()))
	}
}
