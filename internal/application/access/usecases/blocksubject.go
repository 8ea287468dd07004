package usecases

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"custodia/internal/application/ledger"
	"custodia/internal/application/saga"
	"custodia/internal/domain/access"
	"custodia/internal/domain/resident"
	"custodia/internal/domain/visitor"
	"custodia/internal/shared/biztime"
	"custodia/internal/shared/config"
	"custodia/internal/shared/errors"
	"custodia/internal/shared/logger"
)

const (
	blockDateLayout = "2006-01-02"
	blockTimeLayout = "15:04"
)

// BlockSubjectCommand represents the input for blocking a resident or
// visitor for a bounded period.
type BlockSubjectCommand struct {
	SubjectKind       access.SubjectKind
	SubjectExternalID string
	Reason            string
	From              time.Time
	To                time.Time
	BlockedByUserID   uint
}

// BlockSubjectResult represents the output of blocking a subject.
type BlockSubjectResult struct {
	SubjectKind       string `json:"subject_kind"`
	SubjectExternalID string `json:"subject_external_id"`
	From              string `json:"from"`
	To                string `json:"to"`
}

// BlockSubjectUseCase suspends a subject's gate access in both stores. The
// local block commits first; the ledger flag follows and a ledger failure
// deletes the local block again. A subject holds at most one active block.
type BlockSubjectUseCase struct {
	blocks    access.BlockRepository
	residents resident.Repository
	visitors  visitor.Repository
	gateway   ledger.Gateway
	calls     ledger.CallBuilder
	ledgerCfg *config.LedgerConfig
	logger    logger.Interface
}

func NewBlockSubjectUseCase(
	blocks access.BlockRepository,
	residents resident.Repository,
	visitors visitor.Repository,
	gateway ledger.Gateway,
	calls ledger.CallBuilder,
	ledgerCfg *config.LedgerConfig,
	log logger.Interface,
) *BlockSubjectUseCase {
	return &BlockSubjectUseCase{
		blocks:    blocks,
		residents: residents,
		visitors:  visitors,
		gateway:   gateway,
		calls:     calls,
		ledgerCfg: ledgerCfg,
		logger:    log,
	}
}

// Execute blocks a subject.
func (uc *BlockSubjectUseCase) Execute(ctx context.Context, cmd BlockSubjectCommand) (*BlockSubjectResult, error) {
	uc.logger.Infow("executing block subject use case",
		"kind", cmd.SubjectKind,
		"external_id", cmd.SubjectExternalID,
	)

	subject, err := access.NewSubject(cmd.SubjectKind, cmd.SubjectExternalID)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	call, err := uc.buildBlockCall(ctx, subject, cmd)
	if err != nil {
		return nil, err
	}

	if existing, err := uc.blocks.GetBySubject(ctx, subject); err != nil {
		return nil, fmt.Errorf("failed to check existing block: %w", err)
	} else if existing != nil {
		return nil, errors.NewValidationError("subject is already blocked", subject.String())
	}

	block, err := access.NewBlock(subject, cmd.Reason, cmd.From, cmd.To)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	steps := []saga.Step{
		{
			Name: "persist local block",
			Run: func(ctx context.Context) error {
				if err := uc.blocks.Save(ctx, block); err != nil {
					if errors.IsDuplicateError(err) {
						return errors.NewValidationError("subject is already blocked", subject.String())
					}
					return fmt.Errorf("failed to save block: %w", err)
				}
				return nil
			},
			Compensate: func(ctx context.Context) error {
				return uc.blocks.Delete(ctx, block.ID())
			},
		},
		{
			Name: "record on ledger",
			Run: func(ctx context.Context) error {
				_, err := uc.gateway.Invoke(ctx, call)
				return err
			},
		},
	}

	if err := saga.New("block_subject", uc.logger).Run(ctx, steps); err != nil {
		return nil, err
	}

	uc.logger.Infow("subject blocked", "subject", subject.String(), "to", block.ToDateTime())
	return &BlockSubjectResult{
		SubjectKind:       string(subject.Kind()),
		SubjectExternalID: subject.ExternalID(),
		From:              block.FromDateTime().Format(time.RFC3339),
		To:                block.ToDateTime().Format(time.RFC3339),
	}, nil
}

// buildBlockCall resolves the subject locally and prepares the matching
// chaincode invocation. Resolution failures surface before any write.
func (uc *BlockSubjectUseCase) buildBlockCall(ctx context.Context, subject access.Subject, cmd BlockSubjectCommand) (ledger.Call, error) {
	from := biztime.In(cmd.From)
	to := biztime.In(cmd.To)
	blockedBy := strconv.FormatUint(uint64(cmd.BlockedByUserID), 10)

	switch subject.Kind() {
	case access.KindResident:
		res, err := uc.residents.GetByExternalID(ctx, subject.ExternalID())
		if err != nil {
			return ledger.Call{}, fmt.Errorf("failed to get resident: %w", err)
		}
		if res == nil {
			return ledger.Call{}, errors.NewNotFoundError("resident not found", subject.ExternalID())
		}
		return uc.calls.Call(
			ledger.FnBlockResident, res.ExternalID(), uc.ledgerCfg.ResidentOrg,
			res.ExternalID(),
			cmd.Reason,
			blockedBy,
			from.Format(blockDateLayout),
			from.Format(blockTimeLayout),
			to.Format(blockDateLayout),
			to.Format(blockTimeLayout),
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
			ledger.FnBlockVisitor, vis.ResidentExternalID(), uc.ledgerCfg.ResidentOrg,
			vis.ExternalID(),
			vis.ResidentExternalID(),
			cmd.Reason,
			from.Format(blockDateLayout),
			from.Format(blockTimeLayout),
			to.Format(blockDateLayout),
			to.Format(blockTimeLayout),
			blockedBy,
		), nil

	default:
		return ledger.Call{}, errors.NewValidationError("subject kind cannot be blocked", string(subject.Kind()))
	}
}
