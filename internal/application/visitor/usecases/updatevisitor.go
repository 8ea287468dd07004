package usecases

import (
	"context"
	"fmt"

	"custodia/internal/application/ledger"
	"custodia/internal/application/saga"
	"custodia/internal/domain/visitor"
	"custodia/internal/shared/config"
	"custodia/internal/shared/errors"
	"custodia/internal/shared/logger"
)

// UpdateVisitorCommand represents the input for updating a visitor.
type UpdateVisitorCommand struct {
	ExternalID    string
	FullName      string
	Phone         string
	Relationship  string
	VisitTimeFrom string
	VisitTimeTo   string
}

// UpdateVisitorResult represents the output of updating a visitor.
type UpdateVisitorResult struct {
	ExternalID    string `json:"external_id"`
	FullName      string `json:"full_name"`
	VisitTimeFrom string `json:"visit_time_from"`
	VisitTimeTo   string `json:"visit_time_to"`
	UpdatedAt     string `json:"updated_at"`
}

// UpdateVisitorUseCase updates a visitor in both stores with snapshot revert
// on ledger failure.
type UpdateVisitorUseCase struct {
	visitors  visitor.Repository
	gateway   ledger.Gateway
	calls     ledger.CallBuilder
	ledgerCfg *config.LedgerConfig
	logger    logger.Interface
}

func NewUpdateVisitorUseCase(
	visitors visitor.Repository,
	gateway ledger.Gateway,
	calls ledger.CallBuilder,
	ledgerCfg *config.LedgerConfig,
	log logger.Interface,
) *UpdateVisitorUseCase {
	return &UpdateVisitorUseCase{
		visitors:  visitors,
		gateway:   gateway,
		calls:     calls,
		ledgerCfg: ledgerCfg,
		logger:    log,
	}
}

// Execute updates an existing visitor.
func (uc *UpdateVisitorUseCase) Execute(ctx context.Context, cmd UpdateVisitorCommand) (*UpdateVisitorResult, error) {
	uc.logger.Infow("executing update visitor use case", "external_id", cmd.ExternalID)

	vis, err := uc.visitors.GetByExternalID(ctx, cmd.ExternalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get visitor: %w", err)
	}
	if vis == nil {
		return nil, errors.NewNotFoundError("visitor not found", cmd.ExternalID)
	}

	if cmd.Phone != vis.Phone() {
		if existing, err := uc.visitors.GetByPhone(ctx, cmd.Phone); err != nil {
			return nil, fmt.Errorf("failed to check existing visitor: %w", err)
		} else if existing != nil {
			return nil, errors.NewValidationError("visitor phone already registered", cmd.Phone)
		}
	}

	snapshot, err := visitor.ReconstructVisitor(
		vis.ID(), vis.ExternalID(), vis.ResidentExternalID(),
		vis.FullName(), vis.Phone(), vis.Relationship(), vis.VisitTimeFrom(), vis.VisitTimeTo(),
		vis.CreatedAt(), vis.UpdatedAt(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot visitor: %w", err)
	}

	if err := vis.UpdateProfile(cmd.FullName, cmd.Phone, cmd.Relationship, cmd.VisitTimeFrom, cmd.VisitTimeTo); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	steps := []saga.Step{
		{
			Name: "update local record",
			Run: func(ctx context.Context) error {
				if err := uc.visitors.Update(ctx, vis); err != nil {
					return fmt.Errorf("failed to update visitor: %w", err)
				}
				return nil
			},
			Compensate: func(ctx context.Context) error {
				return uc.visitors.Update(ctx, snapshot)
			},
		},
		{
			Name: "record on ledger",
			Run: func(ctx context.Context) error {
				call := uc.calls.Call(
					ledger.FnUpdateVisitor, vis.ResidentExternalID(), uc.ledgerCfg.ResidentOrg,
					vis.ResidentExternalID(),
					vis.ExternalID(),
					vis.Phone(),
					vis.VisitTimeFrom(),
					vis.VisitTimeTo(),
				)
				_, err := uc.gateway.Invoke(ctx, call)
				return err
			},
		},
	}

	if err := saga.New("update_visitor", uc.logger).Run(ctx, steps); err != nil {
		return nil, err
	}

	uc.logger.Infow("visitor updated", "external_id", vis.ExternalID())
	return &UpdateVisitorResult{
		ExternalID:    vis.ExternalID(),
		FullName:      vis.FullName(),
		VisitTimeFrom: vis.VisitTimeFrom(),
		VisitTimeTo:   vis.VisitTimeTo(),
		UpdatedAt:     vis.UpdatedAt().Format("2006-01-02T15:04:05Z07:00"),
	}, nil
}
