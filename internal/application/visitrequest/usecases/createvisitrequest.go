package usecases

import (
	"context"
	"fmt"
	"strconv"

	"custodia/internal/application/ledger"
	"custodia/internal/application/saga"
	"custodia/internal/domain/resident"
	"custodia/internal/domain/visitrequest"
	"custodia/internal/shared/config"
	"custodia/internal/shared/errors"
	"custodia/internal/shared/id"
	"custodia/internal/shared/logger"
)

const qrCategoryRequests = "requests"

// CreateVisitRequestCommand represents the input for creating a one-time
// visit request.
type CreateVisitRequestCommand struct {
	CreatedByUserID    uint
	ResidentExternalID string
	VisitorName        string
	VisitorPhone       string
	VisitType          string
	VisitPurpose       string
	CustomReason       string
	VisitTimeFrom      string
	VisitTimeTo        string
	VisitDate          string
}

// CreateVisitRequestResult represents the output of creating a visit request.
type CreateVisitRequestResult struct {
	ExternalID         string `json:"external_id"`
	ResidentExternalID string `json:"resident_external_id"`
	Status             string `json:"status"`
	CreatedAt          string `json:"created_at"`
}

// CreateVisitRequestUseCase creates a request in both stores under one
// shared request ID. The target resident is checked before any write; the
// local insert commits first and is deleted again on ledger failure.
type CreateVisitRequestUseCase struct {
	requests  visitrequest.Repository
	residents resident.Repository
	gateway   ledger.Gateway
	calls     ledger.CallBuilder
	ledgerCfg *config.LedgerConfig
	logger    logger.Interface
}

func NewCreateVisitRequestUseCase(
	requests visitrequest.Repository,
	residents resident.Repository,
	gateway ledger.Gateway,
	calls ledger.CallBuilder,
	ledgerCfg *config.LedgerConfig,
	log logger.Interface,
) *CreateVisitRequestUseCase {
	return &CreateVisitRequestUseCase{
		requests:  requests,
		residents: residents,
		gateway:   gateway,
		calls:     calls,
		ledgerCfg: ledgerCfg,
		logger:    log,
	}
}

// Execute creates a visit request.
func (uc *CreateVisitRequestUseCase) Execute(ctx context.Context, cmd CreateVisitRequestCommand) (*CreateVisitRequestResult, error) {
	uc.logger.Infow("executing create visit request use case",
		"resident", cmd.ResidentExternalID,
		"visit_date", cmd.VisitDate,
	)

	res, err := uc.residents.GetByExternalID(ctx, cmd.ResidentExternalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get resident: %w", err)
	}
	if res == nil {
		return nil, errors.NewNotFoundError("target resident not found", cmd.ResidentExternalID)
	}

	externalID := id.NewVisitRequestID()
	req, err := visitrequest.NewVisitRequest(
		externalID, cmd.CreatedByUserID,
		res.ExternalID(), cmd.VisitorName, cmd.VisitorPhone,
		cmd.VisitType, cmd.VisitPurpose, cmd.CustomReason,
		cmd.VisitTimeFrom, cmd.VisitTimeTo, cmd.VisitDate,
	)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	steps := []saga.Step{
		{
			Name: "persist local record",
			Run: func(ctx context.Context) error {
				if err := uc.requests.Save(ctx, req); err != nil {
					return fmt.Errorf("failed to save visit request: %w", err)
				}
				return nil
			},
			Compensate: func(ctx context.Context) error {
				return uc.requests.Delete(ctx, req.ID())
			},
		},
		{
			Name: "record on ledger",
			Run: func(ctx context.Context) error {
				call := uc.calls.Call(
					ledger.FnAddVisitRequest, res.ExternalID(), uc.ledgerCfg.ResidentOrg,
					req.ExternalID(),
					strconv.FormatUint(uint64(req.CreatedByUserID()), 10),
					res.ExternalID(),
					req.VisitorName(),
					req.VisitorPhone(),
					req.VisitType(),
					req.VisitPurpose(),
					req.CustomReason(),
					req.VisitTimeFrom(),
					req.VisitTimeTo(),
					req.VisitDate(),
				)
				_, err := uc.gateway.Invoke(ctx, call)
				return err
			},
		},
	}

	if err := saga.New("create_visit_request", uc.logger).Run(ctx, steps); err != nil {
		return nil, err
	}

	uc.logger.Infow("visit request created", "external_id", externalID, "resident", res.ExternalID())
	return &CreateVisitRequestResult{
		ExternalID:         req.ExternalID(),
		ResidentExternalID: res.ExternalID(),
		Status:             req.Status(),
		CreatedAt:          req.CreatedAt().Format("2006-01-02T15:04:05Z07:00"),
	}, nil
}
