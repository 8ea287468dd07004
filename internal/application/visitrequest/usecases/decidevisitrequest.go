package usecases

import (
	"context"
	"fmt"
	"strconv"

	"custodia/internal/application/ledger"
	"custodia/internal/domain/visitrequest"
	"custodia/internal/shared/config"
	"custodia/internal/shared/errors"
	"custodia/internal/shared/logger"
)

// DecideVisitRequestCommand represents the input for deciding a pending
// visit request.
type DecideVisitRequestCommand struct {
	ExternalID      string
	Status          string
	DecidedByUserID uint
}

// DecideVisitRequestResult represents the output of deciding a request.
type DecideVisitRequestResult struct {
	ExternalID string `json:"external_id"`
	Status     string `json:"status"`
	QRImage    string `json:"qr_image,omitempty"`
	UpdatedAt  string `json:"updated_at"`
}

// DecideVisitRequestUseCase accepts or rejects a pending request. This flow
// is ledger-first: the QR artifact and the local status only materialize
// after the ledger acknowledged the status change, so an accepted token can
// always be verified against ledger truth.
type DecideVisitRequestUseCase struct {
	requests  visitrequest.Repository
	gateway   ledger.Gateway
	calls     ledger.CallBuilder
	qr        QRGenerator
	notifier  DecisionNotifier
	ledgerCfg *config.LedgerConfig
	logger    logger.Interface
}

func NewDecideVisitRequestUseCase(
	requests visitrequest.Repository,
	gateway ledger.Gateway,
	calls ledger.CallBuilder,
	qr QRGenerator,
	notifier DecisionNotifier,
	ledgerCfg *config.LedgerConfig,
	log logger.Interface,
) *DecideVisitRequestUseCase {
	return &DecideVisitRequestUseCase{
		requests:  requests,
		gateway:   gateway,
		calls:     calls,
		qr:        qr,
		notifier:  notifier,
		ledgerCfg: ledgerCfg,
		logger:    log,
	}
}

// Execute decides a pending visit request.
func (uc *DecideVisitRequestUseCase) Execute(ctx context.Context, cmd DecideVisitRequestCommand) (*DecideVisitRequestResult, error) {
	uc.logger.Infow("executing decide visit request use case",
		"external_id", cmd.ExternalID,
		"status", cmd.Status,
	)

	if cmd.Status != visitrequest.StatusAccepted && cmd.Status != visitrequest.StatusRejected {
		return nil, errors.NewValidationError("invalid status value", cmd.Status)
	}

	req, err := uc.requests.GetByExternalID(ctx, cmd.ExternalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get visit request: %w", err)
	}
	if req == nil {
		return nil, errors.NewNotFoundError("visit request not found", cmd.ExternalID)
	}
	if !req.IsPending() {
		return nil, errors.NewValidationError("visit request already decided", req.Status())
	}

	call := uc.calls.Call(
		ledger.FnUpdateVisitRequestStatus, req.ResidentExternalID(), uc.ledgerCfg.ResidentOrg,
		req.ExternalID(),
		cmd.Status,
		strconv.FormatUint(uint64(cmd.DecidedByUserID), 10),
	)
	if _, err := uc.gateway.Invoke(ctx, call); err != nil {
		uc.logger.Errorw("ledger rejected status change, aborting before local update",
			"external_id", req.ExternalID(),
			"error", err,
		)
		return nil, err
	}

	if err := req.Decide(cmd.Status, cmd.DecidedByUserID); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	var qrImage string
	if req.IsAccepted() {
		img, err := uc.qr.Generate(qrCategoryRequests, req.ExternalID())
		if err != nil {
			return nil, fmt.Errorf("failed to generate QR code: %w", err)
		}
		qrImage = img
		if err := req.AttachQR(req.ExternalID(), img); err != nil {
			return nil, fmt.Errorf("failed to attach QR: %w", err)
		}
	}

	if err := uc.requests.Update(ctx, req); err != nil {
		// The ledger already holds the new status. The local row still says
		// pending, so a retry of the same decision reconverges the stores.
		uc.logger.Errorw("OPERATOR ACTION REQUIRED: ledger updated but local status update failed",
			"external_id", req.ExternalID(),
			"status", cmd.Status,
			"error", err,
		)
		return nil, errors.NewPartialFailureError(
			"status recorded on ledger but local update failed",
			err.Error(),
		)
	}

	if uc.notifier != nil {
		if err := uc.notifier.NotifyDecision(ctx, req); err != nil {
			uc.logger.Warnw("failed to send decision notification",
				"external_id", req.ExternalID(),
				"error", err,
			)
		}
	}

	uc.logger.Infow("visit request decided", "external_id", req.ExternalID(), "status", req.Status())
	return &DecideVisitRequestResult{
		ExternalID: req.ExternalID(),
		Status:     req.Status(),
		QRImage:    qrImage,
		UpdatedAt:  req.UpdatedAt().Format("2006-01-02T15:04:05Z07:00"),
	}, nil
}
