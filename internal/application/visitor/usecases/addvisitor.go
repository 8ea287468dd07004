package usecases

import (
	"context"
	"fmt"

	"custodia/internal/application/ledger"
	"custodia/internal/application/saga"
	"custodia/internal/domain/resident"
	"custodia/internal/domain/visitor"
	"custodia/internal/shared/config"
	"custodia/internal/shared/errors"
	"custodia/internal/shared/id"
	"custodia/internal/shared/logger"
)

const qrCategoryVisitors = "visitors"

// AddVisitorCommand represents the input for adding a recurring visitor.
type AddVisitorCommand struct {
	ResidentExternalID string
	FullName           string
	Phone              string
	Relationship       string
	VisitTimeFrom      string
	VisitTimeTo        string
}

// AddVisitorResult represents the output of adding a visitor.
type AddVisitorResult struct {
	ExternalID         string `json:"external_id"`
	ResidentExternalID string `json:"resident_external_id"`
	FullName           string `json:"full_name"`
	QRImage            string `json:"qr_image"`
	CreatedAt          string `json:"created_at"`
}

// AddVisitorUseCase creates a recurring visitor in both stores. The local
// record commits first; the ledger write follows and a ledger failure
// removes the local record again.
type AddVisitorUseCase struct {
	visitors    visitor.Repository
	residents   resident.Repository
	gateway     ledger.Gateway
	calls       ledger.CallBuilder
	qr          QRGenerator
	ledgerCfg   *config.LedgerConfig
	buildingCfg *config.BuildingConfig
	logger      logger.Interface
}

func NewAddVisitorUseCase(
	visitors visitor.Repository,
	residents resident.Repository,
	gateway ledger.Gateway,
	calls ledger.CallBuilder,
	qr QRGenerator,
	ledgerCfg *config.LedgerConfig,
	buildingCfg *config.BuildingConfig,
	log logger.Interface,
) *AddVisitorUseCase {
	return &AddVisitorUseCase{
		visitors:    visitors,
		residents:   residents,
		gateway:     gateway,
		calls:       calls,
		qr:          qr,
		ledgerCfg:   ledgerCfg,
		buildingCfg: buildingCfg,
		logger:      log,
	}
}

// Execute adds a visitor for a resident.
func (uc *AddVisitorUseCase) Execute(ctx context.Context, cmd AddVisitorCommand) (*AddVisitorResult, error) {
	uc.logger.Infow("executing add visitor use case", "resident", cmd.ResidentExternalID, "phone", cmd.Phone)

	res, err := uc.residents.GetByExternalID(ctx, cmd.ResidentExternalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get resident: %w", err)
	}
	if res == nil {
		return nil, errors.NewNotFoundError("resident not found", cmd.ResidentExternalID)
	}

	if existing, err := uc.visitors.GetByPhone(ctx, cmd.Phone); err != nil {
		return nil, fmt.Errorf("failed to check existing visitor: %w", err)
	} else if existing != nil {
		return nil, errors.NewValidationError("visitor phone already registered", cmd.Phone)
	}

	count, err := uc.visitors.CountByResident(ctx, res.ExternalID())
	if err != nil {
		return nil, fmt.Errorf("failed to count visitors: %w", err)
	}
	if count >= int64(uc.buildingCfg.MaxVisitorsPerResident) {
		return nil, errors.NewValidationError(
			"visitor limit reached",
			fmt.Sprintf("resident %s already has %d visitors", res.ExternalID(), count),
		)
	}

	externalID := id.NewVisitorID()
	vis, err := visitor.NewVisitor(
		externalID, res.ExternalID(),
		cmd.FullName, cmd.Phone, cmd.Relationship, cmd.VisitTimeFrom, cmd.VisitTimeTo,
	)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	var qrImage string

	steps := []saga.Step{
		{
			Name: "persist local record",
			Run: func(ctx context.Context) error {
				if err := uc.visitors.Save(ctx, vis); err != nil {
					return fmt.Errorf("failed to save visitor: %w", err)
				}
				return nil
			},
			Compensate: func(ctx context.Context) error {
				return uc.visitors.Delete(ctx, vis.ID())
			},
		},
		{
			Name: "render QR artifact",
			Run: func(ctx context.Context) error {
				img, err := uc.qr.Generate(qrCategoryVisitors, externalID)
				if err != nil {
					return fmt.Errorf("failed to generate QR code: %w", err)
				}
				qrImage = img
				return nil
			},
			Compensate: func(ctx context.Context) error {
				return uc.qr.Remove(qrCategoryVisitors, externalID)
			},
		},
		{
			Name: "record on ledger",
			Run: func(ctx context.Context) error {
				call := uc.calls.Call(
					ledger.FnAddVisitor, res.ExternalID(), uc.ledgerCfg.ResidentOrg,
					res.ExternalID(),
					vis.ExternalID(),
					vis.FullName(),
					vis.Phone(),
					vis.VisitTimeFrom(),
					vis.VisitTimeTo(),
					vis.Relationship(),
				)
				_, err := uc.gateway.Invoke(ctx, call)
				return err
			},
		},
	}

	if err := saga.New("add_visitor", uc.logger).Run(ctx, steps); err != nil {
		return nil, err
	}

	uc.logger.Infow("visitor added", "external_id", externalID, "resident", res.ExternalID())
	return &AddVisitorResult{
		ExternalID:         externalID,
		ResidentExternalID: res.ExternalID(),
		FullName:           vis.FullName(),
		QRImage:            qrImage,
		CreatedAt:          vis.CreatedAt().Format("2006-01-02T15:04:05Z07:00"),
	}, nil
}
