package usecases

import (
	"context"
	"fmt"

	"custodia/internal/application/ledger"
	"custodia/internal/application/saga"
	"custodia/internal/domain/resident"
	"custodia/internal/shared/config"
	"custodia/internal/shared/errors"
	"custodia/internal/shared/logger"
)

// UpdateResidentCommand represents the input for updating a resident.
// Email, phone and gender are fixed at registration; the remaining profile
// fields can change.
type UpdateResidentCommand struct {
	ExternalID    string
	Name          string
	MaritalStatus string
	ResidentType  string
	Apartment     string
}

// UpdateResidentResult represents the output of updating a resident.
type UpdateResidentResult struct {
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	Apartment  string `json:"apartment"`
	UpdatedAt  string `json:"updated_at"`
}

// UpdateResidentUseCase updates a resident in both stores. The local update
// commits first; the ledger update follows with the merged current values,
// and a ledger failure restores the pre-update snapshot.
type UpdateResidentUseCase struct {
	residents   resident.Repository
	gateway     ledger.Gateway
	calls       ledger.CallBuilder
	ledgerCfg   *config.LedgerConfig
	buildingCfg *config.BuildingConfig
	logger      logger.Interface
}

func NewUpdateResidentUseCase(
	residents resident.Repository,
	gateway ledger.Gateway,
	calls ledger.CallBuilder,
	ledgerCfg *config.LedgerConfig,
	buildingCfg *config.BuildingConfig,
	log logger.Interface,
) *UpdateResidentUseCase {
	return &UpdateResidentUseCase{
		residents:   residents,
		gateway:     gateway,
		calls:       calls,
		ledgerCfg:   ledgerCfg,
		buildingCfg: buildingCfg,
		logger:      log,
	}
}

// Execute updates an existing resident.
func (uc *UpdateResidentUseCase) Execute(ctx context.Context, cmd UpdateResidentCommand) (*UpdateResidentResult, error) {
	uc.logger.Infow("executing update resident use case", "external_id", cmd.ExternalID)

	res, err := uc.residents.GetByExternalID(ctx, cmd.ExternalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get resident: %w", err)
	}
	if res == nil {
		return nil, errors.NewNotFoundError("resident not found", cmd.ExternalID)
	}

	if cmd.Apartment != res.Apartment() {
		count, err := uc.residents.CountByApartment(ctx, cmd.Apartment)
		if err != nil {
			return nil, fmt.Errorf("failed to count apartment residents: %w", err)
		}
		if count >= int64(uc.buildingCfg.ResidentsPerApartment) {
			return nil, errors.NewValidationError(
				"apartment resident limit reached",
				fmt.Sprintf("apartment %s already has %d residents", cmd.Apartment, count),
			)
		}
	}

	snapshot, err := resident.ReconstructResident(
		res.ID(), res.ExternalID(), res.UserID(),
		res.Name(), res.Email(), res.Phone(), res.Gender(), res.MaritalStatus(), res.ResidentType(), res.Apartment(),
		res.CreatedAt(), res.UpdatedAt(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot resident: %w", err)
	}

	if err := res.UpdateProfile(
		cmd.Name, res.Email(), res.Phone(), res.Gender(), cmd.MaritalStatus, cmd.ResidentType, cmd.Apartment,
	); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	steps := []saga.Step{
		{
			Name: "update local record",
			Run: func(ctx context.Context) error {
				if err := uc.residents.Update(ctx, res); err != nil {
					return fmt.Errorf("failed to update resident: %w", err)
				}
				return nil
			},
			Compensate: func(ctx context.Context) error {
				return uc.residents.Update(ctx, snapshot)
			},
		},
		{
			Name: "record on ledger",
			Run: func(ctx context.Context) error {
				call := uc.calls.Call(
					ledger.FnUpdateResident, res.ExternalID(), uc.ledgerCfg.ResidentOrg,
					res.ExternalID(),
					res.Name(),
					res.Email(),
					res.Phone(),
					res.Gender(),
					res.MaritalStatus(),
					res.ResidentType(),
					res.Apartment(),
				)
				_, err := uc.gateway.Invoke(ctx, call)
				return err
			},
		},
	}

	if err := saga.New("update_resident", uc.logger).Run(ctx, steps); err != nil {
		return nil, err
	}

	uc.logger.Infow("resident updated", "external_id", res.ExternalID())
	return &UpdateResidentResult{
		ExternalID: res.ExternalID(),
		Name:       res.Name(),
		Apartment:  res.Apartment(),
		UpdatedAt:  res.UpdatedAt().Format("2006-01-02T15:04:05Z07:00"),
	}, nil
}
