package usecases

import (
	"context"
	"fmt"

	"custodia/internal/application/ledger"
	"custodia/internal/application/saga"
	"custodia/internal/domain/resident"
	"custodia/internal/domain/user"
	"custodia/internal/shared/config"
	"custodia/internal/shared/errors"
	"custodia/internal/shared/id"
	"custodia/internal/shared/logger"
)

const qrCategoryResidents = "residents"

// RegisterResidentCommand represents the input for registering a resident.
type RegisterResidentCommand struct {
	Name          string
	Email         string
	Phone         string
	Password      string
	Gender        string
	MaritalStatus string
	ResidentType  string
	Apartment     string
}

// RegisterResidentResult represents the output of registering a resident.
type RegisterResidentResult struct {
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Apartment  string `json:"apartment"`
	QRImage    string `json:"qr_image"`
	CreatedAt  string `json:"created_at"`
}

// RegisterResidentUseCase creates a resident in both stores. The local
// records commit first inside one transaction; the ledger write follows and
// a ledger failure removes the local records again.
type RegisterResidentUseCase struct {
	residents   resident.Repository
	users       user.Repository
	gateway     ledger.Gateway
	calls       ledger.CallBuilder
	enroller    IdentityEnroller
	hasher      PasswordHasher
	qr          QRGenerator
	tx          Transactor
	ledgerCfg   *config.LedgerConfig
	buildingCfg *config.BuildingConfig
	logger      logger.Interface
}

func NewRegisterResidentUseCase(
	residents resident.Repository,
	users user.Repository,
	gateway ledger.Gateway,
	calls ledger.CallBuilder,
	enroller IdentityEnroller,
	hasher PasswordHasher,
	qr QRGenerator,
	tx Transactor,
	ledgerCfg *config.LedgerConfig,
	buildingCfg *config.BuildingConfig,
	log logger.Interface,
) *RegisterResidentUseCase {
	return &RegisterResidentUseCase{
		residents:   residents,
		users:       users,
		gateway:     gateway,
		calls:       calls,
		enroller:    enroller,
		hasher:      hasher,
		qr:          qr,
		tx:          tx,
		ledgerCfg:   ledgerCfg,
		buildingCfg: buildingCfg,
		logger:      log,
	}
}

// Execute registers a new resident.
func (uc *RegisterResidentUseCase) Execute(ctx context.Context, cmd RegisterResidentCommand) (*RegisterResidentResult, error) {
	uc.logger.Infow("executing register resident use case", "email", cmd.Email, "apartment", cmd.Apartment)

	if err := uc.validateCommand(ctx, cmd); err != nil {
		return nil, err
	}

	externalID := id.NewResidentID()

	hash, err := uc.hasher.Hash(cmd.Password)
	if err != nil {
		uc.logger.Errorw("failed to hash password", "error", err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	acct, err := user.NewUser(cmd.Name, cmd.Email, hash, user.RoleResident, externalID)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	res, err := resident.NewResident(
		externalID, 0,
		cmd.Name, cmd.Email, cmd.Phone, cmd.Gender, cmd.MaritalStatus, cmd.ResidentType, cmd.Apartment,
	)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	var qrImage string

	steps := []saga.Step{
		{
			Name: "persist local records",
			Run: func(ctx context.Context) error {
				return uc.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
					if err := uc.users.Save(txCtx, acct); err != nil {
						return fmt.Errorf("failed to save user: %w", err)
					}
					fresh, err := resident.NewResident(
						externalID, acct.ID(),
						cmd.Name, cmd.Email, cmd.Phone, cmd.Gender, cmd.MaritalStatus, cmd.ResidentType, cmd.Apartment,
					)
					if err != nil {
						return err
					}
					res = fresh
					if err := uc.residents.Save(txCtx, res); err != nil {
						return fmt.Errorf("failed to save resident: %w", err)
					}
					return nil
				})
			},
			Compensate: func(ctx context.Context) error {
				if err := uc.residents.Delete(ctx, res.ID()); err != nil {
					return err
				}
				return uc.users.Delete(ctx, acct.ID())
			},
		},
		{
			Name: "render QR artifact",
			Run: func(ctx context.Context) error {
				img, err := uc.qr.Generate(qrCategoryResidents, externalID)
				if err != nil {
					return fmt.Errorf("failed to generate QR code: %w", err)
				}
				qrImage = img
				return nil
			},
			Compensate: func(ctx context.Context) error {
				return uc.qr.Remove(qrCategoryResidents, externalID)
			},
		},
		{
			Name: "enroll ledger identity",
			Run: func(ctx context.Context) error {
				return uc.enroller.EnsureResident(ctx, externalID)
			},
		},
		{
			Name: "record on ledger",
			Run: func(ctx context.Context) error {
				call := uc.calls.Call(
					ledger.FnRegisterResident, externalID, uc.ledgerCfg.ResidentOrg,
					res.ExternalID(),
					res.Name(),
					res.Email(),
					res.Phone(),
					res.Gender(),
					res.MaritalStatus(),
					res.ResidentType(),
					res.Apartment(),
				)
				if _, err := uc.gateway.Invoke(ctx, call); err != nil {
					return err
				}
				return nil
			},
		},
	}

	if err := saga.New("register_resident", uc.logger).Run(ctx, steps); err != nil {
		return nil, err
	}

	uc.logger.Infow("resident registered", "external_id", externalID, "apartment", res.Apartment())
	return &RegisterResidentResult{
		ExternalID: externalID,
		Name:       res.Name(),
		Email:      res.Email(),
		Apartment:  res.Apartment(),
		QRImage:    qrImage,
		CreatedAt:  res.CreatedAt().Format("2006-01-02T15:04:05Z07:00"),
	}, nil
}

func (uc *RegisterResidentUseCase) validateCommand(ctx context.Context, cmd RegisterResidentCommand) error {
	if cmd.Name == "" || cmd.Email == "" || cmd.Phone == "" || cmd.Apartment == "" {
		return errors.NewValidationError("name, email, phone and apartment are required")
	}
	if len(cmd.Password) < 8 {
		return errors.NewValidationError("password must be at least 8 characters long")
	}

	if existing, err := uc.users.GetByEmail(ctx, cmd.Email); err != nil {
		return fmt.Errorf("failed to check existing user: %w", err)
	} else if existing != nil {
		return errors.NewValidationError("email already registered", cmd.Email)
	}
	if existing, err := uc.residents.GetByPhone(ctx, cmd.Phone); err != nil {
		return fmt.Errorf("failed to check existing phone: %w", err)
	} else if existing != nil {
		return errors.NewValidationError("phone already registered", cmd.Phone)
	}

	count, err := uc.residents.CountByApartment(ctx, cmd.Apartment)
	if err != nil {
		return fmt.Errorf("failed to count apartment residents: %w", err)
	}
	if count >= int64(uc.buildingCfg.ResidentsPerApartment) {
		return errors.NewValidationError(
			"apartment resident limit reached",
			fmt.Sprintf("apartment %s already has %d residents", cmd.Apartment, count),
		)
	}
	return nil
}
