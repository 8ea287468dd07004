package usecases

import (
	"context"
	"fmt"

	"custodia/internal/domain/user"
	"custodia/internal/shared/config"
	"custodia/internal/shared/errors"
	"custodia/internal/shared/logger"
)

// PasswordVerifier compares a plaintext password against a stored hash.
type PasswordVerifier interface {
	Compare(hash, password string) error
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	GenerateToken(userID uint, role, externalID string) (string, error)
}

// IdentityChecker reports whether an identity is enrolled on the ledger.
type IdentityChecker interface {
	IsRegistered(ctx context.Context, identity, org string) (bool, error)
}

// LoginCommand represents the input for logging in.
type LoginCommand struct {
	Email    string
	Password string
}

// LoginResult represents a successful login.
type LoginResult struct {
	Token      string `json:"token"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	ExternalID string `json:"external_id,omitempty"`
}

// LoginUseCase authenticates a user. After the password check, the user's
// ledger enrollment is verified before any token is issued: residents must
// hold their own identity on the resident org, administrators the admin
// identity on the admin org. A user the ledger does not know cannot log in.
type LoginUseCase struct {
	users     user.Repository
	verifier  PasswordVerifier
	tokens    TokenIssuer
	identity  IdentityChecker
	ledgerCfg *config.LedgerConfig
	logger    logger.Interface
}

func NewLoginUseCase(
	users user.Repository,
	verifier PasswordVerifier,
	tokens TokenIssuer,
	identity IdentityChecker,
	ledgerCfg *config.LedgerConfig,
	log logger.Interface,
) *LoginUseCase {
	return &LoginUseCase{
		users:     users,
		verifier:  verifier,
		tokens:    tokens,
		identity:  identity,
		ledgerCfg: ledgerCfg,
		logger:    log,
	}
}

// Execute authenticates the user and issues an access token.
func (uc *LoginUseCase) Execute(ctx context.Context, cmd LoginCommand) (*LoginResult, error) {
	if cmd.Email == "" || cmd.Password == "" {
		return nil, errors.NewValidationError("email and password are required")
	}

	acct, err := uc.users.GetByEmail(ctx, cmd.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if acct == nil {
		return nil, errors.NewUnauthorizedError("invalid email or password")
	}

	if err := uc.verifier.Compare(acct.PasswordHash(), cmd.Password); err != nil {
		uc.logger.Warnw("password mismatch", "email", cmd.Email)
		return nil, errors.NewUnauthorizedError("invalid email or password")
	}

	identity, org := acct.Name(), uc.ledgerCfg.AdminOrg
	if acct.Role() == user.RoleResident {
		identity, org = acct.ExternalID(), uc.ledgerCfg.ResidentOrg
	}
	registered, err := uc.identity.IsRegistered(ctx, identity, org)
	if err != nil {
		return nil, err
	}
	if !registered {
		uc.logger.Warnw("login rejected, identity not enrolled", "identity", identity, "org", org)
		return nil, errors.NewUnauthorizedError("account is not enrolled with the ledger")
	}

	token, err := uc.tokens.GenerateToken(acct.ID(), acct.Role(), acct.ExternalID())
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	uc.logger.Infow("user logged in", "user_id", acct.ID(), "role", acct.Role())
	return &LoginResult{
		Token:      token,
		Name:       acct.Name(),
		Role:       acct.Role(),
		ExternalID: acct.ExternalID(),
	}, nil
}
