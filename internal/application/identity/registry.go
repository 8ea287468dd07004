// Package identity wraps ledger identity enrollment. Residents are enrolled
// on the resident org at registration time so their gateway calls can run
// under their own identity; administrators are enrolled on the admin org.
package identity

import (
	"context"
	"fmt"

	"custodia/internal/application/ledger"
	"custodia/internal/shared/config"
	"custodia/internal/shared/logger"
)

type Registry struct {
	gateway ledger.Gateway
	cfg     *config.LedgerConfig
	logger  logger.Interface
}

func NewRegistry(gateway ledger.Gateway, cfg *config.LedgerConfig, log logger.Interface) *Registry {
	return &Registry{
		gateway: gateway,
		cfg:     cfg,
		logger:  log.Named("identity"),
	}
}

// EnsureResident enrolls a resident identity on the resident org. Enrolling
// an identity that already exists is a success.
func (r *Registry) EnsureResident(ctx context.Context, externalID string) error {
	cred, err := r.gateway.RegisterIdentity(ctx, externalID, r.cfg.ResidentOrg, "client", r.cfg.AdminIdentity)
	if err != nil {
		return fmt.Errorf("failed to enroll resident identity: %w", err)
	}
	r.logger.Infow("resident identity enrolled", "identity", cred.Identity, "org", cred.Org)
	return nil
}

// IsRegistered reports whether the identity can run calls on the given org.
// Used as a login pre-check so credentialed users without a ledger identity
// are rejected before any session state is created.
func (r *Registry) IsRegistered(ctx context.Context, identity, org string) (bool, error) {
	ok, err := r.gateway.IsRegistered(ctx, identity, org)
	if err != nil {
		return false, fmt.Errorf("failed to check identity registration: %w", err)
	}
	return ok, nil
}
