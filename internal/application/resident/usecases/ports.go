package usecases

import "context"

// PasswordHasher hashes account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// QRGenerator renders a token into a PNG artifact and returns the stored
// image name.
type QRGenerator interface {
	Generate(category, token string) (string, error)
	Remove(category, token string) error
}

// Transactor runs a function within a storage transaction.
type Transactor interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// IdentityEnroller enrolls resident identities on the ledger.
type IdentityEnroller interface {
	EnsureResident(ctx context.Context, externalID string) error
}

// StatusResolver reports a subject's gate status for listings.
type StatusResolver interface {
	ResolveResident(ctx context.Context, externalID string) (string, error)
}
