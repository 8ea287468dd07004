package usecases

import "context"

// QRGenerator renders a token into a PNG artifact and returns the stored
// image name.
type QRGenerator interface {
	Generate(category, token string) (string, error)
	Remove(category, token string) error
}

// StatusResolver reports a subject's gate status for listings.
type StatusResolver interface {
	ResolveVisitor(ctx context.Context, externalID string) (string, error)
}
