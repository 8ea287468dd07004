package usecases

import (
	"context"

	"custodia/internal/domain/visitrequest"
)

// QRGenerator renders a token into a PNG artifact and returns the stored
// image name.
type QRGenerator interface {
	Generate(category, token string) (string, error)
	Remove(category, token string) error
}

// DecisionNotifier informs the visitor contact about a decided request.
// Notification is best-effort and never affects the decision outcome.
type DecisionNotifier interface {
	NotifyDecision(ctx context.Context, req *visitrequest.VisitRequest) error
}
