package usecases

import (
	"context"
	"fmt"

	"custodia/internal/domain/visitor"
	"custodia/internal/shared/errors"
	"custodia/internal/shared/logger"
)

// VisitorView is the read-side projection of a visitor, including the
// computed gate status.
type VisitorView struct {
	ExternalID         string `json:"external_id"`
	ResidentExternalID string `json:"resident_external_id"`
	FullName           string `json:"full_name"`
	Phone              string `json:"phone"`
	Relationship       string `json:"relationship"`
	VisitTimeFrom      string `json:"visit_time_from"`
	VisitTimeTo        string `json:"visit_time_to"`
	Status             string `json:"status"`
	CreatedAt          string `json:"created_at"`
}

// ListVisitorsCommand represents the input for listing visitors.
type ListVisitorsCommand struct {
	ResidentExternalID string
	Page               int
	PageSize           int
}

// ListVisitorsUseCase lists visitors with their current gate status.
type ListVisitorsUseCase struct {
	visitors visitor.Repository
	status   StatusResolver
	logger   logger.Interface
}

func NewListVisitorsUseCase(visitors visitor.Repository, status StatusResolver, log logger.Interface) *ListVisitorsUseCase {
	return &ListVisitorsUseCase{visitors: visitors, status: status, logger: log}
}

// Execute lists visitors.
func (uc *ListVisitorsUseCase) Execute(ctx context.Context, cmd ListVisitorsCommand) ([]VisitorView, int64, error) {
	if cmd.Page < 1 {
		cmd.Page = 1
	}
	if cmd.PageSize < 1 || cmd.PageSize > 100 {
		cmd.PageSize = 20
	}

	list, total, err := uc.visitors.List(ctx, visitor.Filter{
		ResidentExternalID: cmd.ResidentExternalID,
		Page:               cmd.Page,
		PageSize:           cmd.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list visitors: %w", err)
	}

	views := make([]VisitorView, 0, len(list))
	for _, vis := range list {
		status, err := uc.status.ResolveVisitor(ctx, vis.ExternalID())
		if err != nil {
			uc.logger.Warnw("failed to resolve visitor status", "external_id", vis.ExternalID(), "error", err)
			status = "unknown"
		}
		views = append(views, toVisitorView(vis, status))
	}
	return views, total, nil
}

// GetVisitorUseCase fetches one visitor by external ID.
type GetVisitorUseCase struct {
	visitors visitor.Repository
	status   StatusResolver
	logger   logger.Interface
}

func NewGetVisitorUseCase(visitors visitor.Repository, status StatusResolver, log logger.Interface) *GetVisitorUseCase {
	return &GetVisitorUseCase{visitors: visitors, status: status, logger: log}
}

// Execute fetches a visitor.
func (uc *GetVisitorUseCase) Execute(ctx context.Context, externalID string) (*VisitorView, error) {
	vis, err := uc.visitors.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get visitor: %w", err)
	}
	if vis == nil {
		return nil, errors.NewNotFoundError("visitor not found", externalID)
	}

	status, err := uc.status.ResolveVisitor(ctx, vis.ExternalID())
	if err != nil {
		uc.logger.Warnw("failed to resolve visitor status", "external_id", vis.ExternalID(), "error", err)
		status = "unknown"
	}

	view := toVisitorView(vis, status)
	return &view, nil
}

func toVisitorView(vis *visitor.Visitor, status string) VisitorView {
	return VisitorView{
		ExternalID:         vis.ExternalID(),
		ResidentExternalID: vis.ResidentExternalID(),
		FullName:           vis.FullName(),
		Phone:              vis.Phone(),
		Relationship:       vis.Relationship(),
		VisitTimeFrom:      vis.VisitTimeFrom(),
		VisitTimeTo:        vis.VisitTimeTo(),
		Status:             status,
		CreatedAt:          vis.CreatedAt().Format("2006-01-02T15:04:05Z07:00"),
	}
}
