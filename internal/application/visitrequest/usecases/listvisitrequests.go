package usecases

import (
	"context"
	"fmt"

	"custodia/internal/domain/visitrequest"
	"custodia/internal/shared/errors"
	"custodia/internal/shared/logger"
)

// VisitRequestView is the read-side projection of a visit request.
type VisitRequestView struct {
	ExternalID         string `json:"external_id"`
	ResidentExternalID string `json:"resident_external_id"`
	VisitorName        string `json:"visitor_name"`
	VisitorPhone       string `json:"visitor_phone"`
	VisitType          string `json:"visit_type"`
	VisitPurpose       string `json:"visit_purpose"`
	CustomReason       string `json:"custom_reason,omitempty"`
	VisitTimeFrom      string `json:"visit_time_from"`
	VisitTimeTo        string `json:"visit_time_to"`
	VisitDate          string `json:"visit_date"`
	Status             string `json:"status"`
	QRImage            string `json:"qr_image,omitempty"`
	CreatedAt          string `json:"created_at"`
}

// ListVisitRequestsCommand represents the input for listing visit requests.
type ListVisitRequestsCommand struct {
	ResidentExternalID string
	Status             string
	Page               int
	PageSize           int
}

// ListVisitRequestsUseCase lists visit requests.
type ListVisitRequestsUseCase struct {
	requests visitrequest.Repository
	logger   logger.Interface
}

func NewListVisitRequestsUseCase(requests visitrequest.Repository, log logger.Interface) *ListVisitRequestsUseCase {
	return &ListVisitRequestsUseCase{requests: requests, logger: log}
}

// Execute lists visit requests.
func (uc *ListVisitRequestsUseCase) Execute(ctx context.Context, cmd ListVisitRequestsCommand) ([]VisitRequestView, int64, error) {
	if cmd.Page < 1 {
		cmd.Page = 1
	}
	if cmd.PageSize < 1 || cmd.PageSize > 100 {
		cmd.PageSize = 20
	}

	list, total, err := uc.requests.List(ctx, visitrequest.Filter{
		ResidentExternalID: cmd.ResidentExternalID,
		Status:             cmd.Status,
		Page:               cmd.Page,
		PageSize:           cmd.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list visit requests: %w", err)
	}

	views := make([]VisitRequestView, 0, len(list))
	for _, req := range list {
		views = append(views, toVisitRequestView(req))
	}
	return views, total, nil
}

// GetVisitRequestUseCase fetches one visit request by external ID.
type GetVisitRequestUseCase struct {
	requests visitrequest.Repository
	logger   logger.Interface
}

func NewGetVisitRequestUseCase(requests visitrequest.Repository, log logger.Interface) *GetVisitRequestUseCase {
	return &GetVisitRequestUseCase{requests: requests, logger: log}
}

// Execute fetches a visit request.
func (uc *GetVisitRequestUseCase) Execute(ctx context.Context, externalID string) (*VisitRequestView, error) {
	req, err := uc.requests.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get visit request: %w", err)
	}
	if req == nil {
		return nil, errors.NewNotFoundError("visit request not found", externalID)
	}
	view := toVisitRequestView(req)
	return &view, nil
}

func toVisitRequestView(req *visitrequest.VisitRequest) VisitRequestView {
	return VisitRequestView{
		ExternalID:         req.ExternalID(),
		ResidentExternalID: req.ResidentExternalID(),
		VisitorName:        req.VisitorName(),
		VisitorPhone:       req.VisitorPhone(),
		VisitType:          req.VisitType(),
		VisitPurpose:       req.VisitPurpose(),
		CustomReason:       req.CustomReason(),
		VisitTimeFrom:      req.VisitTimeFrom(),
		VisitTimeTo:        req.VisitTimeTo(),
		VisitDate:          req.VisitDate(),
		Status:             req.Status(),
		QRImage:            req.QRImage(),
		CreatedAt:          req.CreatedAt().Format("2006-01-02T15:04:05Z07:00"),
	}
}
