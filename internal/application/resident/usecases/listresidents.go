package usecases

import (
	"context"
	"fmt"

	"custodia/internal/domain/resident"
	"custodia/internal/shared/errors"
	"custodia/internal/shared/logger"
)

// ResidentView is the read-side projection of a resident, including the
// computed gate status.
type ResidentView struct {
	ExternalID    string `json:"external_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Gender        string `json:"gender"`
	MaritalStatus string `json:"marital_status"`
	ResidentType  string `json:"resident_type"`
	Apartment     string `json:"apartment"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
}

// ListResidentsCommand represents the input for listing residents.
type ListResidentsCommand struct {
	Apartment string
	Page      int
	PageSize  int
}

// ListResidentsUseCase lists residents with their current gate status.
type ListResidentsUseCase struct {
	residents resident.Repository
	status    StatusResolver
	logger    logger.Interface
}

func NewListResidentsUseCase(residents resident.Repository, status StatusResolver, log logger.Interface) *ListResidentsUseCase {
	return &ListResidentsUseCase{residents: residents, status: status, logger: log}
}

// Execute lists residents.
func (uc *ListResidentsUseCase) Execute(ctx context.Context, cmd ListResidentsCommand) ([]ResidentView, int64, error) {
	if cmd.Page < 1 {
		cmd.Page = 1
	}
	if cmd.PageSize < 1 || cmd.PageSize > 100 {
		cmd.PageSize = 20
	}

	list, total, err := uc.residents.List(ctx, resident.Filter{
		Apartment: cmd.Apartment,
		Page:      cmd.Page,
		PageSize:  cmd.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list residents: %w", err)
	}

	views := make([]ResidentView, 0, len(list))
	for _, res := range list {
		status, err := uc.status.ResolveResident(ctx, res.ExternalID())
		if err != nil {
			uc.logger.Warnw("failed to resolve resident status", "external_id", res.ExternalID(), "error", err)
			status = "unknown"
		}
		views = append(views, toResidentView(res, status))
	}
	return views, total, nil
}

// GetResidentUseCase fetches one resident by external ID.
type GetResidentUseCase struct {
	residents resident.Repository
	status    StatusResolver
	logger    logger.Interface
}

func NewGetResidentUseCase(residents resident.Repository, status StatusResolver, log logger.Interface) *GetResidentUseCase {
	return &GetResidentUseCase{residents: residents, status: status, logger: log}
}

// Execute fetches a resident.
func (uc *GetResidentUseCase) Execute(ctx context.Context, externalID string) (*ResidentView, error) {
	res, err := uc.residents.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get resident: %w", err)
	}
	if res == nil {
		return nil, errors.NewNotFoundError("resident not found", externalID)
	}

	status, err := uc.status.ResolveResident(ctx, res.ExternalID())
	if err != nil {
		uc.logger.Warnw("failed to resolve resident status", "external_id", res.ExternalID(), "error", err)
		status = "unknown"
	}

	view := toResidentView(res, status)
	return &view, nil
}

func toResidentView(res *resident.Resident, status string) ResidentView {
	return ResidentView{
		ExternalID:    res.ExternalID(),
		Name:          res.Name(),
		Email:         res.Email(),
		Phone:         res.Phone(),
		Gender:        res.Gender(),
		MaritalStatus: res.MaritalStatus(),
		ResidentType:  res.ResidentType(),
		Apartment:     res.Apartment(),
		Status:        status,
		CreatedAt:     res.CreatedAt().Format("2006-01-02T15:04:05Z07:00"),
	}
}
