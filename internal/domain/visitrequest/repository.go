package visitrequest

import "context"

type Filter struct {
	ResidentExternalID string
	Status             string
	Page               int
	PageSize           int
}

type Repository interface {
	Save(ctx context.Context, req *VisitRequest) error
	Update(ctx context.Context, req *VisitRequest) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*VisitRequest, error)
	GetByExternalID(ctx context.Context, externalID string) (*VisitRequest, error)
	List(ctx context.Context, filter Filter) ([]*VisitRequest, int64, error)
	DeleteByResident(ctx context.Context, residentExternalID string) error
}
