package visitor

import "context"

type Filter struct {
	ResidentExternalID string
	Page               int
	PageSize           int
}

type Repository interface {
	Save(ctx context.Context, vis *Visitor) error
	Update(ctx context.Context, vis *Visitor) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*Visitor, error)
	GetByExternalID(ctx context.Context, externalID string) (*Visitor, error)
	GetByPhone(ctx context.Context, phone string) (*Visitor, error)
	List(ctx context.Context, filter Filter) ([]*Visitor, int64, error)
	CountByResident(ctx context.Context, residentExternalID string) (int64, error)
	DeleteByResident(ctx context.Context, residentExternalID string) error
}
