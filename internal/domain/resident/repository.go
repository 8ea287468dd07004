package resident

import "context"

type Filter struct {
	Apartment string
	Page      int
	PageSize  int
}

type Repository interface {
	Save(ctx context.Context, res *Resident) error
	Update(ctx context.Context, res *Resident) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*Resident, error)
	GetByExternalID(ctx context.Context, externalID string) (*Resident, error)
	GetByEmail(ctx context.Context, email string) (*Resident, error)
	GetByPhone(ctx context.Context, phone string) (*Resident, error)
	List(ctx context.Context, filter Filter) ([]*Resident, int64, error)
	CountByApartment(ctx context.Context, apartment string) (int64, error)
}
