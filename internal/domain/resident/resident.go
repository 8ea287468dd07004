// Package resident holds the resident aggregate. The external ID is the
// shared key between the local store and the ledger; it is assigned once at
// registration and never changes.
package resident

import (
	"fmt"
	"strings"
	"time"

	"custodia/internal/shared/biztime"
)

// Resident types recognized by the building.
const (
	TypeOwner  = "owner"
	TypeTenant = "tenant"
)

type Resident struct {
	id            uint
	externalID    string
	userID        uint
	name          string
	email         string
	phone         string
	gender        string
	maritalStatus string
	residentType  string
	apartment     string
	createdAt     time.Time
	updatedAt     time.Time
}

func NewResident(
	externalID string,
	userID uint,
	name, email, phone, gender, maritalStatus, residentType, apartment string,
) (*Resident, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	phone = strings.TrimSpace(phone)

	if externalID == "" {
		return nil, fmt.Errorf("external ID is required")
	}
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if phone == "" {
		return nil, fmt.Errorf("phone is required")
	}
	if apartment == "" {
		return nil, fmt.Errorf("apartment is required")
	}
	if residentType != TypeOwner && residentType != TypeTenant {
		return nil, fmt.Errorf("invalid resident type: %s", residentType)
	}

	now := biztime.NowUTC()
	return &Resident{
		externalID:    externalID,
		userID:        userID,
		name:          name,
		email:         email,
		phone:         phone,
		gender:        gender,
		maritalStatus: maritalStatus,
		residentType:  residentType,
		apartment:     apartment,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

func ReconstructResident(
	id uint,
	externalID string,
	userID uint,
	name, email, phone, gender, maritalStatus, residentType, apartment string,
	createdAt, updatedAt time.Time,
) (*Resident, error) {
	if id == 0 {
		return nil, fmt.Errorf("resident ID cannot be zero")
	}
	if externalID == "" {
		return nil, fmt.Errorf("external ID is required")
	}
	return &Resident{
		id:            id,
		externalID:    externalID,
		userID:        userID,
		name:          name,
		email:         email,
		phone:         phone,
		gender:        gender,
		maritalStatus: maritalStatus,
		residentType:  residentType,
		apartment:     apartment,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}, nil
}

func (r *Resident) ID() uint              { return r.id }
func (r *Resident) ExternalID() string    { return r.externalID }
func (r *Resident) UserID() uint          { return r.userID }
func (r *Resident) Name() string          { return r.name }
func (r *Resident) Email() string         { return r.email }
func (r *Resident) Phone() string         { return r.phone }
func (r *Resident) Gender() string        { return r.gender }
func (r *Resident) MaritalStatus() string { return r.maritalStatus }
func (r *Resident) ResidentType() string  { return r.residentType }
func (r *Resident) Apartment() string     { return r.apartment }
func (r *Resident) CreatedAt() time.Time  { return r.createdAt }
func (r *Resident) UpdatedAt() time.Time  { return r.updatedAt }

func (r *Resident) SetID(id uint) error {
	if r.id != 0 {
		return fmt.Errorf("resident ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("resident ID cannot be zero")
	}
	r.id = id
	return nil
}

// UpdateProfile applies mutable profile fields. The external ID and the
// owning user never change.
func (r *Resident) UpdateProfile(name, email, phone, gender, maritalStatus, residentType, apartment string) error {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	phone = strings.TrimSpace(phone)

	if name == "" {
		return fmt.Errorf("name is required")
	}
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if phone == "" {
		return fmt.Errorf("phone is required")
	}
	if apartment == "" {
		return fmt.Errorf("apartment is required")
	}
	if residentType != TypeOwner && residentType != TypeTenant {
		return fmt.Errorf("invalid resident type: %s", residentType)
	}

	r.name = name
	r.email = email
	r.phone = phone
	r.gender = gender
	r.maritalStatus = maritalStatus
	r.residentType = residentType
	r.apartment = apartment
	r.updatedAt = biztime.NowUTC()
	return nil
}
