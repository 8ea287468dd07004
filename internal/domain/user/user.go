package user

import (
	"fmt"
	"strings"
	"time"

	"custodia/internal/shared/biztime"
)

// Roles an account can hold.
const (
	RoleAdmin    = "admin"
	RoleResident = "resident"
)

// User is an authenticated account. Resident accounts carry the external ID
// of the resident record they belong to.
type User struct {
	id           uint
	name         string
	email        string
	passwordHash string
	role         string
	externalID   string
	createdAt    time.Time
	updatedAt    time.Time
}

func NewUser(name, email, passwordHash, role, externalID string) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if passwordHash == "" {
		return nil, fmt.Errorf("password hash is required")
	}
	if role != RoleAdmin && role != RoleResident {
		return nil, fmt.Errorf("invalid role: %s", role)
	}
	if role == RoleResident && externalID == "" {
		return nil, fmt.Errorf("resident accounts require an external ID")
	}

	now := biztime.NowUTC()
	return &User{
		name:         name,
		email:        email,
		passwordHash: passwordHash,
		role:         role,
		externalID:   externalID,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

func ReconstructUser(
	id uint,
	name, email, passwordHash, role, externalID string,
	createdAt, updatedAt time.Time,
) (*User, error) {
	if id == 0 {
		return nil, fmt.Errorf("user ID cannot be zero")
	}
	return &User{
		id:           id,
		name:         name,
		email:        email,
		passwordHash: passwordHash,
		role:         role,
		externalID:   externalID,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}, nil
}

func (u *User) ID() uint             { return u.id }
func (u *User) Name() string         { return u.name }
func (u *User) Email() string        { return u.email }
func (u *User) PasswordHash() string { return u.passwordHash }
func (u *User) Role() string         { return u.role }
func (u *User) ExternalID() string   { return u.externalID }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

func (u *User) IsAdmin() bool { return u.role == RoleAdmin }

func (u *User) SetID(id uint) error {
	if u.id != 0 {
		return fmt.Errorf("user ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("user ID cannot be zero")
	}
	u.id = id
	return nil
}
