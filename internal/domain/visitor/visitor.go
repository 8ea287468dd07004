// Package visitor holds the recurring-visitor aggregate. A visitor belongs
// to exactly one resident and carries a daily visiting window.
package visitor

import (
	"fmt"
	"strings"
	"time"

	"custodia/internal/shared/biztime"
)

// windowLayout is the wall-clock format of the daily visiting window.
const windowLayout = "15:04"

type Visitor struct {
	id                 uint
	externalID         string
	residentExternalID string
	fullName           string
	phone              string
	relationship       string
	visitTimeFrom      string
	visitTimeTo        string
	createdAt          time.Time
	updatedAt          time.Time
}

func NewVisitor(
	externalID, residentExternalID, fullName, phone, relationship, visitTimeFrom, visitTimeTo string,
) (*Visitor, error) {
	fullName = strings.TrimSpace(fullName)
	phone = strings.TrimSpace(phone)

	if externalID == "" {
		return nil, fmt.Errorf("external ID is required")
	}
	if residentExternalID == "" {
		return nil, fmt.Errorf("resident external ID is required")
	}
	if fullName == "" {
		return nil, fmt.Errorf("full name is required")
	}
	if phone == "" {
		return nil, fmt.Errorf("phone is required")
	}
	if err := validateWindow(visitTimeFrom, visitTimeTo); err != nil {
		return nil, err
	}

	now := biztime.NowUTC()
	return &Visitor{
		externalID:         externalID,
		residentExternalID: residentExternalID,
		fullName:           fullName,
		phone:              phone,
		relationship:       relationship,
		visitTimeFrom:      visitTimeFrom,
		visitTimeTo:        visitTimeTo,
		createdAt:          now,
		updatedAt:          now,
	}, nil
}

func ReconstructVisitor(
	id uint,
	externalID, residentExternalID, fullName, phone, relationship, visitTimeFrom, visitTimeTo string,
	createdAt, updatedAt time.Time,
) (*Visitor, error) {
	if id == 0 {
		return nil, fmt.Errorf("visitor ID cannot be zero")
	}
	if externalID == "" {
		return nil, fmt.Errorf("external ID is required")
	}
	return &Visitor{
		id:                 id,
		externalID:         externalID,
		residentExternalID: residentExternalID,
		fullName:           fullName,
		phone:              phone,
		relationship:       relationship,
		visitTimeFrom:      visitTimeFrom,
		visitTimeTo:        visitTimeTo,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}, nil
}

func validateWindow(from, to string) error {
	fromT, err := time.Parse(windowLayout, from)
	if err != nil {
		return fmt.Errorf("invalid visit time from: %s", from)
	}
	toT, err := time.Parse(windowLayout, to)
	if err != nil {
		return fmt.Errorf("invalid visit time to: %s", to)
	}
	if toT.Before(fromT) {
		return fmt.Errorf("visit window end %s precedes start %s", to, from)
	}
	return nil
}

func (v *Visitor) ID() uint                   { return v.id }
func (v *Visitor) ExternalID() string         { return v.externalID }
func (v *Visitor) ResidentExternalID() string { return v.residentExternalID }
func (v *Visitor) FullName() string           { return v.fullName }
func (v *Visitor) Phone() string              { return v.phone }
func (v *Visitor) Relationship() string       { return v.relationship }
func (v *Visitor) VisitTimeFrom() string      { return v.visitTimeFrom }
func (v *Visitor) VisitTimeTo() string        { return v.visitTimeTo }
func (v *Visitor) CreatedAt() time.Time       { return v.createdAt }
func (v *Visitor) UpdatedAt() time.Time       { return v.updatedAt }

func (v *Visitor) SetID(id uint) error {
	if v.id != 0 {
		return fmt.Errorf("visitor ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("visitor ID cannot be zero")
	}
	v.id = id
	return nil
}

// UpdateProfile applies mutable fields. The external ID and the owning
// resident never change.
func (v *Visitor) UpdateProfile(fullName, phone, relationship, visitTimeFrom, visitTimeTo string) error {
	fullName = strings.TrimSpace(fullName)
	phone = strings.TrimSpace(phone)

	if fullName == "" {
		return fmt.Errorf("full name is required")
	}
	if phone == "" {
		return fmt.Errorf("phone is required")
	}
	if err := validateWindow(visitTimeFrom, visitTimeTo); err != nil {
		return err
	}

	v.fullName = fullName
	v.phone = phone
	v.relationship = relationship
	v.visitTimeFrom = visitTimeFrom
	v.visitTimeTo = visitTimeTo
	v.updatedAt = biztime.NowUTC()
	return nil
}
