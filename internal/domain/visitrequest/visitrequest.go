// Package visitrequest holds the one-time visit request aggregate. The
// request ID is shared between the local store and the ledger and doubles as
// the QR token once the request is accepted.
package visitrequest

import (
	"fmt"
	"strings"
	"time"

	"custodia/internal/shared/biztime"
)

// Request lifecycle. A request transitions away from pending exactly once.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

type VisitRequest struct {
	id                 uint
	externalID         string
	createdByUserID    uint
	residentExternalID string
	visitorName        string
	visitorPhone       string
	visitType          string
	visitPurpose       string
	customReason       string
	visitTimeFrom      string
	visitTimeTo        string
	visitDate          string
	status             string
	decidedByUserID    uint
	qrData             string
	qrImage            string
	createdAt          time.Time
	updatedAt          time.Time
}

func NewVisitRequest(
	externalID string,
	createdByUserID uint,
	residentExternalID, visitorName, visitorPhone, visitType, visitPurpose, customReason string,
	visitTimeFrom, visitTimeTo, visitDate string,
) (*VisitRequest, error) {
	visitorName = strings.TrimSpace(visitorName)
	visitorPhone = strings.TrimSpace(visitorPhone)

	if externalID == "" {
		return nil, fmt.Errorf("external ID is required")
	}
	if createdByUserID == 0 {
		return nil, fmt.Errorf("creator user ID is required")
	}
	if residentExternalID == "" {
		return nil, fmt.Errorf("resident external ID is required")
	}
	if visitorName == "" {
		return nil, fmt.Errorf("visitor name is required")
	}
	if visitorPhone == "" {
		return nil, fmt.Errorf("visitor phone is required")
	}
	if _, err := time.Parse(dateLayout, visitDate); err != nil {
		return nil, fmt.Errorf("invalid visit date: %s", visitDate)
	}
	fromT, err := time.Parse(timeLayout, visitTimeFrom)
	if err != nil {
		return nil, fmt.Errorf("invalid visit time from: %s", visitTimeFrom)
	}
	toT, err := time.Parse(timeLayout, visitTimeTo)
	if err != nil {
		return nil, fmt.Errorf("invalid visit time to: %s", visitTimeTo)
	}
	if toT.Before(fromT) {
		return nil, fmt.Errorf("visit window end %s precedes start %s", visitTimeTo, visitTimeFrom)
	}

	now := biztime.NowUTC()
	return &VisitRequest{
		externalID:         externalID,
		createdByUserID:    createdByUserID,
		residentExternalID: residentExternalID,
		visitorName:        visitorName,
		visitorPhone:       visitorPhone,
		visitType:          visitType,
		visitPurpose:       visitPurpose,
		customReason:       customReason,
		visitTimeFrom:      visitTimeFrom,
		visitTimeTo:        visitTimeTo,
		visitDate:          visitDate,
		status:             StatusPending,
		createdAt:          now,
		updatedAt:          now,
	}, nil
}

func ReconstructVisitRequest(
	id uint,
	externalID string,
	createdByUserID uint,
	residentExternalID, visitorName, visitorPhone, visitType, visitPurpose, customReason string,
	visitTimeFrom, visitTimeTo, visitDate, status string,
	decidedByUserID uint,
	qrData, qrImage string,
	createdAt, updatedAt time.Time,
) (*VisitRequest, error) {
	if id == 0 {
		return nil, fmt.Errorf("visit request ID cannot be zero")
	}
	if externalID == "" {
		return nil, fmt.Errorf("external ID is required")
	}
	return &VisitRequest{
		id:                 id,
		externalID:         externalID,
		createdByUserID:    createdByUserID,
		residentExternalID: residentExternalID,
		visitorName:        visitorName,
		visitorPhone:       visitorPhone,
		visitType:          visitType,
		visitPurpose:       visitPurpose,
		customReason:       customReason,
		visitTimeFrom:      visitTimeFrom,
		visitTimeTo:        visitTimeTo,
		visitDate:          visitDate,
		status:             status,
		decidedByUserID:    decidedByUserID,
		qrData:             qrData,
		qrImage:            qrImage,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}, nil
}

func (r *VisitRequest) ID() uint                   { return r.id }
func (r *VisitRequest) ExternalID() string         { return r.externalID }
func (r *VisitRequest) CreatedByUserID() uint      { return r.createdByUserID }
func (r *VisitRequest) ResidentExternalID() string { return r.residentExternalID }
func (r *VisitRequest) VisitorName() string        { return r.visitorName }
func (r *VisitRequest) VisitorPhone() string       { return r.visitorPhone }
func (r *VisitRequest) VisitType() string          { return r.visitType }
func (r *VisitRequest) VisitPurpose() string       { return r.visitPurpose }
func (r *VisitRequest) CustomReason() string       { return r.customReason }
func (r *VisitRequest) VisitTimeFrom() string      { return r.visitTimeFrom }
func (r *VisitRequest) VisitTimeTo() string        { return r.visitTimeTo }
func (r *VisitRequest) VisitDate() string          { return r.visitDate }
func (r *VisitRequest) Status() string             { return r.status }
func (r *VisitRequest) DecidedByUserID() uint      { return r.decidedByUserID }
func (r *VisitRequest) QRData() string             { return r.qrData }
func (r *VisitRequest) QRImage() string            { return r.qrImage }
func (r *VisitRequest) CreatedAt() time.Time       { return r.createdAt }
func (r *VisitRequest) UpdatedAt() time.Time       { return r.updatedAt }

func (r *VisitRequest) IsPending() bool  { return r.status == StatusPending }
func (r *VisitRequest) IsAccepted() bool { return r.status == StatusAccepted }

func (r *VisitRequest) SetID(id uint) error {
	if r.id != 0 {
		return fmt.Errorf("visit request ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("visit request ID cannot be zero")
	}
	r.id = id
	return nil
}

// Decide moves the request out of pending. Only pending requests can be
// decided, and only to accepted or rejected.
func (r *VisitRequest) Decide(status string, decidedByUserID uint) error {
	if status != StatusAccepted && status != StatusRejected {
		return fmt.Errorf("invalid status: %s", status)
	}
	if r.status != StatusPending {
		return fmt.Errorf("request already %s", r.status)
	}
	r.status = status
	r.decidedByUserID = decidedByUserID
	r.updatedAt = biztime.NowUTC()
	return nil
}

// AttachQR records the QR artifact of an accepted request. The token equals
// the request's external ID.
func (r *VisitRequest) AttachQR(qrData, qrImage string) error {
	if r.status != StatusAccepted {
		return fmt.Errorf("QR can only be attached to an accepted request")
	}
	r.qrData = qrData
	r.qrImage = qrImage
	r.updatedAt = biztime.NowUTC()
	return nil
}

// Window returns the request's admission window in loc, inclusive at both
// ends.
func (r *VisitRequest) Window(loc *time.Location) (time.Time, time.Time, error) {
	from, err := time.ParseInLocation(dateLayout+" "+timeLayout, r.visitDate+" "+r.visitTimeFrom, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid visit window start: %w", err)
	}
	to, err := time.ParseInLocation(dateLayout+" "+timeLayout, r.visitDate+" "+r.visitTimeTo, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid visit window end: %w", err)
	}
	return from, to, nil
}
