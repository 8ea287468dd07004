// Package access holds gate-side concepts shared by blocking, entry logging
// and verification: the subject variant, the block record, and the entry log.
package access

import (
	"fmt"

	"custodia/internal/shared/id"
)

// SubjectKind discriminates the three classes of tokens a gate can see.
type SubjectKind string

const (
	KindResident     SubjectKind = "resident"
	KindVisitor      SubjectKind = "visitor"
	KindVisitRequest SubjectKind = "visit_request"
)

// Subject identifies exactly one resident, visitor or visit request by its
// external ID. The kind is derivable from the ID prefix, so the two fields
// are kept consistent by the constructors.
type Subject struct {
	kind       SubjectKind
	externalID string
}

func NewSubject(kind SubjectKind, externalID string) (Subject, error) {
	if externalID == "" {
		return Subject{}, fmt.Errorf("subject external ID is required")
	}
	switch kind {
	case KindResident, KindVisitor, KindVisitRequest:
	default:
		return Subject{}, fmt.Errorf("invalid subject kind: %s", kind)
	}
	return Subject{kind: kind, externalID: externalID}, nil
}

// ClassifyToken maps a scanned token to a subject using the external ID
// prefix. Unknown prefixes are rejected before any store is consulted.
func ClassifyToken(token string) (Subject, error) {
	switch id.Prefix(token) {
	case id.PrefixResident:
		return Subject{kind: KindResident, externalID: token}, nil
	case id.PrefixVisitor:
		return Subject{kind: KindVisitor, externalID: token}, nil
	case id.PrefixVisitRequest:
		return Subject{kind: KindVisitRequest, externalID: token}, nil
	default:
		return Subject{}, fmt.Errorf("unrecognized token format")
	}
}

func (s Subject) Kind() SubjectKind  { return s.kind }
func (s Subject) ExternalID() string { return s.externalID }

func (s Subject) IsZero() bool { return s.externalID == "" }

func (s Subject) String() string {
	return fmt.Sprintf("%s/%s", s.kind, s.externalID)
}
