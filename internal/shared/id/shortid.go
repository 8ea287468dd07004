// Package id generates prefixed external identifiers. The dash-separated
// prefix doubles as the token classifier for scanned QR payloads, so the
// prefix set here must stay in sync with the scanner.
package id

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	// Uppercase Base32-style alphabet without 0/O and 1/I to keep printed
	// QR payloads unambiguous.
	alphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

	// DefaultLength is the default length of the random part.
	DefaultLength = 10
)

// External ID prefixes. These are the ledger primary-key namespaces.
const (
	PrefixResident     = "RES"
	PrefixVisitor      = "VIS"
	PrefixVisitRequest = "REQ"
)

// Generate creates a random ID of the given length.
func Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}

	result := make([]byte, length)
	alphabetLen := big.NewInt(int64(len(alphabet)))

	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		result[i] = alphabet[num.Int64()]
	}

	return string(result), nil
}

// GenerateWithPrefix creates an ID in the form "PREFIX-RANDOM".
func GenerateWithPrefix(prefix string, length int) (string, error) {
	id, err := Generate(length)
	if err != nil {
		return "", err
	}
	return prefix + "-" + id, nil
}

// MustGenerateWithPrefix creates a prefixed ID and panics on error. The only
// failure mode is a broken system entropy source.
func MustGenerateWithPrefix(prefix string, length int) string {
	id, err := GenerateWithPrefix(prefix, length)
	if err != nil {
		panic(err)
	}
	return id
}

// NewResidentID returns a fresh resident external ID.
func NewResidentID() string { return MustGenerateWithPrefix(PrefixResident, DefaultLength) }

// NewVisitorID returns a fresh visitor external ID.
func NewVisitorID() string { return MustGenerateWithPrefix(PrefixVisitor, DefaultLength) }

// NewVisitRequestID returns a fresh visit request ID.
func NewVisitRequestID() string { return MustGenerateWithPrefix(PrefixVisitRequest, DefaultLength) }

// Prefix returns the namespace prefix of an external ID, or "" when the
// value does not look like a prefixed ID.
func Prefix(externalID string) string {
	idx := strings.IndexByte(externalID, '-')
	if idx <= 0 {
		return ""
	}
	return externalID[:idx]
}
