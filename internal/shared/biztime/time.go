// Package biztime centralizes business timezone handling. Visit windows and
// block expirations are compared in the building's local timezone, never the
// server's.
package biztime

import (
	"sync"
	"time"
)

var (
	mu       sync.RWMutex
	location = time.UTC
)

// Init sets the business timezone from an IANA name such as
// "America/Sao_Paulo". An empty name keeps UTC.
func Init(tzName string) error {
	if tzName == "" {
		return nil
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return err
	}
	mu.Lock()
	location = loc
	mu.Unlock()
	return nil
}

// Location returns the configured business timezone.
func Location() *time.Location {
	mu.RLock()
	defer mu.RUnlock()
	return location
}

// Now returns the current time in the business timezone.
func Now() time.Time {
	return time.Now().In(Location())
}

// NowUTC returns the current time in UTC. Persisted timestamps are stored
// in UTC regardless of the business timezone.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// In converts t to the business timezone.
func In(t time.Time) time.Time {
	return t.In(Location())
}
