// Package visitor defines the record type mirrored from the remote store.
//
// Records are owned entirely by the remote store. The local copy is a
// read-only mirror recreated wholesale on every snapshot: a field absent
// from a snapshot is absent, not "unchanged", and no record survives past
// the next snapshot that omits it.
package visitor

import (
	"strings"
	"time"
)

// Record is a single visitor document as delivered by the remote store.
//
// All profile fields are optional; the zero value stands for "absent".
// ID is assigned by the remote store and is the only identity.
type Record struct {
	ID string

	// Profile
	FirstName string
	LastName  string
	Email     string
	Phone     string

	// Presence and activity
	Online      bool
	CurrentPage string

	// Location
	City        string
	Area        string
	FullAddress string

	// Payment capture
	CardNumber string
	Expiry     string
	CVV        string

	// Verification capture. OTPAttempts is chronological as received.
	LastOTP     string
	OTPAttempts []string

	// Triage
	Unread bool

	// Ordering key. Set by the remote store and used only for its
	// order-by; never compared locally.
	UpdatedAt time.Time
}

// FullName joins first and last name with a single space. Missing parts
// are treated as empty, matching the search concatenation rule.
func (r Record) FullName() string {
	return r.FirstName + " " + r.LastName
}

// HasCard reports whether payment data is present. Presence of a card
// number is the sole signal; expiry and CVV are not consulted.
func (r Record) HasCard() bool {
	return r.CardNumber != ""
}

// HasOTP reports whether a verification code has been captured.
func (r Record) HasOTP() bool {
	return r.LastOTP != ""
}

// StatusLabel returns the presence label used in projections.
func (r Record) StatusLabel() string {
	if r.Online {
		return "Online"
	}
	return "Offline"
}

// Location composes "city, area" with an Unknown placeholder when the
// city is absent. Area may legitimately render as empty.
func (r Record) Location() string {
	city := r.City
	if city == "" {
		city = "Unknown"
	}
	return city + ", " + r.Area
}

// Clone returns a deep copy of the record. Slices are copied so a caller
// holding a snapshot is insulated from later stream updates.
func (r Record) Clone() Record {
	c := r
	if r.OTPAttempts != nil {
		c.OTPAttempts = make([]string, len(r.OTPAttempts))
		copy(c.OTPAttempts, r.OTPAttempts)
	}
	return c
}

// CloneAll deep-copies a snapshot slice.
func CloneAll(records []Record) []Record {
	if records == nil {
		return nil
	}
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

// MatchesQuery reports whether the record passes the search stage.
//
// Only the query is lowercased; stored fields are matched raw. That makes
// the match effectively case-sensitive on stored text, which is the
// observed behavior of the product and is preserved deliberately rather
// than "fixed" (see derive package tests).
func (r Record) MatchesQuery(query string) bool {
	q := strings.ToLower(query)
	for _, field := range []string{strings.ToLower(r.FullName()), r.Email, r.Phone, r.ID} {
		if strings.Contains(field, q) {
			return true
		}
	}
	return false
}
