// Package session provides SQLite-backed persistence for lifesim: the
// stored identity, the in-progress session and its scenario journal.
package session

import "time"

// IdentityKey is the fixed key the authenticated user is stored under.
const IdentityKey = "lifeSimUser"

// StatusActive marks the session currently being played.
const StatusActive = "active"

// Summary provides a high-level view of the active session for status
// output.
type Summary struct {
	ID        string
	UserID    string
	Step      string
	ProfileID string
	Answers   int
	Years     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Answer represents a player's answer to one probe question.
type Answer struct {
	ID        int
	SessionID string
	Probe     string
	Answer    string
	Timestamp time.Time
}
