package domain

import "time"

// Revocation blocks a signed token until it would have expired anyway.
type Revocation struct {
	TokenID   string
	Email     string
	ExpiresAt time.Time
}

func (r Revocation) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}
