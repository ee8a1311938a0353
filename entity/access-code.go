package entity

import "time"

// AccessCode is a single-use token gating access to bot features.
// Admins generate codes with a 24-hour lifetime; a code flips
// used=false -> used=true exactly once, on successful redemption.
type AccessCode struct {
	Code       string    `json:"code"`
	Expiration time.Time `json:"expiration"`
	CreatedBy  int64     `json:"created_by"`
	Used       bool      `json:"used"`
}

// Expired reports whether the code's lifetime has lapsed at the given time.
func (c AccessCode) Expired(now time.Time) bool {
	return !c.Expiration.After(now)
}

// Active reports whether the code can still be redeemed at the given time.
func (c AccessCode) Active(now time.Time) bool {
	return !c.Used && !c.Expired(now)
}

// AccessDocument is the persisted shape of the access-code store:
// issued codes in creation order plus the set of authorized user ids.
// The authorized set is append-only; there is no revocation path.
type AccessDocument struct {
	Codes           []AccessCode `json:"codes"`
	AuthorizedUsers []int64      `json:"authorized_users"`
}

// IsAuthorized checks the authorized set for a user id.
func (d AccessDocument) IsAuthorized(userID int64) bool {
	for _, id := range d.AuthorizedUsers {
		if id == userID {
			return true
		}
	}
	return false
}
