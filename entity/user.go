package entity

import "fmt"

// UserRecord is one entry of the persisted user registry, keyed by the
// stringified telegram id. Name fields are pointers because the chat
// platform reports them as optional; absent values persist as null.
type UserRecord struct {
	Username  *string `json:"username"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	LastSeen  string  `json:"last_seen"`
}

// UserRegistry is the persisted shape of the registry document:
// stringified user id -> profile info.
type UserRegistry map[string]UserRecord

// DisplayName renders a registry entry for admin views. Preference order:
// @username, then any available name parts with the id appended, then a
// "No name" placeholder. Pure function so it can be tested without the
// chat transport.
func DisplayName(id string, rec UserRecord) string {
	username := deref(rec.Username)
	first := deref(rec.FirstName)
	last := deref(rec.LastName)

	switch {
	case username != "":
		return "@" + username
	case first != "" && last != "":
		return fmt.Sprintf("%s %s (%s)", first, last, id)
	case first != "":
		return fmt.Sprintf("%s (%s)", first, id)
	case last != "":
		return fmt.Sprintf("%s (%s)", last, id)
	default:
		return fmt.Sprintf("No name (%s)", id)
	}
}

// OptionalString boxes a possibly-empty platform value: empty means the
// field was not supplied and persists as null.
func OptionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
