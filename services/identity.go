package services

import "github.com/google/uuid"

// Identity is the resolved owner of a cart: an authenticated user, or else an
// anonymous session key. Handlers build it once per request and pass it down.
type Identity struct {
	UserID    *uuid.UUID
	SessionID string
}

func UserIdentity(id uuid.UUID) Identity {
	return Identity{UserID: &id}
}

func SessionIdentity(key string) Identity {
	return Identity{SessionID: key}
}

func (i Identity) IsAuthenticated() bool {
	return i.UserID != nil && *i.UserID != uuid.Nil
}

// IsZero reports an identity that can own nothing.
func (i Identity) IsZero() bool {
	return !i.IsAuthenticated() && i.SessionID == ""
}

// cartKey groups the rows of one cart. The user is authoritative when present.
func (i Identity) cartKey() string {
	if i.IsAuthenticated() {
		return userCartKey(*i.UserID)
	}
	if i.SessionID != "" {
		return sessionCartKey(i.SessionID)
	}
	return ""
}

func userCartKey(id uuid.UUID) string { return "user:" + id.String() }

func sessionCartKey(key string) string { return "session:" + key }
