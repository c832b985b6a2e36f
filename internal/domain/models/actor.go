package models

import "time"

// Actor identifies the authenticated user performing an operation.
// Operations receive it explicitly; a nil *Actor means "not logged in".
type Actor struct {
	UserID string
	Email  string
}

// RequireActor returns ErrUnauthenticated unless actor carries a user id.
func RequireActor(actor *Actor) error {
	if actor == nil || actor.UserID == "" {
		return ErrUnauthenticated
	}
	return nil
}

// UserProfile mirrors the users collection.
type UserProfile struct {
	UID         string    `bson:"_id" json:"uid"`
	Email       string    `bson:"email,omitempty" json:"email,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	LastLoginAt time.Time `bson:"lastLoginAt" json:"lastLoginAt"`
}
