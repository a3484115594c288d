package models

import "time"

// Session is a server-stored proof of authentication. The token is an
// opaque random string; a session is valid between IssuedAt and ExpiresAt
// and only for the user it names.
type Session struct {
	Token     string
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
