// Package models defines the persistent entities of the server: clinician
// accounts, their sessions, and the patient records they own.
package models

import "time"

// User is a clinician account. PasswordHash holds a salted bcrypt hash;
// the plaintext password is never stored.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
