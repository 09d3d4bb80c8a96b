// Package model defines domain entities for the application.
package model

import "time"

// User represents a registered account.
// Phone holds the encrypted envelope, never the plaintext number.
// Password holds the argon2id hash, never the plaintext password.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Phone     string    `json:"-"`
	Age       int       `json:"age"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
