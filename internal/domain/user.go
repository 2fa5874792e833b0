package domain

import "time"

// User represents a registered account. It is immutable after registration.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
