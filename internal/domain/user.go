package domain

import "time"

// User is an administrator account allowed to manage questions.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
