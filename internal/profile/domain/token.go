package domain

import "time"

// RevokedToken records a bearer token that must no longer be accepted. Rows
// are kept until the token would have expired anyway.
type RevokedToken struct {
	JTI       string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
