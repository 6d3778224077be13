package domain

import "time"

// User is a profile record. Email or Phone may be empty, never both.
type User struct {
	ID          string
	Name        string
	Email       string
	Phone       string // national number, no country prefix
	DateOfBirth string // YYYY-MM-DD
	Gender      string

	RegistrationComplete bool
	IsPhoneVerified      bool
	IsEmailVerified      bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Genders accepted by the service.
var Genders = []string{"male", "female", "transgender"}
