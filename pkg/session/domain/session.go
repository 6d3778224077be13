// Package domain holds the value types shared by the session reconciler and
// its collaborators.
package domain

import "time"

// Gender is one of the fixed values accepted by the profile service.
type Gender string

const (
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
	GenderTransgender Gender = "transgender"
)

// Genders lists the accepted values in display order.
var Genders = []Gender{GenderMale, GenderFemale, GenderTransgender}

// Valid reports whether g is one of the accepted values.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderTransgender:
		return true
	}
	return false
}

// Label is the user-facing name of g.
func (g Gender) Label() string {
	switch g {
	case GenderMale:
		return "Male"
	case GenderFemale:
		return "Female"
	case GenderTransgender:
		return "Other"
	}
	return string(g)
}

// DateLayout is the wire format of dates of birth.
const DateLayout = "2006-01-02"

// Session is the process-lifetime view of who is logged in. It is derived
// from the identity provider and the local cache and never persisted.
type Session struct {
	IdentitySessionPresent bool
	CachedToken            string
	CachedProfileSnapshot  *ProfileSnapshot
}

// HasToken reports whether a bearer token is cached.
func (s Session) HasToken() bool { return s.CachedToken != "" }

// ProfileSnapshot is the locally cached, possibly stale copy of the profile.
type ProfileSnapshot struct {
	Email                string `json:"email,omitempty"`
	DisplayName          string `json:"displayName,omitempty"`
	RegistrationComplete bool   `json:"registrationComplete"`
}

// RemoteProfile is a point-in-time copy of the profile owned by the service.
type RemoteProfile struct {
	ID                   string
	Name                 string
	Email                string
	Phone                string
	DateOfBirth          time.Time
	Gender               Gender
	RegistrationComplete bool
	IsPhoneVerified      bool
	IsEmailVerified      bool
}

// Snapshot returns the cacheable subset of p.
func (p RemoteProfile) Snapshot() ProfileSnapshot {
	return ProfileSnapshot{
		Email:                p.Email,
		DisplayName:          p.Name,
		RegistrationComplete: p.RegistrationComplete,
	}
}

// ProfileFromSnapshot expands a cached snapshot into a RemoteProfile with
// only the cached fields populated.
func ProfileFromSnapshot(s ProfileSnapshot) RemoteProfile {
	return RemoteProfile{
		Email:                s.Email,
		Name:                 s.DisplayName,
		RegistrationComplete: s.RegistrationComplete,
	}
}

// MinimalProfile is the degraded-mode profile: email only, incomplete.
func MinimalProfile(email string) RemoteProfile {
	return RemoteProfile{Email: email}
}

// IdentitySession is the federated session reported by an identity provider.
type IdentitySession struct {
	Subject       string
	Email         string
	PhoneNumber   string
	EmailVerified bool
	PhoneVerified bool
	ExpiresAt     time.Time
}
