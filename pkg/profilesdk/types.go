package profilesdk

// User is the profile record owned by the service.
type User struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`

	// DateOfBirth is a calendar date formatted as YYYY-MM-DD.
	DateOfBirth string `json:"dateOfBirth"`
	Gender      string `json:"gender"`

	RegistrationComplete bool `json:"registrationComplete"`
	IsPhoneVerified      bool `json:"isPhoneVerified"`
	IsEmailVerified      bool `json:"isEmailVerified"`
}

// ProfileResponse is returned by GET /api/auth/profile.
type ProfileResponse struct {
	User User `json:"user"`
}

// AuthResponse is returned by register and update-profile. Token is empty
// when update-profile did not rotate the caller's token.
type AuthResponse struct {
	Token string `json:"token,omitempty"`
	User  User   `json:"user"`
}

// UpdateProfileRequest is the body of POST /api/auth/update-profile.
type UpdateProfileRequest struct {
	Name        string `json:"name"        validate:"required,max=100"`
	DateOfBirth string `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`
	Gender      string `json:"gender"      validate:"required,oneof=male female transgender"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Name            string `json:"name"            validate:"required,max=100"`
	Email           string `json:"email"           validate:"required_without=Phone,omitempty,email"`
	Phone           string `json:"phone"           validate:"required_without=Email,omitempty,numeric,min=6,max=15"`
	DateOfBirth     string `json:"dateOfBirth"     validate:"required,datetime=2006-01-02"`
	Gender          string `json:"gender"          validate:"required,oneof=male female transgender"`
	IsPhoneVerified bool   `json:"isPhoneVerified"`
	IsEmailVerified bool   `json:"isEmailVerified"`
}

// MessageResponse is the error envelope of the service.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse represents the response structure for health check endpoints.
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks is only populated by /readyz.
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the readiness of each dependency.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}
