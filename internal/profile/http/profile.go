package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aussiebroadwan/reels/internal/profile/domain"
	"github.com/aussiebroadwan/reels/internal/profile/service"
	"github.com/aussiebroadwan/reels/pkg/httpx"
	"github.com/aussiebroadwan/reels/pkg/profilesdk"
	"github.com/aussiebroadwan/reels/pkg/slogx"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 16

type ProfileHandler struct {
	Profiles *service.ProfileService
	validate *validator.Validate
}

func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return &ProfileHandler{Profiles: profiles, validate: v}
}

// HandleGet godoc
//
//	@Summary		Get profile
//	@Description	Returns the profile of the authenticated user.
//	@Tags			Profile
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	profilesdk.ProfileResponse
//	@Failure		401	{object}	profilesdk.MessageResponse	"Missing, invalid or revoked token"
//	@Failure		404	{object}	profilesdk.MessageResponse	"No profile for this token"
//	@Router			/api/auth/profile [get].
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := httpx.UserIDFromContext(ctx)
	if !ok {
		httpx.WriteMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.Profiles.GetProfile(ctx, userID)
	if errors.Is(err, service.ErrUserNotFound) {
		httpx.WriteMessage(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		log.Error("failed to load profile", "user_id", userID, "err", err)
		httpx.WriteMessage(w, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, profilesdk.ProfileResponse{User: toUser(user)})
}

// HandleUpdate godoc
//
//	@Summary		Complete profile
//	@Description	Sets name, date of birth and gender and marks the profile complete.
//	@Description	The presented token is revoked and a replacement is returned.
//	@Tags			Profile
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		profilesdk.UpdateProfileRequest	true	"Profile fields"
//	@Success		200		{object}	profilesdk.AuthResponse
//	@Failure		400		{object}	profilesdk.MessageResponse	"Invalid request body"
//	@Failure		401		{object}	profilesdk.MessageResponse	"Missing, invalid or revoked token"
//	@Failure		404		{object}	profilesdk.MessageResponse	"No profile for this token"
//	@Router			/api/auth/update-profile [post].
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	claims, ok := httpx.ClaimsFromContext(ctx)
	if !ok {
		httpx.WriteMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req profilesdk.UpdateProfileRequest
	if !h.decode(w, r, &req) {
		return
	}

	token, user, err := h.Profiles.UpdateProfile(ctx, claims, service.ProfileInput{
		Name:        req.Name,
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
	})
	if errors.Is(err, service.ErrUserNotFound) {
		httpx.WriteMessage(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		log.Error("failed to update profile", "user_id", claims.Subject, "err", err)
		httpx.WriteMessage(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, profilesdk.AuthResponse{Token: token, User: toUser(user)})
}

// HandleRegister godoc
//
//	@Summary		Register
//	@Description	Creates a complete profile and issues its first bearer token.
//	@Tags			Profile
//	@Accept			json
//	@Produce		json
//	@Param			request	body		profilesdk.RegisterRequest	true	"Registration"
//	@Success		200		{object}	profilesdk.AuthResponse
//	@Failure		400		{object}	profilesdk.MessageResponse	"Invalid request body"
//	@Failure		409		{object}	profilesdk.MessageResponse	"Email or phone already registered"
//	@Failure		429		{object}	profilesdk.MessageResponse	"Too many requests"
//	@Router			/api/auth/register [post].
func (h *ProfileHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req profilesdk.RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	token, user, err := h.Profiles.Register(ctx, service.RegisterInput{
		ProfileInput: service.ProfileInput{
			Name:        req.Name,
			DateOfBirth: req.DateOfBirth,
			Gender:      req.Gender,
		},
		Email:           req.Email,
		Phone:           req.Phone,
		IsPhoneVerified: req.IsPhoneVerified,
		IsEmailVerified: req.IsEmailVerified,
	})
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		httpx.WriteMessage(w, http.StatusConflict, "Email already registered")
		return
	case errors.Is(err, service.ErrPhoneTaken):
		httpx.WriteMessage(w, http.StatusConflict, "Phone number already registered")
		return
	case errors.Is(err, service.ErrMissingContact):
		httpx.WriteMessage(w, http.StatusBadRequest, "Email or phone is required")
		return
	case err != nil:
		log.Error("failed to register user", "err", err)
		httpx.WriteMessage(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, profilesdk.AuthResponse{Token: token, User: toUser(user)})
}

// HandleLogout godoc
//
//	@Summary		Logout
//	@Description	Revokes the presented bearer token.
//	@Tags			Profile
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	profilesdk.MessageResponse
//	@Failure		401	{object}	profilesdk.MessageResponse	"Missing, invalid or revoked token"
//	@Router			/api/auth/logout [post].
func (h *ProfileHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := httpx.ClaimsFromContext(ctx)
	if !ok {
		httpx.WriteMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.Profiles.Logout(ctx, claims); err != nil {
		slogx.FromContext(ctx).Error("failed to revoke token", "user_id", claims.Subject, "err", err)
		httpx.WriteMessage(w, http.StatusInternalServerError, "Failed to log out")
		return
	}

	httpx.WriteMessage(w, http.StatusOK, "Logged out successfully")
}

// decode reads and validates a JSON body, writing a 400 on failure.
func (h *ProfileHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required", "required_without":
		return fe.Field() + " is required"
	case "datetime":
		return fe.Field() + " must be a date in YYYY-MM-DD format"
	case "oneof":
		return fe.Field() + " must be one of " + strings.Join(domain.Genders, ", ")
	case "email":
		return "email is invalid"
	}
	return fe.Field() + " is invalid"
}

func toUser(u domain.User) profilesdk.User {
	return profilesdk.User{
		ID:                   u.ID,
		Name:                 u.Name,
		Email:                u.Email,
		Phone:                u.Phone,
		DateOfBirth:          u.DateOfBirth,
		Gender:               u.Gender,
		RegistrationComplete: u.RegistrationComplete,
		IsPhoneVerified:      u.IsPhoneVerified,
		IsEmailVerified:      u.IsEmailVerified,
	}
}
