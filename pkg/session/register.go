package session

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aussiebroadwan/reels/pkg/profilesdk"
	"github.com/aussiebroadwan/reels/pkg/session/domain"
	"github.com/aussiebroadwan/reels/pkg/session/route"
	"github.com/aussiebroadwan/reels/pkg/slogx"
)

// RegistrationInput is the profile completion form.
type RegistrationInput struct {
	Name        string
	DateOfBirth time.Time
	Gender      domain.Gender
}

type registrationForm struct {
	Name        string    `json:"name"        validate:"required,max=100"`
	DateOfBirth time.Time `json:"dateOfBirth" validate:"required,notfuture"`
	Gender      string    `json:"gender"      validate:"required,gender"`
}

func newValidator(now func() time.Time) *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	_ = v.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		return ok && !t.After(now())
	})
	_ = v.RegisterValidation("gender", func(fl validator.FieldLevel) bool {
		return domain.Gender(fl.Field().String()).Valid()
	})
	return v
}

func (r *Reconciler) validateInput(in RegistrationInput) (registrationForm, error) {
	form := registrationForm{
		Name:        strings.TrimSpace(in.Name),
		DateOfBirth: in.DateOfBirth,
		Gender:      string(in.Gender),
	}

	err := r.validate.Struct(form)
	if err == nil {
		return form, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return form, err
	}
	fe := verrs[0]
	return form, &ValidationError{Field: fe.Field(), Reason: validationReason(fe.Tag())}
}

func validationReason(tag string) string {
	switch tag {
	case "required":
		return "is required"
	case "max":
		return "is too long"
	case "notfuture":
		return "must not be in the future"
	case "gender":
		return "must be one of male, female, transgender"
	}
	return "is invalid"
}

// CompleteRegistration validates the form and then either updates the
// existing profile or registers a new one from the identity session's
// contact details. On success the issued or rotated token and a completed
// snapshot are cached together. On failure nothing local changes, except that
// a rejected token is purged.
func (r *Reconciler) CompleteRegistration(ctx context.Context, in RegistrationInput) (domain.RemoteProfile, error) {
	form, err := r.validateInput(in)
	if err != nil {
		return domain.RemoteProfile{}, err
	}

	log := slogx.For(ctx, r.logger, "op", "complete_registration")

	token, _, err := r.creds.Load(ctx)
	if err != nil {
		return domain.RemoteProfile{}, &ProfileUpdateFailed{Message: MsgProfileCheckFailed, Err: err}
	}

	dob := form.DateOfBirth.Format(domain.DateLayout)

	var resp *profilesdk.AuthResponse
	if token == "" {
		resp, err = r.register(ctx, form, dob)
	} else {
		_, err = r.profiles.GetProfile(ctx, token)
		switch {
		case err == nil:
			resp, err = r.profiles.UpdateProfile(ctx, token, profilesdk.UpdateProfileRequest{
				Name:        form.Name,
				DateOfBirth: dob,
				Gender:      form.Gender,
			})
		case profilesdk.IsNotFound(err):
			resp, err = r.register(ctx, form, dob)
		case profilesdk.IsUnauthorized(err):
			r.dropRejectedToken(ctx)
			return domain.RemoteProfile{}, &ProfileUpdateFailed{
				StatusCode: http.StatusUnauthorized,
				Message:    messageOr(err, MsgProfileCheckFailed),
				Err:        errors.Join(ErrAuthTokenRejected, err),
			}
		default:
			return domain.RemoteProfile{}, updateFailed(err, MsgProfileCheckFailed)
		}
	}
	if err != nil {
		log.Warn("profile completion failed", "err", err)
		return domain.RemoteProfile{}, updateFailed(err, MsgNetworkError)
	}

	newToken := resp.Token
	if newToken == "" {
		newToken = token
	}
	if newToken == "" {
		return domain.RemoteProfile{}, &ProfileUpdateFailed{Message: MsgNetworkError, Err: errors.New("session: no token issued")}
	}

	profile := profileFromUser(resp.User)
	profile.RegistrationComplete = true
	snap := profile.Snapshot()

	r.writeMu.Lock()
	if err := r.creds.Save(ctx, newToken, snap); err != nil {
		r.writeMu.Unlock()
		log.Error("profile saved remotely but credentials could not be cached", "err", err)
		return domain.RemoteProfile{}, &ProfileUpdateFailed{Message: MsgNetworkError, Err: err}
	}
	r.mu.Lock()
	r.gen++
	r.inflight = nil
	r.state = stateResolved
	r.decision = domain.Classify(profile)
	r.session.CachedToken = newToken
	r.session.CachedProfileSnapshot = &snap
	r.mu.Unlock()
	r.writeMu.Unlock()

	log.Info("registration completed", "rotated_token", resp.Token != "" && token != "")
	r.nav.Reset(route.Home, route.Params{})
	return profile, nil
}

func (r *Reconciler) register(ctx context.Context, form registrationForm, dob string) (*profilesdk.AuthResponse, error) {
	req := profilesdk.RegisterRequest{
		Name:        form.Name,
		DateOfBirth: dob,
		Gender:      form.Gender,
	}

	sess, err := r.identity.CurrentSession(ctx)
	if err != nil {
		slogx.For(ctx, r.logger).Warn("identity lookup failed, registering without contact details", "err", err)
	}
	if sess != nil {
		req.Email = sess.Email
		req.Phone = strings.TrimPrefix(sess.PhoneNumber, r.phonePrefix)
		req.IsEmailVerified = sess.EmailVerified
		req.IsPhoneVerified = sess.PhoneVerified
	}

	return r.profiles.Register(ctx, req)
}

// dropRejectedToken purges the cached credentials and forces the next
// ResolveSession to run again.
func (r *Reconciler) dropRejectedToken(ctx context.Context) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if err := r.creds.Purge(ctx); err != nil {
		slogx.For(ctx, r.logger).Error("failed to purge rejected credentials", "err", err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	r.inflight = nil
	r.state = stateIdle
	r.decision = domain.AuthDecision{}
	r.session.CachedToken = ""
	r.session.CachedProfileSnapshot = nil
}

func updateFailed(err error, fallback string) *ProfileUpdateFailed {
	return &ProfileUpdateFailed{
		StatusCode: profilesdk.StatusCode(err),
		Message:    messageOr(err, fallback),
		Err:        err,
	}
}

func messageOr(err error, fallback string) string {
	if msg := profilesdk.ServerMessage(err); msg != "" {
		return msg
	}
	return fallback
}
