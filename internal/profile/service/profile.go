package service

import (
	"context"
	"errors"
	"strings"

	"github.com/aussiebroadwan/reels/internal/profile/domain"
	"github.com/aussiebroadwan/reels/internal/profile/store"
	"github.com/aussiebroadwan/reels/pkg/idx"
	"github.com/aussiebroadwan/reels/pkg/jwtx"
	"github.com/aussiebroadwan/reels/pkg/slogx"
)

var (
	ErrUserNotFound   = errors.New("user_not_found")
	ErrEmailTaken     = errors.New("email_taken")
	ErrPhoneTaken     = errors.New("phone_taken")
	ErrMissingContact = errors.New("missing_contact")
)

// ProfileInput is the editable part of a profile.
type ProfileInput struct {
	Name        string
	DateOfBirth string
	Gender      string
}

// RegisterInput creates an account. Email or Phone must be set.
type RegisterInput struct {
	ProfileInput
	Email           string
	Phone           string
	IsPhoneVerified bool
	IsEmailVerified bool
}

type ProfileService struct {
	Store  store.Store
	Tokens *TokenService
}

// GetProfile fetches the profile of userID.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}

// UpdateProfile completes the caller's profile and rotates their token: the
// presented token is revoked in the same transaction and a fresh one is
// returned.
func (s *ProfileService) UpdateProfile(ctx context.Context, claims jwtx.Claims, in ProfileInput) (string, domain.User, error) {
	var user domain.User

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		err := tx.Users().UpdateProfile(ctx, claims.Subject, strings.TrimSpace(in.Name), in.DateOfBirth, in.Gender)
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}

		if user, err = tx.Users().GetUserByID(ctx, claims.Subject); err != nil {
			return err
		}
		return s.Tokens.revoke(ctx, tx, claims)
	})
	if err != nil {
		return "", domain.User{}, err
	}

	token, err := s.Tokens.Issue(user)
	if err != nil {
		return "", domain.User{}, err
	}

	slogx.FromContext(ctx).Info("profile updated", "user_id", user.ID, "revoked_jti", claims.ID)
	return token, user, nil
}

// Register creates a complete profile and issues its first token.
func (s *ProfileService) Register(ctx context.Context, in RegisterInput) (string, domain.User, error) {
	email := strings.TrimSpace(in.Email)
	phone := strings.TrimSpace(in.Phone)
	if email == "" && phone == "" {
		return "", domain.User{}, ErrMissingContact
	}

	user := domain.User{
		ID:                   idx.New().String(),
		Name:                 strings.TrimSpace(in.Name),
		Email:                email,
		Phone:                phone,
		DateOfBirth:          in.DateOfBirth,
		Gender:               in.Gender,
		RegistrationComplete: true,
		IsPhoneVerified:      in.IsPhoneVerified && phone != "",
		IsEmailVerified:      in.IsEmailVerified && email != "",
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Users().GetUserByEmail(ctx, email); err == nil {
			return ErrEmailTaken
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if _, err := tx.Users().GetUserByPhone(ctx, phone); err == nil {
			return ErrPhoneTaken
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailTaken
			}
			return err
		}

		created, err := tx.Users().GetUserByID(ctx, user.ID)
		if err != nil {
			return err
		}
		user = created
		return nil
	})
	if err != nil {
		return "", domain.User{}, err
	}

	token, err := s.Tokens.Issue(user)
	if err != nil {
		return "", domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user registered", "user_id", user.ID)
	return token, user, nil
}

// Logout revokes the presented token.
func (s *ProfileService) Logout(ctx context.Context, claims jwtx.Claims) error {
	return s.Tokens.Revoke(ctx, claims)
}
