package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/reels/internal/profile/domain"
	"github.com/aussiebroadwan/reels/internal/profile/store"
)

const userColumns = `id, name, email, phone, date_of_birth, gender,
	registration_complete, is_phone_verified, is_email_verified, created_at, updated_at`

type usersRepo struct {
	q querier
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.getBy(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	if email == "" {
		return domain.User{}, store.ErrNotFound
	}
	return r.getBy(ctx, `SELECT `+userColumns+` FROM users WHERE email = ? COLLATE NOCASE`, email)
}

func (r *usersRepo) GetUserByPhone(ctx context.Context, phone string) (domain.User, error) {
	if phone == "" {
		return domain.User{}, store.ErrNotFound
	}
	return r.getBy(ctx, `SELECT `+userColumns+` FROM users WHERE phone = ?`, phone)
}

func (r *usersRepo) getBy(ctx context.Context, query string, arg any) (domain.User, error) {
	var (
		u            domain.User
		email, phone sql.NullString
	)
	err := r.q.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Name, &email, &phone, &u.DateOfBirth, &u.Gender,
		&u.RegistrationComplete, &u.IsPhoneVerified, &u.IsEmailVerified,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.Email = mapNullString(email)
	u.Phone = mapNullString(phone)
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (id, name, email, phone, date_of_birth, gender,
			registration_complete, is_phone_verified, is_email_verified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, mapStringNull(u.Email), mapStringNull(u.Phone), u.DateOfBirth, u.Gender,
		u.RegistrationComplete, u.IsPhoneVerified, u.IsEmailVerified,
	)
	return mapConstraint(err)
}

func (r *usersRepo) UpdateProfile(ctx context.Context, userID, name, dateOfBirth, gender string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users
		SET name = ?, date_of_birth = ?, gender = ?, registration_complete = 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		name, dateOfBirth, gender, userID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
