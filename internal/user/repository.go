package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no user matches the lookup key.
var ErrNotFound = errors.New("user not found")

// Repository persists users and their pending OTP state.
type Repository interface {
	Create(ctx context.Context, user User) error
	FindByID(ctx context.Context, id string) (User, error)
	FindByUsername(ctx context.Context, username string) (User, error)
	SetOTP(ctx context.Context, id, code string, expiry time.Time) error
	ClearOTP(ctx context.Context, id string) error
	// ConsumeOTP atomically clears the pending OTP, but only if the stored
	// code equals the submitted one and has not expired at instant now.
	// It reports whether a code was consumed. Verification must use this as
	// its sole mutation path so two concurrent attempts cannot both succeed
	// with the same code.
	ConsumeOTP(ctx context.Context, id, code string, now time.Time) (bool, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed user repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user. Used by seed tooling, not exposed over HTTP.
func (r *PostgresRepository) Create(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users (id, username, email, password_hash, is_admin, otp_code, otp_expiry, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		userID, user.Username, user.Email, user.PasswordHash, user.IsAdmin, user.OTPCode, user.OTPExpiry, user.CreatedAt.UTC())
	return err
}

// FindByID fetches a user by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, username, email, password_hash, is_admin, otp_code, otp_expiry, created_at
        FROM users WHERE id = $1`, userID)
	return scanUser(row)
}

// FindByUsername fetches a user by username.
func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT id, username, email, password_hash, is_admin, otp_code, otp_expiry, created_at
        FROM users WHERE username = $1`, username)
	return scanUser(row)
}

// SetOTP stores a freshly issued code and its expiry on the user record.
func (r *PostgresRepository) SetOTP(ctx context.Context, id, code string, expiry time.Time) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE users SET otp_code = $1, otp_expiry = $2 WHERE id = $3`,
		code, expiry.UTC(), userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearOTP resets both OTP fields to null.
func (r *PostgresRepository) ClearOTP(ctx context.Context, id string) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE users SET otp_code = NULL, otp_expiry = NULL WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ConsumeOTP performs the conditional clear in a single UPDATE. The strict
// otp_expiry > now predicate makes an exactly-expired code unusable.
func (r *PostgresRepository) ConsumeOTP(ctx context.Context, id, code string, now time.Time) (bool, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return false, ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE users SET otp_code = NULL, otp_expiry = NULL
        WHERE id = $1 AND otp_code = $2 AND otp_expiry > $3`,
		userID, code, now.UTC())
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func scanUser(row pgx.Row) (User, error) {
	var (
		id        uuid.UUID
		createdAt time.Time
		u         User
	)
	if err := row.Scan(&id, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.OTPCode, &u.OTPExpiry, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	u.ID = id.String()
	u.CreatedAt = createdAt.UTC()
	return u, nil
}
