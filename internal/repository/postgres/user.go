package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"coinwatch/internal/domain/user"
	"coinwatch/pkg/errors"
)

// Compile-time check
var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository using sqlx
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, usr *user.User) error {
	query := `
		INSERT INTO users (
			id, email, password_hash, first_name, last_name,
			is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		usr.ID, usr.Email, usr.PasswordHash, usr.FirstName, usr.LastName,
		usr.IsActive, usr.CreatedAt, usr.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return errors.Wrapf(errors.ErrAlreadyExists, "email %s", usr.Email)
	}

	return err
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	var usr user.User

	query := `SELECT * FROM users WHERE id = $1`

	err := r.db.GetContext(ctx, &usr, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &usr, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var usr user.User

	query := `SELECT * FROM users WHERE email = $1`

	err := r.db.GetContext(ctx, &usr, query, email)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &usr, nil
}

// Update updates a user's mutable fields
func (r *UserRepository) Update(ctx context.Context, usr *user.User) error {
	query := `
		UPDATE users SET
			email = $2,
			password_hash = $3,
			first_name = $4,
			last_name = $5,
			is_active = $6,
			updated_at = $7
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		usr.ID, usr.Email, usr.PasswordHash, usr.FirstName, usr.LastName,
		usr.IsActive, usr.UpdatedAt,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errors.ErrNotFound
	}

	return nil
}

// Delete deletes a user
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errors.ErrNotFound
	}

	return nil
}
