package repository

import (
	"context"
	"database/sql"
	"fmt"

	"medml-backend/internal/domain"
)

// PostgresUsersRepository 管理员账户Repository实现
type PostgresUsersRepository struct {
	db *sql.DB
}

func NewPostgresUsersRepository(db *sql.DB) *PostgresUsersRepository {
	return &PostgresUsersRepository{db: db}
}

var _ UsersRepository = (*PostgresUsersRepository)(nil)

const userColumns = `
	user_id::text,
	name,
	email,
	password_hash,
	COALESCE(designation, '') AS designation,
	COALESCE(contact_number, '') AS contact_number,
	role,
	created_at
`

func (r *PostgresUsersRepository) CreateUser(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			user_id, name, email, password_hash, designation,
			contact_number, role, created_at
		) VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8)`,
		u.UserID, u.Name, u.Email, u.PasswordHash, u.Designation,
		u.ContactNumber, u.Role, u.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *PostgresUsersRepository) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE user_id = $1`, userID)
	return scanUser(row)
}

func (r *PostgresUsersRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.UserID, &u.Name, &u.Email, &u.PasswordHash,
		&u.Designation, &u.ContactNumber, &u.Role, &u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}
