package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"donatrack/internal/domain"
)

// UserRepositorySQLite implements staff account persistence over SQLite.
type UserRepositorySQLite struct {
	db *sql.DB
}

// NewUserRepository creates a new user repo.
func NewUserRepository(db *sql.DB) *UserRepositorySQLite {
	return &UserRepositorySQLite{db: db}
}

// GetByUsername fetches a user by exact username.
func (r *UserRepositorySQLite) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	var user domain.User
	err := r.db.QueryRowContext(ctx, `
SELECT id, username, password_hash, role FROM users WHERE username = ?;
`, username).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("select user: %w", err)
	}
	return user, nil
}

// Create inserts a staff account, hashing the password before storage.
func (r *UserRepositorySQLite) Create(ctx context.Context, username, password string, role domain.UserRole) (domain.User, error) {
	username = strings.TrimSpace(username)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
INSERT INTO users (username, password_hash, role) VALUES (?, ?, ?);
`, username, string(hash), role)
	if err != nil {
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.User{}, fmt.Errorf("insert user id: %w", err)
	}
	return domain.User{ID: id, Username: username, PasswordHash: string(hash), Role: role}, nil
}

// Authenticate validates the credentials and returns the matching user.
// Unknown usernames and wrong passwords are indistinguishable to the caller.
func (r *UserRepositorySQLite) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	user, err := r.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, domain.ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return user, nil
}

// EnsureAdmin provisions the default administrative account when no user
// with that username exists yet. It returns true when the account was created.
func (r *UserRepositorySQLite) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}
	if _, err := r.Create(ctx, username, password, domain.UserRoleAdmin); err != nil {
		return false, err
	}
	return true, nil
}
