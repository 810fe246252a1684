package repo

import (
	"context"
	"errors"
	"testing"

	"donatrack/internal/domain"
)

func TestEnsureAdminIdempotent(t *testing.T) {
	r := NewUserRepository(openTestDB(t))
	ctx := context.Background()

	created, err := r.EnsureAdmin(ctx, "admin", "agape2025")
	if err != nil {
		t.Fatalf("EnsureAdmin() error: %v", err)
	}
	if !created {
		t.Fatalf("EnsureAdmin() did not create the account on first run")
	}

	created, err = r.EnsureAdmin(ctx, "admin", "other-password")
	if err != nil {
		t.Fatalf("EnsureAdmin() second run error: %v", err)
	}
	if created {
		t.Fatalf("EnsureAdmin() recreated an existing account")
	}

	user, err := r.GetByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("GetByUsername() error: %v", err)
	}
	if user.Role != domain.UserRoleAdmin {
		t.Fatalf("seeded admin role = %q, want admin", user.Role)
	}
	if user.PasswordHash == "agape2025" {
		t.Fatalf("password stored in clear text")
	}
}

func TestAuthenticate(t *testing.T) {
	r := NewUserRepository(openTestDB(t))
	ctx := context.Background()

	if _, err := r.Create(ctx, "maria", "secreto", domain.UserRoleStaff); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	user, err := r.Authenticate(ctx, "maria", "secreto")
	if err != nil {
		t.Fatalf("Authenticate() error: %v", err)
	}
	if user.Username != "maria" || user.Role != domain.UserRoleStaff {
		t.Fatalf("Authenticate() = %+v, want maria/staff", user)
	}

	if _, err := r.Authenticate(ctx, "maria", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("Authenticate(wrong password) error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := r.Authenticate(ctx, "nadie", "secreto"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("Authenticate(unknown user) error = %v, want ErrInvalidCredentials", err)
	}
}
