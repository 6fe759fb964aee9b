package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) (*Service, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return NewService(NewCodec("test-secret", time.Hour), mock), mock
}

func TestRegisterAndLogin(t *testing.T) {
	svc, mock := newTestService(t)

	createdAt := time.Now().Add(-time.Minute)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), "user@example.com", "User One", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	user, tokens, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "User One",
		Email:    "user@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == "" || tokens.Token == "" {
		t.Fatalf("expected user and token")
	}
	if user.AvatarURL == "" {
		t.Fatalf("expected gravatar url")
	}

	mock.ExpectQuery(`SELECT id, email, name, password_hash, avatar_url, created_at`).
		WithArgs("user@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "name", "password_hash", "avatar_url", "created_at"}).
			AddRow(user.ID, user.Email, user.Name, user.PasswordHash, user.AvatarURL, createdAt))

	_, loginTokens, err := svc.Login(context.Background(), LoginRequest{Email: "user@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loginTokens.Token == "" {
		t.Fatalf("expected login token")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRegisterMissingFields(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.Register(context.Background(), RegisterRequest{Email: "", Name: "u", Password: "p"})
	if err == nil {
		t.Fatalf("expected error for missing email")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), "user@example.com", "User One", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, _, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "User One",
		Email:    "user@example.com",
		Password: "password123",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(`SELECT id, email, name, password_hash, avatar_url, created_at`).
		WithArgs("missing@example.com").
		WillReturnError(pgx.ErrNoRows)

	_, _, err := svc.Login(context.Background(), LoginRequest{Email: "missing@example.com", Password: "whatever"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, mock := newTestService(t)

	hash, _ := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.DefaultCost)

	mock.ExpectQuery(`SELECT id, email, name, password_hash, avatar_url, created_at`).
		WithArgs("user@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "name", "password_hash", "avatar_url", "created_at"}).
			AddRow("user-1", "user@example.com", "User One", string(hash), "", time.Now()))

	_, _, err := svc.Login(context.Background(), LoginRequest{Email: "user@example.com", Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestCurrentUser(t *testing.T) {
	svc, mock := newTestService(t)

	createdAt := time.Now()
	mock.ExpectQuery(`SELECT id, email, name, avatar_url, created_at`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "name", "avatar_url", "created_at"}).
			AddRow("user-1", "user@example.com", "User One", "https://avatar", createdAt))

	user, err := svc.CurrentUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	if user.Name != "User One" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestCurrentUserNotFound(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(`SELECT id, email, name, avatar_url, created_at`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	if _, err := svc.CurrentUser(context.Background(), "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}
