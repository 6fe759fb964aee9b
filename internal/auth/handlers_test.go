package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"

	"github.com/gofiber/fiber/v2"
)

func newTestApp(t *testing.T) (*fiber.App, pgxmock.PgxPoolIface, *Codec) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)

	codec := NewCodec("test-secret", time.Hour)
	app := fiber.New()
	RegisterRoutes(app.Group("/auth"), NewService(codec, mock), Gate(codec))
	return app, mock, codec
}

func TestRegisterHandler(t *testing.T) {
	app, mock, _ := newTestApp(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), "user@example.com", "User One", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	body, _ := json.Marshal(RegisterRequest{Name: "User One", Email: "user@example.com", Password: "password123"})
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status: %v %d", err, resp.StatusCode)
	}
}

func TestRegisterHandlerMissingFields(t *testing.T) {
	app, _, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request, got %d", resp.StatusCode)
	}
}

func TestLoginHandlerBadPayload(t *testing.T) {
	app, _, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request, got %d", resp.StatusCode)
	}
}

func TestMeHandler(t *testing.T) {
	app, mock, codec := newTestApp(t)

	mock.ExpectQuery(`SELECT id, email, name, avatar_url, created_at`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "name", "avatar_url", "created_at"}).
			AddRow("user-1", "user@example.com", "User One", "", time.Now()))

	token, _ := codec.Issue("user-1")
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("me status: %v %d", err, resp.StatusCode)
	}

	var user User
	_ = json.NewDecoder(resp.Body).Decode(&user)
	if user.ID != "user-1" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestMeHandlerNoToken(t *testing.T) {
	app, _, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized, got %d", resp.StatusCode)
	}
}
