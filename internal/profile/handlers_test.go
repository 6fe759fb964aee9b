package profile

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
)

func fakeGate(userID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		return c.Next()
	}
}

func newHandlerApp(t *testing.T, userID string) (*fiber.App, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)

	app := fiber.New()
	RegisterRoutes(app.Group("/profiles"), NewService(mock, nil), fakeGate(userID))
	return app, mock
}

func TestMeHandler(t *testing.T) {
	app, mock := newHandlerApp(t, "user-1")

	expectProfileRow(mock, "user-1")
	expectExperienceRows(mock, "user-1", pgxmock.NewRows(experienceCols))
	expectEducationRows(mock, "user-1", pgxmock.NewRows(educationCols))
	expectOwnerRow(mock, "user-1")

	req := httptest.NewRequest(http.MethodGet, "/profiles/me", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("me status: %v %d", err, resp.StatusCode)
	}

	var p Profile
	_ = json.NewDecoder(resp.Body).Decode(&p)
	if p.UserID != "user-1" {
		t.Fatalf("unexpected profile: %+v", p)
	}
}

func TestMeHandlerMissingProfile(t *testing.T) {
	app, mock := newHandlerApp(t, "user-1")

	mock.ExpectQuery(`SELECT user_id, status, company, website, location, bio, github_username, skills`).
		WithArgs("user-1").
		WillReturnError(pgx.ErrNoRows)

	req := httptest.NewRequest(http.MethodGet, "/profiles/me", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected not found, got %d", resp.StatusCode)
	}
}

func TestUpsertHandlerMissingStatus(t *testing.T) {
	app, _ := newHandlerApp(t, "user-1")

	req := httptest.NewRequest(http.MethodPost, "/profiles", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request, got %d", resp.StatusCode)
	}
}

func TestUpsertHandlerSplitsSkills(t *testing.T) {
	app, mock := newHandlerApp(t, "user-1")

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO profiles`).
		WithArgs("user-1", "developer", "", "", "", "", "", []string{"go", "sql"},
			"", "", "", "", "").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	expectProfileRow(mock, "user-1")
	expectExperienceRows(mock, "user-1", pgxmock.NewRows(experienceCols))
	expectEducationRows(mock, "user-1", pgxmock.NewRows(educationCols))
	expectOwnerRow(mock, "user-1")

	body, _ := json.Marshal(map[string]string{"status": "developer", "skills": " go , sql "})
	req := httptest.NewRequest(http.MethodPost, "/profiles", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("upsert status: %v %d", err, resp.StatusCode)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAddExperienceHandlerMissingFields(t *testing.T) {
	app, _ := newHandlerApp(t, "user-1")

	req := httptest.NewRequest(http.MethodPut, "/profiles/experience", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request, got %d", resp.StatusCode)
	}
}

func TestRemoveExperienceHandlerNotFound(t *testing.T) {
	app, mock := newHandlerApp(t, "user-1")

	mock.ExpectExec(`DELETE FROM profile_experience`).
		WithArgs("missing", "user-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	req := httptest.NewRequest(http.MethodDelete, "/profiles/experience/missing", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected not found, got %d", resp.StatusCode)
	}
}

func TestListHandler(t *testing.T) {
	app, mock := newHandlerApp(t, "user-1")

	mock.ExpectQuery(`SELECT user_id, status, company, website, location, bio, github_username, skills`).
		WillReturnRows(pgxmock.NewRows(profileCols))

	req := httptest.NewRequest(http.MethodGet, "/profiles", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("list status: %v %d", err, resp.StatusCode)
	}
}
