package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"project-ascend/middleware"
	"project-ascend/models"
	"project-ascend/services"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testAdminToken = "admin-secret"

type fakeGenerator struct{ text string }

func (f fakeGenerator) Generate(context.Context, services.QuestRequest) (string, error) {
	return f.text, nil
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "api.db")), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	tokens := services.NewTokenIssuer("handler-test-secret", time.Hour)
	requireUser := middleware.UserContextMiddleware(tokens)
	requireAdmin := middleware.AdminTokenMiddleware(testAdminToken)
	quests := services.NewQuestService(db,
		fakeGenerator{text: "title: Sprint Saga\ntype: potions\nxp: AGI:25\ndue: 3"},
		services.QuestInterpreter{})

	app := fiber.New()
	SetupHealthRoutes(app, db)
	SetupAuthRoutes(app, services.NewUserService(db, tokens), requireUser)
	SetupProgressionRoutes(app, services.NewProgressionService(db), requireUser)
	SetupWorkoutRoutes(app, services.NewWorkoutService(db), requireUser)
	SetupQuestRoutes(app, quests, requireUser)
	SetupNutritionRoutes(app, services.NewNutritionService(db), services.NewWaterService(db, 3000), requireUser)
	SetupCatalogRoutes(app, services.NewCatalogService(db), requireUser, requireAdmin)
	return app
}

func do(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("decode %s %s response %q: %v", method, path, raw, err)
		}
	} else if len(raw) > 0 && raw[0] == '[' {
		var list []any
		if err := json.Unmarshal(raw, &list); err != nil {
			t.Fatalf("decode %s %s response %q: %v", method, path, raw, err)
		}
		out["items"] = list
	}
	return resp.StatusCode, out
}

func register(t *testing.T, app *fiber.App, username string) string {
	t.Helper()
	status, body := do(t, app, http.MethodPost, "/auth/register", "", fiber.Map{
		"username": username,
		"email":    username + "@example.com",
		"password": "long enough password",
	})
	if status != http.StatusCreated {
		t.Fatalf("register %s: status %d body %v", username, status, body)
	}
	return body["access_token"].(string)
}

func TestHealthAndRoot(t *testing.T) {
	app := newTestApp(t)
	status, body := do(t, app, http.MethodGet, "/health", "", nil)
	if status != http.StatusOK || body["status"] != "healthy" || body["database"] != "connected" {
		t.Fatalf("unexpected health %d %v", status, body)
	}
	status, body = do(t, app, http.MethodGet, "/", "", nil)
	if status != http.StatusOK || body["version"] != "1.0.0" {
		t.Fatalf("unexpected root %d %v", status, body)
	}
}

func TestAuthFlow(t *testing.T) {
	app := newTestApp(t)

	if status, _ := do(t, app, http.MethodGet, "/auth/me", "", nil); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}
	if status, _ := do(t, app, http.MethodGet, "/auth/me", "garbage", nil); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad token, got %d", status)
	}

	token := register(t, app, "sage")
	status, body := do(t, app, http.MethodPost, "/auth/register", "", fiber.Map{
		"username": "sage", "email": "sage@example.com", "password": "long enough password",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("duplicate register: expected 400, got %d %v", status, body)
	}

	status, body = do(t, app, http.MethodPost, "/auth/login", "", fiber.Map{"email": "sage@example.com", "password": "nope"})
	if status != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d %v", status, body)
	}
	status, body = do(t, app, http.MethodPost, "/auth/login", "", fiber.Map{"username": "sage@example.com", "password": "long enough password"})
	if status != http.StatusOK || body["access_token"] == "" {
		t.Fatalf("login: %d %v", status, body)
	}

	status, body = do(t, app, http.MethodGet, "/auth/me", token, nil)
	if status != http.StatusOK || body["username"] != "sage" {
		t.Fatalf("me: %d %v", status, body)
	}
	if _, leaked := body["hashed_password"]; leaked {
		t.Fatal("password hash must not be serialised")
	}

	status, body = do(t, app, http.MethodPut, "/users/me", token, fiber.Map{"age": 31, "email": "hijack@example.com"})
	if status != http.StatusOK || body["age"] != float64(31) || body["email"] != "sage@example.com" {
		t.Fatalf("profile update should only touch allow-listed fields: %d %v", status, body)
	}
}

func TestNutritionAndStatsEndpoints(t *testing.T) {
	app := newTestApp(t)
	token := register(t, app, "chef")
	loggedAt := time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)

	for _, entry := range []fiber.Map{
		{"food_name": "Toast", "calories_per_serving": 200, "protein_g": 10, "meal_type": "breakfast", "logged_at": loggedAt, "created_at": "2001-01-01T00:00:00Z"},
		{"food_name": "Feast", "calories_per_serving": 900, "protein_g": 37.5, "servings_consumed": 2, "meal_type": "dinner", "logged_at": loggedAt.Add(6 * time.Hour)},
	} {
		status, body := do(t, app, http.MethodPost, "/nutrition/logs", token, entry)
		if status != http.StatusCreated {
			t.Fatalf("log food: %d %v", status, body)
		}
		logged := body["food_log"].(map[string]any)
		if created, _ := logged["created_at"].(string); strings.HasPrefix(created, "2001") {
			t.Fatalf("client supplied created_at was stored: %v", logged)
		}
	}

	status, body := do(t, app, http.MethodGet, "/nutrition/daily-summary?date=2026-04-02", token, nil)
	if status != http.StatusOK {
		t.Fatalf("daily summary: %d %v", status, body)
	}
	if body["total_calories"] != float64(2000) || body["total_protein_g"] != float64(85) {
		t.Fatalf("unexpected totals %v", body)
	}
	xp := body["xp_earned"].(map[string]any)
	if xp["INT"] != float64(10) || xp["END"] != float64(15) || xp["CHA"] != float64(10) {
		t.Fatalf("unexpected xp %v", xp)
	}

	if status, _ := do(t, app, http.MethodGet, "/nutrition/daily-summary?date=April", token, nil); status != http.StatusBadRequest {
		t.Fatalf("bad date: expected 400, got %d", status)
	}
	if status, _ := do(t, app, http.MethodPost, "/nutrition/logs", token, fiber.Map{"food_name": "x", "meal_type": "brunch"}); status != http.StatusBadRequest {
		t.Fatalf("bad meal type: expected 400, got %d", status)
	}

	status, body = do(t, app, http.MethodPost, "/workouts", token, fiber.Map{"name": "Evening run", "duration_minutes": 60})
	if status != http.StatusCreated {
		t.Fatalf("create workout: %d %v", status, body)
	}

	status, body = do(t, app, http.MethodGet, "/users/me/stats", token, nil)
	if status != http.StatusOK {
		t.Fatalf("stats: %d %v", status, body)
	}
	if body["total_xp"] != float64(45) || body["level"] != float64(1) || body["xp_to_next_level"] != float64(955) {
		t.Fatalf("unexpected stats %v", body)
	}

	status, body = do(t, app, http.MethodGet, "/api/nutrition/analytics/history", token, nil)
	if status != http.StatusOK || body["total"] != float64(1) {
		t.Fatalf("history: %d %v", status, body)
	}
}

func TestQuestEndpoints(t *testing.T) {
	app := newTestApp(t)
	token := register(t, app, "seeker")

	status, body := do(t, app, http.MethodPost, "/generate-quest", token, fiber.Map{"focus": "social"})
	if status != http.StatusCreated {
		t.Fatalf("generate: %d %v", status, body)
	}
	if body["title"] != "Sprint Saga" || body["type"] != "social" || body["status"] != "active" {
		t.Fatalf("unexpected generated quest %v", body)
	}
	id := body["id"].(string)

	status, body = do(t, app, http.MethodPost, "/generate-quest", token, fiber.Map{"preferred_challenge_level": "legendary"})
	if status != http.StatusBadRequest {
		t.Fatalf("bad challenge level: expected 400, got %d %v", status, body)
	}

	status, body = do(t, app, http.MethodPost, "/quests/"+id+"/complete", token, nil)
	if status != http.StatusOK || body["status"] != "completed" || body["completed_at"] == nil {
		t.Fatalf("complete: %d %v", status, body)
	}
	if status, _ := do(t, app, http.MethodPost, "/quests/"+id+"/complete", token, nil); status != http.StatusBadRequest {
		t.Fatalf("second complete: expected 400, got %d", status)
	}

	other := register(t, app, "intruder")
	if status, _ := do(t, app, http.MethodPut, "/quests/"+id, other, fiber.Map{"title": "mine now"}); status != http.StatusNotFound {
		t.Fatalf("foreign quest: expected 404, got %d", status)
	}

	status, body = do(t, app, http.MethodGet, "/quests?status=completed", token, nil)
	if status != http.StatusOK || len(body["items"].([]any)) != 1 {
		t.Fatalf("list completed: %d %v", status, body)
	}

	status, body = do(t, app, http.MethodGet, "/users/me/stats", token, nil)
	attrs := body["attributes"].(map[string]any)
	if status != http.StatusOK || attrs["AGI"].(map[string]any)["xp"] != float64(25) {
		t.Fatalf("completed quest should add AGI xp: %d %v", status, body)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	app := newTestApp(t)
	owner := register(t, app, "cook")
	guest := register(t, app, "guest")

	exercise := fiber.Map{"name": "Goblet Squat", "tags": fiber.Map{"primary_muscles": []string{"quads"}, "difficulty": "beginner"}}
	if status, _ := do(t, app, http.MethodPost, "/admin/exercises", "", exercise); status != http.StatusUnauthorized {
		t.Fatalf("admin without token: expected 401, got %d", status)
	}
	if status, _ := do(t, app, http.MethodPost, "/admin/exercises", "wrong", exercise); status != http.StatusForbidden {
		t.Fatalf("admin with wrong token: expected 403, got %d", status)
	}
	if status, body := do(t, app, http.MethodPost, "/admin/exercises", testAdminToken, exercise); status != http.StatusCreated {
		t.Fatalf("admin create exercise: %d %v", status, body)
	}
	status, body := do(t, app, http.MethodGet, "/exercises?muscle_group=quads", "", nil)
	if status != http.StatusOK || len(body["items"].([]any)) != 1 {
		t.Fatalf("filtered exercises: %d %v", status, body)
	}

	if status, body := do(t, app, http.MethodPost, "/admin/foods", testAdminToken, fiber.Map{"name": "Banana", "calories": 105, "category": "fruit"}); status != http.StatusCreated {
		t.Fatalf("admin create food: %d %v", status, body)
	}
	status, body = do(t, app, http.MethodGet, "/api/food-database/search?q=ban", "", nil)
	if status != http.StatusOK || body["total"] != float64(1) {
		t.Fatalf("food search: %d %v", status, body)
	}

	status, body = do(t, app, http.MethodPost, "/api/meal-templates", owner, fiber.Map{"name": "Secret Stew", "calories": 700, "tags": []string{"Hearty"}})
	if status != http.StatusCreated {
		t.Fatalf("create template: %d %v", status, body)
	}
	id := body["data"].(map[string]any)["id"].(string)

	if status, _ := do(t, app, http.MethodGet, "/api/meal-templates/"+id, guest, nil); status != http.StatusForbidden {
		t.Fatalf("private template for guest: expected 403, got %d", status)
	}
	if status, _ := do(t, app, http.MethodDelete, "/api/meal-templates/"+id, guest, nil); status != http.StatusForbidden {
		t.Fatalf("guest delete: expected 403, got %d", status)
	}
	if status, _ := do(t, app, http.MethodGet, "/api/meal-templates/does-not-exist", owner, nil); status != http.StatusNotFound {
		t.Fatalf("missing template: expected 404, got %d", status)
	}
	status, body = do(t, app, http.MethodPut, "/api/meal-templates/"+id, owner, fiber.Map{"is_public": true})
	if status != http.StatusOK {
		t.Fatalf("publish template: %d %v", status, body)
	}
	status, body = do(t, app, http.MethodGet, "/api/meal-templates/popular", "", nil)
	if status != http.StatusOK || len(body["data"].([]any)) != 1 {
		t.Fatalf("popular templates: %d %v", status, body)
	}
	status, body = do(t, app, http.MethodGet, "/api/meal-templates/categories", "", nil)
	cats := body["data"].([]any)
	if status != http.StatusOK || len(cats) != 1 || cats[0].(map[string]any)["label"] != "Hearty" {
		t.Fatalf("template categories: %d %v", status, body)
	}
}
