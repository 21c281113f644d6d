package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/buildtrack/buildtrack/internal/config"
	"github.com/buildtrack/buildtrack/internal/middleware"
	"github.com/buildtrack/buildtrack/internal/pm/entity"
	"github.com/buildtrack/buildtrack/internal/pm/repository"
	"github.com/buildtrack/buildtrack/internal/pm/service"
	"github.com/buildtrack/buildtrack/internal/pm/testutil"
	"go.uber.org/zap"
)

func setupScheduleTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	router := testutil.SetupRouter()

	repos := repository.NewRepositories(db)
	services := service.NewServices(service.Deps{
		DB:    db,
		Repos: repos,
		JWT: config.JWTConfig{
			Secret:      testutil.JWTSecret,
			TokenExpire: 24 * time.Hour,
			Issuer:      "buildtrack",
		},
		Logger: zap.NewNop(),
	})
	h := NewHandlers(services)

	api := testutil.AuthGroup(router, "/api")
	api.GET("/projects/:id/schedules", h.Schedule.List)
	api.POST("/schedules", middleware.RequireRole(entity.RoleAdmin), h.Schedule.Create)
	api.PUT("/schedules/:id/progress", middleware.RequireRole(entity.RoleAdmin, entity.RoleEngineer), h.Schedule.UpdateProgress)
	api.DELETE("/schedules/:id", middleware.RequireRole(entity.RoleAdmin), h.Schedule.Delete)
	api.GET("/holidays", h.Holiday.List)
	api.POST("/holidays", middleware.RequireRole(entity.RoleAdmin), h.Holiday.Create)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func TestScheduleCreateChainsAndResolves(t *testing.T) {
	env := setupScheduleTest(t)
	token := testutil.AdminToken()
	testutil.SeedProject(t, env.DB, "proj-001", "Tower A", "test-admin-001", "client@test.com", nil)

	w := testutil.DoRequest(env.Router, "POST", "/api/schedules", map[string]interface{}{
		"project_id": "proj-001",
		"phase_name": "Foundation",
		"start_date": "2030-01-07",
		"duration":   6,
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["end_date"] != "2030-01-14" {
		t.Errorf("Expected end date 2030-01-14, got %v", data["end_date"])
	}

	// Second phase chains from the first one's end date
	w2 := testutil.DoRequest(env.Router, "POST", "/api/schedules", map[string]interface{}{
		"project_id": "proj-001",
		"phase_name": "Framing",
		"start_date": "2030-01-01",
		"duration":   3,
	}, token)
	if w2.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w2.Code, w2.Body.String())
	}
	data2 := testutil.ParseResponse(w2)["data"].(map[string]interface{})
	if data2["start_date"] != "2030-01-14" {
		t.Errorf("Expected chained start date 2030-01-14, got %v", data2["start_date"])
	}
}

func TestScheduleCreateForbiddenForEngineer(t *testing.T) {
	env := setupScheduleTest(t)
	testutil.SeedProject(t, env.DB, "proj-001", "Tower A", "test-admin-001", "client@test.com", nil)

	w := testutil.DoRequest(env.Router, "POST", "/api/schedules", map[string]interface{}{
		"project_id": "proj-001",
		"phase_name": "Foundation",
		"start_date": "2030-01-07",
		"duration":   6,
	}, testutil.EngineerToken())
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", w.Code)
	}
}

func TestScheduleUpdateProgress(t *testing.T) {
	env := setupScheduleTest(t)
	testutil.SeedProject(t, env.DB, "proj-001", "Tower A", "test-admin-001", "client@test.com", nil)
	testutil.SeedPhase(t, env.DB, "phase-001", "proj-001", "Foundation", "2030-01-07", "2030-01-14", 6, 0)

	w := testutil.DoRequest(env.Router, "PUT", "/api/schedules/phase-001/progress",
		map[string]interface{}{"progress": 45}, testutil.EngineerToken())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var phase entity.SchedulePhase
	env.DB.First(&phase, "id = ?", "phase-001")
	if phase.Status != entity.PhaseStatusOngoing {
		t.Errorf("Expected Ongoing, got %s", phase.Status)
	}

	var project entity.Project
	env.DB.First(&project, "id = ?", "proj-001")
	if project.Progress != 45 {
		t.Errorf("Expected project progress 45, got %v", project.Progress)
	}
}

func TestScheduleUpdateProgressValidation(t *testing.T) {
	env := setupScheduleTest(t)
	testutil.SeedProject(t, env.DB, "proj-001", "Tower A", "test-admin-001", "client@test.com", nil)
	testutil.SeedPhase(t, env.DB, "phase-001", "proj-001", "Foundation", "2030-01-07", "2030-01-14", 6, 0)

	w := testutil.DoRequest(env.Router, "PUT", "/api/schedules/phase-001/progress",
		map[string]interface{}{"progress": 150}, testutil.AdminToken())
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for out-of-range progress, got %d", w.Code)
	}

	w2 := testutil.DoRequest(env.Router, "PUT", "/api/schedules/missing/progress",
		map[string]interface{}{"progress": 50}, testutil.AdminToken())
	if w2.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown phase, got %d", w2.Code)
	}
}

func TestScheduleListRequiresAuth(t *testing.T) {
	env := setupScheduleTest(t)

	w := testutil.DoRequest(env.Router, "GET", "/api/projects/proj-001/schedules", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", w.Code)
	}
}

func TestHolidayCreateAndSweepOnList(t *testing.T) {
	env := setupScheduleTest(t)
	token := testutil.AdminToken()

	w := testutil.DoRequest(env.Router, "POST", "/api/holidays", map[string]interface{}{
		"name": "Pongal",
		"date": "2030-01-14",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	// expired entries are dropped by the read-path sweep
	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	testutil.SeedHoliday(t, env.DB, "hol-old", "Past Holiday", yesterday)

	w2 := testutil.DoRequest(env.Router, "GET", "/api/holidays", nil, token)
	if w2.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w2.Code)
	}
	items := testutil.ParseResponse(w2)["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 1 {
		t.Errorf("Expected 1 holiday after sweep, got %d", len(items))
	}
}

func TestHolidayMalformedDate(t *testing.T) {
	env := setupScheduleTest(t)

	w := testutil.DoRequest(env.Router, "POST", "/api/holidays", map[string]interface{}{
		"name": "Bad",
		"date": "14-01-2030",
	}, testutil.AdminToken())
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed date, got %d", w.Code)
	}
}
