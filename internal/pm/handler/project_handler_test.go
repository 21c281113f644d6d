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

func setupProjectTest(t *testing.T) *testutil.TestEnv {
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
	api.GET("/projects", h.Project.List)
	api.GET("/projects/:id", h.Project.Get)
	api.POST("/projects", middleware.RequireRole(entity.RoleAdmin), h.Project.Create)
	api.DELETE("/projects/:id", middleware.RequireRole(entity.RoleAdmin), h.Project.Delete)
	api.GET("/materials", middleware.RequireRole(entity.RoleAdmin, entity.RoleEngineer), h.Material.List)
	api.POST("/materials", middleware.RequireRole(entity.RoleEngineer), h.Material.Create)
	api.PUT("/materials/:id/status", middleware.RequireRole(entity.RoleAdmin), h.Material.Review)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func TestProjectListScopedByRole(t *testing.T) {
	env := setupProjectTest(t)
	testutil.SeedUser(t, env.DB, "test-engineer-001", "Test Engineer", "engineer@test.com", entity.RoleEngineer)
	testutil.SeedProject(t, env.DB, "proj-001", "Tower A", "test-admin-001", "client@test.com", []string{"test-engineer-001"})
	testutil.SeedProject(t, env.DB, "proj-002", "Tower B", "other-admin", "other@test.com", nil)

	// Admin sees only own projects
	w := testutil.DoRequest(env.Router, "GET", "/api/projects", nil, testutil.AdminToken())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	items := testutil.ParseResponse(w)["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 1 {
		t.Errorf("Expected admin to see 1 project, got %d", len(items))
	}

	// Engineer sees assigned projects
	w2 := testutil.DoRequest(env.Router, "GET", "/api/projects", nil, testutil.EngineerToken())
	items2 := testutil.ParseResponse(w2)["data"].(map[string]interface{})["items"].([]interface{})
	if len(items2) != 1 {
		t.Errorf("Expected engineer to see 1 project, got %d", len(items2))
	}

	// Client matches by email
	w3 := testutil.DoRequest(env.Router, "GET", "/api/projects", nil, testutil.ClientToken())
	items3 := testutil.ParseResponse(w3)["data"].(map[string]interface{})["items"].([]interface{})
	if len(items3) != 1 {
		t.Errorf("Expected client to see 1 project, got %d", len(items3))
	}
}

func TestProjectGetDeniedForOutsiders(t *testing.T) {
	env := setupProjectTest(t)
	testutil.SeedProject(t, env.DB, "proj-001", "Tower A", "other-admin", "other@test.com", nil)

	w := testutil.DoRequest(env.Router, "GET", "/api/projects/proj-001", nil, testutil.EngineerToken())
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for unassigned engineer, got %d", w.Code)
	}
}

func TestProjectDeleteCascades(t *testing.T) {
	env := setupProjectTest(t)
	testutil.SeedProject(t, env.DB, "proj-001", "Tower A", "test-admin-001", "client@test.com", nil)
	testutil.SeedPhase(t, env.DB, "phase-001", "proj-001", "Foundation", "2030-01-07", "2030-01-14", 6, 0)

	w := testutil.DoRequest(env.Router, "DELETE", "/api/projects/proj-001", nil, testutil.AdminToken())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var phaseCount int64
	env.DB.Model(&entity.SchedulePhase{}).Where("project_id = ?", "proj-001").Count(&phaseCount)
	if phaseCount != 0 {
		t.Errorf("Expected schedules deleted with project, found %d", phaseCount)
	}
}

func TestMaterialRequestAndReview(t *testing.T) {
	env := setupProjectTest(t)
	testutil.SeedUser(t, env.DB, "test-admin-001", "Test Admin", "admin@test.com", entity.RoleAdmin)
	testutil.SeedUser(t, env.DB, "test-engineer-001", "Test Engineer", "engineer@test.com", entity.RoleEngineer)
	testutil.SeedProject(t, env.DB, "proj-001", "Tower A", "test-admin-001", "client@test.com", []string{"test-engineer-001"})

	w := testutil.DoRequest(env.Router, "POST", "/api/materials", map[string]interface{}{
		"project_id": "proj-001",
		"name":       "Cement",
		"quantity":   "200 bags",
	}, testutil.EngineerToken())
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	materialID := testutil.ParseResponse(w)["data"].(map[string]interface{})["material_id"].(string)

	// requester notification lands on the project admin
	var adminNotify int64
	env.DB.Model(&entity.Notification{}).
		Where("user_id = ? AND type = ?", "test-admin-001", entity.NotifyTypeMaterialRequest).
		Count(&adminNotify)
	if adminNotify != 1 {
		t.Errorf("Expected 1 material request notification for admin, got %d", adminNotify)
	}

	w2 := testutil.DoRequest(env.Router, "PUT", "/api/materials/"+materialID+"/status", map[string]interface{}{
		"status":   "Approved",
		"comments": "Go ahead",
	}, testutil.AdminToken())
	if w2.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w2.Code, w2.Body.String())
	}

	var material entity.Material
	env.DB.First(&material, "id = ?", materialID)
	if material.Status != entity.ApprovalStatusApproved {
		t.Errorf("Expected Approved, got %s", material.Status)
	}

	// invalid review status rejected
	w3 := testutil.DoRequest(env.Router, "PUT", "/api/materials/"+materialID+"/status", map[string]interface{}{
		"status": "Maybe",
	}, testutil.AdminToken())
	if w3.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid status, got %d", w3.Code)
	}
}
