package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/buildtrack/buildtrack/internal/config"
	"github.com/buildtrack/buildtrack/internal/pm/repository"
	"github.com/buildtrack/buildtrack/internal/pm/service"
	"github.com/buildtrack/buildtrack/internal/pm/testutil"
	"go.uber.org/zap"
)

func setupAuthTest(t *testing.T) *testutil.TestEnv {
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

	router.POST("/api/auth/register", h.Auth.Register)
	router.POST("/api/auth/login", h.Auth.Login)
	api := testutil.AuthGroup(router, "/api")
	api.GET("/auth/me", h.Auth.Me)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func TestRegisterLoginAndMe(t *testing.T) {
	env := setupAuthTest(t)

	w := testutil.DoRequest(env.Router, "POST", "/api/auth/register", map[string]interface{}{
		"email":    "builder@test.com",
		"password": "secret123",
		"name":     "Site Admin",
		"role":     "Admin",
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["access_token"] == "" {
		t.Error("Expected access token in register response")
	}

	// duplicate email rejected
	w2 := testutil.DoRequest(env.Router, "POST", "/api/auth/register", map[string]interface{}{
		"email":    "builder@test.com",
		"password": "secret123",
		"name":     "Other",
		"role":     "Admin",
	}, "")
	if w2.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for duplicate email, got %d", w2.Code)
	}

	w3 := testutil.DoRequest(env.Router, "POST", "/api/auth/login", map[string]interface{}{
		"email":    "builder@test.com",
		"password": "secret123",
		"role":     "Admin",
	}, "")
	if w3.Code != http.StatusOK {
		t.Fatalf("Expected 200 on login, got %d: %s", w3.Code, w3.Body.String())
	}
	login := testutil.ParseResponse(w3)["data"].(map[string]interface{})
	token := login["access_token"].(string)

	w4 := testutil.DoRequest(env.Router, "GET", "/api/auth/me", nil, token)
	if w4.Code != http.StatusOK {
		t.Fatalf("Expected 200 on me, got %d", w4.Code)
	}
	me := testutil.ParseResponse(w4)["data"].(map[string]interface{})
	if me["email"] != "builder@test.com" {
		t.Errorf("Expected me email builder@test.com, got %v", me["email"])
	}
	if _, ok := me["password_hash"]; ok {
		t.Error("Password hash must not be serialized")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	env := setupAuthTest(t)

	testutil.DoRequest(env.Router, "POST", "/api/auth/register", map[string]interface{}{
		"email":    "builder@test.com",
		"password": "secret123",
		"name":     "Site Admin",
		"role":     "Admin",
	}, "")

	w := testutil.DoRequest(env.Router, "POST", "/api/auth/login", map[string]interface{}{
		"email":    "builder@test.com",
		"password": "wrong",
		"role":     "Admin",
	}, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for wrong password, got %d", w.Code)
	}

	// registered role is part of the credentials
	w2 := testutil.DoRequest(env.Router, "POST", "/api/auth/login", map[string]interface{}{
		"email":    "builder@test.com",
		"password": "secret123",
		"role":     "Engineer",
	}, "")
	if w2.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for role mismatch, got %d", w2.Code)
	}
}

func TestRegisterUnknownRole(t *testing.T) {
	env := setupAuthTest(t)

	w := testutil.DoRequest(env.Router, "POST", "/api/auth/register", map[string]interface{}{
		"email":    "builder@test.com",
		"password": "secret123",
		"name":     "Someone",
		"role":     "Supervisor",
	}, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown role, got %d", w.Code)
	}
}
