package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/buildtrack/buildtrack/internal/middleware"
	"github.com/buildtrack/buildtrack/internal/pm/entity"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	TestSchema = "test_buildtrack"
	JWTSecret  = "buildtrack-jwt-secret-for-tests"
)

// TestEnv holds test environment resources
type TestEnv struct {
	DB     *gorm.DB
	Router *gin.Engine
	T      *testing.T
}

// projectRoot returns the project root directory by looking for go.mod
func projectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// loadEnv loads .env from the project root
func loadEnv() {
	root := projectRoot()
	if root != "" {
		godotenv.Load(filepath.Join(root, ".env"))
	}
}

// SetupTestDB creates a test database connection using a dedicated test schema.
// Each test gets an isolated schema that is cleaned up after the test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	loadEnv()

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "buildtrack")
	password := getEnv("DB_PASSWORD", "buildtrack123")
	dbname := getEnv("DB_NAME", "buildtrack")

	baseDSN := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	// Create a unique test schema for isolation
	schemaName := fmt.Sprintf("%s_%d", TestSchema, time.Now().UnixNano()%1000000)

	// First: create schema using a temporary connection
	setupDB, err := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to database for schema setup: %v", err)
	}
	setupDB.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schemaName))
	sqlSetup, _ := setupDB.DB()
	sqlSetup.Close()

	// Second: open connection with search_path in DSN so ALL pooled connections use test schema
	testDSN := fmt.Sprintf("%s search_path=%s", baseDSN, schemaName)
	db, err := gorm.Open(postgres.Open(testDSN), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Migrate test tables
	err = db.AutoMigrate(
		&entity.User{},
		&entity.Project{},
		&entity.Team{},
		&entity.SchedulePhase{},
		&entity.Holiday{},
		&entity.Material{},
		&entity.Drawing{},
		&entity.Notification{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	// Cleanup on test completion
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		// Reconnect to drop the schema
		cleanDB, cleanErr := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if cleanErr == nil {
			cleanDB.Exec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schemaName))
			sqlClean, _ := cleanDB.DB()
			if sqlClean != nil {
				sqlClean.Close()
			}
		}
	})

	return db
}

// SetupRouter creates a gin test router
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// AuthGroup creates an API group with JWT auth middleware for testing
func AuthGroup(r *gin.Engine, path string) *gin.RouterGroup {
	return r.Group(path, middleware.JWTAuth(JWTSecret))
}

// GenerateTestToken creates a valid JWT token for testing
func GenerateTestToken(userID, name, email, role string) string {
	now := time.Now()
	claims := middleware.JWTClaims{
		UserID: userID,
		Name:   name,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "buildtrack",
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(JWTSecret))
	return tokenString
}

// AdminToken returns a token for a default admin test user
func AdminToken() string {
	return GenerateTestToken("test-admin-001", "Test Admin", "admin@test.com", entity.RoleAdmin)
}

// EngineerToken returns a token for a default engineer test user
func EngineerToken() string {
	return GenerateTestToken("test-engineer-001", "Test Engineer", "engineer@test.com", entity.RoleEngineer)
}

// ClientToken returns a token for a default client test user
func ClientToken() string {
	return GenerateTestToken("test-client-001", "Test Client", "client@test.com", entity.RoleClient)
}

// DoRequest executes an HTTP request against the test router
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON response body into a map
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// SeedUser creates a test user in the database
func SeedUser(t *testing.T, db *gorm.DB, id, name, email, role string) *entity.User {
	t.Helper()
	user := &entity.User{
		ID:           id,
		Email:        email,
		PasswordHash: "$2a$10$test.hash.not.a.real.password.hash",
		Name:         name,
		Role:         role,
		CreatedAt:    time.Now(),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to seed test user: %v", err)
	}
	return user
}

// SeedProject creates a test project in the database
func SeedProject(t *testing.T, db *gorm.DB, id, name, adminID, clientEmail string, engineerIDs []string) *entity.Project {
	t.Helper()
	project := &entity.Project{
		ID:                id,
		Name:              name,
		ClientEmail:       clientEmail,
		Status:            entity.ProjectStatusPlanning,
		AssignedEngineers: entity.StringList(engineerIDs),
		CreatedBy:         adminID,
		CreatedAt:         time.Now(),
	}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("Failed to seed test project: %v", err)
	}
	return project
}

// SeedPhase creates a test schedule phase in the database
func SeedPhase(t *testing.T, db *gorm.DB, id, projectID, name, startDate, endDate string, duration int, progress float64) *entity.SchedulePhase {
	t.Helper()
	phase := &entity.SchedulePhase{
		ID:        id,
		ProjectID: projectID,
		PhaseName: name,
		StartDate: startDate,
		Duration:  duration,
		EndDate:   endDate,
		Progress:  progress,
		Status:    entity.PhaseStatusNotStarted,
		CreatedAt: time.Now(),
	}
	if err := db.Create(phase).Error; err != nil {
		t.Fatalf("Failed to seed test phase: %v", err)
	}
	return phase
}

// SeedHoliday creates a test holiday in the database
func SeedHoliday(t *testing.T, db *gorm.DB, id, name, date string) *entity.Holiday {
	t.Helper()
	holiday := &entity.Holiday{
		ID:        id,
		Name:      name,
		Date:      date,
		CreatedAt: time.Now(),
	}
	if err := db.Create(holiday).Error; err != nil {
		t.Fatalf("Failed to seed test holiday: %v", err)
	}
	return holiday
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
