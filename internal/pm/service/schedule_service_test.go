package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/buildtrack/buildtrack/internal/pm/entity"
	"github.com/buildtrack/buildtrack/internal/pm/repository"
	"github.com/buildtrack/buildtrack/internal/pm/testutil"
	"github.com/buildtrack/buildtrack/internal/shared/workcal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupScheduleTest(t *testing.T) (*gorm.DB, *ScheduleService, *HolidayService) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	logger := zap.NewNop()

	notifySvc := NewNotificationService(repos.Notification, repos.User, nil, nil, logger)
	holidaySvc := NewHolidayService(repos.Holiday, notifySvc)
	scheduleSvc := NewScheduleService(repos.Schedule, repos.Project, repos.User, holidaySvc, notifySvc, logger)

	return db, scheduleSvc, holidaySvc
}

// 2030-01-07 is a Monday. Fixed future dates keep the expiry sweep
// from eating the fixtures.
func TestCreatePhaseResolvesEndDateSkippingSundays(t *testing.T) {
	db, svc, _ := setupScheduleTest(t)
	testutil.SeedProject(t, db, "proj-001", "Tower A", "admin-001", "client@test.com", nil)

	phase, err := svc.CreatePhase(context.Background(), &CreatePhaseRequest{
		ProjectID: "proj-001",
		PhaseName: "Foundation",
		StartDate: "2030-01-07",
		Duration:  6,
	})
	if err != nil {
		t.Fatalf("CreatePhase failed: %v", err)
	}
	if phase.EndDate != "2030-01-14" {
		t.Errorf("Expected end date 2030-01-14, got %s", phase.EndDate)
	}
	if phase.Status != entity.PhaseStatusNotStarted {
		t.Errorf("Expected status Not Started, got %s", phase.Status)
	}
	if phase.Progress != 0 {
		t.Errorf("Expected progress 0, got %v", phase.Progress)
	}
}

func TestCreatePhaseSkipsHolidays(t *testing.T) {
	db, svc, holidaySvc := setupScheduleTest(t)
	testutil.SeedProject(t, db, "proj-001", "Tower A", "admin-001", "client@test.com", nil)

	if _, err := holidaySvc.Create(context.Background(), &CreateHolidayRequest{
		Name: "Site Inspection",
		Date: "2030-01-09",
	}); err != nil {
		t.Fatalf("Create holiday failed: %v", err)
	}

	phase, err := svc.CreatePhase(context.Background(), &CreatePhaseRequest{
		ProjectID: "proj-001",
		PhaseName: "Foundation",
		StartDate: "2030-01-07",
		Duration:  6,
	})
	if err != nil {
		t.Fatalf("CreatePhase failed: %v", err)
	}
	if phase.EndDate != "2030-01-15" {
		t.Errorf("Expected end date 2030-01-15, got %s", phase.EndDate)
	}
}

func TestCreatePhaseChainsFromLastEndDate(t *testing.T) {
	db, svc, _ := setupScheduleTest(t)
	testutil.SeedProject(t, db, "proj-001", "Tower A", "admin-001", "client@test.com", nil)
	testutil.SeedPhase(t, db, "phase-001", "proj-001", "Foundation", "2030-01-07", "2030-02-01", 20, 0)

	// Caller-supplied start date is ignored once the project has phases
	phase, err := svc.CreatePhase(context.Background(), &CreatePhaseRequest{
		ProjectID: "proj-001",
		PhaseName: "Framing",
		StartDate: "2030-01-10",
		Duration:  3,
	})
	if err != nil {
		t.Fatalf("CreatePhase failed: %v", err)
	}
	if phase.StartDate != "2030-02-01" {
		t.Errorf("Expected chained start date 2030-02-01, got %s", phase.StartDate)
	}
}

func TestCreatePhaseChainTieBreaksByNewest(t *testing.T) {
	db, svc, _ := setupScheduleTest(t)
	testutil.SeedProject(t, db, "proj-001", "Tower A", "admin-001", "client@test.com", nil)

	older := testutil.SeedPhase(t, db, "phase-001", "proj-001", "Foundation", "2030-01-07", "2030-02-01", 20, 0)
	db.Model(older).Update("created_at", time.Now().Add(-time.Hour))
	testutil.SeedPhase(t, db, "phase-002", "proj-001", "Framing", "2030-01-07", "2030-02-01", 20, 0)

	phase, err := svc.CreatePhase(context.Background(), &CreatePhaseRequest{
		ProjectID: "proj-001",
		PhaseName: "Roofing",
		StartDate: "2030-01-10",
		Duration:  2,
	})
	if err != nil {
		t.Fatalf("CreatePhase failed: %v", err)
	}
	if phase.StartDate != "2030-02-01" {
		t.Errorf("Expected chained start date 2030-02-01, got %s", phase.StartDate)
	}
}

func TestCreatePhaseRejectsNonPositiveDuration(t *testing.T) {
	db, svc, _ := setupScheduleTest(t)
	testutil.SeedProject(t, db, "proj-001", "Tower A", "admin-001", "client@test.com", nil)

	_, err := svc.CreatePhase(context.Background(), &CreatePhaseRequest{
		ProjectID: "proj-001",
		PhaseName: "Foundation",
		StartDate: "2030-01-07",
		Duration:  0,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestCreatePhaseUnknownProject(t *testing.T) {
	_, svc, _ := setupScheduleTest(t)

	_, err := svc.CreatePhase(context.Background(), &CreatePhaseRequest{
		ProjectID: "missing",
		PhaseName: "Foundation",
		StartDate: "2030-01-07",
		Duration:  5,
	})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestUpdateProgressDerivesStatusAndProjectMean(t *testing.T) {
	db, svc, _ := setupScheduleTest(t)
	testutil.SeedProject(t, db, "proj-001", "Tower A", "admin-001", "client@test.com", nil)
	testutil.SeedPhase(t, db, "phase-001", "proj-001", "Foundation", "2030-01-07", "2030-01-14", 6, 0)
	testutil.SeedPhase(t, db, "phase-002", "proj-001", "Framing", "2030-01-14", "2030-01-21", 6, 0)
	testutil.SeedPhase(t, db, "phase-003", "proj-001", "Roofing", "2030-01-21", "2030-01-28", 6, 0)

	ctx := context.Background()
	if err := svc.UpdateProgress(ctx, "phase-001", 100); err != nil {
		t.Fatalf("UpdateProgress failed: %v", err)
	}
	if err := svc.UpdateProgress(ctx, "phase-002", 50); err != nil {
		t.Fatalf("UpdateProgress failed: %v", err)
	}

	var phase1, phase2, phase3 entity.SchedulePhase
	db.First(&phase1, "id = ?", "phase-001")
	db.First(&phase2, "id = ?", "phase-002")
	db.First(&phase3, "id = ?", "phase-003")

	if phase1.Status != entity.PhaseStatusCompleted {
		t.Errorf("Expected Completed for progress 100, got %s", phase1.Status)
	}
	if phase2.Status != entity.PhaseStatusOngoing {
		t.Errorf("Expected Ongoing for progress 50, got %s", phase2.Status)
	}
	if phase3.Status != entity.PhaseStatusNotStarted {
		t.Errorf("Expected Not Started for progress 0, got %s", phase3.Status)
	}

	// mean of {100, 50, 0} = 50.00
	var project entity.Project
	db.First(&project, "id = ?", "proj-001")
	if project.Progress != 50 {
		t.Errorf("Expected project progress 50, got %v", project.Progress)
	}
}

func TestUpdateProgressBackToZeroResetsStatus(t *testing.T) {
	db, svc, _ := setupScheduleTest(t)
	testutil.SeedProject(t, db, "proj-001", "Tower A", "admin-001", "client@test.com", nil)
	testutil.SeedPhase(t, db, "phase-001", "proj-001", "Foundation", "2030-01-07", "2030-01-14", 6, 0)

	ctx := context.Background()
	if err := svc.UpdateProgress(ctx, "phase-001", 45); err != nil {
		t.Fatalf("UpdateProgress failed: %v", err)
	}
	if err := svc.UpdateProgress(ctx, "phase-001", 0); err != nil {
		t.Fatalf("UpdateProgress failed: %v", err)
	}

	var phase entity.SchedulePhase
	db.First(&phase, "id = ?", "phase-001")
	if phase.Status != entity.PhaseStatusNotStarted {
		t.Errorf("Expected Not Started after reset, got %s", phase.Status)
	}
}

func TestUpdateProgressRejectsOutOfRange(t *testing.T) {
	db, svc, _ := setupScheduleTest(t)
	testutil.SeedProject(t, db, "proj-001", "Tower A", "admin-001", "client@test.com", nil)
	testutil.SeedPhase(t, db, "phase-001", "proj-001", "Foundation", "2030-01-07", "2030-01-14", 6, 0)

	for _, progress := range []float64{-1, 120} {
		err := svc.UpdateProgress(context.Background(), "phase-001", progress)
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput for progress %v, got %v", progress, err)
		}
	}
}

func TestUpdateProgressUnknownPhase(t *testing.T) {
	_, svc, _ := setupScheduleTest(t)

	err := svc.UpdateProgress(context.Background(), "missing", 50)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRecomputeProjectProgressNoPhasesKeepsValue(t *testing.T) {
	db, svc, _ := setupScheduleTest(t)
	project := testutil.SeedProject(t, db, "proj-001", "Tower A", "admin-001", "client@test.com", nil)
	db.Model(project).Update("progress", 42)

	if err := svc.recomputeProjectProgress(context.Background(), "proj-001"); err != nil {
		t.Fatalf("recomputeProjectProgress failed: %v", err)
	}

	var got entity.Project
	db.First(&got, "id = ?", "proj-001")
	if got.Progress != 42 {
		t.Errorf("Expected progress unchanged at 42, got %v", got.Progress)
	}
}

func TestProjectProgressRoundsToTwoDecimals(t *testing.T) {
	db, svc, _ := setupScheduleTest(t)
	testutil.SeedProject(t, db, "proj-001", "Tower A", "admin-001", "client@test.com", nil)
	testutil.SeedPhase(t, db, "phase-001", "proj-001", "Foundation", "2030-01-07", "2030-01-14", 6, 0)
	testutil.SeedPhase(t, db, "phase-002", "proj-001", "Framing", "2030-01-14", "2030-01-21", 6, 0)
	testutil.SeedPhase(t, db, "phase-003", "proj-001", "Roofing", "2030-01-21", "2030-01-28", 6, 0)

	// mean of {10, 0, 0} = 3.333... -> 3.33
	if err := svc.UpdateProgress(context.Background(), "phase-001", 10); err != nil {
		t.Fatalf("UpdateProgress failed: %v", err)
	}

	var project entity.Project
	db.First(&project, "id = ?", "proj-001")
	if project.Progress != 3.33 {
		t.Errorf("Expected project progress 3.33, got %v", project.Progress)
	}
}

func TestExpiredHolidaysNeverListed(t *testing.T) {
	db, _, holidaySvc := setupScheduleTest(t)

	yesterday := time.Now().AddDate(0, 0, -1).Format(workcal.DateLayout)
	testutil.SeedHoliday(t, db, "hol-001", "Past Holiday", yesterday)
	testutil.SeedHoliday(t, db, "hol-002", "Future Holiday", "2030-05-01")

	holidays, err := holidaySvc.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(holidays) != 1 {
		t.Fatalf("Expected 1 holiday after sweep, got %d", len(holidays))
	}
	if holidays[0].ID != "hol-002" {
		t.Errorf("Expected only the future holiday to survive, got %s", holidays[0].ID)
	}

	// today's holiday is not expired
	today := workcal.Today()
	testutil.SeedHoliday(t, db, "hol-003", "Today", today)
	holidays, err = holidaySvc.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(holidays) != 2 {
		t.Errorf("Expected today's holiday to survive the sweep, got %d entries", len(holidays))
	}
}

func TestCreatePhaseNotifiesProjectParticipants(t *testing.T) {
	db, svc, _ := setupScheduleTest(t)
	testutil.SeedUser(t, db, "eng-001", "Engineer One", "eng1@test.com", entity.RoleEngineer)
	testutil.SeedUser(t, db, "client-001", "Client One", "client@test.com", entity.RoleClient)
	testutil.SeedProject(t, db, "proj-001", "Tower A", "admin-001", "client@test.com", []string{"eng-001"})

	if _, err := svc.CreatePhase(context.Background(), &CreatePhaseRequest{
		ProjectID: "proj-001",
		PhaseName: "Foundation",
		StartDate: "2030-01-07",
		Duration:  5,
	}); err != nil {
		t.Fatalf("CreatePhase failed: %v", err)
	}

	var clientCount int64
	db.Model(&entity.Notification{}).Where("user_id = ?", "client-001").Count(&clientCount)
	if clientCount != 1 {
		t.Errorf("Expected 1 notification for the client, got %d", clientCount)
	}

	// assigned engineer gets the role broadcast plus the assignment notice
	var engCount int64
	db.Model(&entity.Notification{}).Where("user_id = ?", "eng-001").Count(&engCount)
	if engCount != 2 {
		t.Errorf("Expected 2 notifications for the assigned engineer, got %d", engCount)
	}
}
