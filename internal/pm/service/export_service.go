package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/buildtrack/buildtrack/internal/pm/repository"
	"github.com/xuri/excelize/v2"
)

// ExportService 项目排期 Excel 导出
type ExportService struct {
	projectRepo  *repository.ProjectRepository
	scheduleRepo *repository.ScheduleRepository
}

// NewExportService 创建导出服务
func NewExportService(projectRepo *repository.ProjectRepository, scheduleRepo *repository.ScheduleRepository) *ExportService {
	return &ExportService{
		projectRepo:  projectRepo,
		scheduleRepo: scheduleRepo,
	}
}

// ProjectSchedule 导出项目排期表，返回 xlsx 文件内容和建议文件名
func (s *ExportService) ProjectSchedule(ctx context.Context, projectID string) ([]byte, string, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, "", fmt.Errorf("find project: %w", err)
	}
	phases, err := s.scheduleRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, "", fmt.Errorf("list phases: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Schedule"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Phase", "Start Date", "End Date", "Duration (working days)", "Progress (%)", "Status", "Description"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
	})
	if err == nil {
		f.SetCellStyle(sheet, "A1", "G1", headerStyle)
	}

	for i, p := range phases {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), p.PhaseName)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), p.StartDate)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), p.EndDate)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), p.Duration)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), p.Progress)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), p.Status)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), p.Description)
	}

	f.SetColWidth(sheet, "A", "A", 24)
	f.SetColWidth(sheet, "B", "C", 14)
	f.SetColWidth(sheet, "D", "F", 18)
	f.SetColWidth(sheet, "G", "G", 40)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("write xlsx: %w", err)
	}

	filename := fmt.Sprintf("%s-schedule.xlsx", project.Name)
	return buf.Bytes(), filename, nil
}
