package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/eduzayn/lms-edunexia-sub001/internal/models"
	"github.com/eduzayn/lms-edunexia-sub001/internal/repositories"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type reportService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewReportService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) ReportService {
	return &reportService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

var exportHeaders = []string{
	"Student ID", "Student Name", "Attempt", "Status",
	"Score", "Passed", "Time Spent (s)", "Started At", "Submitted At", "Graded At",
}

// ExportSubmissions renders the grade book of an assessment as an xlsx
// workbook and returns the file bytes plus a suggested filename.
func (s *reportService) ExportSubmissions(ctx context.Context, assessmentID uint, userID string) ([]byte, string, error) {
	s.logger.Info("Exporting submissions", "assessment_id", assessmentID, "user_id", userID)

	assessment, err := s.repo.Assessment().GetByID(ctx, s.db, assessmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, "", ErrAssessmentNotFound
		}
		return nil, "", fmt.Errorf("failed to get assessment: %w", err)
	}

	if err := s.requireExportAccess(ctx, assessmentID, userID); err != nil {
		return nil, "", err
	}

	rows, err := s.repo.Submission().GetExportRows(ctx, s.db, assessmentID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get export rows: %w", err)
	}

	file := excelize.NewFile()
	defer file.Close()

	const sheet = "Submissions"
	if err := file.SetSheetName("Sheet1", sheet); err != nil {
		return nil, "", fmt.Errorf("failed to set sheet name: %w", err)
	}

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return nil, "", fmt.Errorf("failed to write header: %w", err)
		}
		_ = file.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for i, row := range rows {
		values := exportRowValues(row)
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return nil, "", fmt.Errorf("failed to write row %d: %w", i+1, err)
			}
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to render workbook: %w", err)
	}

	filename := fmt.Sprintf("assessment-%d-submissions-%s.xlsx", assessment.ID, time.Now().Format("2006-01-02"))

	s.logger.Info("Submissions exported",
		"assessment_id", assessmentID,
		"rows", len(rows),
		"filename", filename)

	return buf.Bytes(), filename, nil
}

func exportRowValues(row *models.SubmissionExportRow) []interface{} {
	values := []interface{}{
		row.StudentID,
		row.StudentName,
		row.AttemptNumber,
		row.Status,
		"", // score
		"", // passed
		"", // time spent
		row.StartedAt.Format(time.RFC3339),
		"", // submitted at
		"", // graded at
	}

	if row.Score != nil {
		values[4] = *row.Score
	}
	if row.Passed != nil {
		values[5] = *row.Passed
	}
	if row.TimeSpent != nil {
		values[6] = *row.TimeSpent
	}
	if row.SubmittedAt != nil {
		values[8] = row.SubmittedAt.Format(time.RFC3339)
	}
	if row.GradedAt != nil {
		values[9] = row.GradedAt.Format(time.RFC3339)
	}

	return values
}

func (s *reportService) requireExportAccess(ctx context.Context, assessmentID uint, userID string) error {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.Role == models.RoleAdmin {
		return nil
	}
	if user.Role == models.RoleTeacher {
		isOwner, err := s.repo.Assessment().IsOwner(ctx, s.db, assessmentID, userID)
		if err != nil {
			return err
		}
		if isOwner {
			return nil
		}
	}

	return NewPermissionError(userID, assessmentID, "assessment", "export", "not owner or insufficient permissions")
}
