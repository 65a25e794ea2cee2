package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/advising-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

var subjectExportHeaders = []string{"Name", "Mention", "Credits", "Label", "Type", "Year", "Skills", "Updated At"}

// ExportDegreeSubjects renders a degree curriculum as an xlsx workbook and
// returns the file bytes together with a suggested filename.
func (s *exportService) ExportDegreeSubjects(ctx context.Context, name string, userID string) ([]byte, string, error) {
	s.logger.Info("Exporting degree subjects", "name", name, "user_id", userID)

	degree, err := s.repo.Degree().GetByName(ctx, name)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, "", ErrDegreeNotFound
		}
		return nil, "", fmt.Errorf("failed to get degree: %w", err)
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil {
			s.logger.Warn("Failed to close workbook", "error", cerr)
		}
	}()

	const sheet = "Subjects"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, "", fmt.Errorf("failed to rename sheet: %w", err)
	}

	for col, header := range subjectExportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, "", fmt.Errorf("failed to compute header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, "", fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, subject := range degree.Subjects {
		values := []interface{}{
			subject.Name,
			subject.Mention,
			subject.Credits,
			subject.Label,
			string(subject.Type),
			subject.Year,
			strings.Join(subject.Skills, ", "),
			subject.UpdatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, "", fmt.Errorf("failed to compute cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, "", fmt.Errorf("failed to write subject row: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to serialize workbook: %w", err)
	}

	filename := fmt.Sprintf("%s-subjects.xlsx", strings.ReplaceAll(degree.Name, " ", "_"))
	s.logger.Info("Degree exported successfully", "name", name, "subject_count", len(degree.Subjects))

	return buf.Bytes(), filename, nil
}
