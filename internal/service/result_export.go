package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/model"
	"github.com/xuri/excelize/v2"
)

const (
	resultsSheet     = "Results"
	maxExportResults = 5000
)

var resultsHeader = []any{
	"Session ID", "Candidate ID", "Status", "Score", "Max Score", "Percentage",
	"Correct", "Wrong", "Skipped", "Pending Review", "Time Taken (s)", "Violations", "Submitted At",
}

// ExportResults writes every result submitted since `since` as an XLSX workbook.
func (s *ExamSessionService) ExportResults(ctx context.Context, since time.Time, w io.Writer) (int, error) {
	rows, err := s.resultRepo.ListSince(ctx, since, maxExportResults)
	if err != nil {
		return 0, fmt.Errorf("list results: %w", err)
	}
	if err := WriteResultsXLSX(w, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// WriteResultsXLSX renders rows into a single-sheet workbook.
func WriteResultsXLSX(w io.Writer, rows []model.ResultExportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(resultsSheet, "A1", &resultsHeader); err != nil {
		return err
	}
	if err := f.SetPanes(resultsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	for i, row := range rows {
		r := row.Result
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{
			r.ExamSessionID.String(), r.CandidateID.String(), string(r.FinalStatus),
			r.TotalScore, r.MaxScore, r.Percentage,
			r.CorrectAnswers, r.WrongAnswers, r.SkippedQuestions, r.PendingManualReview,
			r.TimeTakenSeconds, row.Violations, r.SubmittedAt.UTC().Format(time.RFC3339),
		}
		if err := f.SetSheetRow(resultsSheet, cell, &values); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}
