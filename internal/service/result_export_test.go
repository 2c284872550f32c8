package service

import (
	"bytes"
	"testing"
	"time"

	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteResultsXLSX(t *testing.T) {
	sid := uuid.New()
	rows := []model.ResultExportRow{{
		Result: model.ExamResult{
			ExamSessionID:  sid,
			CandidateID:    uuid.New(),
			TotalScore:     7,
			MaxScore:       10,
			Percentage:     70,
			CorrectAnswers: 3,
			WrongAnswers:   1,
			FinalStatus:    model.SessionStatusCompleted,
			SubmittedAt:    time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC),
		},
		Violations: 2,
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteResultsXLSX(&buf, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(resultsSheet)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Session ID", got[0][0])
	assert.Equal(t, sid.String(), got[1][0])
	assert.Equal(t, "completed", got[1][2])
	assert.Equal(t, "7", got[1][3])
	assert.Equal(t, "2", got[1][11])
	assert.Equal(t, "2026-05-04T09:30:00Z", got[1][12])
}

func TestWriteResultsXLSXEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResultsXLSX(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(resultsSheet)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
