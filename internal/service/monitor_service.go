package service

import (
	"context"
	"sync"

	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/repository"
	"github.com/google/uuid"
)

// MonitorService orchestrates live exam monitoring business logic.
type MonitorService struct {
	monitorRepo *repository.MonitorRepository
	runtime     *ExamRuntime
}

// NewMonitorService creates a new MonitorService.
func NewMonitorService(monitorRepo *repository.MonitorRepository, runtime *ExamRuntime) *MonitorService {
	return &MonitorService{monitorRepo: monitorRepo, runtime: runtime}
}

// MonitorOverview is the admin dashboard snapshot of all exam sessions.
type MonitorOverview struct {
	StatusCounts    map[string]int64    `json:"status_counts"`
	LiveSessions    int                 `json:"live_sessions"`
	AnsweredCounts  map[uuid.UUID]int64 `json:"answered_counts"`
	ViolationCounts map[uuid.UUID]int64 `json:"violation_counts"`
	TotalViolations int64               `json:"total_violations"`
}

// Overview gathers session status counts, per-session answered counts and
// violation counts concurrently.
func (s *MonitorService) Overview(ctx context.Context) (*MonitorOverview, error) {
	overview := &MonitorOverview{
		StatusCounts:    make(map[string]int64),
		AnsweredCounts:  make(map[uuid.UUID]int64),
		ViolationCounts: make(map[uuid.UUID]int64),
	}
	if s.runtime != nil {
		overview.LiveSessions = s.runtime.LiveCount()
	}

	var (
		statusCounts    map[string]int64
		answeredCounts  map[uuid.UUID]int64
		violationCounts map[uuid.UUID]int64
		statusErr       error
		answeredErr     error
		violationErr    error
		wg              sync.WaitGroup
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		statusCounts, statusErr = s.monitorRepo.CountByStatus(ctx)
	}()
	go func() {
		defer wg.Done()
		answeredCounts, answeredErr = s.monitorRepo.GetAnsweredCounts(ctx)
	}()
	go func() {
		defer wg.Done()
		violationCounts, violationErr = s.monitorRepo.GetViolationCounts(ctx)
	}()
	wg.Wait()

	// Status and answered counts are required; violations are best-effort.
	if statusErr != nil {
		return nil, statusErr
	}
	if answeredErr != nil {
		return nil, answeredErr
	}

	if statusCounts != nil {
		overview.StatusCounts = statusCounts
	}
	if answeredCounts != nil {
		overview.AnsweredCounts = answeredCounts
	}
	if violationErr == nil && violationCounts != nil {
		overview.ViolationCounts = violationCounts
		for _, n := range violationCounts {
			overview.TotalViolations += n
		}
	}
	return overview, nil
}
