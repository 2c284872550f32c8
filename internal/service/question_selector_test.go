package service

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/engine"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func questionPool(easy, medium, hard int) []model.Question {
	var out []model.Question
	add := func(n int, d engine.Difficulty) {
		for range n {
			out = append(out, model.Question{ID: uuid.New(), Difficulty: d})
		}
	}
	add(easy, engine.DifficultyEasy)
	add(medium, engine.DifficultyMedium)
	add(hard, engine.DifficultyHard)
	return out
}

func countByDifficulty(p []model.Question, ids []uuid.UUID) map[engine.Difficulty]int {
	byID := make(map[uuid.UUID]engine.Difficulty, len(p))
	for _, q := range p {
		byID[q.ID] = q.Difficulty
	}
	out := make(map[engine.Difficulty]int)
	for _, id := range ids {
		out[byID[id]]++
	}
	return out
}

func TestDifficultyMixTargets(t *testing.T) {
	tests := []struct {
		total              int
		easy, medium, hard int
	}{
		{15, 8, 5, 2},
		{10, 5, 3, 2},
		{1, 1, 0, 0},
		{3, 2, 1, 0},
	}
	for _, tt := range tests {
		got := DefaultDifficultyMix.Targets(tt.total)
		assert.Equal(t, tt.easy, got[engine.DifficultyEasy], "easy for %d", tt.total)
		assert.Equal(t, tt.medium, got[engine.DifficultyMedium], "medium for %d", tt.total)
		assert.Equal(t, tt.hard, got[engine.DifficultyHard], "hard for %d", tt.total)
	}
}

func TestSelectFollowsMix(t *testing.T) {
	p := questionPool(20, 20, 20)
	sel := NewSeededQuestionSelector(1, 2)

	ids, err := sel.Select(p, 15)
	require.NoError(t, err)
	require.Len(t, ids, 15)

	counts := countByDifficulty(p, ids)
	assert.Equal(t, 8, counts[engine.DifficultyEasy])
	assert.Equal(t, 5, counts[engine.DifficultyMedium])
	assert.Equal(t, 2, counts[engine.DifficultyHard])

	seen := make(map[uuid.UUID]bool)
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate question %s", id)
		seen[id] = true
	}
}

func TestSelectFillsShortBuckets(t *testing.T) {
	// No easy questions at all: the easy share comes from the rest of the pool.
	p := questionPool(0, 6, 6)
	ids, err := NewSeededQuestionSelector(3, 4).Select(p, 10)
	require.NoError(t, err)
	require.Len(t, ids, 10)

	counts := countByDifficulty(p, ids)
	assert.Equal(t, 10, counts[engine.DifficultyMedium]+counts[engine.DifficultyHard])
}

func TestSelectIsDeterministicForSeed(t *testing.T) {
	p := questionPool(10, 10, 10)
	a, err := NewSeededQuestionSelector(7, 9).Select(p, 12)
	require.NoError(t, err)
	b, err := NewSeededQuestionSelector(7, 9).Select(p, 12)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSelectRejectsSmallPool(t *testing.T) {
	sel := NewSeededQuestionSelector(1, 1)

	_, err := sel.Select(questionPool(1, 1, 1), 5)
	assert.ErrorIs(t, err, ErrNotEnoughQuestions)

	_, err = sel.Select(nil, 5)
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestGenerateExamToken(t *testing.T) {
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	a := GenerateExamToken(now)
	b := GenerateExamToken(now)

	assert.True(t, strings.HasPrefix(a, "exam_"))
	assert.Len(t, strings.Split(a, "_"), 3)
	assert.NotEqual(t, a, b)
}

func TestCandidateTokenTTL(t *testing.T) {
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	s := &model.ExamSession{DurationMinutes: 30, ExpiresAt: now.Add(2 * time.Hour)}
	assert.Equal(t, 2*time.Hour+45*time.Minute, candidateTokenTTL(s, now))

	started := now.Add(-40 * time.Minute)
	s.StartedAt = &started
	assert.Equal(t, 5*time.Minute, candidateTokenTTL(s, now))

	long := now.Add(-3 * time.Hour)
	s.StartedAt = &long
	assert.Equal(t, time.Minute, candidateTokenTTL(s, now))
}

func TestQuestionSelectorConcurrentSelect(t *testing.T) {
	sel := NewQuestionSelector()
	pool := questionPool(20, 12, 8)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				ids, err := sel.Select(pool, 15)
				if err != nil {
					errs <- err
					return
				}
				seen := make(map[uuid.UUID]bool, len(ids))
				for _, id := range ids {
					if seen[id] {
						errs <- assert.AnError
						return
					}
					seen[id] = true
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent select: %v", err)
	}
}
