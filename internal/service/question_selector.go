package service

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/engine"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/model"
	"github.com/google/uuid"
)

// DifficultyMix is the share of easy and medium questions in a drawn exam.
// Hard questions take whatever is left.
type DifficultyMix struct {
	Easy   float64
	Medium float64
}

// DefaultDifficultyMix is 50% easy, 30% medium, 20% hard.
var DefaultDifficultyMix = DifficultyMix{Easy: 0.5, Medium: 0.3}

// Targets returns the per-difficulty question counts for total questions.
// Easy and medium round up, so hard absorbs the rounding.
func (m DifficultyMix) Targets(total int) map[engine.Difficulty]int {
	easy := int(math.Ceil(float64(total) * m.Easy))
	if easy > total {
		easy = total
	}
	medium := int(math.Ceil(float64(total) * m.Medium))
	if medium > total-easy {
		medium = total - easy
	}
	return map[engine.Difficulty]int{
		engine.DifficultyEasy:   easy,
		engine.DifficultyMedium: medium,
		engine.DifficultyHard:   total - easy - medium,
	}
}

// QuestionSelector draws a random exam from a question pool. It is safe for
// concurrent use.
type QuestionSelector struct {
	mu   sync.Mutex
	rand *rand.Rand
	mix  DifficultyMix
}

// NewQuestionSelector creates a selector seeded from the clock.
func NewQuestionSelector() *QuestionSelector {
	seed := uint64(time.Now().UnixNano())
	return NewSeededQuestionSelector(seed, seed>>1|1)
}

// NewSeededQuestionSelector creates a deterministic selector.
func NewSeededQuestionSelector(seed1, seed2 uint64) *QuestionSelector {
	return &QuestionSelector{
		rand: rand.New(rand.NewPCG(seed1, seed2)),
		mix:  DefaultDifficultyMix,
	}
}

// Select picks count questions from pool following the difficulty mix. When a
// difficulty bucket runs short the gap is filled from the remaining pool, and
// the final order is shuffled. It returns ErrNotEnoughQuestions when the pool
// is smaller than count.
func (s *QuestionSelector) Select(pool []model.Question, count int) ([]uuid.UUID, error) {
	if count <= 0 || len(pool) == 0 {
		return nil, ErrNoQuestions
	}
	if len(pool) < count {
		return nil, ErrNotEnoughQuestions
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	buckets := make(map[engine.Difficulty][]model.Question, 3)
	for _, q := range pool {
		buckets[q.Difficulty] = append(buckets[q.Difficulty], q)
	}

	targets := s.mix.Targets(count)
	picked := make(map[uuid.UUID]bool, count)
	selected := make([]uuid.UUID, 0, count)
	for _, d := range []engine.Difficulty{engine.DifficultyEasy, engine.DifficultyMedium, engine.DifficultyHard} {
		bucket := buckets[d]
		s.shuffle(bucket)
		n := min(targets[d], len(bucket))
		for _, q := range bucket[:n] {
			picked[q.ID] = true
			selected = append(selected, q.ID)
		}
	}

	if len(selected) < count {
		rest := make([]model.Question, 0, len(pool)-len(selected))
		for _, q := range pool {
			if !picked[q.ID] {
				rest = append(rest, q)
			}
		}
		s.shuffle(rest)
		for _, q := range rest[:count-len(selected)] {
			selected = append(selected, q.ID)
		}
	}

	s.rand.Shuffle(len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})
	return selected, nil
}

func (s *QuestionSelector) shuffle(qs []model.Question) {
	s.rand.Shuffle(len(qs), func(i, j int) {
		qs[i], qs[j] = qs[j], qs[i]
	})
}
