package engine

import (
	"sort"
	"strings"
)

// AnswerStore maps a question index to the candidate's latest answer.
// Blank answers are never stored: writing one clears the index instead.
type AnswerStore struct {
	values map[int]string
}

// NewAnswerStore creates an empty store.
func NewAnswerStore() *AnswerStore {
	return &AnswerStore{values: make(map[int]string)}
}

// Set records value for index, overwriting any prior value.
// It reports whether the stored state changed.
func (s *AnswerStore) Set(index int, value string) bool {
	prev, had := s.values[index]
	if strings.TrimSpace(value) == "" {
		if !had {
			return false
		}
		delete(s.values, index)
		return true
	}
	if had && prev == value {
		return false
	}
	s.values[index] = value
	return true
}

// Get returns the answer for index, if any.
func (s *AnswerStore) Get(index int) (string, bool) {
	v, ok := s.values[index]
	return v, ok
}

// Has reports whether index holds a non-blank answer.
func (s *AnswerStore) Has(index int) bool {
	_, ok := s.values[index]
	return ok
}

// AnsweredIndices returns the answered indices in ascending order.
func (s *AnswerStore) AnsweredIndices() []int {
	out := make([]int, 0, len(s.values))
	for i := range s.values {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

func (s *AnswerStore) Count() int {
	return len(s.values)
}

// ProgressFraction returns answered/total, or 0 for an empty question list.
func (s *AnswerStore) ProgressFraction(total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(len(s.values)) / float64(total)
}
