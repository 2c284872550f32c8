package engine

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/agext/levenshtein"
)

const (
	// DefaultFuzzyThreshold is the minimum similarity accepted by the fallback check.
	DefaultFuzzyThreshold = 0.85

	confidenceExact           = 1.0
	confidenceCaseInsensitive = 0.9
	confidenceTrimmed         = 0.85
)

// MatchDetails records every check the evaluator ran, whether or not it passed.
// Similarity is only set when the fallback comparison ran.
type MatchDetails struct {
	ExactMatch           bool     `json:"exact_match"`
	OptionTextMatch      bool     `json:"option_text_match"`
	CaseInsensitiveMatch bool     `json:"case_insensitive_match"`
	TrimmedMatch         bool     `json:"trimmed_match"`
	Similarity           *float64 `json:"similarity,omitempty"`
}

// Evaluation is the graded outcome of one MCQ answer.
type Evaluation struct {
	IsCorrect  bool         `json:"is_correct"`
	Confidence float64      `json:"confidence"`
	Details    MatchDetails `json:"match_details"`
}

// Evaluator grades MCQ answers. The zero value uses DefaultFuzzyThreshold.
type Evaluator struct {
	FuzzyThreshold float64
}

// Evaluate grades submitted against the option labelled correct using the
// package defaults.
func Evaluate(submitted string, options []Option, correct string) Evaluation {
	return Evaluator{}.Evaluate(submitted, options, correct)
}

// EvaluateQuestion grades value against q. Text questions are not
// auto-graded and return ok=false.
func (e Evaluator) EvaluateQuestion(q Question, value string) (Evaluation, bool) {
	if !q.IsMCQ() {
		return Evaluation{}, false
	}
	return e.Evaluate(value, q.Options, q.CorrectAnswer), true
}

// Evaluate compares submitted, either an option label or literal option
// text, against the option labelled correct. A question with no options or
// an unresolvable key grades as incorrect with zero confidence.
func (e Evaluator) Evaluate(submitted string, options []Option, correct string) Evaluation {
	key, ok := resolveOption(options, correct)
	if !ok {
		return Evaluation{}
	}

	s := strings.TrimSpace(submitted)
	if s == "" {
		return Evaluation{}
	}

	label := strings.TrimSpace(key.Label)
	text := strings.TrimSpace(key.Text)
	ns := normalizeAnswer(s)

	var d MatchDetails
	d.ExactMatch = s == label
	d.OptionTextMatch = text != "" && s == text
	d.CaseInsensitiveMatch = strings.EqualFold(s, label) || (text != "" && strings.EqualFold(s, text))
	d.TrimmedMatch = ns == normalizeAnswer(label) || (text != "" && ns == normalizeAnswer(text))

	switch {
	case d.ExactMatch || d.OptionTextMatch:
		return Evaluation{IsCorrect: true, Confidence: confidenceExact, Details: d}
	case d.CaseInsensitiveMatch:
		return Evaluation{IsCorrect: true, Confidence: confidenceCaseInsensitive, Details: d}
	case d.TrimmedMatch:
		return Evaluation{IsCorrect: true, Confidence: confidenceTrimmed, Details: d}
	}

	target := text
	if target == "" {
		target = label
	}
	sim := Similarity(ns, normalizeAnswer(target))
	d.Similarity = &sim

	// An answer naming a different option is a wrong pick, however close its text.
	pass := sim >= e.threshold() && !picksOtherOption(options, key, ns)
	return Evaluation{IsCorrect: pass, Confidence: sim, Details: d}
}

func (e Evaluator) threshold() float64 {
	if e.FuzzyThreshold <= 0 || e.FuzzyThreshold > 1 {
		return DefaultFuzzyThreshold
	}
	return e.FuzzyThreshold
}

// Similarity returns 1 - levenshtein(a, b) / max(len(a), len(b)) over runes,
// rounded to two decimals. Two empty strings are identical.
func Similarity(a, b string) float64 {
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.Distance(a, b, nil)
	return round2(float64(longest-dist) / float64(longest))
}

// resolveOption finds the option labelled correct, preferring an exact label
// match over a case-insensitive one.
func resolveOption(options []Option, correct string) (Option, bool) {
	c := strings.TrimSpace(correct)
	if c == "" || len(options) == 0 {
		return Option{}, false
	}
	for _, o := range options {
		if strings.TrimSpace(o.Label) == c {
			return o, true
		}
	}
	for _, o := range options {
		if strings.EqualFold(strings.TrimSpace(o.Label), c) {
			return o, true
		}
	}
	return Option{}, false
}

func picksOtherOption(options []Option, key Option, normalized string) bool {
	for _, o := range options {
		if o.Label == key.Label {
			continue
		}
		if normalized == normalizeAnswer(o.Label) || normalized == normalizeAnswer(o.Text) {
			return true
		}
	}
	return false
}

// normalizeAnswer collapses internal whitespace and case-folds.
func normalizeAnswer(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
