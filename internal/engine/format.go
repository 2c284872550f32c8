package engine

import "strings"

// SegmentKind tags a piece of question text.
type SegmentKind string

const (
	SegmentProse SegmentKind = "prose"
	SegmentCode  SegmentKind = "code"
)

// TextSegment is a run of prose or a fenced code block.
type TextSegment struct {
	Kind     SegmentKind `json:"kind"`
	Language string      `json:"language,omitempty"`
	Content  string      `json:"content"`
}

const fence = "```"

// SplitQuestionText splits question text on triple-backtick fences. The
// opening fence may carry a language name. An unterminated fence runs to
// the end of the text. Blank prose between blocks is dropped.
func SplitQuestionText(text string) []TextSegment {
	var (
		out    []TextSegment
		buf    []string
		inCode bool
		lang   string
	)

	flush := func() {
		content := strings.Join(buf, "\n")
		buf = buf[:0]
		if inCode {
			out = append(out, TextSegment{Kind: SegmentCode, Language: lang, Content: content})
			return
		}
		if content = strings.TrimSpace(content); content != "" {
			out = append(out, TextSegment{Kind: SegmentProse, Content: content})
		}
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, fence) {
			buf = append(buf, line)
			continue
		}
		flush()
		if inCode {
			inCode, lang = false, ""
			continue
		}
		inCode = true
		lang = strings.TrimSpace(strings.TrimPrefix(trimmed, fence))
	}
	flush()

	return out
}
