package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitQuestionText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []TextSegment
	}{
		{
			name: "plain prose",
			in:   "What does this print?",
			want: []TextSegment{{Kind: SegmentProse, Content: "What does this print?"}},
		},
		{
			name: "prose and code",
			in:   "What does this print?\n```go\nfmt.Println(1)\n```\nPick one.",
			want: []TextSegment{
				{Kind: SegmentProse, Content: "What does this print?"},
				{Kind: SegmentCode, Language: "go", Content: "fmt.Println(1)"},
				{Kind: SegmentProse, Content: "Pick one."},
			},
		},
		{
			name: "unterminated fence",
			in:   "```\nSELECT 1;\nSELECT 2;",
			want: []TextSegment{
				{Kind: SegmentCode, Content: "SELECT 1;\nSELECT 2;"},
			},
		},
		{
			name: "empty",
			in:   "",
			want: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SplitQuestionText(tc.in))
		})
	}
}

func TestSplitQuestionTextKeepsIndentation(t *testing.T) {
	got := SplitQuestionText("```python\ndef f():\n    return 1\n```")

	require.Len(t, got, 1)
	assert.Equal(t, "def f():\n    return 1", got[0].Content)
	assert.Equal(t, "python", got[0].Language)
}
