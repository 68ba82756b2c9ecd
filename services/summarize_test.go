package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractiveSummarizeShortInputUnchanged(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"one sentence", "Go is a compiled language."},
		{"three sentences", "One is here. Two follows! Three ends?"},
		{"no terminators", "just words without punctuation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.text, ExtractiveSummarize(tt.text))
		})
	}
}

func TestExtractiveSummarizeKeepsDocumentOrder(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 10; i++ {
		fmt.Fprintf(&b, "Sentence number %d talks about compilers and compilers again. ", i)
	}
	text := b.String()

	summary := ExtractiveSummarize(text)
	require.NotEqual(t, text, summary)

	// Selected sentences must appear in their original relative order.
	pos := -1
	for _, sentence := range sentenceRe.FindAllString(summary, -1) {
		idx := strings.Index(text, strings.TrimSpace(sentence))
		require.GreaterOrEqual(t, idx, 0)
		assert.Greater(t, idx, pos)
		pos = idx
	}
}

func TestExtractiveSummarizeCapsAtSevenSentences(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 100; i++ {
		fmt.Fprintf(&b, "Observation %d concerns distributed systems and latency budgets. ", i)
	}

	summary := ExtractiveSummarize(b.String())
	sentences := sentenceRe.FindAllString(summary, -1)
	assert.Len(t, sentences, 7)
}

func TestExtractiveSummarizeThirtyPercent(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&b, "Statement %d covers indexing strategies for databases. ", i)
	}

	summary := ExtractiveSummarize(b.String())
	// ceil(10 * 0.3) = 3 sentences survive.
	assert.Len(t, sentenceRe.FindAllString(summary, -1), 3)
}

func TestTargetWords(t *testing.T) {
	assert.Equal(t, 100, targetWords(0))
	assert.Equal(t, 100, targetWords(499))
	assert.Equal(t, 200, targetWords(500))
	assert.Equal(t, 200, targetWords(1999))
	assert.Equal(t, 300, targetWords(2000))
	assert.Equal(t, 300, targetWords(50000))
}
