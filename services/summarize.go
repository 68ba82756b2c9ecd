package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"regexp"
	"sort"
	"strings"
)

var (
	sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]+`)
	wordRe     = regexp.MustCompile(`\w+`)
)

// SummarizeText produces a shorter text. Gemini is the primary path with a
// word target scaled to the input; any failure there falls back silently to
// the extractive algorithm, which is deterministic and always succeeds.
func SummarizeText(ctx context.Context, text string) string {
	if GeminiConfigured() {
		target := targetWords(CountWords(text))
		prompt := fmt.Sprintf(
			"Provide a summary of the following text. The summary should be approximately %d words "+
				"and capture the main ideas, key points, and essential information. "+
				"Return plain prose only, no markdown and no commentary.\n\n%s",
			target, text,
		)
		summary, err := GeminiGenerateText(ctx, prompt)
		if err == nil && strings.TrimSpace(summary) != "" {
			return summary
		}
		if err != nil {
			log.Println("Gemini summarization failed, falling back to extractive method:", err)
		}
	}
	return ExtractiveSummarize(text)
}

// targetWords scales the requested summary length with the input size.
func targetWords(wordCount int) int {
	switch {
	case wordCount < 500:
		return 100
	case wordCount < 2000:
		return 200
	default:
		return 300
	}
}

// ExtractiveSummarize scores sentences by length-normalized word frequency
// and keeps the top 30% (at most 7), re-ordered into document order. Inputs
// of three sentences or fewer are returned unchanged.
func ExtractiveSummarize(text string) string {
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) <= 3 {
		return text
	}

	// Frequency table over words longer than 3 characters.
	freq := map[string]int{}
	for _, word := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if len(word) > 3 {
			freq[word]++
		}
	}

	type scored struct {
		index int
		score float64
	}
	scores := make([]scored, len(sentences))
	for i, sentence := range sentences {
		words := wordRe.FindAllString(strings.ToLower(sentence), -1)
		sum := 0
		for _, word := range words {
			if len(word) > 3 {
				sum += freq[word]
			}
		}
		score := 0.0
		if len(words) > 0 {
			score = float64(sum) / float64(len(words))
		}
		scores[i] = scored{index: i, score: score}
	}

	sort.SliceStable(scores, func(a, b int) bool {
		return scores[a].score > scores[b].score
	})

	keep := int(math.Ceil(float64(len(sentences)) * 0.3))
	if keep > 7 {
		keep = 7
	}

	selected := make([]int, keep)
	for i := 0; i < keep; i++ {
		selected[i] = scores[i].index
	}
	sort.Ints(selected)

	parts := make([]string, keep)
	for i, idx := range selected {
		parts[i] = sentences[idx]
	}
	return strings.Join(parts, " ")
}
