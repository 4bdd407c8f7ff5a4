package summarizer

import (
	"context"
	"slices"
	"strings"

	"dupfinder/internal/utils"
)

// Frequency is a local extractive summarizer. It keeps the sentences whose
// terms are most frequent across the whole text, in their original order.
type Frequency struct{}

// NewFrequency creates a Frequency summarizer
func NewFrequency() *Frequency {
	return &Frequency{}
}

type scoredSentence struct {
	index int
	score float64
	text  string
}

// Summarize picks up to MaxSentences sentences
func (f *Frequency) Summarize(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	sentences := utils.SplitSentences(text)
	if len(sentences) <= MaxSentences {
		return extract(strings.Join(sentences, " "))
	}

	freq := make(map[string]int)
	for _, token := range utils.Tokens(text) {
		freq[token]++
	}

	scored := make([]scoredSentence, len(sentences))
	for i, sentence := range sentences {
		tokens := utils.Tokens(sentence)
		var total int
		for _, token := range tokens {
			total += freq[token]
		}
		score := 0.0
		if len(tokens) > 0 {
			score = float64(total) / float64(len(tokens))
		}
		scored[i] = scoredSentence{index: i, score: score, text: sentence}
	}

	// Highest score first, earlier sentence wins ties
	slices.SortStableFunc(scored, func(a, b scoredSentence) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		}
		return 0
	})
	top := scored[:MaxSentences]
	slices.SortFunc(top, func(a, b scoredSentence) int { return a.index - b.index })

	parts := make([]string, len(top))
	for i, s := range top {
		parts[i] = s.text
	}
	return extract(strings.Join(parts, " "))
}
