package utils

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	tokenPattern    = regexp.MustCompile(`[a-z0-9]+`)
	sentencePattern = regexp.MustCompile(`[^.!?\n]+[.!?]*`)
	stopwords       = map[string]struct{}{
		"a": {}, "about": {}, "after": {}, "all": {}, "also": {}, "am": {}, "an": {}, "and": {}, "any": {},
		"are": {}, "as": {}, "at": {}, "be": {}, "been": {}, "but": {}, "by": {}, "can": {}, "could": {},
		"do": {}, "does": {}, "for": {}, "from": {}, "get": {}, "had": {}, "has": {}, "have": {}, "hello": {},
		"hi": {}, "how": {}, "i": {}, "if": {}, "im": {}, "in": {}, "into": {}, "is": {}, "it": {}, "its": {},
		"just": {}, "me": {}, "my": {}, "no": {}, "not": {}, "of": {}, "on": {}, "or": {}, "our": {},
		"please": {}, "so": {}, "some": {}, "than": {}, "thanks": {}, "that": {}, "the": {}, "their": {},
		"them": {}, "then": {}, "there": {}, "these": {}, "they": {}, "this": {}, "those": {}, "to": {},
		"up": {}, "using": {}, "was": {}, "we": {}, "were": {}, "what": {}, "when": {}, "where": {},
		"which": {}, "while": {}, "who": {}, "why": {}, "will": {}, "with": {}, "would": {}, "you": {},
		"your": {},
	}
)

// ExtractMeaningfulTokens tokenizes text, removes stopwords, and deduplicates tokens while preserving order.
func ExtractMeaningfulTokens(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	return dedupeTokens(Tokens(text))
}

// Tokens tokenizes text and removes stopwords, keeping duplicates and order.
// Text is NFKC-folded first so full-width and compatibility forms map onto ASCII.
func Tokens(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return filterTokens(tokenize(text))
}

// SplitSentences splits text on sentence terminators and line breaks.
// Blank fragments are dropped and surrounding whitespace trimmed.
func SplitSentences(text string) []string {
	var sentences []string
	for _, s := range sentencePattern.FindAllString(text, -1) {
		s = strings.TrimSpace(s)
		if s == "" || strings.Trim(s, ".!?") == "" {
			continue
		}
		sentences = append(sentences, s)
	}
	return sentences
}

// TokenHasDigit reports whether the token contains at least one numeric digit.
func TokenHasDigit(token string) bool {
	for _, r := range token {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

func tokenize(text string) []string {
	lower := strings.ToLower(norm.NFKC.String(text))
	return tokenPattern.FindAllString(lower, -1)
}

func filterTokens(tokens []string) []string {
	result := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if len(token) == 0 {
			continue
		}
		if len(token) == 1 && !TokenHasDigit(token) {
			continue
		}
		if _, isStopword := stopwords[token]; isStopword {
			continue
		}
		result = append(result, token)
	}
	return result
}

func dedupeTokens(tokens []string) []string {
	if len(tokens) == 0 {
		return tokens
	}

	seen := make(map[string]struct{}, len(tokens))
	result := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, exists := seen[token]; exists {
			continue
		}
		seen[token] = struct{}{}
		result = append(result, token)
	}
	return result
}
