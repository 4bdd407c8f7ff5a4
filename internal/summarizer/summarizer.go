// Package summarizer turns canonical ticket text into a short technical
// synopsis. Remote providers are called at most once per request.
package summarizer

import (
	"errors"
	"strings"
)

// MaxSentences bounds every synopsis
const MaxSentences = 5

// ErrMalformedEnvelope is returned when a provider response carries no summary text
var ErrMalformedEnvelope = errors.New("malformed summarizer response")

const promptTemplate = "I would be sharing a paragraph, the first sentence in it is title of issue and the remaining text is description of the Issue. " +
	"These are the questions posted by users about software development and they can be related to any topic. " +
	"I want you to summarize this entire information into few sentences. At max 5 sentences not more than that. " +
	"Do not give too much attention to unnecessary details, just focus on technical aspects/details in the issue and produce summary according to it. " +
	"The paragraph is as follows: "

// Prompt embeds canonical ticket text into the fixed summarization prompt
func Prompt(text string) string {
	return promptTemplate + text
}

// extract trims an envelope payload and rejects empty ones
func extract(content string) (string, error) {
	summary := strings.TrimSpace(content)
	if summary == "" {
		return "", ErrMalformedEnvelope
	}
	return summary, nil
}
