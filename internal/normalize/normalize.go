// Package normalize turns raw ticket text into the canonical form fed to the
// summarizer.
package normalize

import (
	"regexp"

	"dupfinder/internal/models"
)

// tagPattern matches markup tags non-greedily, including tags that span lines.
var tagPattern = regexp.MustCompile(`(?s)<.*?>`)

// CleanTicket is a raw ticket with markup removed from its body and answer
type CleanTicket struct {
	ID                 int64
	Title              string
	CleanBody          string
	AcceptedAnswerBody *string
}

// StripTags removes every <...> tag from text. Whitespace is left as is.
func StripTags(text string) string {
	if text == "" {
		return text
	}
	return tagPattern.ReplaceAllString(text, "")
}

// HasTags reports whether text still contains a <...> tag
func HasTags(text string) bool {
	return tagPattern.MatchString(text)
}

// Canonical joins a title and a cleaned body with a single space.
func Canonical(title, cleanBody string) string {
	return title + " " + cleanBody
}

// Clean strips markup from the body and accepted answer of a raw ticket.
// The title is kept verbatim.
func Clean(raw models.RawTicket) CleanTicket {
	clean := CleanTicket{
		ID:        raw.ID,
		Title:     raw.Title,
		CleanBody: StripTags(raw.Body),
	}
	if raw.AcceptedAnswerBody != nil {
		answer := StripTags(*raw.AcceptedAnswerBody)
		clean.AcceptedAnswerBody = &answer
	}
	return clean
}

// Text returns the canonical text of a cleaned ticket
func (c CleanTicket) Text() string {
	return Canonical(c.Title, c.CleanBody)
}
