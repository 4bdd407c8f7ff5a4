package normalize

import (
	"regexp"
	"testing"

	"dupfinder/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var anyTag = regexp.MustCompile(`(?s)<.*?>`)

func TestStripTags(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "no markup",
			input:    "plain text stays",
			expected: "plain text stays",
		},
		{
			name:     "paragraph and code tags",
			input:    "<p>Build fails with <code>undefined: foo</code></p>",
			expected: "Build fails with undefined: foo",
		},
		{
			name:     "attributes",
			input:    `<a href="https://example.com">link</a> here`,
			expected: "link here",
		},
		{
			name:     "leading and trailing whitespace kept",
			input:    "  <br/>text<br/>  ",
			expected: "  text  ",
		},
		{
			name:     "tag spanning lines",
			input:    "before<div\nclass=\"x\">inside</div>after",
			expected: "beforeinsideafter",
		},
		{
			name:     "non greedy match",
			input:    "<b>a</b> < b > c",
			expected: "a  c",
		},
		{
			name:     "unclosed bracket kept",
			input:    "x < y",
			expected: "x < y",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripTags(tt.input))
		})
	}
}

func TestStripTags_NoTagsRemain(t *testing.T) {
	inputs := []string{
		"<html><body><h1>Title</h1><p>Body with <em>emphasis</em></p></body></html>",
		"<ul>\n<li>one</li>\n<li>two</li>\n</ul>",
		"<pre><code>if a < b { return }</code></pre>",
		"<<nested>> tags <i>and</i> <img src='x.png'/>",
	}

	for _, input := range inputs {
		out := StripTags(input)
		assert.False(t, anyTag.MatchString(out), "output %q still contains a tag", out)
	}
}

func TestStripTags_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		"<p>a</p> < b",
		"<<a>b>c>",
		"x<y<z>>w",
		"<div>\n<span>multi\nline</span>\n</div>",
		"a < b and c > d",
	}

	for _, input := range inputs {
		once := StripTags(input)
		assert.Equal(t, once, StripTags(once), "input %q", input)
	}
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, "Title Body", Canonical("Title", "Body"))
	assert.Equal(t, " ", Canonical("", ""))
	assert.Equal(t, " t   b ", Canonical(" t ", " b "))
}

func TestClean(t *testing.T) {
	answer := "<p>Use <code>--force</code></p>"
	raw := models.RawTicket{
		ID:                 7,
		Title:              "<b>Title</b> kept",
		Body:               "<p>Body</p>",
		AcceptedAnswerBody: &answer,
	}

	clean := Clean(raw)

	assert.Equal(t, int64(7), clean.ID)
	assert.Equal(t, "<b>Title</b> kept", clean.Title)
	assert.Equal(t, "Body", clean.CleanBody)
	require.NotNil(t, clean.AcceptedAnswerBody)
	assert.Equal(t, "Use --force", *clean.AcceptedAnswerBody)
	assert.Equal(t, "<b>Title</b> kept Body", clean.Text())
}

func TestClean_NoAnswer(t *testing.T) {
	clean := Clean(models.RawTicket{ID: 1, Title: "t", Body: "b"})
	assert.Nil(t, clean.AcceptedAnswerBody)
}

func TestHasTags(t *testing.T) {
	assert.True(t, HasTags("<p>x</p>"))
	assert.True(t, HasTags("a <br\n/> b"))
	assert.False(t, HasTags("a < b is not a tag"))
	assert.False(t, HasTags(StripTags("<div>clean</div>")))
}
