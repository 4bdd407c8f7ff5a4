package summarizer

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// ChatCompleter is the slice of the OpenAI client used for summaries
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, messages []openai.ChatCompletionMessage, maxTokens int, temperature float32) (*openai.ChatCompletionResponse, error)
}

// OpenAI summarizes through a chat completion model
type OpenAI struct {
	client    ChatCompleter
	maxTokens int
}

// NewOpenAI creates an OpenAI summarizer
func NewOpenAI(client ChatCompleter) *OpenAI {
	return &OpenAI{client: client, maxTokens: 300}
}

// Summarize returns choices[0].message.content for the summary prompt
func (s *OpenAI) Summarize(ctx context.Context, text string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: Prompt(text)},
	}, s.maxTokens, 0)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrMalformedEnvelope)
	}
	return extract(resp.Choices[0].Message.Content)
}
