// Package openai provides a unified client for OpenAI API access
// with support for both Azure OpenAI (primary) and OpenAI platform (fallback)
package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dupfinder/internal/config"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
)

// Client wraps OpenAI client with Azure OpenAI support and optional fallback
type Client struct {
	primary       *openai.Client
	fallback      *openai.Client
	useAzure      bool
	gptModel      string
	embedModel    openai.EmbeddingModel
	fallbackChat  string
	fallbackEmbed openai.EmbeddingModel
	dimensions    int
	providerName  string
	logger        zerolog.Logger
}

// NewClient creates a new OpenAI client. Azure OpenAI is primary when
// configured; the OpenAI platform is used as primary otherwise, or as a
// fallback when cfg.OpenAIFallback is set.
func NewClient(cfg *config.Config, logger zerolog.Logger) (*Client, error) {
	client := &Client{
		dimensions:    cfg.EmbeddingDimensions,
		fallbackChat:  cfg.OpenAIChatModel,
		fallbackEmbed: openai.EmbeddingModel(cfg.OpenAIEmbeddingModel),
		logger:        logger.With().Str("component", "openai_client").Logger(),
	}

	// Try Azure OpenAI first (primary)
	if cfg.UseAzureOpenAI() {
		azureConfig := openai.DefaultAzureConfig(cfg.AzureOpenAIKey, cfg.AzureOpenAIEndpoint)
		client.primary = openai.NewClientWithConfig(azureConfig)
		client.useAzure = true
		client.gptModel = cfg.AzureOpenAIGPTDeployment
		client.embedModel = openai.EmbeddingModel(cfg.AzureOpenAIEmbeddingDeployment)
		client.providerName = "Azure OpenAI"

		client.logger.Info().Str("endpoint", cfg.AzureOpenAIEndpoint).Msg("Primary provider: Azure OpenAI")
	}

	if cfg.HasOpenAIFallback() {
		openaiConfig := openai.DefaultConfig(cfg.OpenAIKey)
		if cfg.OpenAIBaseURL != "" {
			openaiConfig.BaseURL = cfg.OpenAIBaseURL
		}
		platform := openai.NewClientWithConfig(openaiConfig)

		switch {
		case !client.useAzure:
			// Use OpenAI as primary since Azure is not configured
			client.primary = platform
			client.gptModel = cfg.OpenAIChatModel
			client.embedModel = openai.EmbeddingModel(cfg.OpenAIEmbeddingModel)
			client.providerName = "OpenAI"

			client.logger.Info().Msg("Primary provider: OpenAI (Azure not configured)")
		case cfg.OpenAIFallback:
			client.fallback = platform
			client.logger.Info().Msg("Fallback provider: OpenAI")
		}
	}

	if client.primary == nil {
		return nil, fmt.Errorf("no OpenAI provider configured: set AZURE_OPENAI_ENDPOINT + AZURE_OPENAI_KEY or OPENAI_API_KEY")
	}

	return client, nil
}

// TestConnection verifies the API connection works
func (c *Client) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := c.CreateEmbeddings(ctx, []string{"test"})
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.providerName, err)
	}

	c.logger.Info().Str("provider", c.providerName).Msg("Connection test successful")
	return nil
}

func (c *Client) embeddingRequest(texts []string, model openai.EmbeddingModel) openai.EmbeddingRequest {
	req := openai.EmbeddingRequest{
		Input: texts,
		Model: model,
	}
	// Only the text-embedding-3 family accepts a requested size
	if strings.HasPrefix(string(model), "text-embedding-3") && c.dimensions > 0 {
		req.Dimensions = c.dimensions
	}
	return req
}

// CreateEmbeddings generates embeddings for the given texts, in input order
func (c *Client) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.primary.CreateEmbeddings(ctx, c.embeddingRequest(texts, c.embedModel))

	// Only the same model keeps vectors comparable with what is stored
	if err != nil && c.fallback != nil && c.fallbackEmbed == c.embedModel {
		// Try fallback provider
		c.logger.Warn().Err(err).Msg("Primary embeddings failed, trying fallback")
		resp, err = c.fallback.CreateEmbeddings(ctx, c.embeddingRequest(texts, c.fallbackEmbed))
		if err != nil {
			return nil, fmt.Errorf("both providers failed: %w", err)
		}
		c.logger.Info().Msg("Fallback embeddings succeeded")
	} else if err != nil {
		return nil, err
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	embeddings := make([][]float32, len(texts))
	for _, data := range resp.Data {
		if data.Index < 0 || data.Index >= len(texts) {
			return nil, fmt.Errorf("embedding index %d out of range", data.Index)
		}
		embeddings[data.Index] = data.Embedding
	}

	return embeddings, nil
}

// CreateChatCompletion generates a chat completion
func (c *Client) CreateChatCompletion(ctx context.Context, messages []openai.ChatCompletionMessage, maxTokens int, temperature float32) (*openai.ChatCompletionResponse, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.gptModel,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	resp, err := c.primary.CreateChatCompletion(ctx, req)
	if err != nil && c.fallback != nil {
		// Try fallback provider with OpenAI model name
		c.logger.Warn().Err(err).Msg("Primary chat failed, trying fallback")
		req.Model = c.fallbackChat
		resp, err = c.fallback.CreateChatCompletion(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("both providers failed: %w", err)
		}
		c.logger.Info().Msg("Fallback chat succeeded")
	} else if err != nil {
		return nil, err
	}

	return &resp, nil
}

// GetProviderName returns the current primary provider name
func (c *Client) GetProviderName() string {
	return c.providerName
}

// HasFallback reports whether a failed Azure call is retried on OpenAI
func (c *Client) HasFallback() bool {
	return c.fallback != nil
}

// GetGPTModel returns the GPT model/deployment name being used
func (c *Client) GetGPTModel() string {
	return c.gptModel
}

// GetEmbeddingModel returns the embedding model/deployment name being used
func (c *Client) GetEmbeddingModel() string {
	return string(c.embedModel)
}
