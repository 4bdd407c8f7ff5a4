package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"dupfinder/internal/config"
	"dupfinder/internal/embedder"
	"dupfinder/internal/models"
	"dupfinder/internal/store/memory"
	"dupfinder/internal/summarizer"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func localConfig() *config.Config {
	return &config.Config{
		StoreBackend:           config.BackendMemory,
		SummarizerProvider:     config.ProviderLocal,
		EmbedderProvider:       config.ProviderLocal,
		EmbeddingDimensions:    128,
		ExternalTimeoutSeconds: 5,
		SessionTTLMinutes:      1,
	}
}

func TestBuild_Local(t *testing.T) {
	a, err := Build(context.Background(), localConfig(), zerolog.Nop())
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	assert.IsType(t, &memory.Store{}, a.Store)
	assert.Nil(t, a.Analytics)

	ticket, err := a.Service.Ingest(context.Background(), models.RawTicket{
		ID:    11,
		Title: "Sync stalls",
		Body:  "<b>Calendar sync</b> stalls at ninety percent.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Calendar sync stalls at ninety percent.", ticket.CleanBody)

	count, err := a.Service.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestBuild_InvalidConfig(t *testing.T) {
	cfg := localConfig()
	cfg.StoreBackend = "cassandra"

	_, err := Build(context.Background(), cfg, zerolog.Nop())
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestOpenStore_Unknown(t *testing.T) {
	cfg := localConfig()
	cfg.StoreBackend = "nope"

	_, err := OpenStore(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestProviders(t *testing.T) {
	tests := []struct {
		name           string
		summarizer     string
		embedder       string
		openAIKey      string
		anthropicKey   string
		wantErr        bool
		wantSummarizer interface{}
		wantEmbedder   interface{}
	}{
		{"local", config.ProviderLocal, config.ProviderLocal, "", "", false, &summarizer.Frequency{}, &embedder.Hashing{}},
		{"openai", config.ProviderOpenAI, config.ProviderOpenAI, "sk-test", "", false, &summarizer.OpenAI{}, &embedder.OpenAI{}},
		{"anthropic summaries", config.ProviderAnthropic, config.ProviderLocal, "", "sk-ant", false, &summarizer.Anthropic{}, &embedder.Hashing{}},
		{"openai without credentials", config.ProviderOpenAI, config.ProviderLocal, "", "", true, nil, nil},
		{"unknown embedder", config.ProviderLocal, "word2vec", "", "", true, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := localConfig()
			cfg.SummarizerProvider = tt.summarizer
			cfg.EmbedderProvider = tt.embedder
			cfg.OpenAIKey = tt.openAIKey
			cfg.AnthropicKey = tt.anthropicKey

			sum, emb, err := Providers(cfg, zerolog.Nop())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantSummarizer, sum)
			assert.IsType(t, tt.wantEmbedder, emb)
			assert.Equal(t, cfg.EmbeddingDimensions, emb.Dimensions())
		})
	}
}

func TestCheckProviders(t *testing.T) {
	t.Run("local providers", func(t *testing.T) {
		a, err := Build(context.Background(), localConfig(), zerolog.Nop())
		require.NoError(t, err)
		defer func() { _ = a.Close() }()

		assert.NoError(t, a.CheckProviders(context.Background()))
	})

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{
			name:   "embeddings reachable",
			status: http.StatusOK,
			body:   `{"object":"list","model":"m","data":[{"object":"embedding","index":0,"embedding":[0.6,0.8]}]}`,
		},
		{
			name:    "embeddings failing",
			status:  http.StatusUnauthorized,
			body:    `{"error":{"message":"invalid api key","type":"invalid_request_error"}}`,
			wantErr: "failed to connect to OpenAI",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/embeddings", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			cfg := localConfig()
			cfg.EmbedderProvider = config.ProviderOpenAI
			cfg.EmbeddingDimensions = 2
			cfg.OpenAIKey = "sk-test"
			cfg.OpenAIBaseURL = server.URL + "/v1"
			cfg.OpenAIEmbeddingModel = "text-embedding-3-small"

			a, err := Build(context.Background(), cfg, zerolog.Nop())
			require.NoError(t, err)
			defer func() { _ = a.Close() }()

			err = a.CheckProviders(context.Background())
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
