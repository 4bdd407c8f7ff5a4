// Package app assembles the duplicate finder from configuration. Both the
// HTTP server and the batch ingestion command start from here.
package app

import (
	"context"
	"fmt"

	"dupfinder/internal/analytics"
	"dupfinder/internal/config"
	"dupfinder/internal/database"
	"dupfinder/internal/dedup"
	"dupfinder/internal/email"
	"dupfinder/internal/embedder"
	"dupfinder/internal/openai"
	"dupfinder/internal/store/memory"
	"dupfinder/internal/store/qdrantstore"
	"dupfinder/internal/store/sqlstore"
	"dupfinder/internal/summarizer"

	"github.com/rs/zerolog"
)

// App holds the wired workflow and the resources it owns
type App struct {
	Service   *dedup.Service
	Store     dedup.Store
	Analytics *analytics.Service // nil when ANALYTICS_DATABASE_URL is unset or unreachable

	analyticsDB *database.WriteClient
	embedClient *openai.Client // set when embeddings come from OpenAI
}

// Build opens the store, creates the model providers and wires the
// optional analytics tracker and new ticket notifier
func Build(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	sum, emb, client, err := providers(cfg, logger)
	if err != nil {
		return nil, err
	}

	store, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	a := &App{Store: store}
	if cfg.EmbedderProvider == config.ProviderOpenAI {
		a.embedClient = client
	}
	var options []dedup.Option

	if cfg.AnalyticsDatabaseURL != "" {
		if svc, wc, err := openAnalytics(ctx, cfg.AnalyticsDatabaseURL, logger); err != nil {
			logger.Warn().Err(err).Msg("Analytics disabled")
		} else {
			a.Analytics, a.analyticsDB = svc, wc
			options = append(options, dedup.WithTracker(svc))
		}
	}

	notifier := email.NewNotifier(cfg.SendGridAPIKey, cfg.TriageEmail, "")
	if notifier.Enabled() {
		options = append(options, dedup.WithNotifier(notifier))
		logger.Info().Str("to", cfg.TriageEmail).Msg("New ticket notifications enabled")
	}

	a.Service = dedup.NewService(sum, emb, store, logger, dedup.Options{
		SessionTTL:      cfg.SessionTTL(),
		ExternalTimeout: cfg.ExternalTimeout(),
	}, options...)

	return a, nil
}

// CheckProviders makes one embedding call so a bad key or deployment shows
// up before any work is done. Local providers always pass.
func (a *App) CheckProviders(ctx context.Context) error {
	if a.embedClient == nil {
		return nil
	}
	return a.embedClient.TestConnection(ctx)
}

// Close flushes queued analytics and releases the store and the analytics
// connection
func (a *App) Close() error {
	if a.Service != nil {
		a.Service.Close()
	}
	var firstErr error
	if a.analyticsDB != nil {
		firstErr = a.analyticsDB.Close()
	}
	if err := a.Store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// OpenStore connects the configured ticket store backend
func OpenStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (dedup.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		logger.Warn().Msg("Using in-memory ticket store; tickets are lost on restart")
		return memory.New(cfg.EmbeddingDimensions), nil
	case config.BackendPostgres, config.BackendMySQL:
		s, err := sqlstore.Open(ctx, cfg.DatabaseURL, cfg.EmbeddingDimensions, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s ticket store: %w", cfg.StoreBackend, err)
		}
		return s, nil
	case config.BackendQdrant:
		s, err := qdrantstore.Open(ctx, qdrantstore.Config{
			Host:       cfg.QdrantHost,
			Port:       cfg.QdrantPort,
			APIKey:     cfg.QdrantAPIKey,
			UseTLS:     cfg.QdrantUseTLS,
			Collection: cfg.QdrantCollection,
			Dimensions: cfg.EmbeddingDimensions,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open qdrant ticket store: %w", err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

// Providers creates the summarizer and embedder. One OpenAI client is
// shared when both use it.
func Providers(cfg *config.Config, logger zerolog.Logger) (dedup.Summarizer, dedup.Embedder, error) {
	sum, emb, _, err := providers(cfg, logger)
	return sum, emb, err
}

func providers(cfg *config.Config, logger zerolog.Logger) (dedup.Summarizer, dedup.Embedder, *openai.Client, error) {
	var client *openai.Client
	openAIClient := func() (*openai.Client, error) {
		if client != nil {
			return client, nil
		}
		c, err := openai.NewClient(cfg, logger)
		if err != nil {
			return nil, err
		}
		client = c
		logger.Info().
			Str("provider", c.GetProviderName()).
			Str("chat_model", c.GetGPTModel()).
			Str("embedding_model", c.GetEmbeddingModel()).
			Bool("fallback", c.HasFallback()).
			Msg("OpenAI client ready")
		return client, nil
	}

	var sum dedup.Summarizer
	switch cfg.SummarizerProvider {
	case config.ProviderOpenAI:
		c, err := openAIClient()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to create summarizer: %w", err)
		}
		sum = summarizer.NewOpenAI(c)
	case config.ProviderAnthropic:
		sum = summarizer.NewAnthropic(cfg.AnthropicKey, cfg.AnthropicModel)
	case config.ProviderLocal:
		sum = summarizer.NewFrequency()
	default:
		return nil, nil, nil, fmt.Errorf("unknown summarizer provider %q", cfg.SummarizerProvider)
	}

	var emb dedup.Embedder
	switch cfg.EmbedderProvider {
	case config.ProviderOpenAI:
		c, err := openAIClient()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to create embedder: %w", err)
		}
		emb = embedder.NewOpenAI(c, cfg.EmbeddingDimensions)
	case config.ProviderLocal:
		emb = embedder.NewHashing(cfg.EmbeddingDimensions)
	default:
		return nil, nil, nil, fmt.Errorf("unknown embedder provider %q", cfg.EmbedderProvider)
	}

	logger.Info().
		Str("summarizer", cfg.SummarizerProvider).
		Str("embedder", cfg.EmbedderProvider).
		Int("dimensions", cfg.EmbeddingDimensions).
		Msg("Model providers configured")

	return sum, emb, client, nil
}

func openAnalytics(ctx context.Context, url string, logger zerolog.Logger) (*analytics.Service, *database.WriteClient, error) {
	wc, err := database.NewWriteClient(url)
	if err != nil {
		return nil, nil, err
	}
	svc, err := analytics.NewService(ctx, wc, logger.With().Str("component", "analytics").Logger())
	if err != nil {
		_ = wc.Close()
		return nil, nil, err
	}
	return svc, wc, nil
}
