package cli

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/mkravets/erudite/internal/enrich"
	"github.com/mkravets/erudite/internal/model"
	"github.com/mkravets/erudite/internal/providers"
	"github.com/mkravets/erudite/internal/store"
	"github.com/mkravets/erudite/internal/worker"
)

// loadConfig merges the config file and environment over the defaults.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: invalid configuration, using defaults: %v\n", err)
		return model.DefaultConfig()
	}
	if key := os.Getenv("GOOGLE_KG_API_KEY"); key != "" {
		cfg.Providers.KnowledgeGraphAPIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && cfg.Analyzer.APIKey == "" {
		cfg.Analyzer.APIKey = key
	}
	return cfg
}

// buildOrchestrator assembles the enrichment stack from config. The caller
// owns the returned store and must Close it.
func buildOrchestrator(cfg *model.Config) (*enrich.Orchestrator, *store.Store, error) {
	s, err := store.Open(cfg.Cache.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open cache store: %w", err)
	}

	client := providers.NewHTTPClient(cfg.HTTP)
	wikidata := providers.NewWikidata(client)

	ps := []providers.Provider{
		providers.WithBreaker(providers.NewKnowledgeGraph(client, cfg.Providers.KnowledgeGraphAPIKey)),
		providers.WithBreaker(providers.NewDBpedia(client)),
		providers.WithBreaker(wikidata),
		providers.WithBreaker(providers.NewOpenLibrary(client)),
	}

	limiter := worker.NewLimiter(cfg.Providers.MinRequestInterval)
	aggregator := enrich.NewAggregator(ps, limiter)
	fallback := enrich.NewFallback(client, wikidata)
	entityCache := store.NewEntityCache(s, cfg.Cache.EntityMemoryTTL)

	mode := enrich.ModeParallel
	if cfg.Providers.Sequential {
		mode = enrich.ModeSequential
	}

	return enrich.NewOrchestrator(entityCache, aggregator, fallback, mode), s, nil
}
