package analyze

import (
	"context"
	"fmt"
	"strings"

	"github.com/mkravets/erudite/internal/model"
	"github.com/mkravets/erudite/internal/store"
)

// Service runs cultural analysis with a cache in front of the provider and
// an append-only history behind it.
type Service struct {
	provider Provider
	cache    *store.AnalysisCache
	log      *store.AnalysisLog
	minLen   int
}

// NewService wires the analyzer. cache and log may be nil, which disables
// caching and history respectively.
func NewService(provider Provider, cache *store.AnalysisCache, log *store.AnalysisLog, minTextLength int) *Service {
	if minTextLength <= 0 {
		minTextLength = 10
	}
	return &Service{
		provider: provider,
		cache:    cache,
		log:      log,
		minLen:   minTextLength,
	}
}

// Analyze returns the cultural analysis for text, consulting the cache
// first. The second return value reports whether the result was cached.
func (s *Service) Analyze(ctx context.Context, text, language string) (*model.CulturalAnalysis, bool, error) {
	text = strings.TrimSpace(text)
	if len(text) < s.minLen {
		return nil, false, fmt.Errorf("%w: text must be at least %d characters", model.ErrInvalidInput, s.minLen)
	}
	if language == "" {
		language = "en"
	}

	if s.cache != nil {
		if analysis, ok := s.cache.Get(text, language); ok {
			return analysis, true, nil
		}
	}

	if s.provider == nil {
		return nil, false, fmt.Errorf("no analyzer provider configured")
	}

	analysis, err := s.provider.Analyze(ctx, text, language)
	if err != nil {
		return nil, false, fmt.Errorf("analyze: %w", err)
	}

	// Cache and history writes are best effort.
	if s.cache != nil {
		_ = s.cache.Put(text, language, analysis)
	}
	if s.log != nil {
		_, _ = s.log.Save(text, language, analysis)
	}

	return analysis, false, nil
}
