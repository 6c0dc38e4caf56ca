// Package analyze produces the narrative cultural-context analysis for a
// text passage. The generative call itself sits behind the Provider
// interface; Service wraps whichever provider is configured with the
// persistent analysis cache so identical passages are analyzed once.
package analyze

import (
	"context"

	"github.com/mkravets/erudite/internal/model"
)

// Provider generates a cultural-context analysis.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Analyze produces the analysis for the passage, written in the
	// requested language.
	Analyze(ctx context.Context, text, language string) (*model.CulturalAnalysis, error)
}
