package analyze

import (
	"fmt"
	"strings"

	"github.com/mkravets/erudite/internal/model"
)

// NewProvider creates an analyzer provider from config. An empty provider
// name disables analysis and returns (nil, nil).
func NewProvider(config model.AnalyzerConfig) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "":
		return nil, nil
	case "openai":
		return NewOpenAIProvider(config)
	default:
		return nil, fmt.Errorf("unsupported analyzer provider: %s", config.Provider)
	}
}
