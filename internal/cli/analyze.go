package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkravets/erudite/internal/analyze"
	"github.com/mkravets/erudite/internal/store"
)

var (
	analyzeLang    string
	analyzeModel   string
	analyzeTimeout time.Duration
	analyzeNoCache bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze the cultural and historical context of a text",
	Long: `Analyze sends a text passage to an LLM and returns a structured
cultural analysis: origin, cross-cultural connections, a modern analogy,
and (where relevant) timeline events, geographic locations and key
concepts.

Identical texts are served from a persistent cache without calling the
provider. Pass "-" to read the text from stdin.

Requires OPENAI_API_KEY.

Example:
  erudite analyze passage.txt
  erudite analyze passage.txt --lang ru
  cat passage.txt | erudite analyze -`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeLang, "lang", "en", "language code for the analysis output")
	analyzeCmd.Flags().StringVar(&analyzeModel, "model", "", "LLM model name (default from config)")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 60*time.Second, "overall analysis timeout")
	analyzeCmd.Flags().BoolVar(&analyzeNoCache, "no-cache", false, "bypass the analysis cache")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	text, err := readText(args[0])
	if err != nil {
		return fmt.Errorf("read text: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	cfg := loadConfig()
	if cfg.Analyzer.Provider == "" {
		cfg.Analyzer.Provider = "openai"
	}
	if analyzeModel != "" {
		cfg.Analyzer.Model = analyzeModel
	}
	if cfg.Analyzer.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	provider, err := analyze.NewProvider(cfg.Analyzer)
	if err != nil {
		return fmt.Errorf("create analyzer: %w", err)
	}

	s, err := store.Open(cfg.Cache.Path)
	if err != nil {
		return fmt.Errorf("open cache store: %w", err)
	}
	defer func() { _ = s.Close() }()

	cache := store.NewAnalysisCache(s, cfg.Cache.AnalysisTTLDays)
	if analyzeNoCache {
		cache = nil
	}
	service := analyze.NewService(provider, cache, store.NewAnalysisLog(s), cfg.Analyzer.MinTextLength)

	analysis, cached, err := service.Analyze(ctx, text, analyzeLang)
	if err != nil {
		return fmt.Errorf("analyze failed: %w", err)
	}

	if verbose {
		if cached {
			fmt.Fprintf(os.Stderr, "✓ Served from cache\n")
		} else {
			fmt.Fprintf(os.Stderr, "✓ Generated with %s\n", provider.Name())
		}
		fmt.Fprintln(os.Stderr)
	}

	data, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	fmt.Println(string(data))

	return nil
}

// readText reads the analysis input from a file, or stdin when path is "-".
func readText(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}
