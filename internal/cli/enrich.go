package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkravets/erudite/internal/model"
)

var (
	entityType    string
	sequential    bool
	enrichTimeout time.Duration
	outJSON       string
)

// enrichCmd represents the enrich command
var enrichCmd = &cobra.Command{
	Use:   "enrich <entity>",
	Short: "Enrich a single entity from multiple knowledge sources",
	Long: `Enrich looks up an entity in Google Knowledge Graph, DBpedia,
Wikidata and (for literary works) Open Library, merges the responses by
source priority, and assigns a confidence tier from source agreement.

Cached results are served without network calls. When no primary source
responds, Wikipedia is consulted as a fallback.

Example:
  erudite enrich "Mahatma Gandhi" --type PERSON
  erudite enrich "War and Peace" --type WORK_OF_ART
  erudite enrich "Kyoto" --sequential --json kyoto.json`,
	Args: cobra.ExactArgs(1),
	RunE: runEnrich,
}

func init() {
	rootCmd.AddCommand(enrichCmd)

	enrichCmd.Flags().StringVar(&entityType, "type", "", "entity type hint (PERSON, ORG, GPE, LOC, EVENT, WORK_OF_ART, FAC, NORP, LANGUAGE)")
	enrichCmd.Flags().BoolVar(&sequential, "sequential", false, "query sources one at a time with rate limiting")
	enrichCmd.Flags().DurationVar(&enrichTimeout, "timeout", 30*time.Second, "overall enrichment timeout")
	enrichCmd.Flags().StringVar(&outJSON, "json", "", "write result JSON to file instead of stdout")
}

func runEnrich(cmd *cobra.Command, args []string) error {
	name := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), enrichTimeout)
	defer cancel()

	cfg := loadConfig()
	if sequential {
		cfg.Providers.Sequential = true
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Enriching: %s\n", name)
		if entityType != "" {
			fmt.Fprintf(os.Stderr, "Type hint: %s\n", entityType)
		}
		fmt.Fprintf(os.Stderr, "Mode: %s\n", modeName(cfg.Providers.Sequential))
		fmt.Fprintln(os.Stderr)
	}

	orchestrator, s, err := buildOrchestrator(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	rec, err := orchestrator.Enrich(ctx, name, model.ParseEntityType(entityType))
	if err != nil {
		return fmt.Errorf("enrich failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Consulted %d sources\n", len(rec.SourcesConsulted))
		fmt.Fprintf(os.Stderr, "✓ Confidence: %s\n", rec.Confidence)
		fmt.Fprintln(os.Stderr)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	if outJSON != "" {
		if err := os.WriteFile(outJSON, data, 0644); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", outJSON)
		return nil
	}

	fmt.Println(string(data))
	return nil
}

func modeName(seq bool) string {
	if seq {
		return "sequential"
	}
	return "parallel"
}
