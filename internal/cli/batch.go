package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkravets/erudite/internal/model"
)

var (
	batchWorkers int
	maxEnrich    int
	batchOutput  string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Enrich multiple entities from a file in parallel",
	Long: `Batch enriches entities concurrently on a bounded worker pool:
- Read entities from input file (one per line, optionally "name<TAB>type")
- Cap the batch at a configurable maximum
- Enrich entities in parallel with configurable worker count
- Individual failures never abort the batch

Example:
  erudite batch entities.txt
  erudite batch entities.txt --workers 8 --max 50
  erudite batch entities.txt --json results.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchWorkers, "workers", 4, "number of concurrent workers")
	batchCmd.Flags().IntVar(&maxEnrich, "max", 10, "maximum entities to enrich per batch (0 = unlimited)")
	batchCmd.Flags().StringVar(&batchOutput, "json", "", "write results JSON to file instead of stdout")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	entities, err := readEntities(file)
	if err != nil {
		return fmt.Errorf("read entities: %w", err)
	}
	if len(entities) == 0 {
		return fmt.Errorf("no entities found in %s", file)
	}

	cfg := loadConfig()
	cfg.Concurrency.BatchWorkers = batchWorkers
	cfg.Concurrency.MaxEnrich = maxEnrich

	fmt.Fprintf(os.Stderr, "Input file: %s\n", file)
	fmt.Fprintf(os.Stderr, "Entities:   %d\n", len(entities))
	fmt.Fprintf(os.Stderr, "Workers:    %d\n", batchWorkers)
	fmt.Fprintln(os.Stderr)

	orchestrator, s, err := buildOrchestrator(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	results := orchestrator.EnrichBatch(cmd.Context(), entities, cfg.Concurrency.MaxEnrich, cfg.Concurrency.BatchWorkers)

	successCount := 0
	failureCount := 0
	var records []*model.CombinedRecord
	for _, result := range results {
		if result.Err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Entity.Text, result.Err)
			continue
		}
		successCount++
		records = append(records, result.Record)
		fmt.Fprintf(os.Stderr, "✓ %s (%s)\n", result.Entity.Text, result.Record.Confidence)
	}

	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "Total:    %d\n", len(results))
	fmt.Fprintf(os.Stderr, "Success:  %d\n", successCount)
	fmt.Fprintf(os.Stderr, "Failures: %d\n", failureCount)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}

	if batchOutput != "" {
		if err := os.WriteFile(batchOutput, data, 0644); err != nil {
			return fmt.Errorf("write results: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", batchOutput)
		return nil
	}

	fmt.Println(string(data))
	return nil
}

// readEntities parses one entity per line. A line is either a bare name or
// "name<TAB>type". Blank lines and #-comments are skipped.
func readEntities(path string) ([]model.Entity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var entities []model.Entity
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, typeLabel, _ := strings.Cut(line, "\t")
		entities = append(entities, model.Entity{
			Text: strings.TrimSpace(name),
			Type: model.ParseEntityType(strings.TrimSpace(typeLabel)),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entities, nil
}
