package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkravets/erudite/internal/store"
)

var historyLimit int

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "Show past analysis runs",
	Long: `List recent cultural analyses, newest first, or show one run in
full by id. History is kept separately from the analysis cache, so
purging the cache never loses it.

Example:
  erudite history
  erudite history --limit 50
  erudite history 4f7c2a9e-...`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum runs to list")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	s, err := store.Open(cfg.Cache.Path)
	if err != nil {
		return fmt.Errorf("open cache store: %w", err)
	}
	defer func() { _ = s.Close() }()

	log := store.NewAnalysisLog(s)

	if len(args) == 1 {
		rec, err := log.Get(args[0])
		if err != nil {
			return fmt.Errorf("load analysis: %w", err)
		}
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return fmt.Errorf("encode analysis: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	records, err := log.List(historyLimit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No analyses recorded yet.")
		return nil
	}

	for _, rec := range records {
		preview := rec.InputText
		if len(preview) > 60 {
			preview = preview[:57] + "..."
		}
		fmt.Printf("%s  %s  [%s]  %s\n", rec.ID, rec.CreatedAt.Format("2006-01-02 15:04"), rec.Language, preview)
	}
	return nil
}
