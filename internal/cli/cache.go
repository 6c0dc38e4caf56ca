package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkravets/erudite/internal/store"
)

var (
	purgeDays     int
	purgeEntities bool
)

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the local caches",
	Long: `Manage the persistent entity and analysis caches.

Cached enrichments and analyses live in a local SQLite database
(default: erudite.db, configurable via cache.path).`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show analysis cache statistics",
	Long:  `Display aggregate statistics for the analysis cache: entry counts, hit counts, languages, and recent activity.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		s, err := store.Open(cfg.Cache.Path)
		if err != nil {
			return fmt.Errorf("open cache store: %w", err)
		}
		defer func() { _ = s.Close() }()

		stats, err := store.NewAnalysisCache(s, cfg.Cache.AnalysisTTLDays).Stats()
		if err != nil {
			return err
		}

		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("encode stats: %w", err)
		}
		fmt.Println(string(data))

		return nil
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove expired cache entries",
	Long: `Delete analysis cache entries older than the given number of days
(default: the configured TTL). With --entities, stale entity enrichments
are removed as well.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		s, err := store.Open(cfg.Cache.Path)
		if err != nil {
			return fmt.Errorf("open cache store: %w", err)
		}
		defer func() { _ = s.Close() }()

		removed, err := store.NewAnalysisCache(s, cfg.Cache.AnalysisTTLDays).Purge(purgeDays)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Removed %d analysis entries\n", removed)

		if purgeEntities {
			days := purgeDays
			if days <= 0 {
				days = cfg.Cache.EntityMaxAgeDays
			}
			removed, err := store.NewEntityCache(s, cfg.Cache.EntityMemoryTTL).PurgeOlderThan(days)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "✓ Removed %d entity entries\n", removed)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePurgeCmd)

	cachePurgeCmd.Flags().IntVar(&purgeDays, "days", 0, "purge entries older than this many days (0 = configured TTL)")
	cachePurgeCmd.Flags().BoolVar(&purgeEntities, "entities", false, "also purge stale entity enrichments")
}
