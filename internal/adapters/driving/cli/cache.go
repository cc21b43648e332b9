package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var cacheJSON bool

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the query cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache counters",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached result from memory and disk",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

func init() {
	cacheStatsCmd.Flags().BoolVar(&cacheJSON, "json", false, "output stats as JSON")
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStats(cmd *cobra.Command, _ []string) error {
	if cacheService == nil {
		return errors.New("cache service not configured")
	}

	stats := cacheService.Stats()
	if cacheJSON {
		return writeJSON(cmd.OutOrStdout(), stats)
	}

	cmd.Println("Query Cache")
	cmd.Println("===========")
	cmd.Printf("  Hits:         %d\n", stats.Hits)
	cmd.Printf("  Misses:       %d\n", stats.Misses)
	cmd.Printf("  Hit rate:     %.1f%%\n", stats.HitRate*100)
	cmd.Printf("  Evictions:    %d\n", stats.Evictions)
	cmd.Printf("  Memory items: %d\n", stats.MemoryItems)
	cmd.Printf("  Disk files:   %d\n", stats.DiskFiles)
	return nil
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	if cacheService == nil {
		return errors.New("cache service not configured")
	}

	if err := cacheService.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	cmd.Println("Cache cleared.")
	return nil
}
