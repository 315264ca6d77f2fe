package main

import (
	"fmt"
	"io"

	"github.com/dgnsrekt/letterboard/internal/cache"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	cacheCmd = &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the rendered audio cache",
		Args:  cobra.NoArgs,
	}

	cacheStatsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Show how much audio is cached",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := openCache()
			if err != nil {
				return err
			}
			defer m.Close() //nolint:errcheck

			writeCacheStats(cmd.OutOrStdout(), m.Dir(), m.Stats())
			return nil
		},
	}

	cacheClearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Delete all cached audio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := openCache()
			if err != nil {
				return err
			}
			before := m.Stats().Disk
			if err := m.Clear(); err != nil {
				_ = m.Close()
				return fmt.Errorf("unable to clear cache: %w", err)
			}
			if err := m.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d clips (%s)\n",
				before.Items, humanize.Bytes(uint64(before.Size))) //nolint:gosec
			return nil
		},
	}
)

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)
}

func openCache() (*cache.Manager, error) {
	cfg, err := cacheConfig()
	if err != nil {
		return nil, err
	}
	return cache.NewManager(cfg)
}

func writeCacheStats(w io.Writer, dir string, s cache.ManagerStats) {
	if dir == "" {
		dir = "(memory only)"
	}
	fmt.Fprintln(w, header("Audio cache"), faint(dir))
	fmt.Fprintf(w, "  clips      %d\n", s.Disk.Items)
	fmt.Fprintf(w, "  on disk    %s of %s\n",
		humanize.Bytes(uint64(s.Disk.Size)),     //nolint:gosec
		humanize.Bytes(uint64(s.Disk.Capacity))) //nolint:gosec
	if s.DiskRaw > s.Disk.Size && s.Disk.Size > 0 {
		fmt.Fprintf(w, "  unpacked   %s (%.1fx smaller)\n",
			humanize.Bytes(uint64(s.DiskRaw)), //nolint:gosec
			float64(s.DiskRaw)/float64(s.Disk.Size))
	}
	if s.Disk.Evictions > 0 {
		fmt.Fprintf(w, "  evicted    %s\n", humanize.Comma(s.Disk.Evictions))
	}
}
