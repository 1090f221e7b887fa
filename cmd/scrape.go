package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/avelis/trackwire/internal/tracker"
	"github.com/avelis/trackwire/internal/trackermanager"
)

var scrapeInfoHashes []string

var scrapeCmd = &cobra.Command{
	Use:   "scrape <tracker-url>",
	Short: "Fetch aggregate torrent stats from an HTTP tracker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hashes := make([]tracker.InfoHash, 0, len(scrapeInfoHashes))
		for _, s := range scrapeInfoHashes {
			h, err := tracker.ParseInfoHash(s)
			if err != nil {
				return err
			}
			hashes = append(hashes, h)
		}

		tm := trackermanager.New(cfg.Tracker, logger)
		trk, err := tm.Get(args[0])
		if err != nil {
			return err
		}
		defer trk.Close()

		scraper, ok := trk.(tracker.Scraper)
		if !ok {
			return fmt.Errorf("tracker does not support scrape: %s", args[0])
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		resp, err := scraper.Scrape(ctx, hashes)
		if err != nil {
			return err
		}

		for h, stats := range resp.Files {
			fmt.Printf("%s  seeders: %d  leechers: %d  downloads: %d", h, stats.Seeders, stats.Leechers, stats.Downloads)
			if stats.Name != "" {
				fmt.Printf("  name: %s", stats.Name)
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	scrapeCmd.Flags().StringArrayVar(&scrapeInfoHashes, "infohash", nil, "info hash as a 40-character hex string (repeatable)")
	_ = scrapeCmd.MarkFlagRequired("infohash")
}
