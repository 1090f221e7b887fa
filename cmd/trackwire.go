package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avelis/trackwire/internal/config"
	"github.com/avelis/trackwire/internal/log"
)

var (
	cfgFile     string
	cfgRegistry *config.Registry
	cfg         *config.Config
	logger      *log.Logger

	rootCmd = &cobra.Command{
		Use:   "trackwire",
		Short: "Announce and scrape client for BitTorrent HTTP trackers",
	}
)

func Execute() error {
	defer func() {
		if logger != nil {
			if err := logger.Close(); err != nil {
				fmt.Printf("failed to close logger: %v\n", err)
			}
		}
	}()
	return rootCmd.Execute()
}

func init() {
	cfgRegistry = config.NewRegistry()
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.trackwire/config.yaml)")

	rootCmd.AddCommand(announceCmd)
	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	var err error
	cfg, err = cfgRegistry.LoadConfig(cfgFile)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err = log.New(&cfg.Log)
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	logger.Debug(
		"configuration loaded",
		"config_file", cfgRegistry.ConfigFile(),
		"port", cfg.Port,
		"numwant", cfg.NumWant,
		"request_timeout", cfg.Tracker.RequestTimeout,
		"max_retries", cfg.Tracker.MaxRetries,
	)
}
