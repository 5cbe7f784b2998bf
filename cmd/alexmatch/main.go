// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the alexmatch CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/juanceresa/BigQuery/internal/logging"
	"github.com/juanceresa/BigQuery/internal/secrets"
	"github.com/juanceresa/BigQuery/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is the merged configuration: defaults, config file, environment,
	// then secrets for any credential still empty.
	cfg types.Config

	logger = logging.Nop()
)

// rootCmd is the base command for the alexmatch CLI.
var rootCmd = &cobra.Command{
	Use:   "alexmatch",
	Short: "Link investigators to OpenAlex author profiles",
	Long: `alexmatch links a table of grant recipients and scholars to OpenAlex
author profiles.

The resolve pass searches OpenAlex by name and classifies candidates through
exact name, institution and shared topic evidence. The ratify pass confirms
authors through the authorship list of each investigator's known DOI. The
investigators table lives in SQLite, Postgres or BigQuery; import and export
move it to and from CSV, YAML or JSON files.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}

		l, err := logging.New(cfg.Log.Mode)
		if err != nil {
			return err
		}
		logger = l

		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir, logger)
		if err != nil {
			return err
		}
		s.Apply(&cfg)
		if len(s) > 0 {
			logger.Debug("loaded secrets", "keys", s.Keys())
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./alexmatch.yaml or ~/.config/alexmatch/config.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory of credential files")
	rootCmd.PersistentFlags().String("store", "", "record store driver: sqlite, postgres or bigquery")
	rootCmd.PersistentFlags().String("log-mode", "", "logger mode: development or production")

	viper.BindPFlag("store.driver", rootCmd.PersistentFlags().Lookup("store"))
	viper.BindPFlag("log.mode", rootCmd.PersistentFlags().Lookup("log-mode"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("alexmatch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "alexmatch"))
		}
	}

	viper.SetEnvPrefix("ALEXMATCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(types.DefaultConfig())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every key so environment variables reach Unmarshal.
func setDefaults(d types.Config) {
	viper.SetDefault("openalex.timeout", d.OpenAlex.Timeout)
	viper.SetDefault("openalex.user_agent", d.OpenAlex.UserAgent)
	viper.SetDefault("openalex.email", d.OpenAlex.Email)
	viper.SetDefault("openalex.api_key", d.OpenAlex.APIKey)
	viper.SetDefault("openalex.per_page", d.OpenAlex.PerPage)
	viper.SetDefault("openalex.max_retries", d.OpenAlex.MaxRetries)
	viper.SetDefault("openalex.cache_dir", d.OpenAlex.CacheDir)
	viper.SetDefault("openalex.cache_ttl", d.OpenAlex.CacheTTL)

	viper.SetDefault("match.threshold", d.Match.Threshold)
	viper.SetDefault("match.workers", d.Match.Workers)
	viper.SetDefault("match.aliases_file", d.Match.AliasesFile)

	viper.SetDefault("store.driver", string(d.Store.Driver))
	viper.SetDefault("store.path", d.Store.Path)
	viper.SetDefault("store.dsn", d.Store.DSN)
	viper.SetDefault("store.project", d.Store.Project)
	viper.SetDefault("store.dataset", d.Store.Dataset)
	viper.SetDefault("store.table", d.Store.Table)

	viper.SetDefault("bridge.source", string(d.Bridge.Source))
	viper.SetDefault("bridge.project", d.Bridge.Project)
	viper.SetDefault("bridge.dataset", d.Bridge.Dataset)

	viper.SetDefault("metrics.file", d.Metrics.File)
	viper.SetDefault("log.mode", d.Log.Mode)
}

func loadConfig() error {
	c := types.DefaultConfig()
	if err := viper.Unmarshal(&c); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	cfg = c
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
