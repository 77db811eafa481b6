// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the wos-filter CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/wos-filter/internal/logging"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is built from the log configuration before any subcommand runs.
var logger = zap.NewNop()

// rootCmd is the base command for the wos-filter CLI.
var rootCmd = &cobra.Command{
	Use:   "wos-filter",
	Short: "Fetch Web of Science records and filter them by keyword rules",
	Long: `wos-filter classifies bibliographic records exported from Web of Science
as relevant or not using include, exclude and category-exclude term lists
from a YAML rule file, and reports which listed principal investigators
are acknowledged in each record's funding text.

The fetch stage pulls records from the WoS Expanded API into a CSV summary
table; the filter stage classifies any such table.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		l, err := logging.New(cfg.Log)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./wos-filter.yaml or ~/.config/wos-filter/wos-filter.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: console or json")

	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	setDefaults(viper.GetViper())
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("wos-filter")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "wos-filter"))
		}
	}

	bindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "error: reading config %s: %v\n", cfgFile, err)
		os.Exit(1)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
