// Package commands implements the CLI commands for sitemapper.
package commands

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/sitemapper/internal/config"
	"github.com/jmylchreest/sitemapper/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "sitemapper",
	Short: "Crawl a site section and write a sitemaps.org XML sitemap",
	Long: `Sitemapper discovers every page reachable under one or more URL
prefixes on a single host and writes them to a sitemap.xml file.

Examples:
  # Pages linked from the docs root
  sitemapper crawl https://example.com/docs/

  # Everything reachable under two sections
  sitemapper crawl -r -u https://example.com/docs/ -u https://example.com/api/

  # JavaScript-rendered site, politely
  sitemapper crawl -r --fetch-mode dynamic --rate 2 https://example.com/app/`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default $HOME/.sitemapper.yaml or ./.sitemapper.yaml)")
	flags.Bool("debug", false, "enable debug logging")
	flags.BoolP("quiet", "q", false, "only log errors")
	flags.Bool("log-json", false, "log as JSON")
	flags.String("log-level", "info", "log level: debug, info, warn, error")

	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("debug", flags.Lookup("debug"))
	_ = viper.BindPFlag("quiet", flags.Lookup("quiet"))
	_ = viper.BindPFlag("log_json", flags.Lookup("log-json"))
	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".sitemapper")
		viper.SetConfigType("yaml")
	}

	// Environment variables
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.AutomaticEnv()

	// Read config file (ignore error if not found)
	if err := viper.ReadInConfig(); err == nil {
		logger.Debug("loaded config file", "path", viper.ConfigFileUsed())
	}
}

// initLogger configures logging from the global flags.
func initLogger() {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
		JSON:  viper.GetBool("log_json"),
		Level: viper.GetString("log_level"),
	})
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
