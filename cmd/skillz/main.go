package main

import (
	"fmt"
	"os"

	"github.com/jingkaihe/skillz/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func init() {
	// Environment variables
	viper.SetEnvPrefix("SKILLZ")
	viper.AutomaticEnv()

	// Config file support
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.skillz")
	viper.AddConfigPath(".")

	setDefaults()

	// Load config file if it exists (ignore errors if it doesn't)
	_ = viper.ReadInConfig()
}

func setDefaults() {
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "fmt")
	viper.SetDefault("skills.max_file_size", defaultMaxFileSize)
	viper.SetDefault("serve.transport", "stdio")
	viper.SetDefault("serve.addr", "127.0.0.1:8000")
	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.sampler", "ratio")
	viper.SetDefault("tracing.ratio", 1)
}

var rootCmd = &cobra.Command{
	Use:   "skillz",
	Short: "Serve agent skills over MCP with progressive disclosure",
	Long: `Skillz discovers skill directories (each holding a SKILL.md) and exposes them
to agents over the Model Context Protocol. Agents see a short metadata summary
up front and load instructions and resource files on demand.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if err := logger.SetLogLevel(viper.GetString("log_level")); err != nil {
			return err
		}
		logger.SetLogFormat(viper.GetString("log_format"))
		return nil
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

func main() {
	// Add global flags
	rootCmd.PersistentFlags().String("skills-dir", "", "Directory containing skill directories (default ~/.skillz)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (panic, fatal, error, warn, info, debug, trace)")
	rootCmd.PersistentFlags().String("log-format", "fmt", "Log format (fmt or json)")

	// Bind flags to viper
	bindFlags(rootCmd.PersistentFlags(), map[string]string{
		"skills_dir": "skills-dir",
		"log_level":  "log-level",
		"log_format": "log-format",
	})

	// Add subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(metadataCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(versionCmd)

	// Execute
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bindFlags binds each viper key to the named flag in fs
func bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := viper.BindPFlag(key, fs.Lookup(name)); err != nil {
			logger.L.WithError(err).WithField("flag", name).Fatal("failed to bind flag")
		}
	}
}
