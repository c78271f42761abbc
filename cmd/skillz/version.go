package main

import (
	"io"
	"os"

	"github.com/jingkaihe/skillz/pkg/presenter"
	"github.com/jingkaihe/skillz/pkg/version"
	"github.com/spf13/cobra"
)

type VersionConfig struct {
	Short bool
}

func NewVersionConfig() *VersionConfig {
	return &VersionConfig{
		Short: false,
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long:  `Print the skillz build information as JSON, or only the version with --short.`,
	Run: func(cmd *cobra.Command, _ []string) {
		config := getVersionConfigFromFlags(cmd)
		exitOnError(printVersionCmd(os.Stdout, version.Get(), config), "failed to format version info")
	},
}

func init() {
	defaults := NewVersionConfig()
	versionCmd.Flags().Bool("short", defaults.Short, "Print only the version number")
}

func getVersionConfigFromFlags(cmd *cobra.Command) *VersionConfig {
	config := NewVersionConfig()
	if short, err := cmd.Flags().GetBool("short"); err == nil {
		config.Short = short
	}
	return config
}

func printVersionCmd(w io.Writer, info version.Info, config *VersionConfig) error {
	if config.Short {
		_, err := io.WriteString(w, info.Version+"\n")
		return err
	}

	content, err := info.JSON()
	if err != nil {
		return err
	}
	presenter.NewWithOptions(w, os.Stderr, presenter.ColorAuto).Raw(content)
	return nil
}
