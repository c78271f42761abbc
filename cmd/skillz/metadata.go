package main

import (
	"io"
	"os"

	"github.com/jingkaihe/skillz/pkg/metadata"
	"github.com/jingkaihe/skillz/pkg/skills"
	"github.com/spf13/cobra"
)

type MetadataConfig struct {
	Format string
}

func NewMetadataConfig() *MetadataConfig {
	return &MetadataConfig{
		Format: string(metadata.FormatMarkdown),
	}
}

var metadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Print the skill metadata summary",
	Long: `Print the metadata summary that agents receive in their system prompt.

Examples:
  skillz metadata
  skillz metadata --format json`,
	Run: func(cmd *cobra.Command, _ []string) {
		config := getMetadataConfigFromFlags(cmd)
		svc := mustService(cmd.Context())
		exitOnError(printMetadataCmd(os.Stdout, svc.Registry(), config), "failed to render metadata")
	},
}

func init() {
	defaults := NewMetadataConfig()
	metadataCmd.Flags().StringP("format", "f", defaults.Format, "Output format (markdown or json)")
}

func getMetadataConfigFromFlags(cmd *cobra.Command) *MetadataConfig {
	config := NewMetadataConfig()
	if format, err := cmd.Flags().GetString("format"); err == nil {
		config.Format = format
	}
	return config
}

func printMetadataCmd(w io.Writer, registry *skills.Registry, config *MetadataConfig) error {
	content, err := metadata.NewGenerator(registry).Render(metadata.ParseFormat(config.Format))
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, content+"\n")
	return err
}
