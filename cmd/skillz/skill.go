package main

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/jingkaihe/skillz/pkg/disclosure"
	"github.com/jingkaihe/skillz/pkg/logger"
	"github.com/jingkaihe/skillz/pkg/presenter"
	"github.com/jingkaihe/skillz/pkg/skills"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultMaxFileSize int64 = 10 << 20

// newService loads the registry from viper configuration and wraps it in
// the disclosure service used by every command.
func newService(ctx context.Context) (*disclosure.Service, error) {
	registry, err := skills.Initialize(ctx, skills.ConfigFromViper())
	if err != nil {
		return nil, err
	}

	return disclosure.New(registry,
		disclosure.WithLogger(logger.G(ctx)),
		disclosure.WithMaxFileSize(viper.GetInt64("skills.max_file_size")),
	), nil
}

type SkillReadConfig struct {
	Decode bool
}

func NewSkillReadConfig() *SkillReadConfig {
	return &SkillReadConfig{
		Decode: false,
	}
}

type SkillFilesConfig struct {
	Subdirectory string
}

func NewSkillFilesConfig() *SkillFilesConfig {
	return &SkillFilesConfig{
		Subdirectory: "",
	}
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available skills",
	Long:  `List all available skills with their names, descriptions, and directory paths.`,
	Run: func(cmd *cobra.Command, _ []string) {
		svc := mustService(cmd.Context())
		listSkillsCmd(presenter.New(), svc.Registry())
	},
}

var loadCmd = &cobra.Command{
	Use:   "load <skill-name>",
	Short: "Print a skill's instructions",
	Long:  `Print the body of a skill's SKILL.md with the frontmatter removed.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := mustService(cmd.Context())
		exitOnError(loadSkillCmd(os.Stdout, svc, args[0]), "failed to load skill")
	},
}

var readCmd = &cobra.Command{
	Use:   "read <skill-name> <file-path>",
	Short: "Print a file from a skill's directory",
	Long: `Print a file from a skill's directory. The path is relative to the skill
directory. Binary files are printed base64 encoded unless --decode is set.

Examples:
  skillz read pdf references/forms.md
  skillz read pdf assets/logo.png --decode > logo.png`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		config := getSkillReadConfigFromFlags(cmd)
		svc := mustService(cmd.Context())
		exitOnError(readSkillFileCmd(os.Stdout, svc, args[0], args[1], config), "failed to read skill file")
	},
}

var filesCmd = &cobra.Command{
	Use:   "files <skill-name>",
	Short: "List files in a skill's directory",
	Long: `List the resource files of a skill, optionally restricted to a subdirectory.

Examples:
  skillz files pdf
  skillz files pdf --subdir references`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config := getSkillFilesConfigFromFlags(cmd)
		svc := mustService(cmd.Context())
		exitOnError(listSkillFilesCmd(os.Stdout, svc, args[0], config), "failed to list skill files")
	},
}

func init() {
	readDefaults := NewSkillReadConfig()
	readCmd.Flags().Bool("decode", readDefaults.Decode, "Write binary files as raw bytes instead of base64")

	filesDefaults := NewSkillFilesConfig()
	filesCmd.Flags().StringP("subdir", "s", filesDefaults.Subdirectory, "Only list files under this subdirectory")
}

func getSkillReadConfigFromFlags(cmd *cobra.Command) *SkillReadConfig {
	config := NewSkillReadConfig()
	if decode, err := cmd.Flags().GetBool("decode"); err == nil {
		config.Decode = decode
	}
	return config
}

func getSkillFilesConfigFromFlags(cmd *cobra.Command) *SkillFilesConfig {
	config := NewSkillFilesConfig()
	if subdir, err := cmd.Flags().GetString("subdir"); err == nil {
		config.Subdirectory = subdir
	}
	return config
}

func mustService(ctx context.Context) *disclosure.Service {
	svc, err := newService(ctx)
	exitOnError(err, "failed to load skills")
	return svc
}

func exitOnError(err error, msg string) {
	if err == nil {
		return
	}
	presenter.Error(err, msg)
	os.Exit(1)
}

func listSkillsCmd(p *presenter.Presenter, registry *skills.Registry) {
	if registry.Len() == 0 {
		p.Info("No skills found in " + registry.Root())
		return
	}

	rows := make([][]string, 0, registry.Len())
	for _, skill := range registry.Skills() {
		rows = append(rows, []string{
			skill.Slug,
			truncate(skill.Description(), 60),
			strings.Join(skill.AllowedTools(), ","),
			skill.Directory,
		})
	}
	p.Table([]string{"NAME", "DESCRIPTION", "ALLOWED TOOLS", "DIRECTORY"}, rows)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func loadSkillCmd(w io.Writer, svc *disclosure.Service, name string) error {
	body, err := svc.LoadSkill(name)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, body)
	return err
}

func readSkillFileCmd(w io.Writer, svc *disclosure.Service, name, path string, config *SkillReadConfig) error {
	content, err := svc.ReadSkillFile(name, path)
	if err != nil {
		return err
	}

	if !config.Decode {
		_, err = io.WriteString(w, content)
		return err
	}

	data, _, err := disclosure.DecodeContent(content)
	if err != nil {
		return errors.Wrap(err, "failed to decode binary content")
	}
	_, err = w.Write(data)
	return err
}

func listSkillFilesCmd(w io.Writer, svc *disclosure.Service, name string, config *SkillFilesConfig) error {
	listing, err := svc.ListSkillFiles(name, config.Subdirectory)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, listing+"\n")
	return err
}
