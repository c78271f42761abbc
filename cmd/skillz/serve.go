package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/jingkaihe/skillz/pkg/disclosure"
	"github.com/jingkaihe/skillz/pkg/logger"
	"github.com/jingkaihe/skillz/pkg/mcp/host"
	"github.com/jingkaihe/skillz/pkg/presenter"
	"github.com/jingkaihe/skillz/pkg/skills"
	"github.com/jingkaihe/skillz/pkg/telemetry"
	"github.com/jingkaihe/skillz/pkg/version"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type ServeConfig struct {
	Transport   string
	Addr        string
	BaseURL     string
	MaxFileSize int64
}

func NewServeConfig() *ServeConfig {
	return &ServeConfig{
		Transport:   "stdio",
		Addr:        "127.0.0.1:8000",
		BaseURL:     "",
		MaxFileSize: defaultMaxFileSize,
	}
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the skills MCP server",
	Long: `Start an MCP (Model Context Protocol) server exposing the load_skill,
read_skill_file and list_skill_files tools. The skill metadata summary is sent
as the server instructions and published as the skills://metadata resource.

With --transport stdio (the default) the protocol runs over stdin/stdout and
logs go to stderr. With --transport sse the server listens on --addr and also
answers /healthz and /metadata.`,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		config := getServeConfigFromFlags(cmd)
		if err := runServeCommand(ctx, config); err != nil {
			presenter.Error(err, "skills server failed")
			os.Exit(1)
		}
	},
}

func init() {
	defaults := NewServeConfig()
	serveCmd.Flags().String("transport", defaults.Transport, "Transport to serve on (stdio or sse)")
	serveCmd.Flags().String("addr", defaults.Addr, "Listen address for the sse transport")
	serveCmd.Flags().String("base-url", defaults.BaseURL, "Public base URL advertised by the sse transport")
	serveCmd.Flags().Int64("max-file-size", defaults.MaxFileSize, "Largest skill file read_skill_file will return, in bytes")

	bindFlags(serveCmd.Flags(), map[string]string{
		"serve.transport":      "transport",
		"serve.addr":           "addr",
		"serve.base_url":       "base-url",
		"skills.max_file_size": "max-file-size",
	})
}

func getServeConfigFromFlags(_ *cobra.Command) *ServeConfig {
	config := NewServeConfig()

	// flags are bound to viper, so this covers flags, env and config file
	if transport := viper.GetString("serve.transport"); transport != "" {
		config.Transport = transport
	}
	if addr := viper.GetString("serve.addr"); addr != "" {
		config.Addr = addr
	}
	config.BaseURL = viper.GetString("serve.base_url")
	// zero is a valid setting that disables the limit
	if viper.IsSet("skills.max_file_size") {
		config.MaxFileSize = viper.GetInt64("skills.max_file_size")
	}

	return config
}

func validateServeConfig(config *ServeConfig) error {
	if config.MaxFileSize < 0 {
		return errors.New("max file size cannot be negative")
	}

	switch config.Transport {
	case "stdio":
		return nil
	case "sse":
	default:
		return errors.Errorf("unsupported transport %q: must be stdio or sse", config.Transport)
	}

	if config.Addr == "" {
		return errors.New("addr cannot be empty for the sse transport")
	}
	if _, _, err := net.SplitHostPort(config.Addr); err != nil {
		return errors.Wrapf(err, "invalid addr %q", config.Addr)
	}
	return nil
}

func runServeCommand(ctx context.Context, config *ServeConfig) error {
	if err := validateServeConfig(config); err != nil {
		return errors.Wrap(err, "invalid server configuration")
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdown, err := telemetry.InitTracer(ctx, telemetry.ConfigFromViper())
	if err != nil {
		return errors.Wrap(err, "failed to initialize tracing")
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.G(ctx).WithError(err).Warn("failed to shutdown tracer")
		}
	}()

	log := logger.G(ctx).WithField("transport", config.Transport)
	ctx = logger.WithLogger(ctx, log)

	registry, err := skills.Initialize(ctx, skills.ConfigFromViper())
	if err != nil {
		return err
	}
	svc := disclosure.New(registry,
		disclosure.WithLogger(log),
		disclosure.WithMaxFileSize(config.MaxFileSize),
	)

	srv, err := host.New("skillz", version.Version, svc, log)
	if err != nil {
		return err
	}

	if config.Transport == "sse" {
		return srv.ServeSSE(ctx, config.Addr, config.BaseURL)
	}
	return srv.ServeStdio(ctx, os.Stdin, os.Stdout)
}
