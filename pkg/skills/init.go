package skills

import (
	"context"
	"os"
	"path/filepath"

	"github.com/jingkaihe/skillz/pkg/logger"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config describes where skills come from and how they are filtered
type Config struct {
	Dir     string   `mapstructure:"dir"`
	Allowed []string `mapstructure:"allowed"`
	Ignore  []string `mapstructure:"ignore"`
}

// DefaultDir returns ~/.skillz, falling back to ./.skillz when the home
// directory cannot be determined.
func DefaultDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".skillz"
	}
	return filepath.Join(homeDir, ".skillz")
}

// ConfigFromViper reads skills_dir, skills.allowed and skills.ignore.
func ConfigFromViper() Config {
	cfg := Config{
		Dir:     viper.GetString("skills_dir"),
		Allowed: viper.GetStringSlice("skills.allowed"),
		Ignore:  viper.GetStringSlice("skills.ignore"),
	}
	if cfg.Dir == "" {
		cfg.Dir = DefaultDir()
	}
	return cfg
}

// Initialize loads the registry described by cfg using the logger carried by ctx.
func Initialize(ctx context.Context, cfg Config) (*Registry, error) {
	log := logger.G(ctx).WithField("skills_dir", cfg.Dir)

	registry, err := Load(cfg.Dir,
		WithLogger(log),
		WithAllowlist(cfg.Allowed...),
		WithIgnorePatterns(cfg.Ignore...),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load skills")
	}

	log.WithField("count", registry.Len()).Info("skills registry ready")
	return registry, nil
}
