package skills

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"unicode"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gobwas/glob"
	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

type options struct {
	log     *logrus.Entry
	ignore  []string
	allowed []glob.Glob
}

// Option configures loading and the resulting Registry
type Option func(*options) error

// WithLogger sets the logger used for load and lookup events
func WithLogger(log *logrus.Entry) Option {
	return func(o *options) error {
		if log != nil {
			o.log = log
		}
		return nil
	}
}

// WithIgnorePatterns excludes resource paths matching any of the doublestar
// patterns (e.g. ".git/**", "**/__pycache__/**")
func WithIgnorePatterns(patterns ...string) Option {
	return func(o *options) error {
		for _, p := range patterns {
			if !doublestar.ValidatePattern(p) {
				return errors.Errorf("invalid ignore pattern '%s'", p)
			}
		}
		o.ignore = append(o.ignore, patterns...)
		return nil
	}
}

// WithAllowlist keeps only skills whose slug matches one of the glob patterns.
// An empty allowlist keeps every skill.
func WithAllowlist(patterns ...string) Option {
	return func(o *options) error {
		for _, p := range patterns {
			g, err := glob.Compile(p)
			if err != nil {
				return errors.Wrapf(err, "invalid allowlist pattern '%s'", p)
			}
			o.allowed = append(o.allowed, g)
		}
		return nil
	}
}

func newOptions(opts ...Option) (*options, error) {
	o := &options{log: discardLogger()}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *options) isAllowed(slug string) bool {
	if len(o.allowed) == 0 {
		return true
	}
	for _, g := range o.allowed {
		if g.Match(slug) {
			return true
		}
	}
	return false
}

// Load scans root for skill directories and builds a Registry. Every
// immediate subdirectory (or symlink to one) holding a SKILL.md is a skill;
// other entries are ignored. Any structural problem fails the whole load and
// all problems found are reported together.
func Load(root string, opts ...Option) (*Registry, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read skills directory %s", root)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("skills path %s is not a directory", root)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read skills directory %s", root)
	}

	var (
		loaded []*Skill
		result *multierror.Error
		seen   = make(map[string]string)
	)

	for _, entry := range entries {
		entryPath := filepath.Join(root, entry.Name())

		info, err := os.Stat(entryPath)
		if err != nil || !info.IsDir() {
			continue
		}

		skillPath := filepath.Join(entryPath, skillFileName)
		if _, err := os.Stat(skillPath); err != nil {
			o.log.WithField("dir", entryPath).Debug("skipping directory without SKILL.md")
			continue
		}

		skill, err := loadSkill(entryPath)
		if err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "invalid skill in %s", entryPath))
			continue
		}

		if prev, exists := seen[skill.Slug]; exists {
			result = multierror.Append(result, errors.Errorf("duplicate skill '%s' in %s and %s", skill.Slug, prev, entryPath))
			continue
		}
		seen[skill.Slug] = entryPath

		if !o.isAllowed(skill.Slug) {
			o.log.WithField("skill", skill.Slug).Debug("skill filtered out by allowlist")
			continue
		}

		skill.ignore = o.ignore
		loaded = append(loaded, skill)
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	registry, err := NewRegistry(loaded, opts...)
	if err != nil {
		return nil, err
	}
	registry.root = root

	for _, skill := range registry.Skills() {
		o.log.WithField("skill", skill.Slug).Info("loaded skill")
	}

	return registry, nil
}

// loadSkill loads a single skill from its directory
func loadSkill(dir string) (*Skill, error) {
	content, err := os.ReadFile(filepath.Join(dir, skillFileName))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read skill file")
	}

	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)
	pctx := parser.NewContext()
	md.Parser().Parse(text.NewReader(content), parser.WithContext(pctx))

	metaData, err := meta.TryGet(pctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse frontmatter")
	}
	if len(metaData) == 0 {
		return nil, errors.New("missing frontmatter")
	}

	metadata, err := decodeMetadata(metaData)
	if err != nil {
		return nil, err
	}

	if metadata.Description == "" {
		return nil, errors.New("skill description is required in frontmatter")
	}

	slug := metadata.Name
	if slug == "" {
		slug = filepath.Base(dir)
	}
	if err := validateSlug(slug); err != nil {
		return nil, err
	}

	return &Skill{
		Slug:      slug,
		Metadata:  metadata,
		Directory: dir,
	}, nil
}

func decodeMetadata(raw map[string]any) (Metadata, error) {
	var md Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       toolListHook,
		WeaklyTypedInput: true,
		Result:           &md,
	})
	if err != nil {
		return md, errors.Wrap(err, "failed to create metadata decoder")
	}
	if err := decoder.Decode(raw); err != nil {
		return md, errors.Wrap(err, "failed to decode frontmatter")
	}

	md.Name = strings.TrimSpace(md.Name)
	md.Description = strings.TrimSpace(md.Description)
	md.AllowedTools = dedupe(md.AllowedTools)
	return md, nil
}

// toolListHook accepts allowed-tools either as a YAML list or as a single
// space or comma separated string.
func toolListHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf([]string{}) {
		return data, nil
	}
	return strings.FieldsFunc(data.(string), func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	}), nil
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func validateSlug(slug string) error {
	switch {
	case strings.ContainsAny(slug, `/\`):
		return errors.Errorf("skill name '%s' must not contain path separators", slug)
	case strings.Contains(slug, ".."):
		return errors.Errorf("skill name '%s' must not contain '..'", slug)
	case strings.IndexFunc(slug, unicode.IsSpace) >= 0:
		return errors.Errorf("skill name '%s' must not contain whitespace", slug)
	}
	return nil
}
