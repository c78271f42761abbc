// Package disclosure implements the three progressive-disclosure operations
// over a skills.Registry: loading a skill's instructions, reading one of its
// files and listing its files. The operations are transport independent and
// return plain text or a *skills.Error.
package disclosure

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/jingkaihe/skillz/pkg/skills"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// SummaryHint is attached to unknown-skill errors from LoadSkill.
const SummaryHint = "Available skills can be seen in your system prompt."

// Service answers disclosure queries against an immutable registry. It is
// safe for concurrent use.
type Service struct {
	registry    *skills.Registry
	log         *logrus.Entry
	maxFileSize int64
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the logger invoked on successful lookups and file reads
func WithLogger(log *logrus.Entry) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMaxFileSize rejects reads of files larger than n bytes. Zero disables the limit.
func WithMaxFileSize(n int64) Option {
	return func(s *Service) {
		s.maxFileSize = n
	}
}

// New creates a Service over registry
func New(registry *skills.Registry, opts ...Option) *Service {
	l := logrus.New()
	l.SetOutput(io.Discard)

	s := &Service{
		registry: registry,
		log:      logrus.NewEntry(l),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the registry the service reads from
func (s *Service) Registry() *skills.Registry {
	return s.registry
}

// LoadSkill returns the full instructions body of the named skill.
func (s *Service) LoadSkill(skillName string) (string, error) {
	skill, err := s.registry.Get(skillName)
	if err != nil {
		return "", withHint(err, SummaryHint)
	}

	body, err := skill.ReadBody()
	if err != nil {
		return "", err
	}

	s.log.WithField("skill", skillName).Info("loaded skill")
	return body, nil
}

// ReadSkillFile returns the content of filePath inside the named skill. Text
// comes back verbatim; anything that is not valid UTF-8 comes back as a
// binary envelope (see EncodeContent).
//
// Checks run in order and stop at the first failure: unknown skill,
// traversal or absolute path, missing file, size limit.
func (s *Service) ReadSkillFile(skillName, filePath string) (string, error) {
	skill, err := s.registry.Get(skillName)
	if err != nil {
		return "", err
	}

	if _, err := skills.ValidatePath(filePath); err != nil {
		return "", &skills.Error{Kind: skills.KindInvalidInput, Skill: skillName, Path: filePath, Err: err}
	}

	size, err := skill.Size(filePath)
	if err != nil {
		return "", err
	}
	if s.maxFileSize > 0 && size > s.maxFileSize {
		return "", &skills.Error{
			Kind:  skills.KindInvalidInput,
			Skill: skillName,
			Path:  filePath,
			Err:   errors.Errorf("file '%s' is %d bytes, larger than the %d byte limit", filePath, size, s.maxFileSize),
		}
	}

	data, err := skill.OpenBytes(filePath)
	if err != nil {
		return "", err
	}

	content, binary := EncodeContent(data)
	s.log.WithFields(logrus.Fields{
		"skill":  skillName,
		"path":   filePath,
		"binary": binary,
		"bytes":  len(data),
	}).Info("read skill file")

	return content, nil
}

// ListSkillPaths returns the sorted resource paths of the named skill,
// restricted to subdirectory when it is not empty.
func (s *Service) ListSkillPaths(skillName, subdirectory string) ([]string, error) {
	skill, err := s.registry.Get(skillName)
	if err != nil {
		return nil, err
	}

	prefix := skills.SubdirectoryPrefix(subdirectory)
	var paths []string
	for p := range skill.ResourcePaths() {
		if prefix == "" || strings.HasPrefix(p, prefix) {
			paths = append(paths, p)
		}
	}
	slices.Sort(paths)
	return paths, nil
}

// ListSkillFiles renders ListSkillPaths as text. An empty result is reported
// as a "No files found" message, not an error.
func (s *Service) ListSkillFiles(skillName, subdirectory string) (string, error) {
	paths, err := s.ListSkillPaths(skillName, subdirectory)
	if err != nil {
		return "", err
	}
	return FormatListing(skillName, subdirectory, paths), nil
}

// FormatListing renders a file listing for skillName.
func FormatListing(skillName, subdirectory string, paths []string) string {
	if len(paths) == 0 {
		if subdirectory != "" {
			return fmt.Sprintf("No files found in skill '%s' in subdirectory '%s'", skillName, subdirectory)
		}
		return fmt.Sprintf("No files found in skill '%s'", skillName)
	}

	var sb strings.Builder
	if subdirectory != "" {
		fmt.Fprintf(&sb, "Files in skill '%s' in '%s':", skillName, subdirectory)
	} else {
		fmt.Fprintf(&sb, "Files in skill '%s':", skillName)
	}
	for _, p := range paths {
		sb.WriteString("\n  - ")
		sb.WriteString(p)
	}
	return sb.String()
}

func withHint(err error, hint string) error {
	var se *skills.Error
	if !errors.As(err, &se) {
		return err
	}
	hinted := *se
	hinted.Hint = hint
	return &hinted
}
