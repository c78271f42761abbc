// Package skills provides the skill registry behind progressive disclosure.
// Skills are packaged as directories containing a SKILL.md file with YAML
// frontmatter describing the skill's purpose, followed by the instructions
// body. Every other file in the directory is a resource the caller can list
// and read on demand.
package skills

import (
	"io/fs"
	"iter"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

const skillFileName = "SKILL.md"

// Metadata represents the YAML frontmatter in SKILL.md files
type Metadata struct {
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	// AllowedTools is advisory: nothing in this module enforces it.
	AllowedTools []string `mapstructure:"allowed-tools"`
	License      string   `mapstructure:"license"`
}

// Skill represents a loaded skill. A Skill is immutable after load and safe
// for concurrent use.
type Skill struct {
	Slug      string   // Unique lookup key
	Metadata  Metadata // Parsed frontmatter
	Directory string   // Full path to the skill directory

	ignore []string

	realDirOnce sync.Once
	realDir     string
}

// Description returns the frontmatter description.
func (s *Skill) Description() string {
	return s.Metadata.Description
}

// AllowedTools returns an ordered snapshot of the skill's allowed tools.
func (s *Skill) AllowedTools() []string {
	tools := make([]string, len(s.Metadata.AllowedTools))
	copy(tools, s.Metadata.AllowedTools)
	return tools
}

// ReadBody returns the SKILL.md instructions without the frontmatter. The
// file is read on every call so edits made after load are picked up, and a
// deleted file surfaces as a KindIO error.
func (s *Skill) ReadBody() (string, error) {
	content, err := os.ReadFile(filepath.Join(s.Directory, skillFileName))
	if err != nil {
		return "", &Error{Kind: KindIO, Skill: s.Slug, Err: err}
	}
	return extractBodyContent(string(content)), nil
}

// Exists reports whether rel names a regular file in the skill's resource tree.
func (s *Skill) Exists(rel string) bool {
	_, _, err := s.lookup(rel)
	return err == nil
}

// Size returns the size in bytes of the resource at rel.
func (s *Skill) Size(rel string) (int64, error) {
	_, info, err := s.lookup(rel)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// OpenBytes returns the raw content of the resource at rel.
func (s *Skill) OpenBytes(rel string) ([]byte, error) {
	full, _, err := s.lookup(rel)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fileNotFound(s.Slug, rel)
		}
		return nil, &Error{Kind: KindIO, Skill: s.Slug, Path: rel, Err: err}
	}
	return data, nil
}

// ResourcePaths lazily enumerates the skill's resource files as forward-slash
// paths relative to the skill directory. The root SKILL.md and ignored paths
// are excluded. Symlinks are followed while they resolve inside the skill, so
// every path listed here is readable through OpenBytes. Each call walks the
// directory afresh; order is not guaranteed.
func (s *Skill) ResourcePaths() iter.Seq[string] {
	return func(yield func(string) bool) {
		root := s.resolvedDir()
		s.walk(root, "", map[string]bool{root: true}, yield)
	}
}

// walk yields the resources under dir, prefixing each with rel. ancestors
// holds the resolved directories on the current branch so symlink cycles end.
func (s *Skill) walk(dir, rel string, ancestors map[string]bool, yield func(string) bool) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		// unreadable directories are left out of the listing
		return true
	}

	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		entryRel := path.Join(rel, entry.Name())

		info, err := os.Stat(full)
		if err != nil {
			continue
		}
		if entry.Type()&fs.ModeSymlink != 0 && !s.contains(full) {
			continue
		}

		if info.IsDir() {
			resolved, err := filepath.EvalSymlinks(full)
			if err != nil || ancestors[resolved] {
				continue
			}
			ancestors[resolved] = true
			more := s.walk(full, entryRel, ancestors, yield)
			delete(ancestors, resolved)
			if !more {
				return false
			}
			continue
		}

		if !info.Mode().IsRegular() || !s.isResource(entryRel) {
			continue
		}
		if !yield(entryRel) {
			return false
		}
	}
	return true
}

// lookup validates rel and resolves it to a regular file inside the skill.
func (s *Skill) lookup(rel string) (string, fs.FileInfo, error) {
	clean, err := ValidatePath(rel)
	if err != nil {
		return "", nil, &Error{Kind: KindInvalidInput, Skill: s.Slug, Path: rel, Err: err}
	}
	if !s.isResource(clean) {
		return "", nil, fileNotFound(s.Slug, rel)
	}

	full := filepath.Join(s.Directory, filepath.FromSlash(clean))
	info, err := os.Stat(full)
	if err != nil || !info.Mode().IsRegular() {
		return "", nil, fileNotFound(s.Slug, rel)
	}
	if !s.contains(full) {
		return "", nil, fileNotFound(s.Slug, rel)
	}
	return full, info, nil
}

func (s *Skill) isResource(rel string) bool {
	return rel != skillFileName && !s.ignored(rel)
}

func (s *Skill) ignored(rel string) bool {
	for _, pattern := range s.ignore {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// contains reports whether full, after resolving symlinks, stays inside the
// skill directory.
func (s *Skill) contains(full string) bool {
	resolved, err := filepath.EvalSymlinks(full)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(s.resolvedDir(), resolved)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

// resolvedDir returns the skill directory with symlinks resolved.
func (s *Skill) resolvedDir() string {
	s.realDirOnce.Do(func() {
		resolved, err := filepath.EvalSymlinks(s.Directory)
		if err != nil {
			resolved = s.Directory
		}
		s.realDir = resolved
	})
	return s.realDir
}

// extractBodyContent removes YAML frontmatter and returns the body
func extractBodyContent(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}

	lines := strings.Split(content, "\n")
	frontmatterEnd := -1

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			frontmatterEnd = i
			break
		}
	}

	if frontmatterEnd == -1 {
		return content
	}

	return strings.TrimLeft(strings.Join(lines[frontmatterEnd+1:], "\n"), "\n")
}
