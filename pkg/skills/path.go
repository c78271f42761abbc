package skills

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ValidatePath checks that rel is a relative path confined to a skill's
// directory and returns its normalized forward-slash form.
//
// Any ".." segment or absolute form is rejected with ErrPathTraversal before
// the filesystem is consulted, so a rejected path never reveals whether the
// target exists.
func ValidatePath(rel string) (string, error) {
	if strings.TrimSpace(rel) == "" {
		return "", errors.New("file path is required")
	}

	slashed := strings.ReplaceAll(rel, `\`, "/")
	if strings.HasPrefix(slashed, "/") || filepath.IsAbs(rel) || filepath.VolumeName(rel) != "" {
		return "", ErrPathTraversal
	}

	for _, segment := range strings.Split(slashed, "/") {
		if segment == ".." {
			return "", ErrPathTraversal
		}
	}

	cleaned := path.Clean(slashed)
	if cleaned == "." {
		return "", errors.New("file path must name a file")
	}
	return cleaned, nil
}

// SubdirectoryPrefix turns "references", "references/" or "./references//"
// into the listing prefix "references/". The prefix always ends with exactly
// one "/", so "references" matches "references/x.md" and never
// "references_old/x.md". An empty result means no filter.
func SubdirectoryPrefix(dir string) string {
	dir = strings.ReplaceAll(dir, `\`, "/")
	dir = strings.TrimPrefix(dir, "./")
	dir = strings.TrimRight(dir, "/")
	if dir == "" || dir == "." {
		return ""
	}
	return dir + "/"
}
