// Package security confines tool-supplied file paths to configured
// directories.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/a3tai/mcp-diarias/internal/errors"
)

// PathValidator provides security validation for file paths
type PathValidator struct {
	root string
}

// NewPathValidator creates a new path validator for the given directory
func NewPathValidator(root string) (*PathValidator, error) {
	if root == "" {
		return nil, fmt.Errorf("configured directory cannot be empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve configured directory: %w", err)
	}
	return &PathValidator{root: filepath.Clean(abs)}, nil
}

// Root returns the configured directory
func (v *PathValidator) Root() string {
	return v.root
}

// Resolve returns the absolute path for a caller-supplied path. Relative
// paths are taken relative to the configured directory; the result must
// stay inside it after symlinks are resolved.
func (v *PathValidator) Resolve(path string) (string, error) {
	path = strings.ReplaceAll(path, "\x00", "")
	if strings.TrimSpace(path) == "" {
		return "", errors.New(errors.ErrorTypeUnsupportedInput, "Informe o caminho do arquivo.")
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(v.root, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrorTypeUnsupportedInput, "Caminho de arquivo inválido.", err)
	}

	within, err := v.Contains(abs)
	if err != nil {
		return "", errors.Wrap(errors.ErrorTypeUnsupportedInput, "Caminho de arquivo inválido.", err)
	}
	if !within {
		return "", errors.New(errors.ErrorTypeUnsupportedInput,
			"O arquivo deve estar dentro do diretório configurado.").WithContext(abs)
	}
	return abs, nil
}

// Contains reports whether path lies within the configured directory, both
// lexically and after resolving symlinks of the parts that exist
func (v *PathValidator) Contains(path string) (bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}
	clean := filepath.Clean(abs)

	if !within(v.root, clean) {
		return false, nil
	}

	realRoot := v.root
	if resolved, err := filepath.EvalSymlinks(v.root); err == nil {
		realRoot = resolved
	}
	realPath, err := evalExisting(clean)
	if err != nil {
		return false, err
	}
	return within(realRoot, realPath), nil
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// evalExisting resolves symlinks in the longest existing prefix of path and
// appends the missing remainder unchanged
func evalExisting(path string) (string, error) {
	var rest []string
	cur := path
	for {
		if _, err := os.Lstat(cur); err == nil {
			resolved, err := filepath.EvalSymlinks(cur)
			if err != nil {
				return "", fmt.Errorf("failed to resolve symlinks: %w", err)
			}
			for i := len(rest) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, rest[i])
			}
			return resolved, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return path, nil
		}
		rest = append(rest, filepath.Base(cur))
		cur = parent
	}
}
