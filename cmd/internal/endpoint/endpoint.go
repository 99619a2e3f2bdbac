package endpoint

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const pipePrefix = `\\.\pipe\`

// IsPipeName reports whether name addresses the Windows local pipe
// namespace rather than the filesystem.
func IsPipeName(name string) bool {
	return strings.HasPrefix(name, pipePrefix)
}

// Normalize validates an endpoint name and returns its canonical form.
// Pipe-namespace names pass through unchanged; filesystem paths are made
// absolute and must sit in an existing directory.
func Normalize(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("endpoint name is empty")
	}
	if IsPipeName(name) {
		if len(name) == len(pipePrefix) {
			return "", fmt.Errorf("missing pipe name after %s", pipePrefix)
		}
		return name, nil
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return "", err
	}
	parent := filepath.Dir(abs)
	info, err := os.Stat(parent)
	if err != nil {
		return "", fmt.Errorf("endpoint directory %s: %w", parent, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("endpoint parent %s is not a directory", parent)
	}
	return abs, nil
}
