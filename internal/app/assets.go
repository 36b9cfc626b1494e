package app

import (
	"os"
	"path/filepath"
)

// ResolveClientDir locates the static viewer bundle. It looks for a client
// directory next to, or one level above, the working directory and then the
// executable.
func ResolveClientDir() (string, bool) {
	if cwd, err := os.Getwd(); err == nil {
		if dir, ok := resolveClientDirFrom(cwd); ok {
			return dir, true
		}
	}
	if exePath, err := os.Executable(); err == nil {
		if dir, ok := resolveClientDirFrom(filepath.Dir(exePath)); ok {
			return dir, true
		}
	}
	return "", false
}

func resolveClientDirFrom(base string) (string, bool) {
	candidates := []string{
		filepath.Join(base, "client"),
		filepath.Join(base, "..", "client"),
	}
	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err != nil || !info.IsDir() {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		return abs, true
	}
	return "", false
}
