// Package pathutil resolves script file names against a working directory.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RedactPath reduces a full path to .../<parent>/<basename> for error messages.
// For example, "/home/user/runs/lacI_ALL.csv" becomes ".../runs/lacI_ALL.csv".
func RedactPath(path string) string {
	if path == "" {
		return ""
	}
	cleaned := filepath.Clean(path)
	parent := filepath.Base(filepath.Dir(cleaned))
	base := filepath.Base(cleaned)
	if parent == "." || parent == string(filepath.Separator) {
		return base
	}
	return ".../" + parent + "/" + base
}

// CheckName rejects names that cannot be a relative file inside a directory:
// empty, absolute, containing a NUL byte or climbing out with "..".
func CheckName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("file name is empty")
	}
	if strings.ContainsRune(name, '\x00') {
		return fmt.Errorf("file name %q contains null byte", name)
	}
	if filepath.IsAbs(name) {
		return fmt.Errorf("file name %q must be relative", name)
	}
	cleaned := filepath.Clean(name)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return fmt.Errorf("file name %q escapes the working directory", name)
	}
	return nil
}

// Resolve joins name onto root and checks that the result, after resolving
// symlinks in the existing part of the path, still lies inside root.
func Resolve(root, name string) (string, error) {
	if err := CheckName(name); err != nil {
		return "", err
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}
	rootResolved, err := resolveExistingParent(rootAbs)
	if err != nil {
		return "", err
	}

	full := filepath.Join(rootAbs, name)
	dirResolved, err := resolveExistingParent(filepath.Dir(full))
	if err != nil {
		return "", err
	}
	if !isSubpath(filepath.Join(dirResolved, filepath.Base(full)), rootResolved) {
		return "", fmt.Errorf("%q resolves outside %s", name, RedactPath(rootAbs))
	}
	return full, nil
}

// resolveExistingParent resolves symlinks on the deepest existing ancestor of
// dir and re-appends the part that does not exist yet.
func resolveExistingParent(dir string) (string, error) {
	resolved, err := filepath.EvalSymlinks(dir)
	if err == nil {
		return resolved, nil
	}

	parent := filepath.Dir(dir)
	if parent == dir {
		return "", fmt.Errorf("cannot resolve path: %s", RedactPath(dir))
	}

	resolvedParent, err := resolveExistingParent(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedParent, filepath.Base(dir)), nil
}

// isSubpath checks whether path is equal to or below base.
func isSubpath(path, base string) bool {
	if path == base {
		return true
	}
	return strings.HasPrefix(path, base+string(os.PathSeparator))
}
