package scanner

import (
	"fmt"
	"os"
	"path/filepath"
)

// RootCheck is the result of checking one root before a scan.
type RootCheck struct {
	Root    string
	Abs     string
	Symlink bool // the root path itself is a symlink
	Info    os.FileInfo
	Err     error // nil when the root can be scanned
}

// OK reports whether the root can be scanned.
func (c RootCheck) OK() bool {
	return c.Err == nil
}

// CheckRoot verifies that root exists, is a directory (after following a symlink
// at the root itself) and can be opened for reading. Any failure is a *RootError.
func CheckRoot(root string) RootCheck {
	check := RootCheck{Root: root}

	abs, err := filepath.Abs(root)
	if err != nil {
		check.Err = &RootError{Root: root, Err: err}
		return check
	}
	check.Abs = abs

	if li, err := os.Lstat(root); err == nil {
		check.Symlink = li.Mode()&os.ModeSymlink != 0
	}

	info, err := os.Stat(root)
	if err != nil {
		check.Err = &RootError{Root: root, Err: err}
		return check
	}
	check.Info = info

	if !info.IsDir() {
		check.Err = &RootError{Root: root, Err: ErrNotDirectory}
		return check
	}

	f, err := os.Open(root)
	if err != nil {
		check.Err = &RootError{Root: root, Err: err}
		return check
	}
	if err := f.Close(); err != nil {
		check.Err = &RootError{Root: root, Err: fmt.Errorf("close: %w", err)}
	}
	return check
}

// Preflight checks every root, in order.
func Preflight(roots []string) []RootCheck {
	checks := make([]RootCheck, len(roots))
	for i, root := range roots {
		checks[i] = CheckRoot(root)
	}
	return checks
}
