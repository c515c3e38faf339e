package scanner

import (
	"errors"
	"fmt"
	"time"

	"github.com/elliotchance/orderedmap/v2"
)

// ErrNotDirectory is wrapped by a RootError when a configured root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// DiscoveredFile is one matching regular file. Modified is the zero time when the
// filesystem did not report a modification time.
type DiscoveredFile struct {
	Path     string
	Size     int64
	Modified time.Time
}

// HasModified reports whether a modification time is known.
func (f DiscoveredFile) HasModified() bool {
	return !f.Modified.IsZero()
}

// RootError records a root that could not be scanned at all.
type RootError struct {
	Root string
	Err  error
}

func (e *RootError) Error() string {
	return fmt.Sprintf("root %s: %v", e.Root, e.Err)
}

func (e *RootError) Unwrap() error {
	return e.Err
}

// RootStats summarizes the traversal of one root.
type RootStats struct {
	Root            string
	Files           int64 // records emitted
	Dirs            int64 // directories read
	Skipped         int64 // entries dropped because of an error
	Ignored         int64 // entries excluded by ignore rules
	SymlinksSkipped int64 // symlinks left unfollowed
	CyclesCut       int64 // symlinked directories not entered because they loop
	Panics          int64 // recovered worker failures
	Err             error // non-nil when the root could not be opened
}

// Failed reports whether the root contributed nothing because it could not be opened.
func (s *RootStats) Failed() bool {
	return s.Err != nil
}

func (s *RootStats) merge(o *RootStats) {
	s.Files += o.Files
	s.Dirs += o.Dirs
	s.Skipped += o.Skipped
	s.Ignored += o.Ignored
	s.SymlinksSkipped += o.SymlinksSkipped
	s.CyclesCut += o.CyclesCut
	s.Panics += o.Panics
	if s.Err == nil {
		s.Err = o.Err
	}
}

// Result is the outcome of one scan. Files are in discovery order, which is
// unspecified; sort before presenting.
type Result struct {
	Files    []DiscoveredFile
	Roots    *orderedmap.OrderedMap[string, *RootStats] // configured root order
	Duration time.Duration
}

// FailedRoots returns the stats of roots that could not be opened.
func (r *Result) FailedRoots() []*RootStats {
	var failed []*RootStats
	for el := r.Roots.Front(); el != nil; el = el.Next() {
		if el.Value.Failed() {
			failed = append(failed, el.Value)
		}
	}
	return failed
}

// AllRootsFailed reports whether no root could be opened.
func (r *Result) AllRootsFailed() bool {
	return r.Roots.Len() > 0 && len(r.FailedRoots()) == r.Roots.Len()
}

// Skipped returns the number of entries dropped because of errors, over all roots.
func (r *Result) Skipped() int64 {
	var n int64
	for el := r.Roots.Front(); el != nil; el = el.Next() {
		n += el.Value.Skipped
	}
	return n
}

// TotalSize returns the sum of all file sizes.
func (r *Result) TotalSize() int64 {
	var n int64
	for _, f := range r.Files {
		n += f.Size
	}
	return n
}
