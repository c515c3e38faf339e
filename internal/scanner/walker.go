package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"go.uber.org/zap/zapcore"

	"github.com/dbsmedya/extscan/internal/filter"
	"github.com/dbsmedya/extscan/internal/ignore"
	"github.com/dbsmedya/extscan/internal/logger"
	"github.com/dbsmedya/extscan/internal/throttle"
)

// dirJob is one pending directory.
type dirJob struct {
	path      string        // display path: the root joined with rel
	abs       string        // absolute path, used for ignore files
	rel       []string      // components relative to the root; empty for the root
	rules     *ignore.Rules // rules of the parent directory
	ancestors []os.FileInfo // this directory and its ancestors; only kept when following symlinks
}

// walker traverses one root with a fixed pool of workers.
type walker struct {
	root     string
	follow   bool
	workers  int
	filter   *filter.ExtensionFilter
	throttle *throttle.Throttle
	loader   *ignore.Loader
	emit     func(DiscoveredFile)
	logger   *logger.Logger
	queue    *dirQueue

	files           atomic.Int64
	dirs            atomic.Int64
	skipped         atomic.Int64
	ignored         atomic.Int64
	symlinksSkipped atomic.Int64
	cyclesCut       atomic.Int64
	panics          atomic.Int64

	rootErrOnce sync.Once
	rootErr     error
}

// run walks the root until the tree is exhausted or ctx is done. rootInfo is the
// already stat'ed root directory.
func (w *walker) run(ctx context.Context, rootInfo os.FileInfo) *RootStats {
	abs, err := filepath.Abs(w.root)
	if err != nil {
		return w.stats(&RootError{Root: w.root, Err: err})
	}

	rules, err := w.loader.Root(abs)
	if err != nil {
		// unreadable ignore files above the root only lose their own patterns
		w.logger.Debugw("Failed to read ignore rules above root", "error", err)
	}

	w.queue = newDirQueue()
	root := dirJob{
		path:  w.root,
		abs:   abs,
		rel:   []string{},
		rules: rules,
	}
	if w.follow {
		root.ancestors = []os.FileInfo{rootInfo}
	}
	w.queue.push(root)

	stop := context.AfterFunc(ctx, w.queue.close)
	defer stop()

	var wg sync.WaitGroup
	for i := 0; i < w.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w.work(ctx, id)
		}(i)
	}
	wg.Wait()

	return w.stats(w.rootErr)
}

func (w *walker) work(ctx context.Context, id int) {
	for {
		job, ok := w.queue.pop()
		if !ok {
			return
		}
		w.safeVisit(ctx, id, job)
		w.queue.done()
	}
}

// safeVisit isolates a failure while processing one directory so the worker, the
// queue accounting and the other workers keep going.
func (w *walker) safeVisit(ctx context.Context, id int, job dirJob) {
	defer func() {
		if r := recover(); r != nil {
			w.panics.Add(1)
			w.logger.WithWorker(id).Errorw("Recovered from walker failure",
				"dir", job.path,
				"panic", fmt.Sprint(r),
			)
		}
	}()
	w.visit(ctx, job)
}

func (w *walker) visit(ctx context.Context, job dirJob) {
	if ctx.Err() != nil {
		return
	}
	w.dirs.Add(1)

	rules, err := w.loader.Descend(job.rules, job.abs, job.rel)
	if err != nil {
		// unreadable ignore files only lose their own patterns
		w.logger.Debugw("Failed to read ignore rules", "dir", job.path, "error", err)
	}

	entries, err := os.ReadDir(job.abs)
	if err != nil {
		if len(job.rel) == 0 {
			w.rootErrOnce.Do(func() { w.rootErr = &RootError{Root: w.root, Err: err} })
			return
		}
		w.skip(job.path, err)
		// ReadDir returns what it read before the failure
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}
		w.entry(ctx, job, rules, entry)
	}
}

func (w *walker) entry(ctx context.Context, parent dirJob, rules *ignore.Rules, entry fs.DirEntry) {
	name := entry.Name()
	rel := append(parent.rel[:len(parent.rel):len(parent.rel)], name)
	path := filepath.Join(parent.path, name)
	abs := filepath.Join(parent.abs, name)
	typ := entry.Type()

	var (
		isDir, isRegular bool
		info             os.FileInfo
	)

	if typ&fs.ModeSymlink != 0 {
		if !w.follow {
			if rules.Match(rel, false) {
				w.ignored.Add(1)
				return
			}
			w.symlinksSkipped.Add(1)
			return
		}

		target, err := os.Stat(abs)
		if err != nil {
			w.skip(path, err)
			return
		}
		info = target
		isDir = target.IsDir()
		isRegular = target.Mode().IsRegular()
	} else {
		isDir = typ.IsDir()
		isRegular = typ.IsRegular()
	}

	if rules.Match(rel, isDir) {
		w.ignored.Add(1)
		return
	}

	switch {
	case isDir:
		child := dirJob{
			path:  path,
			abs:   abs,
			rel:   rel,
			rules: rules,
		}
		if w.follow {
			if info == nil {
				var err error
				if info, err = entry.Info(); err != nil {
					w.skip(path, err)
					return
				}
			}
			if loopsBack(parent.ancestors, info) {
				w.cyclesCut.Add(1)
				w.logger.Debugw("Not following symlink cycle", "path", path)
				return
			}
			child.ancestors = append(parent.ancestors[:len(parent.ancestors):len(parent.ancestors)], info)
		}
		w.queue.push(child)

	case isRegular:
		if !w.filter.Match(name) {
			return
		}
		w.fetch(ctx, path, abs)
	}
}

// fetch stats a matching file under a throttle permit and emits it.
func (w *walker) fetch(ctx context.Context, path, abs string) {
	var found *DiscoveredFile
	err := w.throttle.Do(ctx, func() error {
		info, err := os.Stat(abs)
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return fmt.Errorf("no longer a regular file")
		}
		found = &DiscoveredFile{
			Path:     path,
			Size:     info.Size(),
			Modified: info.ModTime(),
		}
		return nil
	})
	if err != nil {
		if ctx.Err() == nil {
			w.skip(path, err)
		}
		return
	}

	w.files.Add(1)
	w.emit(*found)
}

func (w *walker) skip(path string, err error) {
	w.skipped.Add(1)
	if !w.logger.Enabled(zapcore.DebugLevel) {
		return
	}
	w.logger.WithFields(map[string]interface{}{
		"path":  path,
		"error": err,
	}).Debug("Skipping entry")
}

func (w *walker) stats(rootErr error) *RootStats {
	return &RootStats{
		Root:            w.root,
		Files:           w.files.Load(),
		Dirs:            w.dirs.Load(),
		Skipped:         w.skipped.Load(),
		Ignored:         w.ignored.Load(),
		SymlinksSkipped: w.symlinksSkipped.Load(),
		CyclesCut:       w.cyclesCut.Load(),
		Panics:          w.panics.Load(),
		Err:             rootErr,
	}
}

// loopsBack reports whether dir is the same directory as one of its ancestors.
func loopsBack(ancestors []os.FileInfo, dir os.FileInfo) bool {
	for _, a := range ancestors {
		if os.SameFile(a, dir) {
			return true
		}
	}
	return false
}
