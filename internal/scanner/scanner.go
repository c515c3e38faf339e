// Package scanner discovers files with matching extensions under one or more roots.
//
// Every root is walked by its own pool of workers. All walkers share one admission
// throttle, which bounds concurrent metadata fetches, and one Collector, which
// aggregates the records of every root. Entry-level errors are counted and
// skipped; a root that cannot be opened is reported in its RootStats without
// affecting the other roots.
package scanner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/dbsmedya/extscan/internal/filter"
	"github.com/dbsmedya/extscan/internal/ignore"
	"github.com/dbsmedya/extscan/internal/logger"
	"github.com/dbsmedya/extscan/internal/throttle"
)

// Scanner runs scans for one set of options.
type Scanner struct {
	opts     Options
	filter   *filter.ExtensionFilter
	throttle *throttle.Throttle
	loader   *ignore.Loader
	logger   *logger.Logger
}

// New creates a Scanner. Options are normalized; ignore files are read from the
// host filesystem.
func New(opts Options, log *logger.Logger) (*Scanner, error) {
	opts = opts.Normalize()
	return NewWithLoader(opts, ignore.NewOSLoader(opts.Ignore), log)
}

// NewWithLoader creates a Scanner using a caller-provided ignore loader.
func NewWithLoader(opts Options, loader *ignore.Loader, log *logger.Logger) (*Scanner, error) {
	if loader == nil {
		return nil, fmt.Errorf("ignore loader is nil")
	}
	if log == nil {
		log = logger.NewDefault()
	}
	opts = opts.Normalize()

	f, err := filter.NewExtensionFilter(opts.Extensions...)
	if err != nil {
		return nil, fmt.Errorf("invalid extensions: %w", err)
	}

	for _, w := range loader.Warnings() {
		log.Warnw("Ignoring unreadable global ignore source", "error", w)
	}

	return &Scanner{
		opts:     opts,
		filter:   f,
		throttle: throttle.New(opts.Concurrency),
		loader:   loader,
		logger:   log,
	}, nil
}

// Options returns the normalized options.
func (s *Scanner) Options() Options {
	return s.opts
}

// Throttle returns the admission throttle shared by every walker.
func (s *Scanner) Throttle() *throttle.Throttle {
	return s.throttle
}

// Scan walks every root concurrently and returns the collected files. The scan
// runs to completion unless ctx is cancelled, in which case the partial result is
// returned together with ctx.Err().
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context is nil")
	}

	started := time.Now()
	collector := NewCollector()

	s.logger.Infow("Starting scan",
		"roots", s.opts.Roots,
		"extensions", s.filter.Extensions(),
		"concurrency", s.opts.Concurrency,
		"workers", s.opts.Workers,
		"follow_symlinks", s.opts.FollowSymlinks,
	)

	progressCtx, stopProgress := context.WithCancel(ctx)
	monitor := NewProgressMonitor(s.opts.ProgressInterval, collector.Received, s.logger)
	var progressDone sync.WaitGroup
	progressDone.Add(1)
	go func() {
		defer progressDone.Done()
		monitor.Run(progressCtx)
	}()

	stats := make([]*RootStats, len(s.opts.Roots))
	var wg sync.WaitGroup
	for i, root := range s.opts.Roots {
		wg.Add(1)
		go func(i int, root string) {
			defer wg.Done()
			stats[i] = s.scanRoot(ctx, root, collector.Emit)
		}(i, root)
	}

	// every producer is done once the roots are; only then may the input close
	wg.Wait()
	collector.Close()
	files := collector.Collect()

	stopProgress()
	progressDone.Wait()

	result := &Result{
		Files:    files,
		Roots:    orderedmap.NewOrderedMap[string, *RootStats](),
		Duration: time.Since(started),
	}
	for _, st := range stats {
		if existing, ok := result.Roots.Get(st.Root); ok {
			existing.merge(st)
			continue
		}
		result.Roots.Set(st.Root, st)
	}

	s.logger.Infow("Scan finished",
		"files", len(files),
		"skipped", result.Skipped(),
		"failed_roots", len(result.FailedRoots()),
		"duration", result.Duration,
	)

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// scanRoot runs one traversal unit. It never panics and always returns stats.
func (s *Scanner) scanRoot(ctx context.Context, root string, emit func(DiscoveredFile)) (stats *RootStats) {
	log := s.logger.WithRoot(root)

	defer func() {
		if r := recover(); r != nil {
			log.Errorw("Recovered from root failure", "panic", fmt.Sprint(r))
			if stats == nil {
				stats = &RootStats{Root: root}
			}
			stats.Panics++
		}
	}()

	check := CheckRoot(root)
	if !check.OK() {
		log.Warnw("Skipping root", "error", check.Err)
		return &RootStats{Root: root, Err: check.Err}
	}

	w := &walker{
		root:     root,
		follow:   s.opts.FollowSymlinks,
		workers:  s.opts.Workers,
		filter:   s.filter,
		throttle: s.throttle,
		loader:   s.loader,
		emit:     emit,
		logger:   log,
	}
	stats = w.run(ctx, check.Info)
	if stats.Err != nil {
		log.Warnw("Skipping root", "error", stats.Err)
	}

	log.Debugw("Root finished",
		"files", stats.Files,
		"dirs", stats.Dirs,
		"skipped", stats.Skipped,
		"ignored", stats.Ignored,
	)
	return stats
}
