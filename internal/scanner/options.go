package scanner

import (
	"runtime"
	"time"

	"github.com/dbsmedya/extscan/internal/ignore"
)

// DefaultRoot is scanned when no root is configured.
const DefaultRoot = "."

// Options configures a scan. Call Normalize to fill in defaults.
type Options struct {
	Roots            []string
	Extensions       []string
	Concurrency      int // admission throttle capacity; 0 selects DefaultConcurrency
	Workers          int // walker goroutines per root; 0 selects DefaultWorkers
	FollowSymlinks   bool
	Ignore           ignore.Options
	ProgressInterval time.Duration // 0 disables progress logging
}

// DefaultConcurrency is four metadata fetches per CPU.
func DefaultConcurrency() int {
	return runtime.NumCPU() * 4
}

// DefaultWorkers is one walker goroutine per CPU.
func DefaultWorkers() int {
	return runtime.NumCPU()
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Roots:      []string{DefaultRoot},
		Extensions: []string{"rar"},
		Ignore:     ignore.DefaultOptions(),
	}.Normalize()
}

// Normalize returns a copy of o with defaults applied: the current directory when
// no root is given, environment-derived concurrency and worker counts when unset,
// and a floor of 1 for both.
func (o Options) Normalize() Options {
	if len(o.Roots) == 0 {
		o.Roots = []string{DefaultRoot}
	} else {
		o.Roots = append([]string(nil), o.Roots...)
	}

	switch {
	case o.Concurrency == 0:
		o.Concurrency = DefaultConcurrency()
	case o.Concurrency < 0:
		o.Concurrency = 1
	}

	switch {
	case o.Workers == 0:
		o.Workers = DefaultWorkers()
	case o.Workers < 0:
		o.Workers = 1
	}

	if o.ProgressInterval < 0 {
		o.ProgressInterval = 0
	}
	return o
}
