package scanner

import (
	"context"
	"time"

	"github.com/dbsmedya/extscan/internal/logger"
)

// ProgressMonitor periodically logs how many files a running scan has collected.
type ProgressMonitor struct {
	interval time.Duration
	count    func() int64
	logger   *logger.Logger
}

// NewProgressMonitor returns a monitor reading count every interval. A
// non-positive interval yields a disabled monitor.
func NewProgressMonitor(interval time.Duration, count func() int64, log *logger.Logger) *ProgressMonitor {
	if log == nil {
		log = logger.NewDefault()
	}
	return &ProgressMonitor{
		interval: interval,
		count:    count,
		logger:   log,
	}
}

// Enabled reports whether Run will log anything.
func (m *ProgressMonitor) Enabled() bool {
	return m.interval > 0 && m.count != nil
}

// Run logs until ctx is done. It returns immediately when disabled.
func (m *ProgressMonitor) Run(ctx context.Context) {
	if !m.Enabled() {
		return
	}

	started := time.Now()
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.logger.Infow("Scan in progress",
				"files", m.count(),
				"elapsed", time.Since(started).Round(time.Millisecond),
			)
		}
	}
}
