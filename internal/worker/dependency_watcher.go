package worker

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
)

// Pinger matches service.Pinger; redeclared to keep this package free of
// service imports.
type Pinger interface {
	Ping(ctx context.Context) error
}

// defaultWatchInterval replaces a non-positive interval.
const defaultWatchInterval = 30 * time.Second

// DependencyWatcher periodically pings every dependency and reports the
// outcome through a hook, so dependency_up stays fresh even when no probe
// traffic arrives.
type DependencyWatcher struct {
	deps     map[string]Pinger
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger
	report   func(dependency string, up bool)
}

func NewDependencyWatcher(
	deps map[string]Pinger,
	interval time.Duration,
	logger *zap.Logger,
	report func(dependency string, up bool),
) *DependencyWatcher {
	if report == nil {
		report = func(string, bool) {}
	}
	if interval <= 0 {
		interval = defaultWatchInterval
	}
	timeout := interval / 2
	if timeout <= 0 {
		timeout = time.Second
	}
	return &DependencyWatcher{deps: deps, interval: interval, timeout: timeout, logger: logger, report: report}
}

// Run checks once immediately, then every interval.
// Stops cleanly when ctx is cancelled.
func (dw *DependencyWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(dw.interval)
	defer ticker.Stop()

	dw.logger.Info("dependency watcher started", zap.Duration("interval", dw.interval))
	dw.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			dw.logger.Info("dependency watcher stopping")
			return
		case <-ticker.C:
			dw.poll(ctx)
		}
	}
}

func (dw *DependencyWatcher) poll(ctx context.Context) {
	names := make([]string, 0, len(dw.deps))
	for name := range dw.deps {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		checkCtx, cancel := context.WithTimeout(ctx, dw.timeout)
		err := dw.deps[name].Ping(checkCtx)
		cancel()

		if ctx.Err() != nil {
			return
		}
		dw.report(name, err == nil)
		if err != nil {
			dw.logger.Warn("dependency check failed", zap.String("dependency", name), zap.Error(err))
		}
	}
}
