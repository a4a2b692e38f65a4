// Package cleanup runs the periodic cache sweep.
package cleanup

import (
	"time"

	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/caching/manager"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/observability/logging"
)

// Worker sweeps expired cache entries on a fixed interval
type Worker struct {
	cacheManager *manager.Manager
	interval     time.Duration
	logger       *logging.ChanneledLogger
	stop         chan struct{}
	done         chan struct{}
}

// NewWorker creates a cleanup worker; Start must be called to run it
func NewWorker(cacheManager *manager.Manager, interval time.Duration, logger *logging.ChanneledLogger) *Worker {
	return &Worker{
		cacheManager: cacheManager,
		interval:     interval,
		logger:       logger,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Start launches the sweep loop in its own goroutine
func (w *Worker) Start() {
	go w.run()
}

func (w *Worker) run() {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed := w.cacheManager.PurgeExpired()
			if w.logger != nil {
				w.logger.Cache().Debug("Periodic cache sweep", "removed", removed)
			}
		case <-w.stop:
			return
		}
	}
}

// Stop terminates the sweep loop and waits for it to exit
func (w *Worker) Stop() {
	close(w.stop)
	<-w.done
}
