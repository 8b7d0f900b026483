package player

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/rdkcentral/rialto-go/internal/gstkit"
)

// busPollTimeout bounds each Bus.TimedPop call so the dispatcher notices
// Stop promptly instead of blocking indefinitely (spec.md §4.E "polls ...
// with a short timeout").
const busPollTimeout = 100 * time.Millisecond

// BusDispatcher is the second dedicated goroutine per session: it polls the
// framework's message bus and converts every message into a
// HandleBusMessage task on the Worker (spec.md §4.E).
type BusDispatcher struct {
	bus       gstkit.Bus
	factory   *TaskFactory
	scheduler Scheduler
	logger    *slog.Logger

	stop    atomic.Bool
	wg      conc.WaitGroup
	started sync.Once
}

// NewBusDispatcher returns a dispatcher reading from bus and posting tasks
// built by factory onto scheduler.
func NewBusDispatcher(bus gstkit.Bus, factory *TaskFactory, scheduler Scheduler, logger *slog.Logger) *BusDispatcher {
	return &BusDispatcher{
		bus:       bus,
		factory:   factory,
		scheduler: scheduler,
		logger:    logger.With("component", "player.bus_dispatcher"),
	}
}

// Start launches the poll loop. Safe to call once.
func (d *BusDispatcher) Start() {
	d.started.Do(func() {
		d.wg.Go(d.run)
	})
}

func (d *BusDispatcher) run() {
	if d.bus == nil {
		return
	}
	for !d.stop.Load() {
		msg, ok := d.bus.TimedPop(busPollTimeout)
		if !ok {
			continue
		}
		task := d.factory.CreateHandleBusMessage(msg)
		if err := d.scheduler.Enqueue(task); err != nil {
			d.logger.Debug("dispatch dropped: worker shut down", "err", err)
			return
		}
	}
}

// Stop signals the poll loop to exit and waits for it.
func (d *BusDispatcher) Stop() {
	d.stop.Store(true)
	d.wg.Wait()
}
