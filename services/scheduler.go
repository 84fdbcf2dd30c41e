package services

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultDrawInterval is the auto-draw cadence when none is configured.
const DefaultDrawInterval = time.Second

// AutoDraw is the single cancellable repeating timer behind automatic
// draws. At most one run is active at a time; a run cancels itself when a
// tick reports the game is over. Stopping only prevents future ticks, a
// tick already in progress finishes on its own.
type AutoDraw struct {
	clock  clockwork.Clock
	period time.Duration

	mu   sync.Mutex
	stop chan struct{}
}

func NewAutoDraw(clock clockwork.Clock, period time.Duration) *AutoDraw {
	if period <= 0 {
		period = DefaultDrawInterval
	}
	return &AutoDraw{clock: clock, period: period}
}

// Start begins invoking tick once per period. tick returns true when
// drawing should end, at which point the run cancels itself. Returns false
// when a run is already active.
func (a *AutoDraw) Start(tick func() bool) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stop != nil {
		return false
	}
	stop := make(chan struct{})
	a.stop = stop
	go a.run(stop, tick)
	return true
}

func (a *AutoDraw) run(stop chan struct{}, tick func() bool) {
	t := a.clock.NewTicker(a.period)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.Chan():
			if tick() {
				a.finish(stop)
				return
			}
		}
	}
}

// finish clears the running marker after a terminal tick, unless Stop
// already replaced or cleared it.
func (a *AutoDraw) finish(stop chan struct{}) {
	a.mu.Lock()
	if a.stop == stop {
		a.stop = nil
	}
	a.mu.Unlock()
}

// Stop cancels the active run, if any. Idempotent.
func (a *AutoDraw) Stop() {
	a.mu.Lock()
	if a.stop != nil {
		close(a.stop)
		a.stop = nil
	}
	a.mu.Unlock()
}

// Running reports whether a run is active.
func (a *AutoDraw) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stop != nil
}
