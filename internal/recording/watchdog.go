package recording

import "sync/atomic"

// Watchdog is a heartbeat counter the Controller bumps once per command it
// processes (original_source/Crucible/WatchdogInfo.h). Forge polls the
// equivalent shared struct to detect a wedged CH process; that consumer
// side is out of this repo's scope (Forge is an external collaborator),
// but the producer side is implemented here and tested.
type Watchdog struct {
	beats atomic.Uint64
}

// Bump increments the heartbeat counter. Safe for concurrent use.
func (w *Watchdog) Bump() {
	w.beats.Add(1)
}

// Beats reports the current heartbeat count.
func (w *Watchdog) Beats() uint64 {
	return w.beats.Load()
}
