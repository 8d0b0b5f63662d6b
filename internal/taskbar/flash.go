package taskbar

import "time"

// startFlashLocked begins the urgency flash toggle for a task. Starting an
// already-flashing task is a no-op. The timer goroutine re-resolves the task
// by window handle on every tick, so a tick racing a removal degrades to a
// no-op instead of touching freed state.
func (r *Registry) startFlashLocked(t *Task) {
	if t.flashStop != nil {
		return
	}
	stop := make(chan struct{})
	t.flashStop = stop

	w := t.window
	interval := r.settings.FlashInterval
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				r.flashTick(w, stop)
			}
		}
	}()
}

// stopFlashLocked cancels the flash timer and resets the visual phase. Safe
// to call on a task that is not flashing.
func (r *Registry) stopFlashLocked(t *Task) {
	if t.flashStop == nil {
		return
	}
	close(t.flashStop)
	t.flashStop = nil
	if t.flashOn {
		t.flashOn = false
		if r.observer != nil {
			r.observer.TaskFlash(t, false)
		}
	}
}

func (r *Registry) flashTick(w Window, stop chan struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[w]
	if !ok || t.flashStop != stop {
		// Cancelled or restarted between the tick firing and the lock.
		return
	}
	t.flashOn = !t.flashOn
	if r.observer != nil {
		r.observer.TaskFlash(t, t.flashOn)
	}
}
