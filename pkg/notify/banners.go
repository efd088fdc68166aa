package notify

import (
	"sync"
	"time"
)

// Timer is the subset of *time.Timer used by Banners.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules fn after d. It matches time.AfterFunc.
type AfterFunc func(d time.Duration, fn func()) Timer

// Banners tracks visible notices and removes non-blocking ones after their
// DismissAfter delay. It implements Notifier.
type Banners struct {
	mu     sync.Mutex
	nextID int
	active []banner
	after  AfterFunc
}

type banner struct {
	id     int
	notice Notice
	timer  Timer
}

// NewBanners returns a board using time.AfterFunc for dismissal.
func NewBanners() *Banners {
	return NewBannersWithTimer(func(d time.Duration, fn func()) Timer {
		return time.AfterFunc(d, fn)
	})
}

// NewBannersWithTimer injects the scheduling function.
func NewBannersWithTimer(after AfterFunc) *Banners {
	return &Banners{after: after}
}

func (b *Banners) Notify(n Notice) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	entry := banner{id: b.nextID, notice: n}
	if !n.Blocking && n.DismissAfter > 0 && b.after != nil {
		id := entry.id
		entry.timer = b.after(n.DismissAfter, func() { b.dismiss(id) })
	}
	b.active = append(b.active, entry)
}

// Active returns currently visible notices in arrival order.
func (b *Banners) Active() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Notice, 0, len(b.active))
	for _, entry := range b.active {
		out = append(out, entry.notice)
	}
	return out
}

// Clear removes every notice and stops pending timers.
func (b *Banners) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, entry := range b.active {
		if entry.timer != nil {
			entry.timer.Stop()
		}
	}
	b.active = nil
}

func (b *Banners) dismiss(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for idx, entry := range b.active {
		if entry.id == id {
			b.active = append(b.active[:idx], b.active[idx+1:]...)
			return
		}
	}
}
