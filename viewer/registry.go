package viewer

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"promoshow/media"
	"promoshow/utils"
)

// Seat is one viewer's carousel together with the notices raised for it.
type Seat struct {
	Screen *Screen
	Feed   *media.Feed

	lastUsed time.Time
}

// Registry keeps one Seat per viewer key. A seat is created and loaded on
// first use and closed once it has been idle for longer than Idle.
type Registry struct {
	NewSeat func() *Seat
	Idle    time.Duration
	Logger  *zap.Logger

	mu    sync.Mutex
	seats map[string]*Seat
	now   func() time.Time
}

// NewRegistry builds a registry. idle <= 0 keeps seats until Close.
func NewRegistry(newSeat func() *Seat, idle time.Duration, logger *zap.Logger) *Registry {
	return &Registry{
		NewSeat: newSeat,
		Idle:    idle,
		Logger:  utils.OrNop(logger),
		seats:   map[string]*Seat{},
		now:     time.Now,
	}
}

// Seat returns the seat for key, creating it and running its first load
// when the key has not been seen.
func (r *Registry) Seat(ctx context.Context, key string) *Seat {
	r.mu.Lock()
	now := r.now()
	r.evictLocked(now)
	seat, ok := r.seats[key]
	if !ok {
		seat = r.NewSeat()
		r.seats[key] = seat
	}
	seat.lastUsed = now
	r.mu.Unlock()

	if !ok {
		r.Logger.Debug("viewer seat opened", zap.String("key", key))
		if err := seat.Screen.Load(ctx); err != nil && !errors.Is(err, ErrClosed) {
			r.Logger.Warn("initial load failed", zap.String("key", key), zap.Error(err))
		}
	}
	return seat
}

// Lookup returns the seat for key without creating one.
func (r *Registry) Lookup(key string) (*Seat, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seat, ok := r.seats[key]
	return seat, ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seats)
}

// Sweep closes idle seats and returns how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.evictLocked(r.now())
}

// Close closes every seat.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, seat := range r.seats {
		seat.Screen.Close()
		delete(r.seats, key)
	}
}

func (r *Registry) evictLocked(now time.Time) int {
	if r.Idle <= 0 {
		return 0
	}
	removed := 0
	for key, seat := range r.seats {
		if now.Sub(seat.lastUsed) > r.Idle {
			seat.Screen.Close()
			delete(r.seats, key)
			removed++
		}
	}
	if removed > 0 {
		r.Logger.Debug("idle viewer seats closed", zap.Int("count", removed))
	}
	return removed
}
