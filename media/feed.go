package media

import (
	"sync"
	"time"
)

// FeedEntry is a notice with the time it was raised.
type FeedEntry struct {
	Notice
	At time.Time `json:"at"`
}

// Feed keeps the most recent notices so a polling client can show them,
// and forwards each one to Next when set.
type Feed struct {
	Max  int
	Next Notifier

	mu      sync.Mutex
	entries []FeedEntry
	now     func() time.Time
}

func NewFeed(size int, next Notifier) *Feed {
	if size <= 0 {
		size = 20
	}
	return &Feed{Max: size, Next: next, now: time.Now}
}

func (f *Feed) Notify(n Notice) {
	f.mu.Lock()
	f.entries = append(f.entries, FeedEntry{Notice: n, At: f.now()})
	if over := len(f.entries) - f.Max; over > 0 {
		f.entries = append([]FeedEntry(nil), f.entries[over:]...)
	}
	f.mu.Unlock()

	if f.Next != nil {
		f.Next.Notify(n)
	}
}

// Recent returns the kept notices, newest last.
func (f *Feed) Recent() []FeedEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FeedEntry{}, f.entries...)
}

// Since returns notices raised after t.
func (f *Feed) Since(t time.Time) []FeedEntry {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []FeedEntry{}
	for _, e := range f.entries {
		if e.At.After(t) {
			out = append(out, e)
		}
	}
	return out
}
