// Package viewer tracks the loaded promotions and the one on display, and
// exposes the commands a promotions screen offers.
package viewer

import (
	"sync"

	"promoshow/models"
)

type State string

const (
	StateLoading State = "loading"
	StateEmpty   State = "empty"
	StateViewing State = "viewing"
)

type Direction int

const (
	Next Direction = iota
	Prev
)

// Generation identifies one started load. Only the newest generation's
// result is applied.
type Generation uint64

// Snapshot is a copy of the machine state.
type Snapshot struct {
	State   State              `json:"state"`
	Items   []models.Promotion `json:"items"`
	Index   int                `json:"index"`
	Current *models.Promotion  `json:"current,omitempty"`
}

// Machine is the carousel state. All methods are safe for concurrent use.
type Machine struct {
	mu     sync.Mutex
	state  State
	items  []models.Promotion
	index  int
	latest Generation
}

func NewMachine() *Machine {
	return &Machine{state: StateLoading}
}

// BeginLoad enters Loading and returns the generation the result must carry.
func (m *Machine) BeginLoad() Generation {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.latest++
	m.state = StateLoading
	return m.latest
}

// LoadSucceeded replaces the items and resets the index. It reports false
// and changes nothing when gen is not the newest load.
func (m *Machine) LoadSucceeded(gen Generation, items []models.Promotion) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.latest {
		return false
	}
	m.items = append([]models.Promotion(nil), items...)
	m.index = 0
	if len(m.items) == 0 {
		m.state = StateEmpty
	} else {
		m.state = StateViewing
	}
	return true
}

// LoadFailed resolves to Empty. No partial list is kept.
func (m *Machine) LoadFailed(gen Generation) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.latest {
		return false
	}
	m.items = nil
	m.index = 0
	m.state = StateEmpty
	return true
}

// Advance moves circularly through the items. It is a no-op unless Viewing.
func (m *Machine) Advance(dir Direction) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateViewing || len(m.items) == 0 {
		return
	}
	n := len(m.items)
	switch dir {
	case Next:
		m.index = (m.index + 1) % n
	case Prev:
		m.index = (m.index - 1 + n) % n
	}
}

// Tap maps a tap at horizontal position x in a viewport of the given width:
// the right half goes forward, the left half back.
func (m *Machine) Tap(x, width float64) {
	if width <= 0 {
		return
	}
	if x > width/2 {
		m.Advance(Next)
		return
	}
	m.Advance(Prev)
}

// Current returns the promotion on display, if any.
func (m *Machine) Current() (models.Promotion, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateViewing {
		return models.Promotion{}, false
	}
	return m.items[m.index], true
}

func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		State: m.state,
		Items: append([]models.Promotion{}, m.items...),
		Index: m.index,
	}
	if m.state == StateViewing {
		current := m.items[m.index]
		s.Current = &current
	}
	return s
}
