package viewer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promoshow/models"
)

func promos(ids ...string) []models.Promotion {
	out := make([]models.Promotion, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Promotion{ID: id, URL: "https://cdn.test/" + id + ".jpg"})
	}
	return out
}

func loaded(items []models.Promotion) *Machine {
	m := NewMachine()
	m.LoadSucceeded(m.BeginLoad(), items)
	return m
}

func TestInitialStateIsLoading(t *testing.T) {
	m := NewMachine()
	s := m.Snapshot()
	assert.Equal(t, StateLoading, s.State)
	assert.Nil(t, s.Current)
}

func TestLoadEmptyYieldsEmpty(t *testing.T) {
	m := loaded(nil)
	assert.Equal(t, StateEmpty, m.Snapshot().State)

	m.Advance(Next)
	assert.Equal(t, StateEmpty, m.Snapshot().State)
	_, ok := m.Current()
	assert.False(t, ok)
}

func TestLoadFailureYieldsEmpty(t *testing.T) {
	m := loaded(promos("a", "b"))
	gen := m.BeginLoad()
	require.True(t, m.LoadFailed(gen))

	s := m.Snapshot()
	assert.Equal(t, StateEmpty, s.State)
	assert.Empty(t, s.Items)
}

func TestNextIsCircular(t *testing.T) {
	for n := 1; n <= 5; n++ {
		ids := make([]string, n)
		for i := range ids {
			ids[i] = fmt.Sprintf("p%d", i)
		}
		for start := 0; start < n; start++ {
			m := loaded(promos(ids...))
			for i := 0; i < start; i++ {
				m.Advance(Next)
			}
			require.Equal(t, start, m.Snapshot().Index)

			for i := 0; i < n; i++ {
				m.Advance(Next)
			}
			assert.Equal(t, start, m.Snapshot().Index, "n=%d start=%d", n, start)
		}
	}
}

func TestPrevInvertsNext(t *testing.T) {
	for n := 1; n <= 4; n++ {
		ids := make([]string, n)
		for i := range ids {
			ids[i] = fmt.Sprintf("p%d", i)
		}
		m := loaded(promos(ids...))
		for start := 0; start < n; start++ {
			before := m.Snapshot().Index
			m.Advance(Next)
			m.Advance(Prev)
			assert.Equal(t, before, m.Snapshot().Index)

			m.Advance(Prev)
			m.Advance(Next)
			assert.Equal(t, before, m.Snapshot().Index)
			m.Advance(Next)
		}
	}
}

func TestPrevWrapsToLast(t *testing.T) {
	m := loaded(promos("a", "b", "c"))
	m.Advance(Prev)
	cur, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, "c", cur.ID)
}

func TestTapRightWrapsScenario(t *testing.T) {
	m := loaded(promos("A", "B", "C"))
	require.Equal(t, 0, m.Snapshot().Index)

	for _, want := range []int{1, 2, 0} {
		m.Tap(300, 400)
		assert.Equal(t, want, m.Snapshot().Index)
	}
}

func TestTapHalves(t *testing.T) {
	m := loaded(promos("A", "B", "C"))

	m.Tap(200, 400) // exactly half goes back
	assert.Equal(t, 2, m.Snapshot().Index)

	m.Tap(201, 400)
	assert.Equal(t, 0, m.Snapshot().Index)

	m.Tap(10, 0)
	assert.Equal(t, 0, m.Snapshot().Index)
}

func TestLoadResetsIndex(t *testing.T) {
	m := loaded(promos("a", "b", "c"))
	m.Advance(Next)
	m.Advance(Next)

	m.LoadSucceeded(m.BeginLoad(), promos("a", "b", "c", "d"))
	s := m.Snapshot()
	assert.Equal(t, 0, s.Index)
	assert.Equal(t, "a", s.Current.ID)
}

func TestStaleLoadIsDropped(t *testing.T) {
	m := NewMachine()
	first := m.BeginLoad()
	second := m.BeginLoad()

	assert.True(t, m.LoadSucceeded(second, promos("new")))
	assert.False(t, m.LoadSucceeded(first, promos("old1", "old2")))
	assert.False(t, m.LoadFailed(first))

	s := m.Snapshot()
	assert.Equal(t, StateViewing, s.State)
	require.Len(t, s.Items, 1)
	assert.Equal(t, "new", s.Items[0].ID)
}

func TestSnapshotIsACopy(t *testing.T) {
	items := promos("a", "b")
	m := loaded(items)
	items[0].ID = "mutated"

	s := m.Snapshot()
	s.Items[1].ID = "changed"
	assert.Equal(t, "a", m.Snapshot().Items[0].ID)
	assert.Equal(t, "b", m.Snapshot().Items[1].ID)
}
