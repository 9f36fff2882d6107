package media

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedKeepsNewest(t *testing.T) {
	var forwarded []Notice
	f := NewFeed(2, NotifierFunc(func(n Notice) { forwarded = append(forwarded, n) }))

	f.Notify(Notice{Kind: NoticeSuccess, Message: "one"})
	f.Notify(Notice{Kind: NoticeError, Message: "two"})
	f.Notify(Notice{Kind: NoticeSuccess, Message: "three"})

	recent := f.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, "two", recent[0].Message)
	assert.Equal(t, "three", recent[1].Message)
	assert.Len(t, forwarded, 3)
}

func TestFeedSince(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := base
	f := NewFeed(0, nil)
	f.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	f.Notify(Notice{Message: "a"})
	f.Notify(Notice{Message: "b"})

	since := f.Since(base.Add(time.Second))
	require.Len(t, since, 1)
	assert.Equal(t, "b", since[0].Message)
	assert.Empty(t, f.Since(tick))
}
