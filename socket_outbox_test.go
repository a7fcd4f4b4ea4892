package wsocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func collect(into *[]int) func(int) {
	return func(m int) { *into = append(*into, m) }
}

func TestOutbox_QueuesWhileConnecting(t *testing.T) {
	o := newOutbox[int]()
	var written []int

	assert.Equal(t, sendQueued, o.send(1, collect(&written)))
	assert.Equal(t, sendQueued, o.send(2, collect(&written)))

	assert.Empty(t, written)
	assert.Equal(t, 2, o.Len())
	assert.Equal(t, Connecting, o.State())
}

func TestOutbox_OpenFlushesInOrderOnce(t *testing.T) {
	o := newOutbox[int]()
	var written []int

	for i := 1; i <= 5; i++ {
		o.send(i, collect(&written))
	}

	assert.Equal(t, 5, o.open(collect(&written)))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, written)
	assert.Equal(t, 0, o.Len())
	assert.Equal(t, Open, o.State())

	assert.Equal(t, 0, o.open(collect(&written)))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, written)
}

func TestOutbox_WritesThroughWhenOpen(t *testing.T) {
	o := newOutbox[int]()
	var written []int
	o.open(collect(&written))

	assert.Equal(t, sendWritten, o.send(7, collect(&written)))
	assert.Equal(t, []int{7}, written)
	assert.Equal(t, 0, o.Len())
}

func TestOutbox_DropsWhenClosingOrClosed(t *testing.T) {
	o := newOutbox[int]()
	var written []int
	o.open(collect(&written))

	o.closing()
	assert.Equal(t, Closing, o.State())
	assert.Equal(t, sendDropped, o.send(1, collect(&written)))

	assert.Equal(t, 0, o.closed())
	assert.Equal(t, Closed, o.State())
	assert.Equal(t, sendDropped, o.send(2, collect(&written)))

	assert.Empty(t, written)
}

func TestOutbox_ClosedDiscardsQueue(t *testing.T) {
	o := newOutbox[int]()
	var written []int

	o.send(1, collect(&written))
	o.send(2, collect(&written))

	assert.Equal(t, 2, o.closed())
	assert.Equal(t, 0, o.open(collect(&written)))
	assert.Empty(t, written)
	assert.Equal(t, Closed, o.State())
}

func TestOutbox_ClosingKeepsQueueUntilClosed(t *testing.T) {
	o := newOutbox[int]()
	var written []int

	o.send(1, collect(&written))
	o.closing()

	assert.Equal(t, 1, o.Len())
	assert.Equal(t, 0, o.open(collect(&written)))
	assert.Equal(t, 1, o.closed())
}

func TestOutbox_AttachAdoptsState(t *testing.T) {
	o := newOutbox[int]()
	var written []int

	o.attach(func() ReadyState { return Open })

	assert.Equal(t, sendWritten, o.send(1, collect(&written)))
	assert.Equal(t, []int{1}, written)
}
