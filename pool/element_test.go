package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocda/engine/document"
)

func TestAcquireAllocatesWhenEmpty(t *testing.T) {
	p := NewElementPool(4)

	st := p.Acquire()
	require.NotNil(t, st)
	require.NotNil(t, st.Element)

	stats := p.Stats()
	assert.Equal(t, uint64(1), stats.Acquires)
	assert.Equal(t, uint64(1), stats.Allocations)
	assert.Zero(t, stats.Reuses)
}

func TestReleaseAndReuse(t *testing.T) {
	p := NewElementPool(4)

	st := p.Acquire()
	st.Element.Name = "observation"
	st.Element.Text = "stale"
	st.Element.Attributes["code"] = "x"
	st.Element.Children = append(st.Element.Children, document.NewElement("child"))

	p.Release(st)

	reused := p.Acquire()
	assert.Same(t, st, reused)

	// Reused storage comes back fully reset.
	el := reused.Element
	assert.Empty(t, el.Name)
	assert.Empty(t, el.Text)
	assert.Empty(t, el.Attributes)
	assert.Empty(t, el.Children)

	stats := p.Stats()
	assert.Equal(t, uint64(1), stats.Reuses)
	assert.Equal(t, uint64(1), stats.Allocations)
	assert.InDelta(t, 0.5, stats.ReuseRate, 1e-9)
}

func TestReleaseDropsWhenFull(t *testing.T) {
	p := NewElementPool(1)

	a := p.Acquire()
	b := p.Acquire()

	p.Release(a)
	p.Release(b)

	stats := p.Stats()
	assert.Equal(t, uint64(2), stats.Releases)
	assert.Equal(t, uint64(1), stats.Dropped)
	assert.Equal(t, 1, stats.FreeList)
}

func TestReleaseNil(t *testing.T) {
	p := NewElementPool(4)
	p.Release(nil)
	assert.Zero(t, p.Stats().Releases)
}

func TestPreallocate(t *testing.T) {
	p := NewElementPool(4)
	p.Preallocate(10)

	stats := p.Stats()
	assert.Equal(t, 4, stats.FreeList)

	st := p.Acquire()
	require.NotNil(t, st)
	assert.Equal(t, uint64(1), p.Stats().Reuses)
}

func TestClear(t *testing.T) {
	p := NewElementPool(4)
	p.Release(p.Acquire())
	p.Clear()

	stats := p.Stats()
	assert.Zero(t, stats.Acquires)
	assert.Zero(t, stats.FreeList)
}

func TestDefaultPoolSize(t *testing.T) {
	p := NewElementPool(0)
	p.Preallocate(DefaultMaxPoolSize + 10)
	assert.Equal(t, DefaultMaxPoolSize, p.Stats().FreeList)
}

func TestByteSlicePool(t *testing.T) {
	buf := AcquireByteSlice()
	require.NotNil(t, buf)
	assert.Zero(t, len(*buf))

	*buf = append(*buf, []byte("scratch")...)
	ReleaseByteSlice(buf)

	again := AcquireByteSlice()
	assert.Zero(t, len(*again))
	ReleaseByteSlice(again)
}

func TestStringSlicePool(t *testing.T) {
	s := AcquireStringSlice()
	require.NotNil(t, s)
	assert.Zero(t, len(*s))

	*s = append(*s, "a", "b")
	ReleaseStringSlice(s)

	again := AcquireStringSlice()
	assert.Zero(t, len(*again))
	ReleaseStringSlice(again)
}
