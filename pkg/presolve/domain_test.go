package presolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalDomainBasics(t *testing.T) {
	d := NewIntervalDomain(3, 7)
	assert.Equal(t, int64(3), d.Min())
	assert.Equal(t, int64(7), d.Max())
	assert.False(t, d.IsEmpty())
	assert.False(t, d.HasOneValue())
	assert.True(t, d.Contains(5))
	assert.False(t, d.Contains(8))
	assert.Equal(t, int64(5), d.Size())
}

func TestIntervalDomainEmpty(t *testing.T) {
	d := NewIntervalDomain(7, 3)
	assert.True(t, d.IsEmpty())
	assert.Equal(t, int64(0), d.Size())
}

func TestIntervalDomainIntersectInterval(t *testing.T) {
	d := NewIntervalDomain(0, 10)
	got := d.IntersectInterval(4, 6)
	assert.Equal(t, int64(4), got.Min())
	assert.Equal(t, int64(6), got.Max())

	empty := d.IntersectInterval(20, 30)
	assert.True(t, empty.IsEmpty())
}

func TestIntervalDomainRemoveValueSplitsToList(t *testing.T) {
	d := NewIntervalDomain(1, 5)
	got := d.RemoveValue(3)
	require.False(t, got.IsEmpty())
	assert.False(t, got.Contains(3))
	assert.True(t, got.Contains(1))
	assert.True(t, got.Contains(5))
	assert.Equal(t, int64(4), got.Size())
	if _, ok := got.(*ListDomain); !ok {
		t.Errorf("punching a hole in the middle should yield a ListDomain, got %T", got)
	}
}

func TestIntervalDomainRemoveValueAtEdgeStaysInterval(t *testing.T) {
	d := NewIntervalDomain(1, 5)
	got := d.RemoveValue(1)
	if _, ok := got.(*IntervalDomain); !ok {
		t.Errorf("removing an edge value should stay an IntervalDomain, got %T", got)
	}
	assert.Equal(t, int64(2), got.Min())
}

func TestListDomainBasics(t *testing.T) {
	d := NewListDomain([]int64{5, 1, 3, 3, 1})
	assert.Equal(t, int64(1), d.Min())
	assert.Equal(t, int64(5), d.Max())
	assert.Equal(t, int64(3), d.Size())
	assert.True(t, d.Contains(3))
	assert.False(t, d.Contains(2))
}

func TestListDomainCompactsBackToInterval(t *testing.T) {
	d := NewListDomain([]int64{1, 2, 3, 4})
	if _, ok := d.(*IntervalDomain); !ok {
		t.Errorf("a contiguous ListDomain should compact to an IntervalDomain, got %T", d)
	}
}

func TestListDomainWideSpanUsesSparseFallback(t *testing.T) {
	d := newListDomain([]int64{0, listBitsetSpanLimit + 5})
	assert.Nil(t, d.bits)
	assert.NotNil(t, d.sparse)
	assert.True(t, d.Contains(0))
	assert.True(t, d.Contains(listBitsetSpanLimit+5))
}

func TestDomainIntersect(t *testing.T) {
	a := NewIntervalDomain(1, 10)
	b := NewListDomain([]int64{2, 4, 6, 12})
	got := a.Intersect(b)
	assert.Equal(t, int64(3), got.Size())
	assert.True(t, got.Contains(2))
	assert.True(t, got.Contains(6))
	assert.False(t, got.Contains(12))
}

func TestDomainEqual(t *testing.T) {
	a := NewIntervalDomain(1, 3)
	b := NewListDomain([]int64{1, 2, 3})
	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))

	c := NewIntervalDomain(1, 4)
	assert.False(t, a.Equal(c))
}

func TestDomainForEach(t *testing.T) {
	d := NewListDomain([]int64{7, 3, 5})
	var got []int64
	d.ForEach(func(v int64) { got = append(got, v) })
	assert.Equal(t, []int64{3, 5, 7}, got)
}

func TestEmptyDomain(t *testing.T) {
	d := emptyDomain()
	assert.True(t, d.IsEmpty())
	assert.Equal(t, "{}", d.String())
}
