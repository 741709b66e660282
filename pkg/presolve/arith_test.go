package presolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSaturatingAdd(t *testing.T) {
	tests := []struct {
		name string
		a, b int64
		want int64
	}{
		{"finite sum", 3, 4, 7},
		{"positive overflow saturates", PositiveInfinity - 1, PositiveInfinity - 1, PositiveInfinity},
		{"negative overflow saturates", NegativeInfinity + 1, NegativeInfinity + 1, NegativeInfinity},
		{"infinity plus finite stays infinite", PositiveInfinity, 10, PositiveInfinity},
		{"negative infinity plus finite stays infinite", NegativeInfinity, -10, NegativeInfinity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, saturatingAdd(tt.a, tt.b))
		})
	}
}

func TestSaturatingNeg(t *testing.T) {
	assert.Equal(t, NegativeInfinity, saturatingNeg(PositiveInfinity))
	assert.Equal(t, PositiveInfinity, saturatingNeg(NegativeInfinity))
	assert.Equal(t, int64(-5), saturatingNeg(5))
}

func TestSaturatingMul(t *testing.T) {
	tests := []struct {
		name string
		a, b int64
		want int64
	}{
		{"finite product", 6, 7, 42},
		{"zero absorbs infinity", 0, PositiveInfinity, 0},
		{"overflow saturates positive", PositiveInfinity / 2, 3, PositiveInfinity},
		{"overflow saturates negative", PositiveInfinity / 2, -3, NegativeInfinity},
		{"sign rules with infinity", PositiveInfinity, -5, NegativeInfinity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, saturatingMul(tt.a, tt.b))
		})
	}
}

func TestFloorDivCeilDiv(t *testing.T) {
	f, ok := floorDiv(7, 2)
	assert.True(t, ok)
	assert.Equal(t, int64(3), f)

	f, ok = floorDiv(-7, 2)
	assert.True(t, ok)
	assert.Equal(t, int64(-4), f)

	c, ok := ceilDiv(7, 2)
	assert.True(t, ok)
	assert.Equal(t, int64(4), c)

	c, ok = ceilDiv(-7, 2)
	assert.True(t, ok)
	assert.Equal(t, int64(-3), c)

	_, ok = floorDiv(5, 0)
	assert.False(t, ok)
}

func TestIsInfinite(t *testing.T) {
	assert.True(t, isInfinite(PositiveInfinity))
	assert.True(t, isInfinite(NegativeInfinity))
	assert.False(t, isInfinite(0))
	assert.False(t, isInfinite(1000000))
}
