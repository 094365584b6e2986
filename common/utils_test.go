package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, 0, Coalesce(0, 0))
	assert.Equal(t, 3, Coalesce[int](3))
}

func TestInRange(t *testing.T) {
	assert.True(t, InRange(1, 1, 4))
	assert.True(t, InRange(4, 1, 4))
	assert.False(t, InRange(0, 1, 4))
	assert.False(t, InRange(1.5, 0.0, 1.0))
}

func TestSliceToBytes(t *testing.T) {
	data := SliceToBytes([]float32{-0.5, -0.5, 0.5, -0.5, 0.5, 0.5})
	assert.Len(t, data, 24)
	assert.Equal(t, uint64(24), ByteLength([]float32{-0.5, -0.5, 0.5, -0.5, 0.5, 0.5}))
	assert.Nil(t, SliceToBytes[float32](nil))
}

func TestColor(t *testing.T) {
	c, err := ColorFromSlice([]float64{0.6, 0.8, 0.9, 1})
	assert.NoError(t, err)
	assert.Equal(t, DefaultClearColor, c)
	assert.True(t, c.Valid())

	_, err = ColorFromSlice([]float64{1, 1})
	assert.Error(t, err)

	w := DefaultClearColor.ToWGPU()
	assert.Equal(t, 0.6, w.R)
	assert.Equal(t, 1.0, w.A)
}
