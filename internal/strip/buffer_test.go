package strip_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumenwire/atperiph/internal/strip"
)

func TestBufferSetStoresWireOrder(t *testing.T) {
	var buf strip.PixelBuffer
	assert.True(t, buf.Set(0, 10, 20, 30))

	g, r, b := buf.At(0)
	assert.Equal(t, byte(20), g)
	assert.Equal(t, byte(10), r)
	assert.Equal(t, byte(30), b)
	assert.Equal(t, []byte{20, 10, 30}, buf.Bytes(1))
}

func TestBufferUsedHighWater(t *testing.T) {
	var buf strip.PixelBuffer
	assert.Equal(t, 0, buf.Used())

	buf.Set(4, 1, 1, 1)
	assert.Equal(t, 5, buf.Used())

	// Writing a lower index never shrinks the mark.
	buf.Set(2, 1, 1, 1)
	assert.Equal(t, 5, buf.Used())

	buf.Set(9, 1, 1, 1)
	assert.Equal(t, 10, buf.Used())
}

func TestBufferSetOutOfRange(t *testing.T) {
	var buf strip.PixelBuffer
	buf.Set(1, 5, 6, 7)

	assert.False(t, buf.Set(strip.MaxLEDs, 9, 9, 9))
	assert.False(t, buf.Set(-1, 9, 9, 9))
	assert.Equal(t, 2, buf.Used())
	g, r, b := buf.At(1)
	assert.Equal(t, [3]byte{6, 5, 7}, [3]byte{g, r, b})
}

func TestBufferLastIndex(t *testing.T) {
	var buf strip.PixelBuffer
	assert.True(t, buf.Set(strip.MaxLEDs-1, 1, 2, 3))
	assert.Equal(t, strip.MaxLEDs, buf.Used())
}

func TestBufferReset(t *testing.T) {
	var buf strip.PixelBuffer
	buf.Set(7, 9, 9, 9)
	buf.Reset()

	assert.Equal(t, 0, buf.Used())
	g, r, b := buf.At(7)
	assert.Equal(t, [3]byte{0, 0, 0}, [3]byte{g, r, b})
}
