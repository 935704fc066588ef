package strip

const (
	// MaxLEDs is the pixel buffer capacity.
	MaxLEDs = 256
	// DefaultLEDs is the number of LEDs driven to a known-off state on clear.
	DefaultLEDs = 4
)

// PixelBuffer holds per-LED color triples in the strip's wire channel order
// (green, red, blue) and tracks how many LEDs have been written since the
// last reset. Indices at or past Used may hold stale data and are never
// transmitted.
type PixelBuffer struct {
	pixels [MaxLEDs * 3]byte
	used   int
}

// Set writes one LED's color. It reports false when index is out of range,
// leaving the buffer untouched. Writing at or past the high-water mark
// advances it to index+1.
func (p *PixelBuffer) Set(index int, r, g, b byte) bool {
	if index < 0 || index >= MaxLEDs {
		return false
	}
	p.pixels[index*3+0] = g
	p.pixels[index*3+1] = r
	p.pixels[index*3+2] = b
	if index >= p.used {
		p.used = index + 1
	}
	return true
}

// At returns one LED's stored triple in wire order.
func (p *PixelBuffer) At(index int) (g, r, b byte) {
	return p.pixels[index*3+0], p.pixels[index*3+1], p.pixels[index*3+2]
}

// Used returns the high-water mark of LEDs written since the last reset.
func (p *PixelBuffer) Used() int {
	return p.used
}

// Reset zeroes the buffer and the high-water mark.
func (p *PixelBuffer) Reset() {
	p.pixels = [MaxLEDs * 3]byte{}
	p.used = 0
}

// Bytes returns the wire bytes for the first count LEDs.
func (p *PixelBuffer) Bytes(count int) []byte {
	return p.pixels[:count*3]
}
