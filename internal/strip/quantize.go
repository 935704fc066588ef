package strip

// Gamma-corrected expansion tables. Code 0 stays exactly off; codes 1..max
// spread over 2..255 on a power curve so low indices remain visible.
var (
	lut3 = [8]byte{0, 2, 7, 25, 57, 106, 171, 255} // 3-bit channels (R, G)
	lut2 = [4]byte{0, 2, 57, 255}                  // 2-bit channel (B)
)

// Quantize expands one RRRGGGBB packed color code to 8-bit-per-channel RGB.
func Quantize(code byte) (r, g, b byte) {
	r = lut3[(code>>5)&0x7]
	g = lut3[(code>>2)&0x7]
	b = lut2[code&0x3]
	return r, g, b
}
