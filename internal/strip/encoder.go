package strip

import "github.com/lumenwire/atperiph/internal/pulse"

// Encode is the pull-based symbol producer registered with the transmission
// channel. Position within data is derived solely from symbolsWritten, so the
// callback carries no state of its own and is safe to invoke from the
// hardware refill context.
//
// A byte always occupies 8 consecutive symbol slots, MSB first; demanding 8
// free slots up front keeps a byte's bits from being split across refills.
func Encode(data []byte, symbolsWritten, symbolsFree int, out []pulse.Symbol) (int, bool) {
	if symbolsFree < 8 {
		return 0, false
	}

	pos := symbolsWritten / 8
	if pos < len(data) {
		b := data[pos]
		n := 0
		for mask := byte(0x80); mask != 0; mask >>= 1 {
			if b&mask != 0 {
				out[n] = SymbolOne
			} else {
				out[n] = SymbolZero
			}
			n++
		}
		return n, false
	}

	// Every byte is encoded; close the frame.
	out[0] = SymbolReset
	return 1, true
}
