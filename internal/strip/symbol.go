// Package strip drives a WS2812-family addressable LED strip: a fixed-capacity
// GRB pixel buffer, an RRRGGGBB color quantizer, and the bit-to-symbol encoder
// that turns pixel bytes into the strip's self-clocked single-wire protocol.
package strip

import "github.com/lumenwire/atperiph/internal/pulse"

// The strip protocol is expressed at a 10 MHz tick, 1 tick = 0.1 us.
const (
	ResolutionHz = 10_000_000
	BlockSymbols = 64
	QueueDepth   = 4
)

// ChannelConfig is the pulse channel configuration the strip protocol needs.
func ChannelConfig() pulse.Config {
	return pulse.Config{
		ResolutionHz: ResolutionHz,
		BlockSymbols: BlockSymbols,
		QueueDepth:   QueueDepth,
	}
}

// Canonical WS2812 symbols: T0H=0.3us/T0L=0.9us, T1H=0.9us/T1L=0.3us, and an
// idle-low hold of 50us marking end of frame.
var (
	SymbolZero  = pulse.Symbol{Level0: 1, Duration0: 3, Level1: 0, Duration1: 9}
	SymbolOne   = pulse.Symbol{Level0: 1, Duration0: 9, Level1: 0, Duration1: 3}
	SymbolReset = pulse.Symbol{Level0: 0, Duration0: 250, Level1: 0, Duration1: 250}
)
