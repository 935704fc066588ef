// Package pulse models a pulse-train transmission channel: a peripheral that
// emits a self-clocked single-wire waveform described by timing symbols, which
// it pulls incrementally from an encoder callback as its symbol buffer drains.
package pulse

import (
	"context"
	"errors"
)

// Symbol is a pulse-pair descriptor. Durations are in hardware clock ticks at
// the channel's resolution.
type Symbol struct {
	Level0    uint8
	Duration0 uint16
	Level1    uint8
	Duration1 uint16
}

// Ticks returns the total duration of the symbol in clock ticks.
func (s Symbol) Ticks() int {
	return int(s.Duration0) + int(s.Duration1)
}

// Encoder is the pull callback a channel invokes whenever it has free symbol
// slots. data is the full source buffer for the in-flight transmission,
// symbolsWritten the monotonic count of symbols already produced for it, and
// symbolsFree how many slots of out may be filled. It returns the number of
// symbols written and whether the transmission is complete. The callback must
// not block, allocate, or rely on state outside its arguments.
type Encoder func(data []byte, symbolsWritten, symbolsFree int, out []Symbol) (int, bool)

// Config describes the channel to acquire.
type Config struct {
	ResolutionHz int // tick rate the symbol durations are expressed in
	BlockSymbols int // size of the hardware symbol buffer
	QueueDepth   int // pending transmissions the hardware accepts
}

func (c Config) withDefaults() Config {
	if c.ResolutionHz == 0 {
		c.ResolutionHz = 10_000_000
	}
	if c.BlockSymbols == 0 {
		c.BlockSymbols = 64
	}
	if c.QueueDepth == 0 {
		c.QueueDepth = 4
	}
	return c
}

var (
	// ErrBusy is returned by Transmit while a previous transmission is still
	// in flight. Callers are expected to WaitAllDone first.
	ErrBusy = errors.New("pulse: transmission already in flight")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("pulse: channel closed")

	// ErrStalled is reported when the encoder produces no symbols with a full
	// block of free slots, which would hang the transmission forever.
	ErrStalled = errors.New("pulse: encoder produced no symbols")
)

// Channel is an acquired, enabled transmission channel with its encoder
// registered. At most one transmission is in flight at a time.
type Channel interface {
	// Transmit starts pushing len(data) bytes through the registered encoder.
	Transmit(data []byte) error
	// WaitAllDone blocks until the in-flight transmission, if any, completes.
	WaitAllDone(ctx context.Context) error
	Close() error
}
