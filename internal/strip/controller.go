package strip

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Transmitter is the output a controller flushes frames through. The pulse
// channels implement it with the symbol encoder; drawer-backed outputs render
// the frame themselves.
type Transmitter interface {
	Transmit(grb []byte) error
	WaitAllDone(ctx context.Context) error
	Close() error
}

// Controller owns a strip's pixel buffer and its transmitter. Flushes are
// serialized: a new frame is never issued while a previous one is in flight,
// which keeps the buffer stable for the encoder's hardware-context reads.
type Controller struct {
	mu      sync.Mutex
	buf     PixelBuffer
	tx      Transmitter
	log     zerolog.Logger
	onFlush func(grb []byte, count int)
}

// New wraps a transmitter and drives the strip to its known-off default state.
func New(tx Transmitter, log zerolog.Logger) (*Controller, error) {
	c := &Controller{
		tx:  tx,
		log: log.With().Str("comp", "strip").Logger(),
	}
	if err := c.ClearAll(); err != nil {
		return nil, fmt.Errorf("clear strip: %w", err)
	}
	return c, nil
}

// SetFlushHook registers a callback invoked with a snapshot of each flushed
// frame. Intended for the monitor; must not block for long.
func (c *Controller) SetFlushHook(fn func(grb []byte, count int)) {
	c.mu.Lock()
	c.onFlush = fn
	c.mu.Unlock()
}

// Set writes one LED's color. Out-of-range indices are logged and dropped.
func (c *Controller) Set(index int, r, g, b byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.buf.Set(index, r, g, b) {
		c.log.Error().Int("led", index).Msg("LED number is out of range")
	}
}

// Used returns how many LEDs have been written since the last clear.
func (c *Controller) Used() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Used()
}

// Flush transmits the first count LEDs, clamped to the high-water mark. It
// blocks until any previous transmission has fully completed before issuing
// the new one; overlapping frames would corrupt the bitstream on the wire.
func (c *Controller) Flush(count int) error {
	c.mu.Lock()
	frame, err := c.flushLocked(count)
	hook := c.onFlush
	c.mu.Unlock()
	if err == nil && hook != nil {
		// Outside the lock: a slow hook consumer must not stall Set or the
		// next Flush.
		hook(frame, len(frame)/3)
	}
	return err
}

func (c *Controller) flushLocked(count int) ([]byte, error) {
	if count < 0 {
		count = 0
	}
	if count > c.buf.Used() {
		count = c.buf.Used()
	}
	c.log.Info().Int("count", count).Msg("flush LEDs")

	if err := c.tx.WaitAllDone(context.Background()); err != nil {
		return nil, fmt.Errorf("wait for previous frame: %w", err)
	}
	// The transmitter reads the frame from a hardware-driven context while
	// the command thread may keep writing the buffer; hand it a snapshot.
	frame := make([]byte, count*3)
	copy(frame, c.buf.Bytes(count))
	if err := c.tx.Transmit(frame); err != nil {
		return nil, fmt.Errorf("transmit %d LEDs: %w", count, err)
	}
	return frame, nil
}

// ClearAll zeroes the buffer, re-applies DefaultLEDs black LEDs and flushes
// them, so the strip is driven to a known-off state instead of left floating.
func (c *Controller) ClearAll() error {
	c.mu.Lock()
	c.buf.Reset()
	c.log.Info().Int("count", DefaultLEDs).Msg("clear LEDs")
	for led := 0; led < DefaultLEDs; led++ {
		c.buf.Set(led, 0, 0, 0)
	}
	frame, err := c.flushLocked(DefaultLEDs)
	hook := c.onFlush
	c.mu.Unlock()
	if err == nil && hook != nil {
		hook(frame, len(frame)/3)
	}
	return err
}

// Close waits for the in-flight frame and releases the transmitter.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.tx.WaitAllDone(context.Background()); err != nil {
		return err
	}
	return c.tx.Close()
}
