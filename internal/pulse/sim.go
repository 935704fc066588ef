package pulse

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// SimChannel is an in-memory channel for headless runs and tests. It drives
// the registered encoder through the same pull contract the hardware uses,
// refilling a bounded block of symbol slots until the encoder reports done,
// and records the emitted symbol stream per transmission.
type SimChannel struct {
	cfg Config
	enc Encoder
	log zerolog.Logger

	mu     sync.Mutex
	busy   bool
	closed bool
	done   chan struct{}
	frames [][]Symbol
}

func NewSim(cfg Config, enc Encoder, log zerolog.Logger) *SimChannel {
	return &SimChannel{
		cfg: cfg.withDefaults(),
		enc: enc,
		log: log.With().Str("chan", "sim").Logger(),
	}
}

func (c *SimChannel) Transmit(data []byte) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	c.busy = true
	c.done = make(chan struct{})
	c.mu.Unlock()

	go c.run(data)
	return nil
}

// run pulls the encoder exactly as the hardware refill context would: each
// iteration offers a freshly drained block of BlockSymbols slots.
func (c *SimChannel) run(data []byte) {
	out := make([]Symbol, c.cfg.BlockSymbols)
	var frame []Symbol
	written := 0
	for {
		n, done := c.enc(data, written, len(out), out)
		if n == 0 && !done {
			c.log.Error().Int("written", written).Msg("encoder stalled with a full block free")
			break
		}
		frame = append(frame, out[:n]...)
		written += n
		if done {
			break
		}
	}

	c.mu.Lock()
	c.frames = append(c.frames, frame)
	c.busy = false
	close(c.done)
	c.mu.Unlock()
}

func (c *SimChannel) WaitAllDone(ctx context.Context) error {
	c.mu.Lock()
	if !c.busy {
		c.mu.Unlock()
		return nil
	}
	done := c.done
	c.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *SimChannel) Close() error {
	if err := c.WaitAllDone(context.Background()); err != nil {
		return err
	}
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

// Frames returns the symbol streams of all completed transmissions.
func (c *SimChannel) Frames() [][]Symbol {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]Symbol, len(c.frames))
	copy(out, c.frames)
	return out
}

// LastFrame returns the symbol stream of the most recent transmission, or nil.
func (c *SimChannel) LastFrame() []Symbol {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.frames) == 0 {
		return nil
	}
	return c.frames[len(c.frames)-1]
}
