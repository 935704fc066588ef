package pulse

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
)

// SPIChannel realizes a pulse-train channel on a Linux host by clocking the
// waveform out of a SPI MOSI pin: with the bus clock set to the symbol
// resolution, one bit equals one tick, so any tick-accurate pulse train can be
// reproduced by rendering symbols into a bitstream.
type SPIChannel struct {
	cfg  Config
	enc  Encoder
	port spi.PortCloser
	conn spi.Conn
	log  zerolog.Logger

	mu     sync.Mutex
	busy   bool
	closed bool
	done   chan struct{}
}

// NewSPI acquires the SPI port (empty dev selects the first registered one),
// clocks it at the symbol resolution and registers the encoder.
func NewSPI(dev string, cfg Config, enc Encoder, log zerolog.Logger) (*SPIChannel, error) {
	cfg = cfg.withDefaults()
	port, err := spireg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("open SPI port %q: %w", dev, err)
	}
	conn, err := port.Connect(physic.Frequency(cfg.ResolutionHz)*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("connect SPI port %q: %w", dev, err)
	}
	return &SPIChannel{
		cfg:  cfg,
		enc:  enc,
		port: port,
		conn: conn,
		log:  log.With().Str("chan", "spi").Str("dev", dev).Logger(),
	}, nil
}

func (c *SPIChannel) Transmit(data []byte) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	wave, err := renderWaveform(c.enc, data, c.cfg.BlockSymbols)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.busy = true
	c.done = make(chan struct{})
	c.mu.Unlock()

	go func() {
		if err := c.conn.Tx(wave, nil); err != nil {
			c.log.Error().Err(err).Int("bytes", len(wave)).Msg("SPI transmit failed")
		}
		c.mu.Lock()
		c.busy = false
		close(c.done)
		c.mu.Unlock()
	}()
	return nil
}

func (c *SPIChannel) WaitAllDone(ctx context.Context) error {
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

func (c *SPIChannel) Close() error {
	if err := c.WaitAllDone(context.Background()); err != nil {
		return err
	}
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return c.port.Close()
}

// renderWaveform pulls the full symbol stream for data through enc, honoring
// the block-sized free-slot window, and flattens it into a bitstream with one
// bit per tick, MSB first. The tail is padded with zero bits so the line rests
// low after the frame.
func renderWaveform(enc Encoder, data []byte, blockSymbols int) ([]byte, error) {
	out := make([]Symbol, blockSymbols)
	var w bitWriter
	written := 0
	for {
		n, done := enc(data, written, len(out), out)
		if n == 0 && !done {
			return nil, ErrStalled
		}
		for _, sym := range out[:n] {
			w.writeRun(sym.Level0, int(sym.Duration0))
			w.writeRun(sym.Level1, int(sym.Duration1))
		}
		written += n
		if done {
			return w.bytes(), nil
		}
	}
}

type bitWriter struct {
	buf  []byte
	nbit int
}

func (w *bitWriter) writeRun(level uint8, ticks int) {
	for i := 0; i < ticks; i++ {
		if w.nbit%8 == 0 {
			w.buf = append(w.buf, 0)
		}
		if level != 0 {
			w.buf[len(w.buf)-1] |= 0x80 >> (w.nbit % 8)
		}
		w.nbit++
	}
}

func (w *bitWriter) bytes() []byte {
	return w.buf
}
