// Package bridge forwards raw bytes between a USB serial endpoint and a UART,
// making the daemon transparent to whatever speaks on either side.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

const (
	bufSize = 1024

	// A lone DLE arriving after this much line silence is treated as a break
	// request for the UART side (used to kick an attached MCU into its
	// bootloader).
	dle        = 0x10
	breakPause = 100 * time.Millisecond
)

// BreakWriter is implemented by ports that can follow a write with a line
// break condition.
type BreakWriter interface {
	WriteBreak(p []byte) error
}

// Bridge copies bytes in both directions until its context is done or either
// port fails.
type Bridge struct {
	usb  io.ReadWriter
	uart io.ReadWriter
	log  zerolog.Logger
	now  func() time.Time
}

func New(usb, uart io.ReadWriter, log zerolog.Logger) *Bridge {
	return &Bridge{
		usb:  usb,
		uart: uart,
		log:  log.With().Str("comp", "bridge").Logger(),
		now:  time.Now,
	}
}

// Run pumps both directions. Ports are expected to use short read timeouts
// (returning n=0 with no error on silence) so the loops stay responsive to
// ctx without extra plumbing.
func (b *Bridge) Run(ctx context.Context) error {
	errc := make(chan error, 2)
	go func() { errc <- b.pumpDownstream(ctx) }()
	go func() { errc <- b.pumpUpstream(ctx) }()

	var first error
	for i := 0; i < 2; i++ {
		if err := <-errc; err != nil && first == nil {
			first = err
		}
	}
	return first
}

// pumpDownstream forwards USB bytes to the UART, applying the DLE-after-pause
// break escape.
func (b *Bridge) pumpDownstream(ctx context.Context) error {
	buf := make([]byte, bufSize)
	var lastTx time.Time
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := b.usb.Read(buf)
		if n > 0 {
			now := b.now()
			if err := b.forward(buf[:n], now.Sub(lastTx)); err != nil {
				return fmt.Errorf("bridge: write UART: %w", err)
			}
			lastTx = now
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("bridge: read USB: %w", err)
		}
	}
}

func (b *Bridge) forward(p []byte, sinceLast time.Duration) error {
	if len(p) == 1 && p[0] == dle && sinceLast > breakPause {
		if bw, ok := b.uart.(BreakWriter); ok {
			b.log.Debug().Msg("DLE after pause, sending break")
			return bw.WriteBreak(p)
		}
		b.log.Debug().Msg("DLE after pause, port cannot break")
	}
	_, err := b.uart.Write(p)
	return err
}

// pumpUpstream forwards UART bytes to USB unmodified.
func (b *Bridge) pumpUpstream(ctx context.Context) error {
	buf := make([]byte, bufSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := b.uart.Read(buf)
		if n > 0 {
			if _, werr := b.usb.Write(buf[:n]); werr != nil {
				return fmt.Errorf("bridge: write USB: %w", werr)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("bridge: read UART: %w", err)
		}
	}
}
