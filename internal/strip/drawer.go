package strip

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/extra/devices/screen"
)

// drawerTx adapts a display.Drawer to the Transmitter surface. Drawers render
// synchronously, so there is never a frame in flight after Transmit returns.
type drawerTx struct {
	d display.Drawer
}

// NewNRZ opens a strip behind periph's NRZ-over-SPI offload driver. Unlike the
// pulse channels it performs its own bit expansion in the device layer.
func NewNRZ(dev string, numPixels int) (Transmitter, error) {
	port, err := spireg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("open SPI port %q: %w", dev, err)
	}
	opts := nrzled.Opts{
		NumPixels: numPixels,
		Channels:  3,
		Freq:      2500 * physic.KiloHertz,
	}
	d, err := nrzled.NewSPI(port, &opts)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("open NRZ strip on %q: %w", dev, err)
	}
	return &drawerTx{d: d}, nil
}

// NewScreen returns a terminal preview of the strip, for runs with no
// hardware attached.
func NewScreen(numPixels int) Transmitter {
	return &drawerTx{d: screen.New(numPixels)}
}

func (t *drawerTx) Transmit(grb []byte) error {
	n := len(grb) / 3
	img := image.NewNRGBA(image.Rect(0, 0, n, 1))
	for i := 0; i < n; i++ {
		img.SetNRGBA(i, 0, color.NRGBA{
			R: grb[i*3+1],
			G: grb[i*3+0],
			B: grb[i*3+2],
			A: 255,
		})
	}
	return t.d.Draw(image.Rect(0, 0, n, 1), img, image.Point{})
}

func (t *drawerTx) WaitAllDone(ctx context.Context) error {
	return nil
}

func (t *drawerTx) Close() error {
	return t.d.Halt()
}
