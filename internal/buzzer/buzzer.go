// Package buzzer sets a tone frequency on a PWM-capable output pin.
package buzzer

import (
	"fmt"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
)

// Tone is a square-wave output at a settable frequency.
type Tone interface {
	Set(freqHz int) error
	Off() error
	Close() error
}

// GPIO drives a buzzer from a host GPIO pin at 50% duty.
type GPIO struct {
	pin gpio.PinIO
	log zerolog.Logger
}

func NewGPIO(pinName string, log zerolog.Logger) (*GPIO, error) {
	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, fmt.Errorf("buzzer: no GPIO pin named %q", pinName)
	}
	return &GPIO{
		pin: pin,
		log: log.With().Str("comp", "buzzer").Str("pin", pinName).Logger(),
	}, nil
}

func (g *GPIO) Set(freqHz int) error {
	g.log.Info().Int("freq", freqHz).Msg("tone on")
	return g.pin.PWM(gpio.DutyHalf, physic.Frequency(freqHz)*physic.Hertz)
}

func (g *GPIO) Off() error {
	g.log.Info().Msg("tone off")
	if err := g.pin.Halt(); err != nil {
		return err
	}
	return g.pin.Out(gpio.Low)
}

func (g *GPIO) Close() error {
	return g.pin.Halt()
}

// Noop logs tone changes without hardware, for sim runs.
type Noop struct {
	log zerolog.Logger
}

func NewNoop(log zerolog.Logger) *Noop {
	return &Noop{log: log.With().Str("comp", "buzzer").Str("driver", "noop").Logger()}
}

func (n *Noop) Set(freqHz int) error {
	n.log.Debug().Int("freq", freqHz).Msg("tone on")
	return nil
}

func (n *Noop) Off() error {
	n.log.Debug().Msg("tone off")
	return nil
}

func (n *Noop) Close() error {
	return nil
}
