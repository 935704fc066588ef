package atcmd_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenwire/atperiph/internal/atcmd"
	"github.com/lumenwire/atperiph/internal/pulse"
	"github.com/lumenwire/atperiph/internal/strip"
)

func newLEDFixture(t *testing.T) (*atcmd.Dispatcher, *strip.Controller, *pulse.SimChannel) {
	t.Helper()
	ch := pulse.NewSim(strip.ChannelConfig(), strip.Encode, zerolog.Nop())
	ctrl, err := strip.New(ch, zerolog.Nop())
	require.NoError(t, err)
	d := atcmd.NewDispatcher(zerolog.Nop())
	require.NoError(t, atcmd.RegisterLED(d, ctrl, zerolog.Nop()))
	return d, ctrl, ch
}

func TestLEDSetsAndFlushes(t *testing.T) {
	d, ctrl, ch := newLEDFixture(t)
	defer ctrl.Close()

	assert.Equal(t, atcmd.OK, d.Exec("AT+LED=10,0,255"))
	require.NoError(t, ch.WaitAllDone(context.Background()))

	// Exactly 3 LEDs on the wire: 3*3 bytes, 8 symbols each, plus reset.
	frame := ch.LastFrame()
	assert.Len(t, frame, 3*3*8+1)
}

func TestLEDNoParams(t *testing.T) {
	d, ctrl, ch := newLEDFixture(t)
	defer ctrl.Close()
	require.NoError(t, ch.WaitAllDone(context.Background()))
	before := len(ch.Frames())

	assert.Equal(t, atcmd.Error, d.Exec("AT+LED"))
	assert.Equal(t, atcmd.Error, d.Exec("AT+LED="))
	require.NoError(t, ch.WaitAllDone(context.Background()))
	assert.Len(t, ch.Frames(), before) // nothing flushed
}

func TestLEDPartialApplication(t *testing.T) {
	d, ctrl, ch := newLEDFixture(t)
	defer ctrl.Close()

	// The first parameter is applied before the out-of-range one aborts the
	// command; there is no rollback.
	assert.Equal(t, atcmd.Error, d.Exec("AT+LED=224,999"))
	require.NoError(t, ch.WaitAllDone(context.Background()))

	// 224 = full red. Flush LED 0 out of band and read the wire symbols to
	// see what the failed command left behind.
	require.NoError(t, ctrl.Flush(1))
	require.NoError(t, ch.WaitAllDone(context.Background()))
	frame := ch.LastFrame()
	require.Len(t, frame, 3*8+1)
	for i := 0; i < 8; i++ {
		assert.Equal(t, strip.SymbolZero, frame[i], "green bit %d", i)
	}
	for i := 8; i < 16; i++ {
		assert.Equal(t, strip.SymbolOne, frame[i], "red bit %d", i-8)
	}
}

func TestLEDNegativeValue(t *testing.T) {
	d, ctrl, _ := newLEDFixture(t)
	defer ctrl.Close()
	assert.Equal(t, atcmd.Error, d.Exec("AT+LED=-1"))
}

func TestLEDNonDigitEndsList(t *testing.T) {
	d, ctrl, ch := newLEDFixture(t)
	defer ctrl.Close()

	// A parameter that does not parse as a digit terminates the list; the
	// preceding values are still applied and flushed.
	assert.Equal(t, atcmd.OK, d.Exec("AT+LED=10,banana,20"))
	require.NoError(t, ch.WaitAllDone(context.Background()))
	frame := ch.LastFrame()
	assert.Len(t, frame, 1*3*8+1)
}
