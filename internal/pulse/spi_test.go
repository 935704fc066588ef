package pulse

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spitest"
)

// oneSymbolPerByte emits a short high pulse per data byte and a long low tail.
func oneSymbolPerByte(data []byte, written, free int, out []Symbol) (int, bool) {
	if free < 1 {
		return 0, false
	}
	if written < len(data) {
		out[0] = Symbol{Level0: 1, Duration0: 2, Level1: 0, Duration1: 2}
		return 1, false
	}
	out[0] = Symbol{Level0: 0, Duration0: 8, Level1: 0, Duration1: 8}
	return 1, true
}

func TestRenderWaveform(t *testing.T) {
	wave, err := renderWaveform(oneSymbolPerByte, []byte{0, 0}, 64)
	require.NoError(t, err)

	// Two 1100 pulses, then 16 zero ticks: 11001100 00000000 00000000.
	assert.Equal(t, []byte{0xCC, 0x00, 0x00}, wave)
}

func TestRenderWaveformPadsTail(t *testing.T) {
	enc := func(data []byte, written, free int, out []Symbol) (int, bool) {
		out[0] = Symbol{Level0: 1, Duration0: 3, Level1: 0, Duration1: 2}
		return 1, true
	}
	wave, err := renderWaveform(enc, nil, 64)
	require.NoError(t, err)
	// 5 ticks of 11100 padded to one byte with zero bits.
	assert.Equal(t, []byte{0xE0}, wave)
}

func TestRenderWaveformStalled(t *testing.T) {
	enc := func(data []byte, written, free int, out []Symbol) (int, bool) {
		return 0, false
	}
	_, err := renderWaveform(enc, []byte{1}, 64)
	assert.ErrorIs(t, err, ErrStalled)
}

func TestSPIChannelWritesWaveform(t *testing.T) {
	buf := bytes.Buffer{}
	port := spitest.NewRecordRaw(&buf)
	conn, err := port.Connect(10*physic.MegaHertz, spi.Mode0, 8)
	require.NoError(t, err)

	c := &SPIChannel{
		cfg:  Config{}.withDefaults(),
		enc:  oneSymbolPerByte,
		port: port,
		conn: conn,
		log:  zerolog.Nop(),
	}
	require.NoError(t, c.Transmit([]byte{0}))
	require.NoError(t, c.WaitAllDone(context.Background()))
	require.NoError(t, c.Close())

	assert.Equal(t, []byte{0xC0, 0x00, 0x00}, buf.Bytes())
}
