package atcmd

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lumenwire/atperiph/internal/buzzer"
)

// Audible frequency bounds accepted by +BUZZ.
const (
	minBuzzHz = 20
	maxBuzzHz = 20000
)

// RegisterBuzz wires the +BUZZ setup command to a tone output: 0 silences it,
// 20..20000 sets the tone frequency at half duty.
func RegisterBuzz(d *Dispatcher, tone buzzer.Tone, log zerolog.Logger) error {
	h := &buzzHandler{tone: tone, log: log.With().Str("cmd", "+BUZZ").Logger()}
	return d.Register(Command{Name: "+BUZZ", Setup: h.setup})
}

type buzzHandler struct {
	tone buzzer.Tone
	log  zerolog.Logger
}

func (h *buzzHandler) setup(params []string) Result {
	if len(params) == 0 {
		return Error
	}
	digit, err := strconv.ParseInt(strings.TrimSpace(params[0]), 10, 32)
	if err != nil {
		return Error
	}

	if digit == 0 {
		if err := h.tone.Off(); err != nil {
			h.log.Error().Err(err).Msg("stop tone failed")
			return Error
		}
		return OK
	}
	if digit < minBuzzHz || digit > maxBuzzHz {
		h.log.Error().Int64("freq", digit).Msg("frequency value out of range (20-20000)")
		return Error
	}
	if err := h.tone.Set(int(digit)); err != nil {
		h.log.Error().Err(err).Int64("freq", digit).Msg("set tone failed")
		return Error
	}
	return OK
}
