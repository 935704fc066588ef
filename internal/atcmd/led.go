package atcmd

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lumenwire/atperiph/internal/strip"
)

// RegisterLED wires the +LED setup command to a strip controller. Each
// parameter is one LED's RRRGGGBB color code, applied in order from LED 0.
func RegisterLED(d *Dispatcher, ctrl *strip.Controller, log zerolog.Logger) error {
	h := &ledHandler{ctrl: ctrl, log: log.With().Str("cmd", "+LED").Logger()}
	return d.Register(Command{Name: "+LED", Setup: h.setup})
}

type ledHandler struct {
	ctrl *strip.Controller
	log  zerolog.Logger
}

func (h *ledHandler) setup(params []string) Result {
	applied := 0
	for _, p := range params {
		if applied >= strip.MaxLEDs {
			break
		}
		digit, err := strconv.ParseInt(strings.TrimSpace(p), 10, 32)
		if err != nil {
			// Not a digit parameter: treat as end of the list, like the
			// dispatcher's digit parser would.
			break
		}
		if digit < 0 || digit > 255 {
			// Abort the whole command. Earlier parameters stay applied:
			// parse-and-apply streams, there is no rollback.
			h.log.Error().Int64("value", digit).Int("led", applied).Msg("color code out of range")
			return Error
		}

		r, g, b := strip.Quantize(byte(digit))
		h.log.Info().Int("led", applied).Uint8("code", uint8(digit)).
			Uint8("r", r).Uint8("g", g).Uint8("b", b).Msg("set LED")
		h.ctrl.Set(applied, r, g, b)
		applied++
	}

	if applied == 0 {
		return Error
	}
	if err := h.ctrl.Flush(applied); err != nil {
		h.log.Error().Err(err).Int("count", applied).Msg("flush failed")
		return Error
	}
	return OK
}
