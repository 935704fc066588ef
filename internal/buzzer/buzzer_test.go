package buzzer

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestNoopTone(t *testing.T) {
	tone := NewNoop(zerolog.Nop())
	if err := tone.Set(440); err != nil {
		t.Errorf("Set() returned error: %v", err)
	}
	if err := tone.Off(); err != nil {
		t.Errorf("Off() returned error: %v", err)
	}
	if err := tone.Close(); err != nil {
		t.Errorf("Close() returned error: %v", err)
	}
}

func TestGPIOUnknownPin(t *testing.T) {
	if _, err := NewGPIO("definitely-not-a-pin", zerolog.Nop()); err == nil {
		t.Fatal("expected error for unknown pin")
	}
}
