package main

import (
	"context"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tarm/serial"
	"periph.io/x/host/v3"

	"github.com/lumenwire/atperiph/internal/atcmd"
	"github.com/lumenwire/atperiph/internal/bridge"
	"github.com/lumenwire/atperiph/internal/buzzer"
	"github.com/lumenwire/atperiph/internal/config"
	"github.com/lumenwire/atperiph/internal/monitor"
	"github.com/lumenwire/atperiph/internal/pulse"
	"github.com/lumenwire/atperiph/internal/strip"
)

const bridgeReadTimeout = 20 * time.Millisecond

func main() {
	// ---- Flags (config.yaml can override most) ----
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		driver     = flag.String("driver", "sim", "LED driver: sim | spi | nrz | screen")
		spiDev     = flag.String("spi-dev", "", "SPI device for spi/nrz drivers (empty: first registered)")
		atPort     = flag.String("at-port", "", "AT command serial port (empty: stdin/stdout)")
		atBaud     = flag.Int("at-baud", 115200, "AT command port baud rate")
		buzzPin    = flag.String("buzzer-pin", "", "buzzer GPIO pin (empty: simulated)")
		addr       = flag.String("addr", "", "monitor HTTP listen address (empty: disabled)")
		simOnly    = flag.Bool("sim-only", false, "force simulation (no hardware output)")
		debug      = flag.Bool("debug", false, "debug logging")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// ---- Load config.yaml (optional) ----
	var cfg *config.Config
	if c, err := config.Load(*configPath); err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
	} else {
		cfg = c
	}

	// ---- Effective params (config overrides flags where set) ----
	eDriver, eSPIDev := *driver, *spiDev
	eATPort, eATBaud := *atPort, *atBaud
	eBuzzPin, eAddr := *buzzPin, *addr
	if cfg != nil {
		if cfg.LED.Driver != "" {
			eDriver = cfg.LED.Driver
		}
		if cfg.LED.SPIDev != "" {
			eSPIDev = cfg.LED.SPIDev
		}
		if cfg.Serial.Port != "" {
			eATPort = cfg.Serial.Port
		}
		if cfg.Serial.Baud > 0 {
			eATBaud = cfg.Serial.Baud
		}
		if cfg.Buzzer.Driver == "gpio" && cfg.Buzzer.Pin != "" {
			eBuzzPin = cfg.Buzzer.Pin
		}
		if cfg.Monitor.Addr != "" {
			eAddr = cfg.Monitor.Addr
		}
	}
	if *simOnly {
		eDriver = "sim"
		eBuzzPin = ""
	}

	if eDriver == "spi" || eDriver == "nrz" || eBuzzPin != "" {
		if _, err := host.Init(); err != nil {
			log.Fatal().Err(err).Msg("periph host init failed")
		}
	}

	// ---- LED strip ----
	tx := newTransmitter(eDriver, eSPIDev)
	ctrl, err := strip.New(tx, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("strip init failed")
	}
	defer ctrl.Close()

	// ---- Buzzer ----
	var tone buzzer.Tone
	if eBuzzPin != "" {
		t, err := buzzer.NewGPIO(eBuzzPin, log.Logger)
		if err != nil {
			log.Fatal().Err(err).Str("pin", eBuzzPin).Msg("buzzer init failed")
		}
		tone = t
	} else {
		tone = buzzer.NewNoop(log.Logger)
	}
	defer tone.Close()

	// ---- Monitor ----
	if eAddr != "" {
		state := monitor.New(log.Logger)
		ctrl.SetFlushHook(state.Hook())
		go func() {
			log.Info().Str("addr", eAddr).Msg("monitor listening")
			if err := http.ListenAndServe(eAddr, state); err != nil {
				log.Error().Err(err).Msg("monitor server stopped")
			}
		}()
	}

	// ---- AT command surface ----
	disp := atcmd.NewDispatcher(log.Logger)
	if err := atcmd.RegisterLED(disp, ctrl, log.Logger); err != nil {
		log.Fatal().Err(err).Msg("register +LED")
	}
	if err := atcmd.RegisterBuzz(disp, tone, log.Logger); err != nil {
		log.Fatal().Err(err).Msg("register +BUZZ")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	atRW, atClose, err := openATPort(eATPort, eATBaud)
	if err != nil {
		log.Fatal().Err(err).Str("port", eATPort).Msg("open AT port")
	}
	defer atClose()
	go func() {
		if err := disp.Serve(ctx, atRW); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("AT dispatcher stopped")
		}
		cancel()
	}()

	// ---- USB<->UART bridge ----
	if cfg != nil && cfg.Bridge.Enabled {
		usb, uart, err := openBridgePorts(cfg.Bridge)
		if err != nil {
			log.Fatal().Err(err).Msg("open bridge ports")
		}
		b := bridge.New(usb, uart, log.Logger)
		go func() {
			if err := b.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("bridge stopped")
			}
		}()
	}

	// ---- Run until signaled ----
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("shutting down")
	case <-ctx.Done():
	}
	cancel()
}

// newTransmitter builds the configured strip output, falling back to the
// simulator when hardware is unavailable.
func newTransmitter(driver, spiDev string) strip.Transmitter {
	switch driver {
	case "spi":
		ch, err := pulse.NewSPI(spiDev, strip.ChannelConfig(), strip.Encode, log.Logger)
		if err != nil {
			log.Warn().Err(err).Str("driver", driver).Msg("SPI init failed; falling back to sim")
			break
		}
		return ch
	case "nrz":
		tx, err := strip.NewNRZ(spiDev, strip.MaxLEDs)
		if err != nil {
			log.Warn().Err(err).Str("driver", driver).Msg("NRZ init failed; falling back to sim")
			break
		}
		return tx
	case "screen":
		return strip.NewScreen(strip.MaxLEDs)
	case "sim":
	default:
		log.Warn().Str("driver", driver).Msg("unknown LED driver; using sim")
	}
	return pulse.NewSim(strip.ChannelConfig(), strip.Encode, log.Logger)
}

type stdioRW struct {
	io.Reader
	io.Writer
}

func openATPort(port string, baud int) (io.ReadWriter, func() error, error) {
	if port == "" {
		log.Info().Msg("AT commands on stdin/stdout")
		return stdioRW{Reader: os.Stdin, Writer: os.Stdout}, func() error { return nil }, nil
	}
	p, err := serial.OpenPort(&serial.Config{Name: port, Baud: baud})
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("port", port).Int("baud", baud).Msg("AT commands on serial port")
	return p, p.Close, nil
}

func openBridgePorts(cfg config.Bridge) (io.ReadWriter, io.ReadWriter, error) {
	baud := cfg.Baud
	if baud == 0 {
		baud = 115200
	}
	usb, err := serial.OpenPort(&serial.Config{Name: cfg.USBPort, Baud: baud, ReadTimeout: bridgeReadTimeout})
	if err != nil {
		return nil, nil, err
	}
	uart, err := serial.OpenPort(&serial.Config{Name: cfg.UARTPort, Baud: baud, ReadTimeout: bridgeReadTimeout})
	if err != nil {
		usb.Close()
		return nil, nil, err
	}
	log.Info().Str("usb", cfg.USBPort).Str("uart", cfg.UARTPort).Int("baud", baud).Msg("bridge ports open")
	return usb, uart, nil
}
