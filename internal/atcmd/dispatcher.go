// Package atcmd implements a minimal serial AT command surface: a line-based
// dispatcher with a command registry, and the handlers for the peripheral
// commands this firmware exposes.
package atcmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// Result is the outcome reported back on the command channel. The protocol
// carries no parameter-level detail, just OK or ERROR.
type Result uint8

const (
	OK Result = iota
	Error
)

func (r Result) String() string {
	if r == OK {
		return "OK"
	}
	return "ERROR"
}

// Command binds a name like "+LED" to its handlers. Setup serves the
// "AT+NAME=p1,p2" form, Execute the bare "AT+NAME" form. Either may be nil.
type Command struct {
	Name    string
	Setup   func(params []string) Result
	Execute func() Result
}

// Dispatcher parses AT lines and routes them to registered commands.
// Commands run to completion on the serving goroutine; there is never more
// than one handler in flight.
type Dispatcher struct {
	log  zerolog.Logger
	cmds map[string]Command
}

func NewDispatcher(log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		log:  log.With().Str("comp", "atcmd").Logger(),
		cmds: make(map[string]Command),
	}
}

// Register adds a command. Names must start with '+' and be unique.
func (d *Dispatcher) Register(cmd Command) error {
	name := strings.ToUpper(cmd.Name)
	if !strings.HasPrefix(name, "+") {
		return fmt.Errorf("atcmd: command name %q must start with '+'", cmd.Name)
	}
	if _, dup := d.cmds[name]; dup {
		return fmt.Errorf("atcmd: command %q already registered", name)
	}
	cmd.Name = name
	d.cmds[name] = cmd
	d.log.Info().Str("cmd", name).Msg("command registered")
	return nil
}

// Exec parses and runs one line, returning the result to report.
func (d *Dispatcher) Exec(line string) Result {
	line = strings.TrimSpace(line)
	upper := strings.ToUpper(line)
	if !strings.HasPrefix(upper, "AT") {
		return Error
	}
	rest := upper[2:]
	if rest == "" {
		return OK // bare attention check
	}
	if !strings.HasPrefix(rest, "+") {
		return Error
	}

	name, _, hasArgs := strings.Cut(rest, "=")
	cmd, ok := d.cmds[name]
	if !ok {
		d.log.Warn().Str("cmd", name).Msg("unknown command")
		return Error
	}

	if hasArgs {
		if cmd.Setup == nil {
			return Error
		}
		// Parameters keep the original casing of the raw line.
		raw := line[len("AT")+len(name)+len("="):]
		return cmd.Setup(strings.Split(raw, ","))
	}
	if cmd.Execute == nil {
		return Error
	}
	return cmd.Execute()
}

// Serve reads CRLF-terminated lines from rw until EOF or ctx is done,
// reporting each command's result back on the same stream.
func (d *Dispatcher) Serve(ctx context.Context, rw io.ReadWriter) error {
	scanner := bufio.NewScanner(rw)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		res := d.Exec(line)
		if _, err := io.WriteString(rw, res.String()+"\r\n"); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}
	return scanner.Err()
}
