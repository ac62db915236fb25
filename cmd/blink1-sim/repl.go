package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"blink1-go/errcode"
	"blink1-go/hostlib"
	"blink1-go/types"

	"github.com/google/shlex"
	"github.com/lucasb-eyer/go-colorful"
)

var errQuit = errors.New("quit")

const help = `commands:
  list                          enumerate devices
  open [index|serial]           open a device (default first)
  close                         close the open device
  fade <ms> <colour>            fade to colour
  rgb <colour>                  set colour now
  play on|off [pos]             play or pause the pattern
  pattern <pos> <ms> <colour>   store a pattern line
  eeread <addr>                 read an eeprom byte
  eewrite <addr> <value>        write an eeprom byte
  serverdown on|off [ms]        arm or disarm the server-down timer
  nightlight on|off             store the boot mode
  version | selftest
  degamma on|off                host-side colour correction
  status                        show every device
  plug <index> | unplug <index>
  save                          write eeprom image files
  quit
a colour is <r> <g> <b> or #rrggbb`

// Repl reads commands from in until EOF or quit.
func (s *Sim) Repl(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	fmt.Fprint(s.out, "> ")
	for sc.Scan() {
		err := s.Exec(ctx, sc.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(s.out, "error: %v (%d)\n", err, errcode.Result(err))
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fmt.Fprint(s.out, "> ")
	}
	return sc.Err()
}

// Exec runs one command line.
func (s *Sim) Exec(ctx context.Context, line string) error {
	args, err := shlex.Split(line)
	if err != nil {
		return &errcode.E{C: errcode.InvalidParams, Op: "parse", Err: err}
	}
	if len(args) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(args[0]), args[1:]

	switch cmd {
	case "help", "?":
		fmt.Fprintln(s.out, help)
		return nil
	case "quit", "exit":
		return errQuit
	case "list":
		return s.list()
	case "open":
		return s.openDevice(args)
	case "close":
		s.Close()
		return nil
	case "degamma":
		on, err := onOff(args, 0)
		if err != nil {
			return err
		}
		s.lib.SetDegamma(on)
		return nil
	case "status":
		s.status()
		return nil
	case "plug", "unplug":
		return s.plug(cmd == "plug", args)
	case "save":
		return s.Save()
	}

	d, err := s.device()
	if err != nil {
		return err
	}
	switch cmd {
	case "fade":
		if len(args) < 2 {
			return badArg(errors.New("want <ms> <colour>"))
		}
		ms, err := strconv.ParseUint(args[0], 0, 16)
		if err != nil {
			return badArg(err)
		}
		c, err := colour(args[1:])
		if err != nil {
			return err
		}
		return d.FadeToRGB(ctx, uint16(ms), c)
	case "rgb":
		c, err := colour(args)
		if err != nil {
			return err
		}
		return d.SetRGB(ctx, c)
	case "play":
		on, err := onOff(args, 0)
		if err != nil {
			return err
		}
		var pos uint64
		if len(args) > 1 {
			if pos, err = strconv.ParseUint(args[1], 0, 8); err != nil {
				return badArg(err)
			}
		}
		return d.Play(ctx, on, uint8(pos))
	case "pattern":
		if len(args) < 3 {
			return badArg(errors.New("want <pos> <ms> <colour>"))
		}
		v, err := nums(args[:2], 2, 8, 16)
		if err != nil {
			return err
		}
		c, err := colour(args[2:])
		if err != nil {
			return err
		}
		return d.WritePatternLine(ctx, uint16(v[1]), c, uint8(v[0]))
	case "eeread":
		v, err := nums(args, 1, 8)
		if err != nil {
			return err
		}
		b, err := d.ReadEEPROM(ctx, uint8(v[0]))
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "eeprom[%d] = 0x%02x\n", v[0], b)
		return nil
	case "eewrite":
		v, err := nums(args, 2, 8, 8)
		if err != nil {
			return err
		}
		return d.WriteEEPROM(ctx, uint8(v[0]), uint8(v[1]))
	case "serverdown":
		on, err := onOff(args, 0)
		if err != nil {
			return err
		}
		var ms uint64
		if len(args) > 1 {
			if ms, err = strconv.ParseUint(args[1], 0, 16); err != nil {
				return badArg(err)
			}
		}
		return d.ServerDown(ctx, on, uint16(ms))
	case "nightlight":
		on, err := onOff(args, 0)
		if err != nil {
			return err
		}
		return d.SetNightlight(ctx, on)
	case "version":
		v, err := d.Version(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "firmware version %d\n", v)
		return nil
	case "selftest":
		session, err := d.SelfTest(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "selftest ok, host session: %v\n", session)
		return nil
	}
	return &errcode.E{C: errcode.InvalidParams, Op: cmd, Msg: "unknown command, try help"}
}

func (s *Sim) device() (*hostlib.Device, error) {
	s.mu.Lock()
	d := s.open
	s.mu.Unlock()
	if d != nil {
		return d, nil
	}
	if err := s.openDevice(nil); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open, nil
}

func (s *Sim) openDevice(args []string) error {
	if _, err := s.lib.Enumerate(); err != nil {
		return err
	}
	var (
		d   *hostlib.Device
		err error
	)
	switch {
	case len(args) == 0:
		d, err = s.lib.Open()
	default:
		if i, perr := strconv.Atoi(args[0]); perr == nil {
			d, err = s.lib.OpenByIndex(i)
		} else {
			d, err = s.lib.OpenBySerial(args[0])
		}
	}
	if err != nil {
		return err
	}
	s.Close()
	s.mu.Lock()
	s.open = d
	s.mu.Unlock()
	fmt.Fprintf(s.out, "opened %s (%s)\n", d.Info().Serial, d.Info().Path)
	return nil
}

func (s *Sim) list() error {
	n, err := s.lib.Enumerate()
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		info, _ := s.lib.Cached(i)
		fmt.Fprintf(s.out, "%d: serial %s path %s\n", i, info.Serial, info.Path)
	}
	if n == 0 {
		fmt.Fprintln(s.out, "no devices")
	}
	return nil
}

func (s *Sim) status() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.devs {
		c := d.board.LEDs.Last()
		duty := d.board.Duty()
		p := s.play[d.id]
		fmt.Fprintf(s.out, "device %s: %s pwm %v playing %v pos %d plugged %v",
			d.id, c, duty, p.Playing, p.Position, d.board.HID.Attached())
		if s.alarm[d.id] {
			fmt.Fprint(s.out, " SERVER DOWN")
		}
		fmt.Fprintln(s.out)
	}
}

func (s *Sim) plug(on bool, args []string) error {
	v, err := nums(args, 1, 8)
	if err != nil {
		return err
	}
	if int(v[0]) >= len(s.devs) {
		return &errcode.E{C: errcode.NotFound, Op: "plug", Msg: "no such device"}
	}
	d := s.devs[v[0]]
	if on {
		if !d.board.HID.Attached() {
			d.info = s.usb.Plug(d.board.HID, d.info.Serial)
		}
		return nil
	}
	s.usb.Unplug(d.info.Path)
	return nil
}

// -----------------------------------------------------------------------------
// Argument helpers
// -----------------------------------------------------------------------------

func badArg(err error) error {
	return &errcode.E{C: errcode.InvalidParams, Op: "args", Err: err}
}

// nums parses exactly n unsigned arguments with the given bit sizes.
func nums(args []string, n int, bits ...int) ([]uint64, error) {
	if len(args) != n {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "args", Msg: fmt.Sprintf("want %d arguments", n)}
	}
	out := make([]uint64, n)
	for i, a := range args {
		v, err := strconv.ParseUint(a, 0, bits[i])
		if err != nil {
			return nil, badArg(err)
		}
		out[i] = v
	}
	return out, nil
}

func onOff(args []string, i int) (bool, error) {
	if len(args) <= i {
		return false, &errcode.E{C: errcode.InvalidParams, Op: "args", Msg: "want on or off"}
	}
	switch strings.ToLower(args[i]) {
	case "on", "1", "true":
		return true, nil
	case "off", "0", "false":
		return false, nil
	}
	return false, &errcode.E{C: errcode.InvalidParams, Op: "args", Msg: "want on or off"}
}

// colour accepts three 8-bit components or a single hex colour.
func colour(args []string) (types.RGB, error) {
	if len(args) == 1 {
		c, err := colorful.Hex(args[0])
		if err != nil {
			return types.RGB{}, badArg(err)
		}
		r, g, b := c.Clamped().RGB255()
		return types.RGB{R: r, G: g, B: b}, nil
	}
	v, err := nums(args, 3, 8, 8, 8)
	if err != nil {
		return types.RGB{}, err
	}
	return types.RGB{R: uint8(v[0]), G: uint8(v[1]), B: uint8(v[2])}, nil
}
