package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/uz-foundation/rp3hal/pkg/adcsensor"
	"github.com/uz-foundation/rp3hal/pkg/halerrors"
	"github.com/uz-foundation/rp3hal/pkg/hardware"
	"github.com/uz-foundation/rp3hal/pkg/led"
	"github.com/uz-foundation/rp3hal/pkg/motor"
	"github.com/uz-foundation/rp3hal/pkg/pushsw"
	"github.com/uz-foundation/rp3hal/pkg/pwmmotor"
)

// DefaultWatchInterval is the sampling period of the watch command.
const DefaultWatchInterval = 500 * time.Millisecond

type command struct {
	name  string
	usage string
	run   func(out io.Writer, args []string) error
}

type board struct {
	ctx           context.Context
	hw            *hardware.Hardware
	watchInterval time.Duration
}

func (b *board) commands() []command {
	return []command{
		{"lcd", "lcd <x> <y> <text>", b.lcd},
		{"clear", "clear the LCD", b.clear},
		{"led", "led <hex>", b.led},
		{"motor", "motor <dc|dc2|servo> <standby|brake|cw|ccw|stop> [0-100]", b.motor},
		{"stepper", "stepper <cw|ccw|stop|brake|standby> [angle] | stepper speed <us> | stepper status", b.stepper},
		{"pwm", "pwm <channel> <state> <0-100> | pwm servo <channel> <value> | pwm freq <hz>", b.pwm},
		{"pm", "read the potentiometer", b.pm},
		{"dist", "read the distance sensors", b.dist},
		{"imu", "imu <acc|gyro|mag>", b.imu},
		{"sw", "show the push switches", b.switches},
		{"watch", "watch [samples]", b.watch},
		{"info", "show the system information", b.info},
		{"time", "show the local and UTC time", b.time},
	}
}

func needArgs(args []string, n int, usage string) error {
	if len(args) < n {
		return halerrors.InvalidArgument("usage: %s", usage)
	}
	return nil
}

func atoi(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, halerrors.InvalidArgument("%q is not a number", s)
	}
	return v, nil
}

func (b *board) lcd(out io.Writer, args []string) error {
	if err := needArgs(args, 3, "lcd <x> <y> <text>"); err != nil {
		return err
	}
	x, err := atoi(args[0])
	if err != nil {
		return err
	}
	y, err := atoi(args[1])
	if err != nil {
		return err
	}
	if err := b.hw.LCD.CursorSet(x, y); err != nil {
		return err
	}
	_, err = b.hw.LCD.PutString(strings.Join(args[2:], " "))
	return err
}

func (b *board) clear(out io.Writer, args []string) error {
	return b.hw.LCD.Clear()
}

func (b *board) led(out io.Writer, args []string) error {
	if err := needArgs(args, 1, "led <hex>"); err != nil {
		return err
	}
	v, err := led.ParseValue(args[0])
	if err != nil {
		return err
	}
	return b.hw.LED.Set(v)
}

func (b *board) motor(out io.Writer, args []string) error {
	if err := needArgs(args, 2, "motor <name> <state> [rate]"); err != nil {
		return err
	}
	var m *pwmmotor.Motor
	switch args[0] {
	case "dc":
		m = b.hw.DC
	case "dc2":
		m = b.hw.DC2
	case "servo":
		m = b.hw.Servo
	default:
		return halerrors.InvalidArgument("unknown motor %q", args[0])
	}
	state, err := motor.Parse(args[1])
	if err != nil {
		return err
	}
	rate := 0
	if len(args) > 2 {
		if rate, err = atoi(args[2]); err != nil {
			return err
		}
	}
	m.SetDuty(state, rate)
	s, r := m.Status()
	fmt.Fprintf(out, "%s: %v %d%%\n", m.Name(), s, r)
	return nil
}

func (b *board) stepper(out io.Writer, args []string) error {
	if err := needArgs(args, 1, "stepper <state> [angle]"); err != nil {
		return err
	}
	s := b.hw.Stepper
	switch args[0] {
	case "status":
		counter, target := s.Progress()
		fmt.Fprintf(out, "%v %d/%d pulses every %v\n", s.State(), counter, target, s.Interval())
		return nil
	case "speed":
		if err := needArgs(args, 2, "stepper speed <us>"); err != nil {
			return err
		}
		us, err := atoi(args[1])
		if err != nil {
			return err
		}
		s.SetSpeed(us)
		return nil
	}
	state, err := motor.Parse(args[0])
	if err != nil {
		return err
	}
	if len(args) == 1 {
		return s.SetStatus(state)
	}
	angle, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return halerrors.InvalidArgument("%q is not an angle", args[1])
	}
	return s.SetAngle(state, angle)
}

func (b *board) pwm(out io.Writer, args []string) error {
	if err := needArgs(args, 2, "pwm <channel> <state> <rate>"); err != nil {
		return err
	}
	switch args[0] {
	case "freq":
		hz, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return halerrors.InvalidArgument("%q is not a frequency", args[1])
		}
		return b.hw.PWM.SetFrequency(hz)
	case "servo":
		if err := needArgs(args, 3, "pwm servo <channel> <value>"); err != nil {
			return err
		}
		ch, err := atoi(args[1])
		if err != nil {
			return err
		}
		v, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return halerrors.InvalidArgument("%q is not a servo value", args[2])
		}
		return b.hw.PWM.SetServo(ch, v)
	}
	if err := needArgs(args, 3, "pwm <channel> <state> <rate>"); err != nil {
		return err
	}
	ch, err := atoi(args[0])
	if err != nil {
		return err
	}
	state, err := motor.Parse(args[1])
	if err != nil {
		return err
	}
	rate, err := atoi(args[2])
	if err != nil {
		return err
	}
	return b.hw.PWM.SetDuty(ch, state, rate)
}

func (b *board) pm(out io.Writer, args []string) error {
	r, err := b.hw.Pot.Read()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%3d%% (%d mV, raw %.0f)\n", r.RatePercent, r.VoltageMilli, r.Current)
	return nil
}

func (b *board) dist(out io.Writer, args []string) error {
	all, err := b.hw.Distance.ReadAll()
	for p, r := range all {
		fmt.Fprintf(out, "%-16v %4.0f (%d mV)\n", adcsensor.Position(p), r.Current, r.VoltageMilli)
	}
	return err
}

func (b *board) imu(out io.Writer, args []string) error {
	if err := needArgs(args, 1, "imu <acc|gyro|mag>"); err != nil {
		return err
	}
	var read func() (r3.Vec, error)
	switch args[0] {
	case "acc":
		read = b.hw.IMU.Acc
	case "gyro":
		read = b.hw.IMU.Gyro
	case "mag":
		read = b.hw.IMU.Mag
	default:
		return halerrors.InvalidArgument("unknown sensor %q", args[0])
	}
	v, err := read()
	if err != nil {
		return errors.Wrapf(err, "read %s", args[0])
	}
	fmt.Fprintln(out, vecString(v))
	return nil
}

func vecString(v r3.Vec) string {
	return fmt.Sprintf("(%+.3f %+.3f %+.3f)", v.X, v.Y, v.Z)
}

func (b *board) switches(out io.Writer, args []string) error {
	for sw := pushsw.SW0; sw < pushsw.Count; sw++ {
		fmt.Fprintf(out, "SW%d: %v\n", sw, b.hw.Switches.Pressed(sw))
	}
	return nil
}

// watch prints n samples of every input, or runs until interrupted when n
// is omitted.
func (b *board) watch(out io.Writer, args []string) error {
	n := 0
	if len(args) > 0 {
		var err error
		if n, err = atoi(args[0]); err != nil {
			return err
		}
	}
	ctx, cancel := context.WithCancel(b.ctx)
	defer cancel()

	seen := 0
	b.hw.Monitor(ctx, b.watchInterval, func(s hardware.Sample) {
		fmt.Fprintf(out, "%s pm=%3d%% dist=[%4.0f %4.0f %4.0f %4.0f] acc=%v gyro=%v mag=%v\n",
			s.CaptureTime.Format("15:04:05.000"), s.Potentiometer.RatePercent,
			s.Distances[0].Current, s.Distances[1].Current, s.Distances[2].Current, s.Distances[3].Current,
			vecString(s.Acc), vecString(s.Gyro), vecString(s.Mag))
		if s.Err != nil {
			fmt.Fprintf(out, "  errors: %v\n", s.Err)
		}
		seen++
		if n > 0 && seen >= n {
			cancel()
		}
	})
	return nil
}

func (b *board) info(out io.Writer, args []string) error {
	return b.hw.ShowInfo(out)
}

func (b *board) time(out io.Writer, args []string) error {
	fmt.Fprintf(out, "local %v\nutc   %v\n", b.hw.Clock.LocalTime(), b.hw.Clock.UTC())
	return nil
}
