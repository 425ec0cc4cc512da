package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"unicode"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/uz-foundation/rp3hal/pkg/bmx055"
	"github.com/uz-foundation/rp3hal/pkg/halerrors"
	"github.com/uz-foundation/rp3hal/pkg/hardware"
	"github.com/uz-foundation/rp3hal/pkg/led"
	"github.com/uz-foundation/rp3hal/pkg/logging"
	"github.com/uz-foundation/rp3hal/pkg/motor"
	"github.com/uz-foundation/rp3hal/pkg/pushsw"
	"github.com/uz-foundation/rp3hal/pkg/sensor"
)

type display interface {
	Clear() error
	SetDisplayControl(displayOn, cursorOn, blinkOn bool) error
	CursorSet(x, y int) error
	Printf(format string, args ...interface{}) (int, error)
	PutString(s string) (int, error)
}

type dutySetter interface {
	SetDuty(state motor.State, rate int)
}

type switches interface {
	Pressed(which pushsw.Switch) bool
}

type analog interface {
	Read() (sensor.Reading, error)
}

type inertial interface {
	GetAcc(axis bmx055.Axis) (sensor.Reading, error)
	GetGyro(axis bmx055.Axis) (sensor.Reading, error)
	GetMag(axis bmx055.Axis) (sensor.Reading, error)
	Acc() (r3.Vec, error)
	Gyro() (r3.Vec, error)
	Mag() (r3.Vec, error)
}

type runner struct {
	out    io.Writer
	legacy bool
	log    *logrus.Entry

	lcd  display
	led  interface{ Set(value byte) error }
	dc   dutySetter
	dc2  dutySetter
	sw   switches
	pot  analog
	imu  inertial
	info func(w io.Writer) error
}

func newRunner(h *hardware.Hardware, out io.Writer, legacy bool) *runner {
	return &runner{
		out:    out,
		legacy: legacy,
		log:    logging.For(logging.MAI),
		lcd:    h.LCD,
		led:    h.LED,
		dc:     h.DC,
		dc2:    h.DC2,
		sw:     h.Switches,
		pot:    h.Pot,
		imu:    h.IMU,
		info:   h.ShowInfo,
	}
}

func (r *runner) logErr(err error, msg string) {
	if err != nil {
		r.log.WithError(err).Error(msg)
	}
}

// banner shows which command is running on the first display row.
func (r *runner) banner(cmd string) {
	r.logErr(r.lcd.Clear(), "fail to clear lcd")
	r.logErr(r.lcd.SetDisplayControl(true, false, false), "fail to set lcd mode")
	r.logErr(r.lcd.CursorSet(0, 0), "fail to move lcd cursor")
	_, err := r.lcd.Printf("cmd:%s", cmd)
	r.logErr(err, "fail to print on lcd")
}

// lcdText blanks both rows and writes s at (x, y).
func (r *runner) lcdText(opts *LCDCLI) {
	for y := 0; y < 2; y++ {
		r.logErr(r.lcd.CursorSet(0, y), "fail to move lcd cursor")
		_, err := r.lcd.PutString("                ")
		r.logErr(err, "fail to print on lcd")
	}
	if opts.S == "" {
		return
	}
	r.logErr(r.lcd.CursorSet(opts.X, opts.Y), "fail to move lcd cursor")
	_, err := r.lcd.PutString(opts.S)
	r.logErr(err, "fail to print on lcd")
}

func (r *runner) setLED(arg string) {
	v, err := led.ParseValue(arg)
	if err != nil {
		r.logErr(err, "invalid argument error.")
		return
	}
	r.logErr(r.led.Set(v), "fail to set led")
}

// motors handles -d and -e: standby, pm or a duty in percent.
func (r *runner) motors(ctx context.Context, arg string, targets ...dutySetter) {
	switch {
	case arg == "standby":
		for _, m := range targets {
			m.SetDuty(motor.Standby, 0)
		}
	case arg == "pm":
		r.pmLoop(ctx)
	case arg != "" && unicode.IsDigit(rune(arg[0])):
		rate, err := strconv.Atoi(arg)
		if err != nil {
			r.logErr(halerrors.InvalidArgument("motor duty %q", arg), "invalid argument error.")
			return
		}
		for _, m := range targets {
			m.SetDuty(motor.RotateCW, rate)
		}
	default:
		r.logErr(halerrors.InvalidArgument("motor command %q", arg), "invalid argument error.")
	}
}

// pmLoop follows the potentiometer until switch 0 is pressed. Holding
// switch 1 drives DC at the potentiometer rate, switch 2 drives DC2.
func (r *runner) pmLoop(ctx context.Context) {
	for ctx.Err() == nil && !r.sw.Pressed(pushsw.SW0) {
		reading, err := r.pot.Read()
		r.logErr(err, "fail to read potentiometer")
		r.logErr(r.lcd.CursorSet(0, 1), "fail to move lcd cursor")
		_, err = r.lcd.Printf("%3d%%", reading.RatePercent)
		r.logErr(err, "fail to print on lcd")

		if r.sw.Pressed(pushsw.SW1) {
			r.dc.SetDuty(motor.RotateCW, reading.RatePercent)
		} else if r.sw.Pressed(pushsw.SW2) {
			r.dc2.SetDuty(motor.RotateCW, reading.RatePercent)
		}
	}
	r.dc.SetDuty(motor.Stop, 0)
	r.dc2.SetDuty(motor.Stop, 0)
}

func (r *runner) potentiometer(arg string) {
	if arg != pmPlain && arg != "json" {
		r.logErr(halerrors.InvalidArgument("sa_pm %q", arg), "invalid argument error.")
		return
	}
	reading, err := r.pot.Read()
	if err != nil {
		r.logErr(err, "fail to read potentiometer")
		return
	}
	r.logErr(r.lcd.CursorSet(0, 1), "fail to move lcd cursor")
	_, err = r.lcd.Printf("%3d %%", reading.RatePercent)
	r.logErr(err, "fail to print on lcd")

	if arg == pmPlain {
		fmt.Fprintf(r.out, "%3d", reading.RatePercent)
		return
	}
	s, err := formatPMJSON(reading.RatePercent, r.legacy)
	if err != nil {
		r.logErr(err, "fail to format json")
		return
	}
	fmt.Fprint(r.out, s)
}

type inertialPart struct {
	sensor string
	axis   func(bmx055.Axis) (sensor.Reading, error)
	all    func() (r3.Vec, error)
}

func (r *runner) parts() map[string]inertialPart {
	return map[string]inertialPart{
		"acc":  {"si_bmx055acc", r.imu.GetAcc, r.imu.Acc},
		"gyro": {"si_bmx055gyro", r.imu.GetGyro, r.imu.Gyro},
		"mag":  {"si_bmx055mag", r.imu.GetMag, r.imu.Mag},
	}
}

// inertial handles -x, -y and -z for one part of the IMU.
func (r *runner) inertial(part string, arg string) {
	p := r.parts()[part]
	var axis bmx055.Axis
	switch arg {
	case "x":
		axis = bmx055.X
	case "y":
		axis = bmx055.Y
	case "z":
		axis = bmx055.Z
	case "json":
		v, err := p.all()
		if err != nil {
			r.logErr(err, "fail to read data from i2c slave.")
			return
		}
		r.logErr(r.lcd.CursorSet(0, 1), "fail to move lcd cursor")
		_, err = r.lcd.Printf("%+5.1f%+5.1f%+5.1f", v.X, v.Y, v.Z)
		r.logErr(err, "fail to print on lcd")
		s, err := formatVecJSON(p.sensor, v, r.legacy)
		if err != nil {
			r.logErr(err, "fail to format json")
			return
		}
		fmt.Fprint(r.out, s)
		return
	default:
		r.logErr(halerrors.InvalidArgument("%s %q", p.sensor, arg), "invalid argument error.")
		return
	}

	reading, err := p.axis(axis)
	if err != nil {
		r.logErr(err, "fail to read data from i2c slave.")
		return
	}
	r.logErr(r.lcd.CursorSet(0, 1), "fail to move lcd cursor")
	_, err = r.lcd.Printf("%+8.4f", reading.Current)
	r.logErr(err, "fail to print on lcd")
	fmt.Fprintf(r.out, "%f", reading.Current)
}

// dispatch runs the requested operations in a fixed order.
func (r *runner) dispatch(ctx context.Context, cli *CLI) {
	if cli.Info {
		r.logErr(r.info(r.out), "fail to show system information")
	}
	if cli.LED != "" {
		r.setLED(cli.LED)
	}
	if cli.MotorDC != "" {
		r.motors(ctx, cli.MotorDC, r.dc, r.dc2)
	}
	if cli.MotorDC2 != "" {
		r.motors(ctx, cli.MotorDC2, r.dc2)
	}
	if cli.PM != "" {
		r.potentiometer(cli.PM)
	}
	if cli.Acc != "" {
		r.inertial("acc", cli.Acc)
	}
	if cli.Gyro != "" {
		r.inertial("gyro", cli.Gyro)
	}
	if cli.Mag != "" {
		r.inertial("mag", cli.Mag)
	}
}
