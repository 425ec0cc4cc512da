package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/uz-foundation/rp3hal/pkg/bmx055"
	"github.com/uz-foundation/rp3hal/pkg/logging"
	"github.com/uz-foundation/rp3hal/pkg/motor"
	"github.com/uz-foundation/rp3hal/pkg/pushsw"
	"github.com/uz-foundation/rp3hal/pkg/sensor"
)

type fakeDisplay struct {
	ops []string
}

func (d *fakeDisplay) Clear() error { d.ops = append(d.ops, "clear"); return nil }
func (d *fakeDisplay) SetDisplayControl(on, cursor, blink bool) error {
	d.ops = append(d.ops, fmt.Sprintf("ctrl %v %v %v", on, cursor, blink))
	return nil
}
func (d *fakeDisplay) CursorSet(x, y int) error {
	d.ops = append(d.ops, fmt.Sprintf("at %d,%d", x, y))
	return nil
}
func (d *fakeDisplay) Printf(format string, args ...interface{}) (int, error) {
	s := fmt.Sprintf(format, args...)
	d.ops = append(d.ops, "print "+s)
	return len(s), nil
}
func (d *fakeDisplay) PutString(s string) (int, error) {
	d.ops = append(d.ops, "print "+s)
	return len(s), nil
}

type duty struct {
	state motor.State
	rate  int
}

type fakeMotor struct {
	calls []duty
}

func (m *fakeMotor) SetDuty(state motor.State, rate int) {
	m.calls = append(m.calls, duty{state, rate})
}

// fakeSwitches replays a script of pressed switches, one entry per poll
// of SW0.
type fakeSwitches struct {
	script [][]pushsw.Switch
	poll   int
}

func (s *fakeSwitches) Pressed(which pushsw.Switch) bool {
	if which == pushsw.SW0 {
		s.poll++
	}
	if s.poll > len(s.script) {
		return which == pushsw.SW0
	}
	for _, p := range s.script[s.poll-1] {
		if p == which {
			return true
		}
	}
	return false
}

type fakeAnalog struct {
	rates []int
	reads int
}

func (a *fakeAnalog) Read() (sensor.Reading, error) {
	r := a.rates[a.reads%len(a.rates)]
	a.reads++
	return sensor.Reading{RatePercent: r}, nil
}

type fakeIMU struct {
	acc, gyro, mag r3.Vec
}

func component(v r3.Vec, axis bmx055.Axis) sensor.Reading {
	return sensor.Reading{Current: [...]float64{v.X, v.Y, v.Z}[axis]}
}

func (f *fakeIMU) GetAcc(a bmx055.Axis) (sensor.Reading, error)  { return component(f.acc, a), nil }
func (f *fakeIMU) GetGyro(a bmx055.Axis) (sensor.Reading, error) { return component(f.gyro, a), nil }
func (f *fakeIMU) GetMag(a bmx055.Axis) (sensor.Reading, error)  { return component(f.mag, a), nil }
func (f *fakeIMU) Acc() (r3.Vec, error)                          { return f.acc, nil }
func (f *fakeIMU) Gyro() (r3.Vec, error)                         { return f.gyro, nil }
func (f *fakeIMU) Mag() (r3.Vec, error)                          { return f.mag, nil }

type fakeLED struct {
	value byte
	sets  int
}

func (l *fakeLED) Set(v byte) error { l.value = v; l.sets++; return nil }

type testRig struct {
	out  bytes.Buffer
	lcd  fakeDisplay
	led  fakeLED
	dc   fakeMotor
	dc2  fakeMotor
	sw   fakeSwitches
	pot  fakeAnalog
	imu  fakeIMU
	info int
	r    *runner
}

func newTestRig(legacy bool) *testRig {
	rig := &testRig{}
	rig.pot.rates = []int{0}
	rig.r = &runner{
		out:    &rig.out,
		legacy: legacy,
		log:    logging.For(logging.MAI),
		lcd:    &rig.lcd,
		led:    &rig.led,
		dc:     &rig.dc,
		dc2:    &rig.dc2,
		sw:     &rig.sw,
		pot:    &rig.pot,
		imu:    &rig.imu,
		info: func(w io.Writer) error {
			rig.info++
			_, err := io.WriteString(w, "info\n")
			return err
		},
	}
	return rig
}

func (rig *testRig) lcdOps() string {
	return strings.Join(rig.lcd.ops, "|")
}

func TestBanner(t *testing.T) {
	rig := newTestRig(false)
	rig.r.banner("-l")
	if got, want := rig.lcdOps(), "clear|ctrl true false false|at 0,0|print cmd:-l"; got != want {
		t.Errorf("lcd = %q, want %q", got, want)
	}
}

func TestLCDText(t *testing.T) {
	rig := newTestRig(false)
	rig.r.lcdText(&LCDCLI{X: 2, Y: 1, S: "hello"})
	blank := "print                 "
	want := "at 0,0|" + blank + "|at 0,1|" + blank + "|at 2,1|print hello"
	if got := rig.lcdOps(); got != want {
		t.Errorf("lcd = %q, want %q", got, want)
	}
}

func TestLED(t *testing.T) {
	rig := newTestRig(false)
	rig.r.setLED("0x0F")
	if rig.led.value != 0x0F {
		t.Errorf("led = %#x", rig.led.value)
	}
	rig.r.setLED("zz")
	if rig.led.sets != 1 {
		t.Errorf("bad value reached the LEDs")
	}
}

func TestMotorCommands(t *testing.T) {
	rig := newTestRig(false)
	ctx := context.Background()

	rig.r.dispatch(ctx, &CLI{MotorDC: "40"})
	want := []duty{{motor.RotateCW, 40}}
	if fmt.Sprint(rig.dc.calls) != fmt.Sprint(want) || fmt.Sprint(rig.dc2.calls) != fmt.Sprint(want) {
		t.Errorf("-d 40: dc %v dc2 %v", rig.dc.calls, rig.dc2.calls)
	}

	rig.dc.calls, rig.dc2.calls = nil, nil
	rig.r.dispatch(ctx, &CLI{MotorDC2: "standby"})
	if len(rig.dc.calls) != 0 {
		t.Errorf("-e touched DC: %v", rig.dc.calls)
	}
	if fmt.Sprint(rig.dc2.calls) != fmt.Sprint([]duty{{motor.Standby, 0}}) {
		t.Errorf("-e standby: %v", rig.dc2.calls)
	}

	rig.dc2.calls = nil
	rig.r.dispatch(ctx, &CLI{MotorDC2: "fast"})
	if len(rig.dc2.calls) != 0 {
		t.Errorf("invalid argument drove the motor: %v", rig.dc2.calls)
	}
}

func TestPMLoop(t *testing.T) {
	rig := newTestRig(false)
	rig.sw.script = [][]pushsw.Switch{
		nil,
		{pushsw.SW1},
		{pushsw.SW2},
		{pushsw.SW1, pushsw.SW2},
	}
	rig.pot.rates = []int{10, 20, 30, 40}

	rig.r.motors(context.Background(), "pm")

	if rig.pot.reads != 4 {
		t.Errorf("reads = %d", rig.pot.reads)
	}
	wantDC := fmt.Sprint([]duty{{motor.RotateCW, 20}, {motor.RotateCW, 40}, {motor.Stop, 0}})
	if got := fmt.Sprint(rig.dc.calls); got != wantDC {
		t.Errorf("dc = %s, want %s", got, wantDC)
	}
	wantDC2 := fmt.Sprint([]duty{{motor.RotateCW, 30}, {motor.Stop, 0}})
	if got := fmt.Sprint(rig.dc2.calls); got != wantDC2 {
		t.Errorf("dc2 = %s, want %s", got, wantDC2)
	}
	if !strings.Contains(rig.lcdOps(), "at 0,1|print  40%") {
		t.Errorf("lcd = %q", rig.lcdOps())
	}
}

func TestPMLoopCancelled(t *testing.T) {
	rig := newTestRig(false)
	rig.sw.script = make([][]pushsw.Switch, 100)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rig.r.pmLoop(ctx)
	if rig.pot.reads != 0 {
		t.Errorf("reads = %d", rig.pot.reads)
	}
	if len(rig.dc.calls) != 1 || rig.dc.calls[0].state != motor.Stop {
		t.Errorf("dc = %v", rig.dc.calls)
	}
}

func TestPotentiometer(t *testing.T) {
	rig := newTestRig(false)
	rig.pot.rates = []int{5}
	rig.r.potentiometer(pmPlain)
	if got := rig.out.String(); got != "  5" {
		t.Errorf("stdout = %q", got)
	}
	if !strings.HasSuffix(rig.lcdOps(), "at 0,1|print   5 %") {
		t.Errorf("lcd = %q", rig.lcdOps())
	}

	rig.out.Reset()
	rig.r.potentiometer("json")
	if got := rig.out.String(); got != `{"sensor":"sa_pm","value":5}` {
		t.Errorf("stdout = %q", got)
	}

	rig.out.Reset()
	rig.r.potentiometer("xml")
	if rig.out.Len() != 0 {
		t.Errorf("stdout = %q", rig.out.String())
	}
}

func TestInertialAxis(t *testing.T) {
	rig := newTestRig(false)
	rig.imu.gyro = r3.Vec{X: 1, Y: -2.5, Z: 3}
	rig.r.dispatch(context.Background(), &CLI{Gyro: "y"})
	if got := rig.out.String(); got != "-2.500000" {
		t.Errorf("stdout = %q", got)
	}
	if !strings.HasSuffix(rig.lcdOps(), "print  -2.5000") {
		t.Errorf("lcd = %q", rig.lcdOps())
	}

	rig.out.Reset()
	rig.r.dispatch(context.Background(), &CLI{Gyro: "yaw"})
	if rig.out.Len() != 0 {
		t.Errorf("axis prefix accepted: %q", rig.out.String())
	}
}

func TestInertialJSON(t *testing.T) {
	rig := newTestRig(true)
	rig.imu.mag = r3.Vec{X: 10, Y: 20, Z: -30}
	rig.r.dispatch(context.Background(), &CLI{Mag: "json"})
	want := `{   "sensor": "si_bmx055mag",  "value": {    "x": 10.000000,    "y": 20.000000,    "z": -30.000000   }}`
	if got := rig.out.String(); got != want {
		t.Errorf("stdout = %q", got)
	}
	if !strings.HasSuffix(rig.lcdOps(), "print +10.0+20.0-30.0") {
		t.Errorf("lcd = %q", rig.lcdOps())
	}
}

func TestDispatchOrder(t *testing.T) {
	rig := newTestRig(false)
	rig.imu.acc = r3.Vec{X: 1}
	rig.pot.rates = []int{50}
	rig.r.dispatch(context.Background(), &CLI{Info: true, PM: pmPlain, Acc: "x"})
	if got := rig.out.String(); got != "info\n 501.000000" {
		t.Errorf("stdout = %q", got)
	}
}

func TestRunHelpAndVersion(t *testing.T) {
	var out bytes.Buffer
	run(context.Background(), []string{"-h"}, &out, nil)
	if out.String() != helpText {
		t.Errorf("help = %q", out.String())
	}

	out.Reset()
	run(context.Background(), []string{"--version"}, &out, nil)
	if !strings.Contains(out.String(), "Version: "+Version) {
		t.Errorf("version = %q", out.String())
	}
}

func TestRunInvalidArgumentPrintsHelp(t *testing.T) {
	var out bytes.Buffer
	run(context.Background(), []string{"-q"}, &out, nil)
	if out.String() != helpText {
		t.Errorf("output = %q", out.String())
	}
}
