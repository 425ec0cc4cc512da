package led

import (
	"errors"
	"testing"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/physic"

	"github.com/uz-foundation/rp3hal/pkg/bus"
	"github.com/uz-foundation/rp3hal/pkg/halerrors"
)

type fakePin struct {
	level gpio.Level
	fail  bool
}

func (p *fakePin) In(gpio.Pull, gpio.Edge) error         { return nil }
func (p *fakePin) Read() gpio.Level                      { return p.level }
func (p *fakePin) PWM(gpio.Duty, physic.Frequency) error { return nil }

func (p *fakePin) Out(l gpio.Level) error {
	if p.fail {
		return errors.New("gpio")
	}
	p.level = l
	return nil
}

type fakePins map[int]*fakePin

func (f fakePins) Pin(n int) (bus.Pin, error) {
	p, ok := f[n]
	if !ok {
		return nil, halerrors.ErrBusOpen
	}
	return p, nil
}

func TestSetDrivesBits(t *testing.T) {
	pins := fakePins{14: {}, 15: {}, 23: {}, 24: {}}
	b, err := Open(pins, BoardPins)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Set(0x05); err != nil {
		t.Fatal(err)
	}
	expected := map[int]gpio.Level{14: gpio.High, 15: gpio.Low, 23: gpio.High, 24: gpio.Low}
	for n, l := range expected {
		if pins[n].level != l {
			t.Errorf("GPIO%d = %v, expected %v", n, pins[n].level, l)
		}
	}
	if b.Value() != 0x05 {
		t.Errorf("Value %x", b.Value())
	}
	_ = b.Set(0xF8)
	if pins[24].level != gpio.High || pins[14].level != gpio.Low {
		t.Error("Upper bits should be ignored beyond the bank")
	}
}

func TestOpenMissingPin(t *testing.T) {
	if _, err := Open(fakePins{14: {}}, BoardPins); !errors.Is(err, halerrors.ErrBusOpen) {
		t.Errorf("Expected open failure, got %v", err)
	}
}

func TestSetFailureKeepsValue(t *testing.T) {
	p := &fakePin{}
	b := New(p)
	_ = b.Set(1)
	p.fail = true
	if err := b.Set(0); err == nil {
		t.Fatal("Expected failure")
	}
	if b.Value() != 1 {
		t.Errorf("Value %x after failure", b.Value())
	}
}

func TestParseValue(t *testing.T) {
	for in, expected := range map[string]byte{"0": 0, "f": 0x0F, "0x0a": 0x0A, "0XFF": 0xFF, "1ff": 0xFF} {
		v, err := ParseValue(in)
		if err != nil || v != expected {
			t.Errorf("ParseValue(%q) = %x, %v", in, v, err)
		}
	}
	for _, in := range []string{"", "zz", "0x"} {
		if _, err := ParseValue(in); !errors.Is(err, halerrors.ErrInvalidArgument) {
			t.Errorf("ParseValue(%q) = %v", in, err)
		}
	}
}
