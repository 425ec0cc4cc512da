package bus

import (
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/physic"

	"github.com/uz-foundation/rp3hal/pkg/logging"
)

var dlog = logging.For(logging.HAL)

// DummyI2C accepts every write and reads back zeros.
func DummyI2C() I2CBus {
	return &dummyI2C{}
}

type dummyI2C struct{}

func (*dummyI2C) Device(addr int) Port {
	return &dummyPort{addr: addr}
}

func (*dummyI2C) Close() error {
	return nil
}

type dummyPort struct {
	addr int
}

func (p *dummyPort) Write(buf []byte) error {
	dlog.Debugf("Dummy I2C 0x%02x write % x", p.addr, buf)
	return nil
}

func (p *dummyPort) Read(buf []byte) error {
	zero(buf)
	dlog.Debugf("Dummy I2C 0x%02x read %d bytes", p.addr, len(buf))
	return nil
}

func (p *dummyPort) ReadReg(reg byte, buf []byte) error {
	zero(buf)
	dlog.Debugf("Dummy I2C 0x%02x read reg 0x%02x (%d bytes)", p.addr, reg, len(buf))
	return nil
}

func (p *dummyPort) WriteReg(reg byte, buf []byte) error {
	dlog.Debugf("Dummy I2C 0x%02x write reg 0x%02x % x", p.addr, reg, buf)
	return nil
}

// DummySPI answers every transfer with zeros.
func DummySPI() SPIBus {
	return &dummySPI{}
}

type dummySPI struct{}

func (*dummySPI) Tx(w, r []byte) error {
	zero(r)
	dlog.Debugf("Dummy SPI tx % x", w)
	return nil
}

func (*dummySPI) Close() error {
	return nil
}

// DummyPins hands out pins that read high and log writes.
func DummyPins() Pins {
	return dummyPins{}
}

type dummyPins struct{}

func (dummyPins) Pin(num int) (Pin, error) {
	return &dummyPin{num: num, level: gpio.High}, nil
}

type dummyPin struct {
	num   int
	level gpio.Level
}

func (p *dummyPin) In(pull gpio.Pull, edge gpio.Edge) error {
	dlog.Debugf("Dummy GPIO%d input pull=%v", p.num, pull)
	return nil
}

func (p *dummyPin) Read() gpio.Level {
	return p.level
}

func (p *dummyPin) Out(l gpio.Level) error {
	dlog.Debugf("Dummy GPIO%d out %v", p.num, l)
	return nil
}

func (p *dummyPin) PWM(duty gpio.Duty, f physic.Frequency) error {
	dlog.Debugf("Dummy GPIO%d pwm duty=%v f=%v", p.num, duty, f)
	return nil
}

func zero(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}
