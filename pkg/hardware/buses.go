package hardware

import (
	"go.uber.org/multierr"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/physic"

	"github.com/uz-foundation/rp3hal/pkg/bus"
	"github.com/uz-foundation/rp3hal/pkg/config"
	"github.com/uz-foundation/rp3hal/pkg/logging"
)

// Buses are the transports every driver is built on.
type Buses struct {
	I2C  bus.I2CBus
	SPI  bus.SPIBus
	Pins bus.Pins
}

// OpenBuses opens GPIO, I2C and SPI in that order. A bus that fails to open
// is logged and replaced by a stand-in whose every call reports the open
// error, so drivers on the other buses still come up. The returned error
// combines the open failures; the Buses are always usable.
func OpenBuses(cfg *config.Config) (*Buses, error) {
	log := logging.For(logging.SYS)
	b := &Buses{}
	var err error

	if pins, e := bus.OpenGPIO(); e != nil {
		log.WithError(e).Error("fail to open gpio")
		b.Pins, err = missingPins{e}, multierr.Append(err, e)
	} else {
		b.Pins = pins
	}
	if i2c, e := bus.OpenI2C(cfg.I2CDevice); e != nil {
		log.WithError(e).Error("fail to open i2c")
		b.I2C, err = missingI2C{e}, multierr.Append(err, e)
	} else {
		b.I2C = i2c
	}
	if spi, e := bus.OpenSPI(cfg.SPIDevice, physic.Frequency(cfg.SPISpeedHz)*physic.Hertz); e != nil {
		log.WithError(e).Error("fail to open spi")
		b.SPI, err = missingSPI{e}, multierr.Append(err, e)
	} else {
		b.SPI = spi
	}
	return b, err
}

// DummyBuses log traffic instead of touching hardware.
func DummyBuses() *Buses {
	return &Buses{
		I2C:  bus.DummyI2C(),
		SPI:  bus.DummySPI(),
		Pins: bus.DummyPins(),
	}
}

func (b *Buses) Close() error {
	return multierr.Combine(b.I2C.Close(), b.SPI.Close())
}

// missingPin stands in for a GPIO that couldn't be resolved so the rest of
// the board still comes up. Every operation reports the lookup error.
type missingPin struct {
	err error
}

func (p missingPin) In(gpio.Pull, gpio.Edge) error         { return p.err }
func (p missingPin) Read() gpio.Level                      { return gpio.High }
func (p missingPin) Out(gpio.Level) error                  { return p.err }
func (p missingPin) PWM(gpio.Duty, physic.Frequency) error { return p.err }

// Stand-ins for buses that failed to open.

type missingPins struct {
	err error
}

func (p missingPins) Pin(int) (bus.Pin, error) { return nil, p.err }

type missingI2C struct {
	err error
}

func (b missingI2C) Device(int) bus.Port { return missingPort(b) }
func (b missingI2C) Close() error        { return nil }

type missingPort struct {
	err error
}

func (p missingPort) Write([]byte) error          { return p.err }
func (p missingPort) Read([]byte) error           { return p.err }
func (p missingPort) ReadReg(byte, []byte) error  { return p.err }
func (p missingPort) WriteReg(byte, []byte) error { return p.err }

type missingSPI struct {
	err error
}

func (s missingSPI) Tx(w, r []byte) error { return s.err }
func (s missingSPI) Close() error         { return nil }
