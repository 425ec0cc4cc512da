// Package bus provides the byte-level I2C, SPI and GPIO primitives that the
// peripheral drivers are written against.
package bus

import (
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/physic"
)

// Port is one slave on an I2C bus.
type Port interface {
	// Write sends buf as a single write transaction.
	Write(buf []byte) error
	// Read reads len(buf) bytes from the device.
	Read(buf []byte) error
	ReadReg(reg byte, buf []byte) error
	WriteReg(reg byte, buf []byte) error
}

// I2CBus hands out per-address ports that share one bus.
type I2CBus interface {
	Device(addr int) Port
	Close() error
}

// SPIBus is a full-duplex SPI connection.
type SPIBus interface {
	Tx(w, r []byte) error
	Close() error
}

// Pin is the subset of gpio.PinIO the drivers use.
type Pin interface {
	In(pull gpio.Pull, edge gpio.Edge) error
	Read() gpio.Level
	Out(l gpio.Level) error
	PWM(duty gpio.Duty, f physic.Frequency) error
}

// Pins resolves BCM GPIO numbers.
type Pins interface {
	Pin(num int) (Pin, error)
}
