package bus

import (
	"os"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/exp/io/i2c"
	"golang.org/x/exp/io/i2c/driver"

	"github.com/uz-foundation/rp3hal/pkg/halerrors"
)

const DefaultI2CDevice = "/dev/i2c-1"

// I2C is a shared I2C bus. Only one slave is selected at a time; every
// transaction selects its slave under the bus lock so transactions to
// different addresses never interleave.
type I2C struct {
	lock sync.Mutex

	name    string
	opener  driver.Opener
	devices map[int]*i2c.Device
	closed  bool
}

var _ I2CBus = (*I2C)(nil)

// OpenI2C checks the device file is present and returns a bus over it.
func OpenI2C(deviceFile string) (*I2C, error) {
	f, err := os.OpenFile(deviceFile, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.Wrapf(halerrors.ErrBusOpen, "failed to open %s, try change permission: %v", deviceFile, err)
	}
	_ = f.Close()
	return NewI2C(deviceFile, &i2c.Devfs{Dev: deviceFile}), nil
}

// NewI2C builds a bus over an arbitrary opener.
func NewI2C(name string, opener driver.Opener) *I2C {
	return &I2C{
		name:    name,
		opener:  opener,
		devices: map[int]*i2c.Device{},
	}
}

func (b *I2C) String() string {
	return b.name
}

func (b *I2C) Device(addr int) Port {
	return &Device{bus: b, addr: addr}
}

func (b *I2C) Close() (err error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	for addr, dev := range b.devices {
		err = multierr.Append(err, dev.Close())
		delete(b.devices, addr)
	}
	b.closed = true
	return
}

// do runs fn against the device at addr with the bus held.
func (b *I2C) do(addr int, fn func(dev *i2c.Device) error) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	dev, err := b.selectSlave(addr)
	if err != nil {
		return err
	}
	return halerrors.BusIO(fn(dev), addr)
}

func (b *I2C) selectSlave(addr int) (*i2c.Device, error) {
	if b.closed {
		return nil, errors.Wrapf(halerrors.ErrBusOpen, "%s is closed", b.name)
	}
	if dev, ok := b.devices[addr]; ok {
		return dev, nil
	}
	dev, err := i2c.Open(b.opener, addr)
	if err != nil {
		return nil, halerrors.BusIO(errors.Wrap(err, "unable to get bus access to talk to i2c slave"), addr)
	}
	b.devices[addr] = dev
	return dev, nil
}

// Device is one slave address on an I2C bus.
type Device struct {
	bus  *I2C
	addr int
}

func (d *Device) Addr() int {
	return d.addr
}

func (d *Device) Write(buf []byte) error {
	return d.bus.do(d.addr, func(dev *i2c.Device) error {
		return dev.Write(buf)
	})
}

func (d *Device) Read(buf []byte) error {
	return d.bus.do(d.addr, func(dev *i2c.Device) error {
		return dev.Read(buf)
	})
}

func (d *Device) ReadReg(reg byte, buf []byte) error {
	return d.bus.do(d.addr, func(dev *i2c.Device) error {
		return dev.ReadReg(reg, buf)
	})
}

func (d *Device) WriteReg(reg byte, buf []byte) error {
	return d.bus.do(d.addr, func(dev *i2c.Device) error {
		return dev.WriteReg(reg, buf)
	})
}
