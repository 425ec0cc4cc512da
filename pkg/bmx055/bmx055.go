// Package bmx055 reads the accelerometer, gyroscope and magnetometer of a
// BMX055 9-axis sensor. Each part sits at its own I2C address.
package bmx055

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/uz-foundation/rp3hal/pkg/halerrors"
	"github.com/uz-foundation/rp3hal/pkg/logging"
	"github.com/uz-foundation/rp3hal/pkg/sensor"
)

const (
	AccAddr  = 0x19
	GyroAddr = 0x69
	MagAddr  = 0x13

	RegAccData  = 0x02
	RegGyroData = 0x02
	RegMagData  = 0x42

	// Scale factors for the configured ranges.
	AccScale  = 0.0098 // m/s^2 per LSB at +/-2g
	GyroScale = 0.0038 // deg/s per LSB at +/-125deg/s
)

type Axis int

const (
	X Axis = iota
	Y
	Z
)

func (a Axis) String() string {
	switch a {
	case X:
		return "x"
	case Y:
		return "y"
	case Z:
		return "z"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

func (a Axis) check() error {
	if a < X || a > Z {
		return halerrors.InvalidArgument("axis %d", int(a))
	}
	return nil
}

type port interface {
	ReadReg(reg byte, buf []byte) error
	WriteReg(reg byte, buf []byte) error
}

type regValue struct {
	reg, value byte
	settle     time.Duration
}

var (
	accConfig = []regValue{
		{0x0F, 0x03, 100 * time.Millisecond}, // range +/-2g
		{0x10, 0x0F, 100 * time.Millisecond}, // bandwidth 1kHz
		{0x11, 0x00, 100 * time.Millisecond}, // normal mode
	}
	gyroConfig = []regValue{
		{0x0F, 0x04, 100 * time.Millisecond}, // range +/-125deg/s
		{0x10, 0x07, 100 * time.Millisecond}, // bandwidth 100Hz
		{0x11, 0x00, 100 * time.Millisecond}, // normal mode
	}
	magConfig = []regValue{
		{0x4B, 0x01, 100 * time.Millisecond}, // power on
		{0x4C, 0x00, 0},                      // normal mode, 10Hz
		{0x4E, 0x84, 0},                      // x, y, z enabled
		{0x51, 0x04, 0},                      // xy repetitions
		{0x52, 0x16, 0},                      // z repetitions
	}
)

type triple [3]*sensor.Reading

func newTriple() triple {
	return triple{sensor.NewInertial(), sensor.NewInertial(), sensor.NewInertial()}
}

func (t triple) update(v [3]float64) {
	for i := range t {
		t[i].Update(v[i])
	}
}

func (t triple) vec() r3.Vec {
	return r3.Vec{X: t[X].Current, Y: t[Y].Current, Z: t[Z].Current}
}

type BMX055 struct {
	lock sync.Mutex

	acc, gyro, mag port
	log            *logrus.Entry

	accData, gyroData, magData triple

	// Strict makes Initialize fail on the first sub-sensor that can't be
	// configured instead of carrying on with the others.
	Strict bool

	// Sleep is swapped out by tests.
	Sleep func(time.Duration)
}

func New(acc, gyro, mag port) *BMX055 {
	return &BMX055{
		acc:      acc,
		gyro:     gyro,
		mag:      mag,
		log:      logging.For(logging.HAL),
		accData:  newTriple(),
		gyroData: newTriple(),
		magData:  newTriple(),
		Sleep:    time.Sleep,
	}
}

// Initialize configures all three sub-sensors and zeroes the accelerometer
// against its first sample.
func (b *BMX055) Initialize() error {
	b.lock.Lock()
	defer b.lock.Unlock()

	for _, part := range []struct {
		name   string
		dev    port
		config []regValue
		settle time.Duration
	}{
		{"acc", b.acc, accConfig, 100 * time.Millisecond},
		{"gyro", b.gyro, gyroConfig, 100 * time.Millisecond},
		{"mag", b.mag, magConfig, 300 * time.Millisecond},
	} {
		if err := b.configure(part.name, part.dev, part.config); err != nil {
			b.log.WithError(err).Errorf("fail to setup config of %s.", part.name)
			if b.Strict {
				return err
			}
		}
		b.Sleep(part.settle)
	}

	if err := b.readAcc(); err != nil {
		b.log.WithError(err).Error("fail to read acc offset")
		if b.Strict {
			return err
		}
		return nil
	}
	for _, r := range b.accData {
		r.SetOffset()
	}
	return nil
}

func (b *BMX055) configure(name string, dev port, config []regValue) error {
	for _, rv := range config {
		if err := dev.WriteReg(rv.reg, []byte{rv.value}); err != nil {
			return halerrors.Sequence("bmx055 "+name, fmt.Sprintf("register 0x%02x", rv.reg), err)
		}
		if rv.settle > 0 {
			b.Sleep(rv.settle)
		}
	}
	return nil
}

// DecodeAcc converts the six data bytes into m/s^2.
func DecodeAcc(buf []byte) [3]float64 {
	var v [3]float64
	for i := range v {
		raw := (int(buf[2*i+1])*256 + int(buf[2*i]&0xF0)) / 16
		if raw > 2047 {
			raw -= 4096
		}
		v[i] = float64(raw) * AccScale
	}
	return v
}

// DecodeGyro converts the six data bytes into deg/s.
func DecodeGyro(buf []byte) [3]float64 {
	var v [3]float64
	for i := range v {
		raw := int(buf[2*i+1])*256 + int(buf[2*i])
		if raw > 32767 {
			raw -= 65536
		}
		v[i] = float64(raw) * GyroScale
	}
	return v
}

// DecodeMag returns the raw magnetometer counts.
func DecodeMag(buf []byte) [3]float64 {
	var v [3]float64
	for i := range v {
		raw := int(buf[2*i+1])<<8 | int(buf[2*i]>>3)
		if raw > 4095 {
			raw -= 8192
		}
		v[i] = float64(raw)
	}
	return v
}

func (b *BMX055) readAcc() error {
	buf := make([]byte, 6)
	if err := b.acc.ReadReg(RegAccData, buf); err != nil {
		return err
	}
	b.accData.update(DecodeAcc(buf))
	return nil
}

func (b *BMX055) readGyro() error {
	buf := make([]byte, 6)
	if err := b.gyro.ReadReg(RegGyroData, buf); err != nil {
		return err
	}
	b.gyroData.update(DecodeGyro(buf))
	return nil
}

func (b *BMX055) readMag() error {
	buf := make([]byte, 8)
	if err := b.mag.ReadReg(RegMagData, buf); err != nil {
		return err
	}
	b.magData.update(DecodeMag(buf))
	return nil
}

func (b *BMX055) get(read func() error, data triple, axis Axis) (sensor.Reading, error) {
	if err := axis.check(); err != nil {
		return sensor.Reading{}, err
	}
	b.lock.Lock()
	defer b.lock.Unlock()
	err := read()
	if err != nil {
		b.log.WithError(err).Error("fail to read data from i2c slave.")
	}
	return data[axis].Snapshot(), err
}

func (b *BMX055) vec(read func() error, data triple) (r3.Vec, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	err := read()
	return data.vec(), err
}

// GetAcc samples all three axes and returns the requested one. On a bus
// failure the previous reading comes back with the error.
func (b *BMX055) GetAcc(axis Axis) (sensor.Reading, error) {
	return b.get(b.readAcc, b.accData, axis)
}

func (b *BMX055) GetGyro(axis Axis) (sensor.Reading, error) {
	return b.get(b.readGyro, b.gyroData, axis)
}

func (b *BMX055) GetMag(axis Axis) (sensor.Reading, error) {
	return b.get(b.readMag, b.magData, axis)
}

// Acc samples the accelerometer and returns all three axes.
func (b *BMX055) Acc() (r3.Vec, error) {
	return b.vec(b.readAcc, b.accData)
}

func (b *BMX055) Gyro() (r3.Vec, error) {
	return b.vec(b.readGyro, b.gyroData)
}

func (b *BMX055) Mag() (r3.Vec, error) {
	return b.vec(b.readMag, b.magData)
}
