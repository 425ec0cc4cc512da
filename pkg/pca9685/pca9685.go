package pca9685

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/uz-foundation/rp3hal/pkg/halerrors"
	"github.com/uz-foundation/rp3hal/pkg/logging"
	"github.com/uz-foundation/rp3hal/pkg/motor"
)

const (
	DefaultAddr = 0x40

	RegMode1 = 0x00
	RegMode2 = 0x01

	// Each PWM output has two 16-bit (low byte first) registers.
	// First register is the on time, second is the off time.
	RegLEDBase = 0x06

	RegPreScale = 0xfe // Pre-scaler for PWM frequency.

	Mode1Restart = 0x80
	Mode1AutoInc = 0x20
	Mode1Sleep   = 0x10
	Mode1AllCall = 0x01

	Channels = 16

	OscillatorHz     = 25000000
	DefaultFrequency = 50

	PWMPeriod = 20 * time.Millisecond

	ServoMinPulseDuration = 1000 * time.Microsecond
	ServoMaxPulseDuration = 2000 * time.Microsecond

	PWMMax = 4095

	ServoMinPWM = float64(PWMMax * ServoMinPulseDuration / PWMPeriod)
	ServoMaxPWM = float64(PWMMax * ServoMaxPulseDuration / PWMPeriod)
)

type Interface interface {
	Initialize() error
	SetFrequency(hz float64) error
	SetChannelPWM(channel int, on, off uint16) error
	SetDuty(channel int, state motor.State, rate int) error
	SetServo(channel int, value float64) error
	SetPWM(channel int, value float64) error
}

type port interface {
	ReadReg(reg byte, buf []byte) error
	WriteReg(reg byte, buf []byte) error
}

type PCA9685 struct {
	dev port
	log *logrus.Entry

	// Sleep is swapped out by tests.
	Sleep func(time.Duration)
}

func New(dev port) *PCA9685 {
	return &PCA9685{
		dev:   dev,
		log:   logging.For(logging.HAL),
		Sleep: time.Sleep,
	}
}

func (p *PCA9685) Initialize() error {
	return p.SetFrequency(DefaultFrequency)
}

// Prescale is the PRESCALE register value for an output frequency.
func Prescale(hz float64) byte {
	return byte(math.Round(OscillatorHz/4096.0/hz - 1))
}

// SetFrequency reprograms the prescaler. The oscillator has to be asleep
// while PRESCALE is written, so the old MODE1 is restored afterwards and
// the outputs restarted.
func (p *PCA9685) SetFrequency(hz float64) error {
	if hz <= 0 {
		return halerrors.InvalidArgument("pwm frequency %v", hz)
	}
	prescale := Prescale(hz)
	p.log.Debugf("Setting PWM frequency to %v Hz, prescale %d", hz, prescale)

	if err := p.dev.WriteReg(RegMode1, []byte{0x00}); err != nil {
		return halerrors.Sequence("pca9685", "reset mode1", err)
	}
	mode := []byte{0}
	if err := p.dev.ReadReg(RegMode1, mode); err != nil {
		return halerrors.Sequence("pca9685", "read mode1", err)
	}
	old := mode[0]
	if err := p.dev.WriteReg(RegMode1, []byte{(old & 0x7F) | Mode1Sleep}); err != nil {
		return halerrors.Sequence("pca9685", "sleep", err)
	}
	if err := p.dev.WriteReg(RegPreScale, []byte{prescale}); err != nil {
		return halerrors.Sequence("pca9685", "write prescale", err)
	}
	if err := p.dev.WriteReg(RegMode1, []byte{old}); err != nil {
		return halerrors.Sequence("pca9685", "wake", err)
	}
	// Oscillator needs 500us to settle before restart.
	p.Sleep(5 * time.Millisecond)
	if err := p.dev.WriteReg(RegMode1, []byte{old | Mode1Restart | Mode1AutoInc | Mode1AllCall}); err != nil {
		return halerrors.Sequence("pca9685", "restart", err)
	}
	return nil
}

func (p *PCA9685) SetChannelPWM(channel int, on, off uint16) error {
	if err := checkChannel(channel); err != nil {
		return err
	}
	addr := RegLEDBase + channel*4
	return p.dev.WriteReg(byte(addr), []byte{byte(on & 0xff), byte(on >> 8), byte(off & 0xff), byte(off >> 8)})
}

// DutyCount is the off count for a rate in percent.
func DutyCount(state motor.State, rate int) (uint16, error) {
	if err := state.Check(); err != nil {
		return 0, err
	}
	if rate < 0 || rate > 100 {
		return 0, halerrors.InvalidArgument("duty rate %d%%", rate)
	}
	if !state.Rotating() {
		return 0, nil
	}
	return uint16(PWMMax * rate / 100), nil
}

// SetDuty drives a channel at rate percent while the state is rotating and
// holds it low otherwise.
func (p *PCA9685) SetDuty(channel int, state motor.State, rate int) error {
	if err := checkChannel(channel); err != nil {
		return err
	}
	off, err := DutyCount(state, rate)
	if err != nil {
		return err
	}
	return p.SetChannelPWM(channel, 0, off)
}

// SetServo maps value in [0, 1] onto a 1-2ms pulse.
func (p *PCA9685) SetServo(channel int, value float64) error {
	return p.SetChannelPWM(channel, 0, uint16(ServoMinPWM+clamp(value)*(ServoMaxPWM-ServoMinPWM)))
}

func (p *PCA9685) SetPWM(channel int, value float64) error {
	return p.SetChannelPWM(channel, 0, uint16(PWMMax*clamp(value)))
}

func checkChannel(channel int) error {
	if channel < 0 || channel >= Channels {
		return halerrors.InvalidArgument("pwm channel %d", channel)
	}
	return nil
}

func clamp(value float64) float64 {
	if value < 0 {
		return 0
	} else if value > 1 {
		return 1
	}
	return value
}

func Dummy() Interface {
	return &dummyPWM{}
}

type dummyPWM struct {
}

func (*dummyPWM) Initialize() error {
	return nil
}

func (*dummyPWM) SetFrequency(hz float64) error {
	return nil
}

func (*dummyPWM) SetChannelPWM(channel int, on, off uint16) error {
	return checkChannel(channel)
}

func (*dummyPWM) SetDuty(channel int, state motor.State, rate int) error {
	if err := checkChannel(channel); err != nil {
		return err
	}
	_, err := DutyCount(state, rate)
	return err
}

func (*dummyPWM) SetServo(channel int, value float64) error {
	logging.For(logging.HAL).Debugf("Dummy servo %d -> %.3f", channel, clamp(value))
	return checkChannel(channel)
}

func (*dummyPWM) SetPWM(channel int, value float64) error {
	logging.For(logging.HAL).Debugf("Dummy PWM %d -> %.3f", channel, clamp(value))
	return checkChannel(channel)
}
