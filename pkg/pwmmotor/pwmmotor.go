// Package pwmmotor drives a motor or servo from a single hardware-PWM GPIO.
package pwmmotor

import (
	"sync"

	"github.com/sirupsen/logrus"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/physic"

	"github.com/uz-foundation/rp3hal/pkg/bus"
	"github.com/uz-foundation/rp3hal/pkg/logging"
	"github.com/uz-foundation/rp3hal/pkg/motor"
)

const (
	DCPin      = 13
	DC2Pin     = 12
	ServoPin   = 18
	BaseClock  = 19200 * physic.KiloHertz
	ClockDiv   = 3840
	Range      = 100
	PWMPeriod  = BaseClock / ClockDiv / Range
	MaxPercent = Range
)

type Motor struct {
	lock  sync.Mutex
	name  string
	pin   bus.Pin
	log   *logrus.Entry
	state motor.State
	rate  int
}

func New(name string, pin bus.Pin) *Motor {
	return &Motor{
		name: name,
		pin:  pin,
		log:  logging.For(logging.HAL).WithField("motor", name),
	}
}

// Initialize leaves the output stopped.
func (m *Motor) Initialize() {
	m.SetDuty(motor.Stop, 0)
}

// Count is the PWM count within Range for a state and rate.
func Count(state motor.State, rate int) int {
	if !state.Rotating() {
		return 0
	}
	if rate < 0 {
		return 0
	} else if rate > Range {
		return Range
	}
	return rate
}

// SetDuty applies state at rate percent. Pin failures are logged; the
// motor keeps whatever state the hardware accepted last.
func (m *Motor) SetDuty(state motor.State, rate int) {
	m.lock.Lock()
	defer m.lock.Unlock()

	switch state {
	case motor.Standby:
		if err := m.pin.Out(gpio.Low); err != nil {
			m.log.WithError(err).Error("fail to set pin low")
			return
		}
	case motor.Brake, motor.Stop, motor.RotateCW, motor.RotateCCW:
		count := Count(state, rate)
		duty := gpio.DutyMax * gpio.Duty(count) / Range
		if err := m.pin.PWM(duty, PWMPeriod); err != nil {
			m.log.WithError(err).Error("fail to set pwm")
			return
		}
	default:
		m.log.WithError(state.Check()).Error("ignoring duty request")
		return
	}
	m.state = state
	m.rate = rate
}

// Status is the last state and rate applied successfully.
func (m *Motor) Status() (motor.State, int) {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.state, m.rate
}

func (m *Motor) Name() string {
	return m.name
}
