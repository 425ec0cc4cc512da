// Package hardware owns every driver on the board and brings them up and
// down in a fixed order.
package hardware

import (
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/uz-foundation/rp3hal/pkg/adcsensor"
	"github.com/uz-foundation/rp3hal/pkg/bmx055"
	"github.com/uz-foundation/rp3hal/pkg/bus"
	"github.com/uz-foundation/rp3hal/pkg/config"
	"github.com/uz-foundation/rp3hal/pkg/lcd"
	"github.com/uz-foundation/rp3hal/pkg/led"
	"github.com/uz-foundation/rp3hal/pkg/logging"
	"github.com/uz-foundation/rp3hal/pkg/mcp3208"
	"github.com/uz-foundation/rp3hal/pkg/motor"
	"github.com/uz-foundation/rp3hal/pkg/pca9685"
	"github.com/uz-foundation/rp3hal/pkg/pushsw"
	"github.com/uz-foundation/rp3hal/pkg/pwmmotor"
	"github.com/uz-foundation/rp3hal/pkg/stepper"
	"github.com/uz-foundation/rp3hal/pkg/walltime"
)

type Hardware struct {
	buses *Buses
	log   *logrus.Entry

	LCD      *lcd.LCD
	LED      *led.Bank
	DC       *pwmmotor.Motor
	DC2      *pwmmotor.Motor
	Servo    *pwmmotor.Motor
	Stepper  *stepper.Stepper
	Switches *pushsw.Switches
	IMU      *bmx055.BMX055
	Pot      *adcsensor.Potentiometer
	Distance *adcsensor.DistanceArray
	PWM      *pca9685.PCA9685
	Clock    *walltime.Clock

	// Sleep is swapped out by tests.
	Sleep func(time.Duration)
}

// Open opens the real buses and builds the board on them. The board is
// always returned; err reports the buses that failed to open, whose
// drivers will fail in Initialize while the rest work.
func Open(cfg *config.Config) (*Hardware, error) {
	buses, err := OpenBuses(cfg)
	return New(cfg, buses), err
}

// NewDummy builds the board over logging transports.
func NewDummy(cfg *config.Config) *Hardware {
	return New(cfg, DummyBuses())
}

// New wires every driver to the given buses. Nothing touches the hardware
// until Initialize.
func New(cfg *config.Config, buses *Buses) *Hardware {
	h := &Hardware{
		buses: buses,
		log:   logging.For(logging.SYS),
		Sleep: time.Sleep,
	}

	h.LCD = lcd.New(buses.I2C.Device(cfg.LCDAddr))
	h.LCD.SetRowOffset(cfg.LCDRowOffset)

	h.LED = led.New(h.pins(cfg.LEDPins...)...)
	h.DC = pwmmotor.New("dc", h.pin(cfg.DCPin))
	h.DC2 = pwmmotor.New("dc2", h.pin(cfg.DC2Pin))
	h.Servo = pwmmotor.New("servo", h.pin(cfg.ServoPin))
	h.Stepper = stepper.New(h.pin(cfg.StepperDirPin), h.pin(cfg.StepperClockPin), h.pin(cfg.StepperEnPin))

	sw := h.pins(cfg.SwitchPins...)
	h.Switches = pushsw.New(sw[0], sw[1], sw[2])

	h.IMU = bmx055.New(
		buses.I2C.Device(cfg.AccAddr),
		buses.I2C.Device(cfg.GyroAddr),
		buses.I2C.Device(cfg.MagAddr),
	)
	h.IMU.Strict = cfg.BMX055Strict

	adc := mcp3208.New(buses.SPI)
	h.Pot = adcsensor.NewPotentiometer(adc)
	h.Distance = adcsensor.NewDistanceArray(adc, led.New(h.pins(cfg.DistanceLEDPins...)...))

	h.PWM = pca9685.New(buses.I2C.Device(cfg.PCA9685Addr))
	h.Clock = walltime.New()
	return h
}

func (h *Hardware) pin(num int) bus.Pin {
	p, err := h.buses.Pins.Pin(num)
	if err != nil {
		h.log.WithError(err).Errorf("Unable to resolve GPIO%d", num)
		return missingPin{err: err}
	}
	return p
}

func (h *Hardware) pins(nums ...int) []bus.Pin {
	ps := make([]bus.Pin, 0, len(nums))
	for _, n := range nums {
		ps = append(ps, h.pin(n))
	}
	return ps
}

// Initialize brings the drivers up in board order. A failing driver is
// logged and skipped; the combined failures are returned.
func (h *Hardware) Initialize() (err error) {
	for _, step := range []struct {
		name string
		init func() error
	}{
		{"lcd", h.LCD.Initialize},
		{"led", h.LED.Initialize},
		{"dc", func() error { h.DC.Initialize(); return nil }},
		{"dc2", func() error { h.DC2.Initialize(); return nil }},
		{"stepper", h.Stepper.Initialize},
		{"servo", func() error { h.Servo.Initialize(); return nil }},
		{"pushsw", h.Switches.Initialize},
		{"bmx055", h.IMU.Initialize},
		{"potentiometer", h.Pot.Initialize},
		{"distance", h.Distance.Initialize},
		{"pca9685", h.PWM.Initialize},
	} {
		if stepErr := step.init(); stepErr != nil {
			h.log.WithError(stepErr).Errorf("fail to initialize %s", step.name)
			err = multierr.Append(err, stepErr)
		}
	}
	return err
}

// Shutdown stops every actuator and closes the buses.
func (h *Hardware) Shutdown() error {
	err := h.Stepper.Close()
	for _, m := range []*pwmmotor.Motor{h.DC, h.DC2, h.Servo} {
		m.SetDuty(motor.Stop, 0)
	}
	err = multierr.Append(err, h.LED.Set(0))
	return multierr.Append(err, h.buses.Close())
}
