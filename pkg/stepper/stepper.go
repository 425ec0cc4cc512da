// Package stepper drives a clock/direction stepping motor driver from three
// GPIOs. One clock edge turns the shaft by StepAngle degrees.
package stepper

import (
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"periph.io/x/periph/conn/gpio"

	"github.com/uz-foundation/rp3hal/pkg/bus"
	"github.com/uz-foundation/rp3hal/pkg/logging"
	"github.com/uz-foundation/rp3hal/pkg/motor"
)

const (
	DirPin    = 22
	ClockPin  = 27
	EnablePin = 17

	StepAngle = 0.45

	// CounterWrap is ten full turns.
	CounterWrap = 8000

	DefaultInterval = 800 * time.Microsecond
)

// Ticker is the part of time.Ticker the pulse loop needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	*time.Ticker
}

func (t timeTicker) C() <-chan time.Time {
	return t.Ticker.C
}

func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{time.NewTicker(d)}
}

type Stepper struct {
	lock sync.Mutex

	dir, clock, enable bus.Pin
	log                *logrus.Entry

	state    motor.State
	target   int
	interval time.Duration
	phase    int
	counter  int

	// gen is bumped whenever the timer stops so a pulse goroutine that
	// lost the race for the lock can tell its timer is gone.
	gen    uint64
	ticker Ticker
	done   chan struct{}

	// NewTicker is swapped out by tests.
	NewTicker func(time.Duration) Ticker
}

func New(dir, clock, enable bus.Pin) *Stepper {
	return &Stepper{
		dir:       dir,
		clock:     clock,
		enable:    enable,
		log:       logging.For(logging.HAL),
		state:     motor.Standby,
		interval:  DefaultInterval,
		NewTicker: NewTimeTicker,
	}
}

// Initialize drives all three outputs low.
func (s *Stepper) Initialize() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, p := range []bus.Pin{s.dir, s.clock, s.enable} {
		if err := p.Out(gpio.Low); err != nil {
			s.log.WithError(err).Error("Unable to initialize GPIO port.")
			return err
		}
	}
	return nil
}

// Pulses is the number of clock edges for a rotation of angle degrees.
func Pulses(angle float64) int {
	n := int(math.Round(angle / StepAngle))
	if n < 0 {
		return 0
	}
	return n
}

func (s *Stepper) SetStatus(state motor.State) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.setStatusLocked(state)
}

func (s *Stepper) setStatusLocked(state motor.State) error {
	if err := state.Check(); err != nil {
		return err
	}
	if state == s.state {
		return nil
	}
	s.state = state

	var err error
	switch state {
	case motor.Standby, motor.Stop, motor.Brake:
		err = s.enable.Out(gpio.Low)
	case motor.RotateCW:
		if err = s.dir.Out(gpio.Low); err == nil {
			err = s.enable.Out(gpio.High)
		}
	case motor.RotateCCW:
		if err = s.dir.Out(gpio.High); err == nil {
			err = s.enable.Out(gpio.High)
		}
	}

	s.stopTimerLocked()
	if state.Rotating() {
		s.startTimerLocked()
	}
	return err
}

// SetAngle sets how far the next rotation goes and then applies state.
// Asking again for the rotation already in progress restarts the count
// from the current position.
func (s *Stepper) SetAngle(state motor.State, angle float64) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.target = Pulses(angle)
	if state == s.state && state.Rotating() {
		s.stopTimerLocked()
		s.startTimerLocked()
		return nil
	}
	return s.setStatusLocked(state)
}

// SetSpeed sets the time per pulse in microseconds.
func (s *Stepper) SetSpeed(us int) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if us <= 0 {
		us = 1
	}
	s.interval = time.Duration(us) * time.Microsecond

	s.stopTimerLocked()
	if s.state.Rotating() {
		s.startTimerLocked()
	}
}

func (s *Stepper) State() motor.State {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.state
}

func (s *Stepper) Interval() time.Duration {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.interval
}

// Progress returns the pulse counter and the target of the current rotation.
func (s *Stepper) Progress() (counter, target int) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.counter, s.target
}

// Close stops the timer and disables the driver.
func (s *Stepper) Close() error {
	return s.SetStatus(motor.Standby)
}

func (s *Stepper) startTimerLocked() {
	t := s.NewTicker(s.interval)
	done := make(chan struct{})
	s.ticker = t
	s.done = done
	go s.run(s.gen, t, done)
}

func (s *Stepper) stopTimerLocked() {
	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	close(s.done)
	s.ticker = nil
	s.done = nil
	s.gen++
}

func (s *Stepper) run(gen uint64, t Ticker, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-t.C():
			if !s.pulse(gen) {
				return
			}
		}
	}
}

// pulse runs once per timer firing. It must not log: it fires every
// interval while the motor turns.
func (s *Stepper) pulse(gen uint64) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	if gen != s.gen {
		return false
	}
	if s.counter >= s.target {
		s.phase = 0
		s.counter = 0
		_ = s.setStatusLocked(motor.Stop)
		return false
	}
	if s.phase == 0 {
		_ = s.clock.Out(gpio.High)
	} else {
		_ = s.clock.Out(gpio.Low)
	}
	s.phase ^= 1
	s.counter = (s.counter + 1) % CounterWrap
	return true
}
