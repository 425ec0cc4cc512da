// Package pushsw reads the three active-low push switches.
package pushsw

import (
	"time"

	"github.com/sirupsen/logrus"
	"periph.io/x/periph/conn/gpio"

	"github.com/uz-foundation/rp3hal/pkg/bus"
	"github.com/uz-foundation/rp3hal/pkg/halerrors"
	"github.com/uz-foundation/rp3hal/pkg/logging"
)

type Switch int

const (
	SW0 Switch = iota
	SW1
	SW2
	Count
)

var DefaultPins = [Count]int{16, 20, 21}

// Debounce is how long a press holds the caller before it is reported.
const Debounce = 150 * time.Millisecond

type Switches struct {
	pins [Count]bus.Pin
	log  *logrus.Entry

	// Sleep is swapped out by tests.
	Sleep func(time.Duration)
}

func New(sw0, sw1, sw2 bus.Pin) *Switches {
	return &Switches{
		pins:  [Count]bus.Pin{sw0, sw1, sw2},
		log:   logging.For(logging.HAL),
		Sleep: time.Sleep,
	}
}

// Open resolves the GPIO numbers of the three switches.
func Open(pins bus.Pins, nums [Count]int) (*Switches, error) {
	var ps [Count]bus.Pin
	for i, n := range nums {
		p, err := pins.Pin(n)
		if err != nil {
			return nil, err
		}
		ps[i] = p
	}
	return New(ps[0], ps[1], ps[2]), nil
}

// Initialize configures the switches as plain inputs.
func (s *Switches) Initialize() error {
	for _, p := range s.pins {
		if err := p.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
			s.log.WithError(err).Error("Unable to initialize GPIO port.")
			return err
		}
	}
	return nil
}

// Pressed reports whether the switch is held, blocking for Debounce first
// when it is. Released switches return at once.
func (s *Switches) Pressed(which Switch) bool {
	if which < 0 || which >= Count {
		s.log.WithError(halerrors.InvalidArgument("switch %d", int(which))).Error("fail to read switch")
		return false
	}
	if s.pins[which].Read() == gpio.High {
		return false
	}
	s.Sleep(Debounce)
	return true
}
