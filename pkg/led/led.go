// Package led drives a bank of indicator LEDs, bit i of a value onto LED i.
package led

import (
	"strconv"
	"strings"
	"sync"

	"periph.io/x/periph/conn/gpio"

	"github.com/uz-foundation/rp3hal/pkg/bus"
	"github.com/uz-foundation/rp3hal/pkg/halerrors"
)

// BoardPins are the four user LEDs.
var BoardPins = []int{14, 15, 23, 24}

type Bank struct {
	lock  sync.Mutex
	pins  []bus.Pin
	value byte
}

func New(pins ...bus.Pin) *Bank {
	return &Bank{pins: pins}
}

// Open resolves the GPIO numbers into a bank.
func Open(pins bus.Pins, nums []int) (*Bank, error) {
	var ps []bus.Pin
	for _, n := range nums {
		p, err := pins.Pin(n)
		if err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	return New(ps...), nil
}

// Initialize turns every LED off.
func (b *Bank) Initialize() error {
	return b.Set(0)
}

// Set lights LED i when bit i of value is set. Bits beyond the bank are
// ignored.
func (b *Bank) Set(value byte) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	for i, p := range b.pins {
		if err := p.Out(gpio.Level(value&(1<<uint(i)) != 0)); err != nil {
			return err
		}
	}
	b.value = value
	return nil
}

func (b *Bank) Value() byte {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.value
}

func (b *Bank) Len() int {
	return len(b.pins)
}

// ParseValue parses a hex LED pattern such as "0x0a" or "F". Only the low
// byte is kept.
func ParseValue(s string) (byte, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return 0, halerrors.InvalidArgument("led value %q", s)
	}
	return byte(v), nil
}
