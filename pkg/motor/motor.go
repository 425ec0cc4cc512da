package motor

import (
	"fmt"
	"strings"

	"github.com/uz-foundation/rp3hal/pkg/halerrors"
)

// State is what a motor driver should be doing. The zero value is Standby.
type State int

const (
	Standby State = iota
	Brake
	RotateCCW
	RotateCW
	Stop
)

var names = [...]string{
	Standby:   "standby",
	Brake:     "brake",
	RotateCCW: "ccw",
	RotateCW:  "cw",
	Stop:      "stop",
}

func (s State) String() string {
	if !s.Valid() {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return names[s]
}

func (s State) Valid() bool {
	return s >= Standby && s <= Stop
}

// Rotating reports whether the state drives the output.
func (s State) Rotating() bool {
	return s == RotateCW || s == RotateCCW
}

// Check returns ErrInvalidArgument for values outside the enumeration.
// Drivers call it in the default branch of their state switches.
func (s State) Check() error {
	if s.Valid() {
		return nil
	}
	return halerrors.InvalidArgument("unknown motor state %d", int(s))
}

func Parse(name string) (State, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for s, candidate := range names {
		if n == candidate {
			return State(s), nil
		}
	}
	return Standby, halerrors.InvalidArgument("unknown motor state %q", name)
}
