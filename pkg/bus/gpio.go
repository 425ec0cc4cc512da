package bus

import (
	"fmt"

	"github.com/pkg/errors"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"

	"github.com/uz-foundation/rp3hal/pkg/halerrors"
)

// GPIO resolves pins through periph's registry.
type GPIO struct{}

var _ Pins = (*GPIO)(nil)

func OpenGPIO() (*GPIO, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrapf(halerrors.ErrBusOpen, "periph init: %v", err)
	}
	return &GPIO{}, nil
}

func (*GPIO) Pin(num int) (Pin, error) {
	p := gpioreg.ByName(fmt.Sprintf("GPIO%d", num))
	if p == nil {
		return nil, errors.Wrapf(halerrors.ErrBusOpen, "no such pin GPIO%d", num)
	}
	return p, nil
}
