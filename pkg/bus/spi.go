package bus

import (
	"sync"

	"github.com/pkg/errors"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/conn/spi"
	"periph.io/x/periph/conn/spi/spireg"
	"periph.io/x/periph/host"

	"github.com/uz-foundation/rp3hal/pkg/halerrors"
)

const (
	DefaultSPIDevice = "/dev/spidev0.0"
	DefaultSPISpeed  = 8 * physic.MegaHertz
)

// SPI is a mode 0, 8 bits per word SPI connection.
type SPI struct {
	lock sync.Mutex
	port spi.PortCloser
	conn spi.Conn
}

var _ SPIBus = (*SPI)(nil)

func OpenSPI(deviceFile string, speed physic.Frequency) (*SPI, error) {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrapf(halerrors.ErrBusOpen, "periph init: %v", err)
	}

	p, err := spireg.Open(deviceFile)
	if err != nil {
		return nil, errors.Wrapf(halerrors.ErrBusOpen, "failed to open %s, try change permission: %v", deviceFile, err)
	}

	c, err := p.Connect(speed, spi.Mode0, 8)
	if err != nil {
		_ = p.Close()
		return nil, errors.Wrapf(halerrors.ErrBusOpen, "failed to set up %s: %v", deviceFile, err)
	}
	return &SPI{port: p, conn: c}, nil
}

// Tx performs one full-duplex transfer; w and r must be the same length.
func (s *SPI) Tx(w, r []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if err := s.conn.Tx(w, r); err != nil {
		return errors.Wrapf(halerrors.ErrBusIO, "cannot send spi message: %v", err)
	}
	return nil
}

func (s *SPI) Close() error {
	return s.port.Close()
}
