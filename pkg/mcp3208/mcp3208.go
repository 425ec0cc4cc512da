// Package mcp3208 reads the 8-channel 12-bit MCP3208 ADC over SPI.
package mcp3208

import (
	"sync"

	"github.com/uz-foundation/rp3hal/pkg/halerrors"
)

const (
	Channels = 8
	MaxCount = 0x0FFF
)

type Interface interface {
	ReadChannel(ch int) (uint16, error)
}

type conn interface {
	Tx(w, r []byte) error
}

type ADC struct {
	lock sync.Mutex
	spi  conn
}

func New(spi conn) *ADC {
	return &ADC{spi: spi}
}

// Request is the three byte single-ended conversion command for ch.
func Request(ch int) [3]byte {
	return [3]byte{0x06 | byte(ch>>2)&0x01, byte(ch&0x03) << 6, 0}
}

// Decode extracts the 12-bit result from a conversion response.
func Decode(r [3]byte) uint16 {
	return uint16(r[1]&0x0F)<<8 | uint16(r[2])
}

func (a *ADC) ReadChannel(ch int) (uint16, error) {
	if ch < 0 || ch >= Channels {
		return 0, halerrors.InvalidArgument("adc channel %d", ch)
	}
	a.lock.Lock()
	defer a.lock.Unlock()

	w := Request(ch)
	var r [3]byte
	if err := a.spi.Tx(w[:], r[:]); err != nil {
		return 0, err
	}
	return Decode(r), nil
}
