// Package adcsensor turns MCP3208 channels into tracked sensor readings: the
// potentiometer and the four-way distance array.
package adcsensor

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/uz-foundation/rp3hal/pkg/logging"
	"github.com/uz-foundation/rp3hal/pkg/mcp3208"
	"github.com/uz-foundation/rp3hal/pkg/sensor"
)

const PotentiometerChannel = 7

// Channel is one ADC input with its reading.
type Channel struct {
	lock    sync.Mutex
	adc     mcp3208.Interface
	ch      int
	reading *sensor.Reading
}

func NewChannel(adc mcp3208.Interface, ch int) *Channel {
	return &Channel{
		adc:     adc,
		ch:      ch,
		reading: sensor.NewADC(),
	}
}

// Read samples the channel. On failure the previous reading is returned
// unchanged together with the error.
func (c *Channel) Read() (sensor.Reading, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	v, err := c.adc.ReadChannel(c.ch)
	if err != nil {
		return c.reading.Snapshot(), err
	}
	c.reading.Update(float64(v))
	return c.reading.Snapshot(), nil
}

// Calibrate samples once and takes the value as the channel's offset.
func (c *Channel) Calibrate() error {
	if _, err := c.Read(); err != nil {
		return err
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	c.reading.SetOffset()
	return nil
}

func (c *Channel) Last() sensor.Reading {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.reading.Snapshot()
}

type Potentiometer struct {
	*Channel
	log *logrus.Entry
}

func NewPotentiometer(adc mcp3208.Interface) *Potentiometer {
	return &Potentiometer{
		Channel: NewChannel(adc, PotentiometerChannel),
		log:     logging.For(logging.HAL),
	}
}

func (p *Potentiometer) Initialize() error {
	if err := p.Calibrate(); err != nil {
		p.log.WithError(err).Error("Unable to initialize spi port.")
		return err
	}
	return nil
}
