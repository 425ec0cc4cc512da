package adcsensor

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/uz-foundation/rp3hal/pkg/halerrors"
	"github.com/uz-foundation/rp3hal/pkg/logging"
	"github.com/uz-foundation/rp3hal/pkg/mcp3208"
	"github.com/uz-foundation/rp3hal/pkg/sensor"
)

type Position int

const (
	FrontLeft Position = iota
	FrontRight
	FrontSideLeft
	FrontSideRight
	Positions
)

var positionNames = [Positions]string{"fl", "fr", "fsl", "fsr"}

func (p Position) String() string {
	if p < 0 || p >= Positions {
		return fmt.Sprintf("Position(%d)", int(p))
	}
	return positionNames[p]
}

// IndicatorPins light while a distance channel is sampled.
var IndicatorPins = []int{19, 26}

const indicatorOn = 0x03

type indicator interface {
	Set(value byte) error
}

type DistanceArray struct {
	channels  [Positions]*Channel
	indicator indicator
	log       *logrus.Entry
}

// NewDistanceArray reads the four sensors from channels 0 to 3.
func NewDistanceArray(adc mcp3208.Interface, ind indicator) *DistanceArray {
	d := &DistanceArray{
		indicator: ind,
		log:       logging.For(logging.HAL),
	}
	for p := range d.channels {
		d.channels[p] = NewChannel(adc, p)
	}
	return d
}

// Initialize turns the indicators off and calibrates every sensor.
func (d *DistanceArray) Initialize() error {
	if err := d.indicator.Set(0); err != nil {
		d.log.WithError(err).Error("Unable to initialize GPIO port.")
		return err
	}
	for p := FrontLeft; p < Positions; p++ {
		if _, err := d.Read(p); err != nil {
			d.log.WithError(err).Error("Unable to initialize spi port.")
			return err
		}
		d.channels[p].lock.Lock()
		d.channels[p].reading.SetOffset()
		d.channels[p].lock.Unlock()
	}
	return nil
}

func (d *DistanceArray) Read(p Position) (sensor.Reading, error) {
	if p < 0 || p >= Positions {
		return sensor.Reading{}, halerrors.InvalidArgument("distance sensor %d", int(p))
	}
	if err := d.indicator.Set(indicatorOn); err != nil {
		d.log.WithError(err).Warn("fail to light distance indicator")
	}
	r, err := d.channels[p].Read()
	if err := d.indicator.Set(0); err != nil {
		d.log.WithError(err).Warn("fail to clear distance indicator")
	}
	return r, err
}

// ReadAll samples the sensors in position order and stops at the first
// failure.
func (d *DistanceArray) ReadAll() ([Positions]sensor.Reading, error) {
	var rs [Positions]sensor.Reading
	for p := FrontLeft; p < Positions; p++ {
		r, err := d.Read(p)
		rs[p] = r
		if err != nil {
			return rs, err
		}
	}
	return rs, nil
}
