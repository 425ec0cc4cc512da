package hardware

import (
	"context"
	"time"

	"go.uber.org/multierr"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/uz-foundation/rp3hal/pkg/adcsensor"
	"github.com/uz-foundation/rp3hal/pkg/sensor"
)

// Sample is one pass over every input on the board.
type Sample struct {
	CaptureTime time.Time

	Potentiometer sensor.Reading
	Distances     [adcsensor.Positions]sensor.Reading
	Acc, Gyro     r3.Vec
	Mag           r3.Vec

	// Err collects the failures of this pass; the affected readings hold
	// their previous values.
	Err error
}

func (h *Hardware) Sample() Sample {
	s := Sample{CaptureTime: h.Clock.Now()}
	var err, e error

	s.Potentiometer, e = h.Pot.Read()
	err = multierr.Append(err, e)
	s.Distances, e = h.Distance.ReadAll()
	err = multierr.Append(err, e)
	s.Acc, e = h.IMU.Acc()
	err = multierr.Append(err, e)
	s.Gyro, e = h.IMU.Gyro()
	err = multierr.Append(err, e)
	s.Mag, e = h.IMU.Mag()
	s.Err = multierr.Append(err, e)
	return s
}

// Monitor samples the inputs every interval and hands each pass to fn
// until ctx is done.
func (h *Hardware) Monitor(ctx context.Context, interval time.Duration, fn func(Sample)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		fn(h.Sample())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
