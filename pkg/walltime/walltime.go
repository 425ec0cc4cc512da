// Package walltime reports the wall clock broken down into calendar fields.
package walltime

import (
	"fmt"
	"time"
)

// Snapshot is a calendar time with one second resolution. The sub-second
// fields are always zero.
type Snapshot struct {
	Wait  int
	Usec  int
	Msec  int
	Sec   int
	Min   int
	Hour  int
	Day   int
	Month int
	Year  int
}

func (s Snapshot) String() string {
	return fmt.Sprintf("%04d/%02d/%02d %02d:%02d:%02d", s.Year, s.Month, s.Day, s.Hour, s.Min, s.Sec)
}

type Clock struct {
	// Now is swapped out by tests.
	Now func() time.Time
}

func New() *Clock {
	return &Clock{Now: time.Now}
}

func (c *Clock) LocalTime() Snapshot {
	return fromTime(c.Now().Local())
}

func (c *Clock) UTC() Snapshot {
	return fromTime(c.Now().UTC())
}

func fromTime(t time.Time) Snapshot {
	return Snapshot{
		Sec:   t.Second(),
		Min:   t.Minute(),
		Hour:  t.Hour(),
		Day:   t.Day(),
		Month: int(t.Month()),
		Year:  t.Year(),
	}
}
