package main

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

const eps = 1e-9

func TestTilt(t *testing.T) {
	for _, tc := range []struct {
		acc         r3.Vec
		pitch, roll float64
	}{
		{r3.Vec{Z: 9.8}, 0, 0},
		{r3.Vec{Y: 9.8}, 0, math.Pi / 2},
		{r3.Vec{X: -9.8}, math.Pi / 2, 0},
	} {
		pitch, roll := tilt(tc.acc)
		if math.Abs(pitch-tc.pitch) > eps || math.Abs(roll-tc.roll) > eps {
			t.Errorf("tilt(%v) = %f, %f; want %f, %f", tc.acc, pitch, roll, tc.pitch, tc.roll)
		}
	}
}

func TestHeadingLevel(t *testing.T) {
	for _, tc := range []struct {
		mag  r3.Vec
		want float64
	}{
		{r3.Vec{X: 30}, 0},
		{r3.Vec{Y: -30}, math.Pi / 2},
		{r3.Vec{X: -30}, math.Pi},
		{r3.Vec{Y: 30}, 3 * math.Pi / 2},
	} {
		if got := heading(tc.mag, 0, 0); math.Abs(got-tc.want) > eps {
			t.Errorf("heading(%v) = %f, want %f", tc.mag, got, tc.want)
		}
	}
}

func TestDegrees(t *testing.T) {
	if got := degrees(math.Pi); math.Abs(got-180) > eps {
		t.Errorf("degrees(π) = %f", got)
	}
}
