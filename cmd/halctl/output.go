package main

import (
	"encoding/json"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

type pmJSON struct {
	Sensor string `json:"sensor"`
	Value  int    `json:"value"`
}

type vecJSON struct {
	Sensor string   `json:"sensor"`
	Value  axesJSON `json:"value"`
}

type axesJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// formatPMJSON renders the potentiometer rate. legacy reproduces the
// historical output byte for byte, trailing comma included.
func formatPMJSON(rate int, legacy bool) (string, error) {
	if legacy {
		return "{ " +
			`  "sensor": "sa_pm",` +
			fmt.Sprintf(`  "value": %3d,`, rate) +
			"}", nil
	}
	b, err := json.Marshal(pmJSON{Sensor: "sa_pm", Value: rate})
	return string(b), err
}

func formatVecJSON(sensor string, v r3.Vec, legacy bool) (string, error) {
	if legacy {
		return "{ " +
			fmt.Sprintf(`  "sensor": "%s",`, sensor) +
			`  "value": {` +
			fmt.Sprintf(`    "x": %f,`, v.X) +
			fmt.Sprintf(`    "y": %f,`, v.Y) +
			fmt.Sprintf(`    "z": %f `, v.Z) +
			"  }" +
			"}", nil
	}
	b, err := json.Marshal(vecJSON{Sensor: sensor, Value: axesJSON{X: v.X, Y: v.Y, Z: v.Z}})
	return string(b), err
}
