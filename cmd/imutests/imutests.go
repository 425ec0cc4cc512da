// imutests streams the BMX055 with tilt and heading derived from it.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/uz-foundation/rp3hal/pkg/bmx055"
	"github.com/uz-foundation/rp3hal/pkg/bus"
	"github.com/uz-foundation/rp3hal/pkg/config"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	i2c, err := bus.OpenI2C(cfg.I2CDevice)
	if err != nil {
		log.Fatal(err)
	}
	defer i2c.Close()

	imu := bmx055.New(i2c.Device(cfg.AccAddr), i2c.Device(cfg.GyroAddr), i2c.Device(cfg.MagAddr))
	imu.Strict = true
	if err := imu.Initialize(); err != nil {
		log.Fatal(err)
	}

	for {
		acc, err := imu.Acc()
		if err != nil {
			fmt.Println("Acc read failed:", err)
		}
		gyro, err := imu.Gyro()
		if err != nil {
			fmt.Println("Gyro read failed:", err)
		}
		mag, err := imu.Mag()
		if err != nil {
			fmt.Println("Mag read failed:", err)
		}

		fmt.Printf("acc:  x %5f y %5f z %5f mag %f\n", acc.X, acc.Y, acc.Z, r3.Norm(acc))
		fmt.Printf("gyro: x %5f y %5f z %5f\n", gyro.X, gyro.Y, gyro.Z)
		fmt.Printf("mag:  x %5f y %5f z %5f\n", mag.X, mag.Y, mag.Z)

		pitch, roll := tilt(acc)
		fmt.Printf("Degrees: pitch %0.1f roll %0.1f heading %0.1f\n",
			degrees(pitch), degrees(roll), degrees(heading(mag, pitch, roll)))

		time.Sleep(200 * time.Millisecond)
	}
}

// tilt returns pitch and roll in radians from the gravity vector.
func tilt(acc r3.Vec) (pitch, roll float64) {
	pitch = math.Atan2(-acc.X, math.Hypot(acc.Y, acc.Z))
	roll = math.Atan2(acc.Y, acc.Z)
	return pitch, roll
}

// heading is the tilt compensated magnetic heading in radians, 0 to 2π.
func heading(mag r3.Vec, pitch, roll float64) float64 {
	// Undo roll about X, then pitch about Y.
	m := r3.Rotate(mag, roll, r3.Vec{X: 1})
	m = r3.Rotate(m, -pitch, r3.Vec{Y: 1})
	h := math.Atan2(-m.Y, m.X)
	if h < 0 {
		h += 2 * math.Pi
	}
	return h
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
