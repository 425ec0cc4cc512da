// Package config loads the board wiring and runtime options: built-in
// defaults, then an optional YAML file, then HAL_* environment variables.
package config

import (
	"os"

	"github.com/Masterminds/semver/v3"
	"github.com/caarlos0/env/v6"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/uz-foundation/rp3hal/pkg/halerrors"
)

const EnvPrefix = "HAL_"

type Config struct {
	I2CDevice  string `yaml:"i2c_device" env:"I2C_DEVICE"`
	SPIDevice  string `yaml:"spi_device" env:"SPI_DEVICE"`
	SPISpeedHz int64  `yaml:"spi_speed_hz" env:"SPI_SPEED_HZ"`

	LCDAddr     int `yaml:"lcd_addr" env:"LCD_ADDR"`
	PCA9685Addr int `yaml:"pca9685_addr" env:"PCA9685_ADDR"`
	AccAddr     int `yaml:"acc_addr" env:"ACC_ADDR"`
	GyroAddr    int `yaml:"gyro_addr" env:"GYRO_ADDR"`
	MagAddr     int `yaml:"mag_addr" env:"MAG_ADDR"`

	DCPin           int   `yaml:"dc_pin" env:"DC_PIN"`
	DC2Pin          int   `yaml:"dc2_pin" env:"DC2_PIN"`
	ServoPin        int   `yaml:"servo_pin" env:"SERVO_PIN"`
	StepperDirPin   int   `yaml:"stepper_dir_pin" env:"STEPPER_DIR_PIN"`
	StepperClockPin int   `yaml:"stepper_clock_pin" env:"STEPPER_CLOCK_PIN"`
	StepperEnPin    int   `yaml:"stepper_enable_pin" env:"STEPPER_ENABLE_PIN"`
	SwitchPins      []int `yaml:"switch_pins" env:"SWITCH_PINS"`
	LEDPins         []int `yaml:"led_pins" env:"LED_PINS"`
	DistanceLEDPins []int `yaml:"distance_led_pins" env:"DISTANCE_LED_PINS"`

	// LCDRowOffset is the DDRAM address of the second display row.
	LCDRowOffset int `yaml:"lcd_row_offset" env:"LCD_ROW_OFFSET"`

	BMX055Strict bool   `yaml:"bmx055_strict" env:"BMX055_STRICT"`
	LegacyJSON   bool   `yaml:"legacy_json" env:"LEGACY_JSON"`
	LogLevel     string `yaml:"log_level" env:"LOG_LEVEL"`
	DryRun       bool   `yaml:"dry_run" env:"DRY_RUN"`

	// Requires is a semver constraint on the tool version, e.g. ">= 0.1".
	Requires string `yaml:"requires" env:"REQUIRES"`
}

// Default matches the reference board.
func Default() *Config {
	return &Config{
		I2CDevice:  "/dev/i2c-1",
		SPIDevice:  "/dev/spidev0.0",
		SPISpeedHz: 8000000,

		LCDAddr:     0x3C,
		PCA9685Addr: 0x40,
		AccAddr:     0x19,
		GyroAddr:    0x69,
		MagAddr:     0x13,

		DCPin:           13,
		DC2Pin:          12,
		ServoPin:        18,
		StepperDirPin:   22,
		StepperClockPin: 27,
		StepperEnPin:    17,
		SwitchPins:      []int{16, 20, 21},
		LEDPins:         []int{14, 15, 23, 24},
		DistanceLEDPins: []int{19, 26},

		LCDRowOffset: 0x40,

		LogLevel: "info",
	}
}

// Load applies the YAML file at path, if any, and the environment on top of
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read config")
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	}
	if err := env.Parse(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, errors.Wrap(err, "parse environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	for name, addr := range map[string]int{
		"lcd_addr":     c.LCDAddr,
		"pca9685_addr": c.PCA9685Addr,
		"acc_addr":     c.AccAddr,
		"gyro_addr":    c.GyroAddr,
		"mag_addr":     c.MagAddr,
	} {
		if addr < 0x03 || addr > 0x77 {
			return halerrors.InvalidArgument("%s 0x%02x is not a 7-bit address", name, addr)
		}
	}
	if len(c.SwitchPins) != 3 {
		return halerrors.InvalidArgument("switch_pins needs 3 pins, got %d", len(c.SwitchPins))
	}
	if len(c.LEDPins) > 8 {
		return halerrors.InvalidArgument("led_pins has %d pins, at most 8", len(c.LEDPins))
	}
	if c.LCDRowOffset <= 0 || c.LCDRowOffset > 0x40 {
		return halerrors.InvalidArgument("lcd_row_offset 0x%02x", c.LCDRowOffset)
	}
	if c.SPISpeedHz <= 0 {
		return halerrors.InvalidArgument("spi_speed_hz %d", c.SPISpeedHz)
	}
	return nil
}

// CheckVersion fails if version doesn't satisfy the Requires constraint.
func (c *Config) CheckVersion(version string) error {
	if c.Requires == "" {
		return nil
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return errors.Wrapf(err, "version %q", version)
	}
	constraint, err := semver.NewConstraint(c.Requires)
	if err != nil {
		return halerrors.InvalidArgument("requires %q: %v", c.Requires, err)
	}
	if !constraint.Check(v) {
		return errors.Errorf("config requires %s, running %s", c.Requires, v)
	}
	return nil
}
