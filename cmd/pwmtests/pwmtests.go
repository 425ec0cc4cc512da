// pwmtests is a line-oriented bench tool for the PCA9685 expander.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/uz-foundation/rp3hal/pkg/bus"
	"github.com/uz-foundation/rp3hal/pkg/config"
	"github.com/uz-foundation/rp3hal/pkg/motor"
	"github.com/uz-foundation/rp3hal/pkg/pca9685"
)

const usage = `Commands:
    s <n> <position>        # Drive channel as a servo
    p <n> <pwm-duty-cycle>  # Raw duty cycle
    d <n> <state> <rate>    # Motor duty: standby|brake|cw|ccw|stop, 0-100
    f <hz>                  # Change the output frequency

<n>               Channel 0-15
<position>        Servo position 0.0-1.0; 0.5=centre
<pwm-duty-cycle>  Raw PWM duty cycle 0.0-1.0; 0=fully off, 1.0=fully on
`

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	dryRun := flag.Bool("dry-run", false, "log bus traffic instead of touching hardware")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Println("Failed to load configuration", err)
		return
	}

	var pwm pca9685.Interface
	if *dryRun {
		pwm = pca9685.Dummy()
	} else {
		i2c, err := bus.OpenI2C(cfg.I2CDevice)
		if err != nil {
			fmt.Println("Failed to open I2C bus", err)
			return
		}
		defer i2c.Close()
		pwm = pca9685.New(i2c.Device(cfg.PCA9685Addr))
	}

	if err := pwm.Initialize(); err != nil {
		fmt.Println("Failed to configure PCA9685", err)
		return
	}

	fmt.Print(usage)
	repl(pwm, os.Stdin, os.Stdout)
}

func repl(pwm pca9685.Interface, in io.Reader, out io.Writer) {
	reader := bufio.NewReader(in)
	for {
		fmt.Fprint(out, "> ")
		line, err := reader.ReadString('\n')
		if line != "" {
			if cmdErr := execute(pwm, strings.Fields(line), out); cmdErr != nil {
				fmt.Fprintln(out, cmdErr)
			}
		}
		if err != nil {
			if err != io.EOF {
				fmt.Fprintln(out, "\nFailed to read stdin: ", err)
			}
			return
		}
	}
}

func execute(pwm pca9685.Interface, parts []string, out io.Writer) error {
	if len(parts) == 0 {
		return nil
	}
	switch parts[0] {
	case "f":
		if len(parts) < 2 {
			return fmt.Errorf("Not enough parameters")
		}
		hz, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return fmt.Errorf("Expected float, not %s", parts[1])
		}
		fmt.Fprintf(out, "Setting frequency to %.1fHz\n", hz)
		return pwm.SetFrequency(hz)
	case "s", "p", "d":
	default:
		return fmt.Errorf("Unknown command %s", parts[0])
	}

	if len(parts) < 3 || (parts[0] == "d" && len(parts) < 4) {
		return fmt.Errorf("Not enough parameters")
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil {
		return fmt.Errorf("Expected int, not %s", parts[1])
	}
	if n < 0 || n >= pca9685.Channels {
		return fmt.Errorf("Expected 0 <= n < %d", pca9685.Channels)
	}

	if parts[0] == "d" {
		state, err := motor.Parse(parts[2])
		if err != nil {
			return err
		}
		rate, err := strconv.Atoi(parts[3])
		if err != nil {
			return fmt.Errorf("Expected int, not %s", parts[3])
		}
		fmt.Fprintf(out, "Setting channel %d to %v at %d%%\n", n, state, rate)
		return pwm.SetDuty(n, state, rate)
	}

	v, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return fmt.Errorf("Expected float, not %s", parts[2])
	}
	if parts[0] == "s" {
		fmt.Fprintf(out, "Setting servo %d to %f\n", n, v)
		return pwm.SetServo(n, v)
	}
	fmt.Fprintf(out, "Setting PWM %d to %f\n", n, v)
	return pwm.SetPWM(n, v)
}
