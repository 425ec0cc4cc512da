package main

import (
	"strings"

	"github.com/alecthomas/kong"
)

// CLI holds the top level options. -c/--i2clcd is split off before parsing
// because everything after it is read with the LCD option set.
type CLI struct {
	Help     bool   `short:"h" name:"help" help:"Display the help menu."`
	Version  bool   `short:"v" name:"version" help:"Display the version information."`
	Info     bool   `short:"i" name:"info" help:"Show the system banner."`
	MotorDC  string `short:"d" name:"motordc" help:"Control both DC motors: standby, pm or 0-100."`
	MotorDC2 string `short:"e" name:"motordc2" help:"Control DC motor 2: standby, pm or 0-100."`
	LED      string `short:"l" name:"led" help:"Light the LEDs from a hex value."`
	PM       string `short:"p" name:"sa_pm" help:"Read the potentiometer (plain or json)."`
	Acc      string `short:"x" name:"si_bmx055acc" help:"Read the accelerometer: x, y, z or json."`
	Gyro     string `short:"y" name:"si_bmx055gyro" help:"Read the gyroscope: x, y, z or json."`
	Mag      string `short:"z" name:"si_bmx055mag" help:"Read the magnetometer: x, y, z or json."`

	Config string `name:"config" help:"YAML configuration file."`
	DryRun bool   `name:"dry-run" help:"Log bus traffic instead of touching hardware."`
}

// LCDCLI is the option set that follows -c.
type LCDCLI struct {
	X int    `short:"x" name:"dir_x" help:"Column."`
	Y int    `short:"y" name:"dir_y" help:"Row."`
	S string `short:"s" name:"string" help:"Text to display."`
}

const pmPlain = "plain"

func isLCDFlag(arg string) bool {
	return arg == "-c" || arg == "--i2clcd" ||
		strings.HasPrefix(arg, "--i2clcd=") ||
		(strings.HasPrefix(arg, "-c") && !strings.HasPrefix(arg, "--"))
}

// splitLCD separates the arguments before -c from the LCD options after
// it. A value attached to -c itself is ignored.
func splitLCD(args []string) (before, lcd []string, ok bool) {
	for i, arg := range args {
		if isLCDFlag(arg) {
			return args[:i], args[i+1:], true
		}
	}
	return args, nil, false
}

// normalizePM rewrites the optional-argument forms of -p into something
// kong can parse: "-p json" and "-pjson" become json, a bare -p becomes
// plain.
func normalizePM(args []string) []string {
	var out []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-p" || arg == "--sa_pm":
			if i+1 < len(args) && args[i+1] == "json" {
				out = append(out, "--sa_pm=json")
				i++
			} else {
				out = append(out, "--sa_pm="+pmPlain)
			}
		case strings.HasPrefix(arg, "-p") && !strings.HasPrefix(arg, "--"):
			out = append(out, "--sa_pm="+arg[2:])
		case arg == "--sa_pm=":
			out = append(out, "--sa_pm="+pmPlain)
		default:
			out = append(out, arg)
		}
	}
	return out
}

func newParser(grammar interface{}) (*kong.Kong, error) {
	return kong.New(grammar,
		kong.Name("halctl"),
		kong.NoDefaultHelp(),
		kong.Exit(func(int) {}),
	)
}

func parseMain(args []string) (*CLI, error) {
	var cli CLI
	k, err := newParser(&cli)
	if err != nil {
		return nil, err
	}
	if _, err := k.Parse(normalizePM(args)); err != nil {
		return nil, err
	}
	return &cli, nil
}

func parseLCD(args []string) (*LCDCLI, error) {
	var cli LCDCLI
	k, err := newParser(&cli)
	if err != nil {
		return nil, err
	}
	if _, err := k.Parse(args); err != nil {
		return nil, err
	}
	if len(cli.S) > 16 {
		cli.S = cli.S[:16]
	}
	return &cli, nil
}

const helpText = `  -h, --help                  display the help menu.
  -v, --version               display the version information.
  -i, --info                  display the system information.

  -c, --i2clcd                control the (I2C) LCD.
    -x number, --dir_x=number
                              the value of x-axis.
    -y number, --dir_y=number
                              the value of y-axis.
    -s string, --string=string
                              the string to display on LCD.
                              Ex) -c        -x      <number>  -y      <number>  -s       <string>
                                  --i2clcd  --dir_x=<number>  --dir_y=<number>  --string=<string>

  -d number, --motordc=number control the DC motor.
  -e number, --motordc2=number control the DC motor2.

  -l number, --led=number     control the LED.
  -p [json], --sa_pm=[json]
                              get the value of a sensor(A/D), Potentiometer.
                              json : get the all values of json format.
  -x {x|y|z|json}, --si_bmx055acc={x|y|z|json}
                              get ACC of a sensor(I2C), BMX055.
  -y {x|y|z|json}, --si_bmx055gyro={x|y|z|json}
                              get GYRO of a sensor(I2C), BMX055.
  -z {x|y|z|json}, --si_bmx055mag={x|y|z|json}
                              get MAG of a sensor(I2C), BMX055.
                              x    : get the value of x-axis.
                              y    : get the value of y-axis.
                              z    : get the value of z-axis.
                              json : get the all values of json format.

  --config=file               read the board configuration from a YAML file.
  --dry-run                   log bus traffic instead of touching hardware.

`
