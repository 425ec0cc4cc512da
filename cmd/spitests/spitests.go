// spitests dumps every MCP3208 channel at a fixed rate.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/conn/spi/spireg"
	"periph.io/x/periph/host"

	"github.com/uz-foundation/rp3hal/pkg/bus"
	"github.com/uz-foundation/rp3hal/pkg/config"
	"github.com/uz-foundation/rp3hal/pkg/mcp3208"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	period := flag.Duration("period", 200*time.Millisecond, "time between dumps")
	count := flag.Int("n", 0, "number of dumps, 0 for ever")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	for _, r := range spireg.All() {
		log.Printf("Port ref: %v", r)
	}

	s, err := bus.OpenSPI(cfg.SPIDevice, physic.Frequency(cfg.SPISpeedHz)*physic.Hertz)
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()

	adc := mcp3208.New(s)
	for i := 0; *count == 0 || i < *count; i++ {
		if err := dump(adc, os.Stdout); err != nil {
			log.Printf("Read failed: %v", err)
		}
		time.Sleep(*period)
	}
}

// dump prints one line with the raw count of every channel.
func dump(adc mcp3208.Interface, out io.Writer) error {
	var firstErr error
	for ch := 0; ch < mcp3208.Channels; ch++ {
		v, err := adc.ReadChannel(ch)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		fmt.Fprintf(out, "ch%d %4d  ", ch, v)
	}
	fmt.Fprintln(out)
	return firstErr
}
