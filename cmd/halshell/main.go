// halshell is an interactive bench shell over every driver on the board.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/abiosoft/ishell/v2"

	"github.com/uz-foundation/rp3hal/pkg/config"
	"github.com/uz-foundation/rp3hal/pkg/hardware"
	"github.com/uz-foundation/rp3hal/pkg/logging"
)

var log = logging.For(logging.APP)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	dryRun := flag.Bool("dry-run", false, "log bus traffic instead of touching hardware")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("Unable to load configuration")
	}
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		log.WithError(err).Warn("Bad log level")
	}

	var hw *hardware.Hardware
	if *dryRun || cfg.DryRun {
		hw = hardware.NewDummy(cfg)
	} else if hw, err = hardware.Open(cfg); err != nil {
		log.WithError(err).Warn("Some buses failed to open")
	}
	defer func() {
		if err := hw.Shutdown(); err != nil {
			log.WithError(err).Warn("Shutdown incomplete")
		}
	}()
	if err := hw.Initialize(); err != nil {
		log.WithError(err).Warn("Some devices failed to initialize")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	b := &board{ctx: ctx, hw: hw, watchInterval: DefaultWatchInterval}

	shell := ishell.New()
	shell.Println("RP3 board shell")
	for _, cmd := range b.commands() {
		cmd := cmd
		shell.AddCmd(&ishell.Cmd{
			Name: cmd.name,
			Help: cmd.usage,
			Func: func(c *ishell.Context) {
				if err := cmd.run(contextWriter{c}, c.Args); err != nil {
					c.Err(err)
				}
			},
		})
	}

	if args := flag.Args(); len(args) > 0 {
		if err := shell.Process(args...); err != nil {
			log.WithError(err).Error("Command failed")
		}
		return
	}
	shell.Run()
}

// contextWriter sends command output through the shell.
type contextWriter struct {
	c *ishell.Context
}

func (w contextWriter) Write(p []byte) (int, error) {
	w.c.Print(string(p))
	return len(p), nil
}
