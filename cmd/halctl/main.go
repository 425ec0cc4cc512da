package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/uz-foundation/rp3hal/pkg/config"
	"github.com/uz-foundation/rp3hal/pkg/hardware"
	"github.com/uz-foundation/rp3hal/pkg/logging"
)

// Version is the tool version checked against the config's requires field.
const Version = "0.1.0"

const versionText = "Version: " + Version + "\n" +
	"Copyright (C) 2019 Uz Foundation, Inc.\n" +
	"Licence: Free.\n"

var log = logging.For(logging.MAI)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run(ctx, os.Args[1:], os.Stdout, openHardware)
}

func openHardware(cfg *config.Config) (*hardware.Hardware, error) {
	if cfg.DryRun {
		return hardware.NewDummy(cfg), nil
	}
	return hardware.Open(cfg)
}

// run logs every failure and returns; the exit status is always 0.
func run(ctx context.Context, args []string, out io.Writer,
	open func(*config.Config) (*hardware.Hardware, error)) {

	before, lcdArgs, withLCD := splitLCD(args)
	cli, err := parseMain(before)
	if err != nil {
		log.WithError(err).Error("invalid argument error.")
		fmt.Fprint(out, helpText)
		return
	}
	var lcdOpts *LCDCLI
	if withLCD {
		if lcdOpts, err = parseLCD(lcdArgs); err != nil {
			log.WithError(err).Error("invalid argument error.")
			fmt.Fprint(out, helpText)
			return
		}
	}

	if cli.Help || len(args) == 0 {
		fmt.Fprint(out, helpText)
		return
	}
	if cli.Version {
		fmt.Fprint(out, versionText)
		return
	}

	cfg, err := config.Load(cli.Config)
	if err != nil {
		log.WithError(err).Error("fail to load configuration")
		return
	}
	if cli.DryRun {
		cfg.DryRun = true
	}
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		log.WithError(err).Warn("bad log level, keeping the default")
	}
	if err := cfg.CheckVersion(Version); err != nil {
		log.WithError(err).Error("configuration does not accept this version")
		return
	}

	hw, err := open(cfg)
	if err != nil {
		log.WithError(err).Warn("some buses failed to open")
	}
	if hw == nil {
		return
	}
	defer func() {
		if err := hw.Shutdown(); err != nil {
			log.WithError(err).Warn("shutdown incomplete")
		}
	}()
	if err := hw.Initialize(); err != nil {
		log.WithError(err).Warn("some devices failed to initialize")
	}

	r := newRunner(hw, out, cfg.LegacyJSON)
	r.banner(args[0])
	if lcdOpts != nil {
		r.lcdText(lcdOpts)
	}
	r.dispatch(ctx, cli)
}
