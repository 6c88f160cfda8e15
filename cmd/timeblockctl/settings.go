package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli"
)

var settingsFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "alerts",
		Usage: "on or off, the master switch",
	},
	cli.IntFlag{
		Name:  "pre-alert-time",
		Usage: "minutes before the start that pre-alerts begin",
	},
	cli.IntFlag{
		Name:  "pre-alert-count",
		Usage: "pre-alerts per occurrence",
	},
}

var settings = withSession(func(ctx *cli.Context, s *session) error {
	current, err := s.blocks.LoadSettings()
	if err != nil {
		return err
	}

	changed := false
	if ctx.IsSet("alerts") {
		switch strings.ToLower(ctx.String("alerts")) {
		case "on", "true", "yes", "1":
			current.GlobalAlertEnabled = true
		case "off", "false", "no", "0":
			current.GlobalAlertEnabled = false
		default:
			return fmt.Errorf("%w: --alerts takes on or off", errUsage)
		}
		changed = true
	}
	if ctx.IsSet("pre-alert-time") {
		v := ctx.Int("pre-alert-time")
		if v < 0 {
			return fmt.Errorf("%w: --pre-alert-time must be >= 0", errUsage)
		}
		current.PreAlertTime = v
		changed = true
	}
	if ctx.IsSet("pre-alert-count") {
		v := ctx.Int("pre-alert-count")
		if v < 1 {
			return fmt.Errorf("%w: --pre-alert-count must be >= 1", errUsage)
		}
		current.PreAlertCount = v
		changed = true
	}

	if changed {
		if err := s.blocks.SaveSettings(current); err != nil {
			return err
		}
	}
	fmt.Fprintf(s.out, "alerts:          %s\n", onOff(current.GlobalAlertEnabled))
	fmt.Fprintf(s.out, "pre-alert time:  %d min\n", current.PreAlertTime)
	fmt.Fprintf(s.out, "pre-alert count: %d\n", current.PreAlertCount)
	return nil
})

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
