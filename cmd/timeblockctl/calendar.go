package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/borgmon/timeblock/pkg/calendar"
	"github.com/borgmon/timeblock/pkg/models"
	"github.com/urfave/cli"
)

var importFlags = []cli.Flag{
	cli.BoolFlag{
		Name:  "dry-run",
		Usage: "print what would be added without saving",
	},
}

var export = withSession(func(ctx *cli.Context, s *session) error {
	blocks, err := s.sched.Blocks()
	if err != nil {
		return err
	}
	alerts, err := s.blocks.LoadSettings()
	if err != nil {
		return err
	}

	var w io.Writer = s.out
	if path := ctx.Args().First(); path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return calendar.Export(w, blocks, alerts)
})

var importCalendar = withSession(func(ctx *cli.Context, s *session) error {
	src := strings.TrimSpace(ctx.Args().First())
	if src == "" {
		return fmt.Errorf("%w: import needs a file or URL", errUsage)
	}

	opts := calendar.ImportOptions{Now: nowFunc(), Log: s.log}
	var (
		blocks []models.TimeBlock
		err    error
	)
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		blocks, err = calendar.Fetch(context.Background(), src, opts)
	} else {
		var f *os.File
		if f, err = os.Open(src); err != nil {
			return err
		}
		blocks, err = calendar.Import(f, opts)
		f.Close()
	}
	if err != nil {
		return err
	}

	for _, b := range blocks {
		if !ctx.Bool("dry-run") {
			if err := s.sched.AddBlock(b); err != nil {
				return err
			}
		}
		fmt.Fprintf(s.out, "imported %s %s at %s (%s)\n", shortID(b.ID), b.Task, b.Start(nil).Format("15:04"), b.Mode())
	}
	fmt.Fprintf(s.out, "%d blocks imported\n", len(blocks))
	return nil
})
