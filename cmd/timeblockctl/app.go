package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/borgmon/timeblock/pkg/config"
	"github.com/borgmon/timeblock/pkg/logx"
	"github.com/borgmon/timeblock/pkg/schedule"
	"github.com/borgmon/timeblock/pkg/store"
	"github.com/urfave/cli"
)

var nowFunc = time.Now

var globalFlags = []cli.Flag{
	cli.StringFlag{
		Name:   "config, c",
		Usage:  "host config file, its store section selects the backend",
		EnvVar: "TIMEBLOCK_CONFIG",
		Value:  config.DefaultPath(),
	},
	cli.StringFlag{
		Name:  "driver",
		Usage: "override the store driver (file, sqlite, memory)",
	},
	cli.StringFlag{
		Name:  "store, s",
		Usage: "override the store path",
	},
	cli.StringFlag{
		Name:  "log-level",
		Usage: "debug, info, warn or error",
		Value: "warn",
	},
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "timeblockctl"
	app.HelpName = "timeblockctl"
	app.Usage = "manage time block reminders"
	app.UsageText = "timeblockctl [global options] <command> [arguments...]"
	app.ErrWriter = os.Stderr
	app.Flags = globalFlags
	app.Commands = []cli.Command{
		{
			Name:      "add",
			Aliases:   []string{"a"},
			Usage:     "add a time block",
			ArgsUsage: "<task>",
			Flags:     addFlags,
			Action:    add,
		},
		{
			Name:    "list",
			Aliases: []string{"ls"},
			Usage:   "list time blocks",
			Flags:   listFlags,
			Action:  list,
		},
		{
			Name:      "remove",
			Aliases:   []string{"rm"},
			Usage:     "delete a time block",
			ArgsUsage: "<id>",
			Action:    remove,
		},
		{
			Name:      "complete",
			Usage:     "mark a time block done",
			ArgsUsage: "<id>",
			Action:    complete,
		},
		{
			Name:      "enable",
			Usage:     "switch a time block on, restarting its reminder count if used up",
			ArgsUsage: "<id>",
			Action:    setEnabled(true),
		},
		{
			Name:      "disable",
			Usage:     "switch a time block off",
			ArgsUsage: "<id>",
			Action:    setEnabled(false),
		},
		{
			Name:   "settings",
			Usage:  "show or change the alert settings",
			Flags:  settingsFlags,
			Action: settings,
		},
		{
			Name:      "export",
			Usage:     "write active blocks as iCalendar",
			ArgsUsage: "[file]",
			Action:    export,
		},
		{
			Name:      "import",
			Usage:     "add blocks from an iCalendar file or URL",
			ArgsUsage: "<file|url>",
			Flags:     importFlags,
			Action:    importCalendar,
		},
	}
	return app
}

// session is one opened store plus the scheduler used for edits
type session struct {
	kv     store.KV
	blocks *store.BlockStore
	sched  *schedule.Scheduler
	log    logx.Logger
	out    io.Writer
}

func (s *session) Close() error { return s.kv.Close() }

func openSession(ctx *cli.Context) (*session, error) {
	cfg, err := config.Load(ctx.GlobalString("config"))
	if err != nil {
		return nil, err
	}
	if d := ctx.GlobalString("driver"); d != "" {
		cfg.Store.Driver = d
	}
	if p := ctx.GlobalString("store"); p != "" {
		cfg.Store.Path = p
	}
	if strings.EqualFold(strings.TrimSpace(cfg.Store.Driver), "prefs") {
		return nil, fmt.Errorf("the prefs store belongs to the desktop app, use --driver file or sqlite")
	}

	log := logx.NewConsole(ctx.GlobalString("log-level"))
	kv, err := store.Open(cfg.Store, nil, log)
	if err != nil {
		return nil, err
	}
	bs := store.NewBlockStore(kv, log)
	return &session{
		kv:     kv,
		blocks: bs,
		sched:  schedule.New(bs, nil, schedule.Options{Logger: log}),
		log:    log,
		out:    ctx.App.Writer,
	}, nil
}

// withSession opens the store around fn
func withSession(fn func(ctx *cli.Context, s *session) error) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()
		return fn(ctx, s)
	}
}
