package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/borgmon/timeblock/pkg/models"
	"github.com/urfave/cli"
)

var addFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "at, t",
		Usage: `start time, "15:04", "2006-01-02 15:04" or RFC 3339`,
	},
	cli.StringFlag{
		Name:  "mode, m",
		Usage: "daily, weekly or once",
		Value: string(models.ReminderModeDaily),
	},
	cli.StringFlag{
		Name:  "days, d",
		Usage: `weekdays for weekly mode, e.g. "mon,wed,fri" or "1,3,5"`,
	},
	cli.IntFlag{
		Name:  "count, n",
		Usage: "how many times to remind, -1 or 0 for unlimited",
		Value: models.UnlimitedReminders,
	},
	cli.BoolFlag{
		Name:  "pre-alert, p",
		Usage: "warn ahead of the start",
	},
}

var listFlags = []cli.Flag{
	cli.BoolFlag{
		Name:  "all, a",
		Usage: "include disabled and completed blocks",
	},
}

var errUsage = errors.New("bad arguments")

var add = withSession(func(ctx *cli.Context, s *session) error {
	task := strings.TrimSpace(strings.Join(ctx.Args(), " "))
	if task == "" {
		return fmt.Errorf("%w: add needs a task", errUsage)
	}
	if !ctx.IsSet("at") {
		return fmt.Errorf("%w: add needs --at", errUsage)
	}
	start, err := parseStart(ctx.String("at"), nowFunc())
	if err != nil {
		return err
	}

	mode := models.ReminderMode(strings.ToLower(ctx.String("mode")))
	var days []int
	if raw := ctx.String("days"); raw != "" {
		if days, err = models.ParseWeekdays(raw); err != nil {
			return err
		}
	}
	if mode == models.ReminderModeWeekly && len(days) == 0 {
		days = []int{int(start.Weekday())}
	}
	count := ctx.Int("count")
	if count <= 0 {
		count = models.UnlimitedReminders
	}

	block := models.NewTimeBlock(task, start, mode, days, count, ctx.Bool("pre-alert"))
	if err := s.sched.AddBlock(block); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "added %s %s at %s\n", shortID(block.ID), block.Task, start.Format("15:04"))
	return nil
})

var list = withSession(func(ctx *cli.Context, s *session) error {
	blocks, err := s.sched.Blocks()
	if err != nil {
		return err
	}

	all := ctx.Bool("all")
	w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tMODE\tDAYS\tLEFT\tPRE\tSTATUS\tTASK")
	shown := 0
	for _, b := range blocks {
		if !all && !b.Active() {
			continue
		}
		shown++
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(b.ID),
			b.Start(time.Local).Format("15:04"),
			b.Mode(),
			formatWeekdays(b.Weekdays),
			formatRemaining(b),
			yesNo(b.PreAlert),
			formatStatus(b),
			b.Task,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if shown == 0 {
		fmt.Fprintln(s.out, "no time blocks")
	}
	return nil
})

var remove = withSession(func(ctx *cli.Context, s *session) error {
	id, err := resolveArg(ctx, s)
	if err != nil {
		return err
	}
	if err := s.sched.DeleteBlock(id); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "removed %s\n", shortID(id))
	return nil
})

var complete = withSession(func(ctx *cli.Context, s *session) error {
	id, err := resolveArg(ctx, s)
	if err != nil {
		return err
	}
	if err := s.sched.CompleteBlock(id); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "completed %s\n", shortID(id))
	return nil
})

func setEnabled(enabled bool) cli.ActionFunc {
	return withSession(func(ctx *cli.Context, s *session) error {
		id, err := resolveArg(ctx, s)
		if err != nil {
			return err
		}
		if err := s.sched.SetBlockEnabled(id, enabled); err != nil {
			return err
		}
		verb := "disabled"
		if enabled {
			verb = "enabled"
		}
		fmt.Fprintf(s.out, "%s %s\n", verb, shortID(id))
		return nil
	})
}

// resolveArg maps the first argument, a full ID or a unique prefix, to a block ID
func resolveArg(ctx *cli.Context, s *session) (string, error) {
	prefix := strings.TrimSpace(ctx.Args().First())
	if prefix == "" {
		return "", fmt.Errorf("%w: %s needs a block id", errUsage, ctx.Command.Name)
	}
	blocks, err := s.sched.Blocks()
	if err != nil {
		return "", err
	}
	return resolveID(blocks, prefix)
}

func resolveID(blocks []models.TimeBlock, prefix string) (string, error) {
	if i := models.FindBlock(blocks, prefix); i >= 0 {
		return prefix, nil
	}
	var match string
	for _, b := range blocks {
		if !strings.HasPrefix(b.ID, prefix) {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("id prefix %q is ambiguous", prefix)
		}
		match = b.ID
	}
	if match == "" {
		return "", fmt.Errorf("no time block matches %q", prefix)
	}
	return match, nil
}

// parseStart accepts a clock time for today or a full date and time
func parseStart(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.ParseInLocation("15:04", raw, now.Location()); err == nil {
		return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location()), nil
	}
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, raw, now.Location()); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return models.RoundToMinute(t.In(now.Location())), nil
	}
	return time.Time{}, fmt.Errorf("%w: cannot parse start time %q", errUsage, raw)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

var weekdayShort = [7]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

func formatWeekdays(days []int) string {
	if len(days) == 0 {
		return "-"
	}
	names := make([]string, 0, len(days))
	for _, d := range days {
		if d >= 0 && d <= 6 {
			names = append(names, weekdayShort[d])
		}
	}
	return strings.Join(names, ",")
}

func formatRemaining(b models.TimeBlock) string {
	if b.Unlimited() {
		return "inf"
	}
	return fmt.Sprintf("%d/%d", b.RemainingCount, b.ReminderCount)
}

func formatStatus(b models.TimeBlock) string {
	if !b.Enabled {
		return "off"
	}
	return string(b.Status)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
