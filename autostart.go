package main

import (
	"os"
	"path/filepath"

	"github.com/borgmon/timeblock/pkg/logx"
	"github.com/emersion/go-autostart"
)

func setupAutostart(enable bool, log logx.Logger) error {
	execPath, err := os.Executable()
	if err != nil {
		return err
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return err
	}

	item := &autostart.App{
		Name:        "timeblock",
		DisplayName: "Time Block Reminders",
		Exec:        []string{execPath},
	}

	switch {
	case enable && !item.IsEnabled():
		if err := item.Enable(); err != nil {
			return err
		}
		log.Info("autostart enabled", logx.String("exec", execPath))
	case !enable && item.IsEnabled():
		if err := item.Disable(); err != nil {
			return err
		}
		log.Info("autostart disabled")
	}
	return nil
}
