// Command timeblockctl edits the time block store shared with the desktop app.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "timeblockctl:", err)
		os.Exit(1)
	}
}
