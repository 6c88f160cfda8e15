package notify

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"github.com/borgmon/timeblock/pkg/audio"
	"github.com/borgmon/timeblock/pkg/logx"
)

// Styles accepted by Build
const (
	StyleSystem = "system"
	StyleSound  = "sound"
	StyleLog    = "log"
)

// Deps are the collaborators the styles may need
type Deps struct {
	App       fyne.App // system
	SoundFile string   // sound
	Log       logx.Logger
}

// Build assembles the dispatchers named in styles. An empty list selects the log style.
func Build(styles []string, deps Deps) (Dispatcher, error) {
	if len(styles) == 0 {
		styles = []string{StyleLog}
	}

	var out Multi
	var player *audio.Player
	for _, style := range styles {
		switch strings.ToLower(strings.TrimSpace(style)) {
		case StyleSystem:
			if deps.App == nil {
				return nil, fmt.Errorf("notify style %q needs the desktop app", style)
			}
			out = append(out, NewSystemDispatcher(deps.App))
		case StyleSound:
			if strings.TrimSpace(deps.SoundFile) == "" {
				return nil, fmt.Errorf("notify style %q needs notify.sound_file", style)
			}
			chime, err := audio.LoadChime(deps.SoundFile)
			if err != nil {
				return nil, err
			}
			if player == nil {
				player = audio.NewPlayer()
			}
			out = append(out, NewSoundDispatcher(player, chime))
		case StyleLog:
			out = append(out, LogDispatcher{Log: deps.Log})
		default:
			return nil, fmt.Errorf("unknown notify style %q", style)
		}
	}

	if len(out) == 1 {
		return out[0], nil
	}
	return out, nil
}
