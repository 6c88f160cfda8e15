package notify

import (
	"github.com/borgmon/timeblock/pkg/audio"
)

// SoundDispatcher plays a chime for every alert. Playback blocks until the
// chime ends, so run it behind Async.
type SoundDispatcher struct {
	player *audio.Player
	chime  *audio.Chime
}

func NewSoundDispatcher(player *audio.Player, chime *audio.Chime) *SoundDispatcher {
	return &SoundDispatcher{player: player, chime: chime}
}

func (d *SoundDispatcher) Dispatch(title, body string) error {
	return d.player.Play(d.chime)
}
