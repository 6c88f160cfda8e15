package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Format holds the PCM layout of a WAV file
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// Chime is a decoded WAV ready for playback
type Chime struct {
	Format Format
	PCM    []byte
}

// LoadChime reads and decodes a 16-bit PCM WAV file
func LoadChime(path string) (*Chime, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chime: %w", err)
	}
	return ParseWAV(data)
}

// Player plays chimes on the default output device. The device is opened
// lazily with the format of the first chime played.
type Player struct {
	mu      sync.Mutex
	ctx     *oto.Context
	format  Format
	initErr error
	once    sync.Once
}

// NewPlayer creates a Player without touching the audio device
func NewPlayer() *Player {
	return &Player{}
}

func (p *Player) context(format Format) (*oto.Context, error) {
	p.once.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   format.SampleRate,
			ChannelCount: format.Channels,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			p.initErr = fmt.Errorf("open audio device: %w", err)
			return
		}
		// wait for the hardware audio devices to be ready
		<-ready
		p.ctx = ctx
		p.format = format
	})
	if p.initErr != nil {
		return nil, p.initErr
	}
	if p.format.SampleRate != format.SampleRate || p.format.Channels != format.Channels {
		return nil, fmt.Errorf("chime format %d Hz/%d ch differs from device %d Hz/%d ch",
			format.SampleRate, format.Channels, p.format.SampleRate, p.format.Channels)
	}
	return p.ctx, nil
}

// Play plays c once and returns when playback finishes
func (p *Player) Play(c *Chime) error {
	if c == nil || len(c.PCM) == 0 {
		return errors.New("empty chime")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ctx, err := p.context(c.Format)
	if err != nil {
		return err
	}

	player := ctx.NewPlayer(bytes.NewReader(c.PCM))
	player.Play()
	for player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
	return player.Close()
}

// ParseWAV decodes the fmt and data chunks of a RIFF/WAVE file
func ParseWAV(data []byte) (*Chime, error) {
	r := bytes.NewReader(data)

	var header [12]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("wav header: %w", err)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return nil, errors.New("not a RIFF/WAVE file")
	}

	var (
		format  Format
		haveFmt bool
	)
	for {
		var chunkID [4]byte
		if _, err := io.ReadFull(r, chunkID[:]); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("wav chunk: %w", err)
		}
		var size uint32
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return nil, fmt.Errorf("wav chunk size: %w", err)
		}

		switch string(chunkID[:]) {
		case "fmt ":
			var fmtChunk struct {
				AudioFormat   uint16
				Channels      uint16
				SampleRate    uint32
				ByteRate      uint32
				BlockAlign    uint16
				BitsPerSample uint16
			}
			if size < 16 {
				return nil, errors.New("wav fmt chunk too short")
			}
			if err := binary.Read(r, binary.LittleEndian, &fmtChunk); err != nil {
				return nil, fmt.Errorf("wav fmt chunk: %w", err)
			}
			if _, err := r.Seek(int64(size-16), io.SeekCurrent); err != nil {
				return nil, err
			}
			format = Format{
				SampleRate: int(fmtChunk.SampleRate),
				Channels:   int(fmtChunk.Channels),
				BitDepth:   int(fmtChunk.BitsPerSample),
			}
			haveFmt = true
		case "data":
			if !haveFmt {
				return nil, errors.New("wav data before fmt chunk")
			}
			if format.BitDepth != 16 {
				return nil, fmt.Errorf("unsupported bit depth %d", format.BitDepth)
			}
			pcm := make([]byte, size)
			if _, err := io.ReadFull(r, pcm); err != nil {
				return nil, fmt.Errorf("wav data: %w", err)
			}
			return &Chime{Format: format, PCM: pcm}, nil
		default:
			if _, err := r.Seek(int64(size), io.SeekCurrent); err != nil {
				return nil, err
			}
		}
	}
	return nil, errors.New("wav has no data chunk")
}
