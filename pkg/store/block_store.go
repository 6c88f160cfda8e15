package store

import (
	"encoding/json"
	"fmt"

	"github.com/borgmon/timeblock/pkg/logx"
	"github.com/borgmon/timeblock/pkg/models"
)

// Keys the engine reads and writes
const (
	KeyTimeBlocks = "timeBlocks"
	KeySettings   = "settings"
)

// BlockStore reads and writes the block list and settings through a KV
type BlockStore struct {
	kv  KV
	log logx.Logger
}

// NewBlockStore creates a BlockStore over kv
func NewBlockStore(kv KV, log logx.Logger) *BlockStore {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &BlockStore{kv: kv, log: log}
}

// LoadBlocks returns the stored blocks in order. A missing key is an empty list.
func (bs *BlockStore) LoadBlocks() ([]models.TimeBlock, error) {
	raw, ok, err := bs.kv.Get(KeyTimeBlocks)
	if err != nil {
		return nil, fmt.Errorf("read time blocks: %w", err)
	}
	if !ok || raw == "" {
		return []models.TimeBlock{}, nil
	}

	var blocks []models.TimeBlock
	if err := json.Unmarshal([]byte(raw), &blocks); err != nil {
		return nil, fmt.Errorf("decode time blocks: %w", err)
	}
	if blocks == nil {
		blocks = []models.TimeBlock{}
	}
	return blocks, nil
}

// SaveBlocks replaces the stored block list
func (bs *BlockStore) SaveBlocks(blocks []models.TimeBlock) error {
	if blocks == nil {
		blocks = []models.TimeBlock{}
	}
	b, err := json.Marshal(blocks)
	if err != nil {
		return fmt.Errorf("encode time blocks: %w", err)
	}
	if err := bs.kv.Set(KeyTimeBlocks, string(b)); err != nil {
		return fmt.Errorf("write time blocks: %w", err)
	}
	return nil
}

// LoadSettings always returns usable settings. Absent or malformed values fall
// back to defaults; only a failing backend is reported as an error.
func (bs *BlockStore) LoadSettings() (models.Settings, error) {
	raw, ok, err := bs.kv.Get(KeySettings)
	if err != nil {
		return models.DefaultSettings(), fmt.Errorf("read settings: %w", err)
	}
	if !ok {
		return models.DefaultSettings(), nil
	}

	settings, err := models.ParseSettings([]byte(raw))
	if err != nil {
		bs.log.Warn("malformed settings, using defaults", logx.Err(err))
	}
	return settings, nil
}

// SaveSettings replaces the stored settings
func (bs *BlockStore) SaveSettings(settings models.Settings) error {
	b, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := bs.kv.Set(KeySettings, string(b)); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
