package store

import (
	"fyne.io/fyne/v2"
)

// PrefsKV persists through Fyne preferences. Fyne does not distinguish an
// empty string from a missing key, so empty values read back as absent.
type PrefsKV struct {
	prefs fyne.Preferences
}

// NewPrefsKV creates a PrefsKV over app preferences
func NewPrefsKV(prefs fyne.Preferences) *PrefsKV {
	return &PrefsKV{prefs: prefs}
}

func (p *PrefsKV) Get(key string) (string, bool, error) {
	v := p.prefs.StringWithFallback(key, "")
	return v, v != "", nil
}

func (p *PrefsKV) Set(key, value string) error {
	p.prefs.SetString(key, value)
	return nil
}

func (p *PrefsKV) Close() error { return nil }
