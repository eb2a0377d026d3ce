package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/youruser/quotecanvas/internal/util"
)

// PrefsKey is the fixed key the preferences blob is stored under.
const PrefsKey = "quotecanvas-settings"

// Preferences are the small user-facing toggles persisted between sessions.
type Preferences struct {
	AutoSave       bool   `json:"autoSave"`
	PreviewQuality string `json:"previewQuality"`
	TouchMode      bool   `json:"touchMode"`
	Theme          string `json:"theme"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		AutoSave:       true,
		PreviewQuality: "medium",
		TouchMode:      true,
		Theme:          "light",
	}
}

// PreviewScale maps the preview quality to a downscale factor.
func (p Preferences) PreviewScale() float64 {
	switch p.PreviewQuality {
	case "low":
		return 0.25
	case "high":
		return 1
	default:
		return 0.5
	}
}

// PrefsStore holds the current preferences in memory and mirrors them to
// a JSON file holding a key/value map, so other keys written by other tools
// survive a save. The file is written only while autosave is on.
type PrefsStore struct {
	mu     sync.Mutex
	path   string
	loaded bool
	cur    Preferences // live values
	saved  Preferences // last values on disk
}

func NewPrefsStore(path string) *PrefsStore {
	return &PrefsStore{path: path}
}

// Load returns the current preferences. The first call reads the file and
// merges it over the defaults. A missing file is not an error.
func (s *PrefsStore) Load() (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return DefaultPreferences(), err
	}
	return s.cur, nil
}

// Save makes p current. It is written to disk when autosave is on; turning
// autosave off persists only that switch and keeps the other stored values.
func (s *PrefsStore) Save(p Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return err
	}
	prev := s.cur
	s.cur = p

	switch {
	case p.AutoSave:
		return s.write(p)
	case prev.AutoSave:
		off := s.saved
		off.AutoSave = false
		return s.write(off)
	}
	return nil
}

// Reset removes the stored preferences and restores the defaults.
func (s *PrefsStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAll()
	if err != nil {
		return err
	}
	delete(all, PrefsKey)
	if err := s.writeAll(all); err != nil {
		return err
	}
	s.cur, s.saved, s.loaded = DefaultPreferences(), DefaultPreferences(), true
	return nil
}

func (s *PrefsStore) ensureLoaded() error {
	if s.loaded {
		return nil
	}
	p := DefaultPreferences()
	all, err := s.readAll()
	if err != nil {
		return err
	}
	if raw, ok := all[PrefsKey]; ok {
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("decoding %s: %w", PrefsKey, err)
		}
	}
	s.cur, s.saved, s.loaded = p, p, true
	return nil
}

func (s *PrefsStore) write(p Preferences) error {
	all, err := s.readAll()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	all[PrefsKey] = raw
	if err := s.writeAll(all); err != nil {
		return err
	}
	s.saved = p
	return nil
}

func (s *PrefsStore) readAll() (map[string]json.RawMessage, error) {
	all := map[string]json.RawMessage{}
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return all, nil
	}
	if err != nil {
		return all, err
	}
	if len(b) == 0 {
		return all, nil
	}
	if err := json.Unmarshal(b, &all); err != nil {
		return map[string]json.RawMessage{}, fmt.Errorf("decoding %s: %w", s.path, err)
	}
	return all, nil
}

func (s *PrefsStore) writeAll(all map[string]json.RawMessage) error {
	b, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}
	return util.WriteFile(s.path, b)
}
