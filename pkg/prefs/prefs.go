// Package prefs holds per-user UI preferences of the completion front end.
package prefs

import (
	"encoding/json"
	"fmt"
	"sync"
)

// UserPreferences toggles the completion hint and the inline CQL help.
// Both default to on. The JSON form uses short keys and "0"/"1" strings so
// it fits in a cookie.
type UserPreferences struct {
	ShowCqlCompletionHint bool
	ShowCqlHelp           bool
}

// Default returns preferences with everything enabled.
func Default() UserPreferences {
	return UserPreferences{ShowCqlCompletionHint: true, ShowCqlHelp: true}
}

type wirePrefs struct {
	Hint *flag `json:"e_hi,omitempty"`
	Help *flag `json:"e_he,omitempty"`
}

// flag is a bool encoded as "0" or "1".
type flag bool

func (f flag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte(`"1"`), nil
	}
	return []byte(`"0"`), nil
}

func (f *flag) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("preference flag: %w", err)
	}
	switch s {
	case "1":
		*f = true
	case "0":
		*f = false
	default:
		return fmt.Errorf("preference flag: want \"0\" or \"1\", got %q", s)
	}
	return nil
}

// MarshalJSON encodes both flags.
func (p UserPreferences) MarshalJSON() ([]byte, error) {
	hint, help := flag(p.ShowCqlCompletionHint), flag(p.ShowCqlHelp)
	return json.Marshal(wirePrefs{Hint: &hint, Help: &help})
}

// UnmarshalJSON decodes the flags present in data. Missing keys keep the
// defaults.
func (p *UserPreferences) UnmarshalJSON(data []byte) error {
	var w wirePrefs
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*p = Default()
	if w.Hint != nil {
		p.ShowCqlCompletionHint = bool(*w.Hint)
	}
	if w.Help != nil {
		p.ShowCqlHelp = bool(*w.Help)
	}
	return nil
}

// Store keeps preferences in memory by user.
type Store struct {
	mu    sync.RWMutex
	prefs map[string]UserPreferences
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{prefs: make(map[string]UserPreferences)}
}

// Get returns the user's preferences, or the defaults.
func (s *Store) Get(user string) UserPreferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.prefs[user]; ok {
		return p
	}
	return Default()
}

// Set replaces the user's preferences.
func (s *Store) Set(user string, p UserPreferences) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[user] = p
}
