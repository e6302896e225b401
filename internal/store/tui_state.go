package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

const tuiStateFileName = "tui_state.json"

// TUIState stores small, user-facing UI state for restoring the last screen on relaunch.
//
// It is intentionally "best effort": callers should tolerate missing/invalid data.
type TUIState struct {
	Version int `json:"version"`

	// Tab is one of: active|business|individual|prospect|groups|kc
	Tab string `json:"tab,omitempty"`

	// TypeFilter is one of: all|person|company
	TypeFilter string `json:"typeFilter,omitempty"`

	// OpenClientID reopens the detail view when set.
	OpenClientID string `json:"openClientId,omitempty"`
}

// TUIStateStore reads and writes TUIState under Dir.
type TUIStateStore struct {
	Dir string
}

func (s TUIStateStore) path() string {
	return filepath.Join(s.Dir, tuiStateFileName)
}

func (s TUIStateStore) Load() (*TUIState, error) {
	if s.Dir == "" {
		return &TUIState{Version: 1}, nil
	}
	b, err := os.ReadFile(s.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &TUIState{Version: 1}, nil
		}
		return nil, err
	}
	var st TUIState
	if err := json.Unmarshal(b, &st); err != nil {
		// Best-effort; if corrupted, treat as missing.
		return &TUIState{Version: 1}, nil
	}
	if st.Version == 0 {
		st.Version = 1
	}
	return &st, nil
}

func (s TUIStateStore) Save(st *TUIState) error {
	if st == nil || s.Dir == "" {
		return nil
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	if st.Version == 0 {
		st.Version = 1
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return atomicWriteFile(s.Dir, tuiStateFileName+".*.tmp", s.path(), b, 0o644)
}
