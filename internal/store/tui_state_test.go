package store

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestTUIState_SaveLoad_RoundTrip(t *testing.T) {
	t.Parallel()

	s := TUIStateStore{Dir: t.TempDir()}

	// Missing file => default state.
	st0, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if st0 == nil || st0.Version != 1 {
		t.Fatalf("expected default Version=1; got %#v", st0)
	}

	want := &TUIState{
		Version:      1,
		Tab:          "prospect",
		TypeFilter:   "company",
		OpenClientID: "c-1",
	}
	if err := s.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load (after save): %v", err)
	}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("roundtrip mismatch:\nwant: %#v\ngot:  %#v", want, got)
	}
}

func TestTUIState_Load_CorruptFileIsDefault(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, tuiStateFileName), []byte("{nope"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	st, err := TUIStateStore{Dir: dir}.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if st.Version != 1 || st.Tab != "" {
		t.Fatalf("expected default state, got %#v", st)
	}
}
