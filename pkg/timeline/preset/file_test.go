package preset

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

const archiveFile = `
presets:
  - label: Archive
    rules:
      - name: monthly
        recurrence_rule: FREQ=MONTHLY;BYMONTHDAY=1;BYHOUR=0;BYMINUTE=0
        retention: 31622400
      - name: yearly
        recurrence_rule: FREQ=YEARLY;BYMONTH=1;BYMONTHDAY=1;BYHOUR=0;BYMINUTE=0
        retention: 316224000
`

func writePresetFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadFile_MergesOverBuiltins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	writePresetFile(t, path, archiveFile)

	lib, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if n := len(lib.Templates()); n != 4 {
		t.Errorf("templates = %d, want 4", n)
	}

	archive, ok := lib.Get("Archive")
	if !ok {
		t.Fatal("Archive template missing")
	}
	if got := lib.Match(archive.Rules); got.Label != "Archive" {
		t.Errorf("Match(Archive rules) = %q", got.Label)
	}
}

func TestLoadFile_Replace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	writePresetFile(t, path, "replace: true\n"+archiveFile)

	lib, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if n := len(lib.Templates()); n != 1 {
		t.Errorf("templates = %d, want 1", n)
	}
	if got := lib.Match(Standard().Rules); !got.IsCustom() {
		t.Errorf("Match(Standard rules) = %q, want Custom after replace", got.Label)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "presets: [\n"},
		{"bad rule", `
presets:
  - label: Broken
    rules:
      - name: x
        recurrence_rule: FREQ=HOURLY
        retention: 1
`},
		{"reserved label", `
presets:
  - label: Custom
    rules:
      - name: x
        recurrence_rule: FREQ=DAILY;BYHOUR=0;BYMINUTE=0
        retention: 1
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "presets.yaml")
			writePresetFile(t, path, tt.content)
			if _, err := LoadFile(path); err == nil {
				t.Error("LoadFile() error = nil")
			}
		})
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadFile(missing) error = nil")
	}
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	writePresetFile(t, path, "presets: []\n")

	w, err := NewWatcher(path, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	if _, ok := w.Current().Get("Archive"); ok {
		t.Fatal("Archive present before reload")
	}

	var reloads atomic.Int32
	w.OnChange(func(*Library) { reloads.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(50 * time.Millisecond)
	writePresetFile(t, path, archiveFile)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := w.Current().Get("Archive"); ok {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if _, ok := w.Current().Get("Archive"); !ok {
		t.Fatal("Archive not loaded after file change")
	}
	if reloads.Load() == 0 {
		t.Error("OnChange not called")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

func TestWatcher_KeepsLibraryOnBadReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	writePresetFile(t, path, archiveFile)

	w, err := NewWatcher(path, 0, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	writePresetFile(t, path, "presets: [\n")
	if err := w.Reload(); err == nil {
		t.Fatal("Reload() error = nil for broken file")
	}
	if _, ok := w.Current().Get("Archive"); !ok {
		t.Error("previous library lost after failed reload")
	}
}

func TestDebouncer_CollapsesBurst(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	for i := 0; i < 5; i++ {
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("callback calls = %d, want 1", got)
	}
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()
	d.Trigger(func() { calls.Add(1) })

	time.Sleep(100 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("callback calls = %d, want 0", got)
	}
}

func TestWatcher_OnReloadReportsResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	writePresetFile(t, path, archiveFile)

	w, err := NewWatcher(path, 0, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	var results []error
	w.OnReload(func(err error) { results = append(results, err) })

	w.reloadFromEvent()
	writePresetFile(t, path, "presets: [\n")
	w.reloadFromEvent()

	if len(results) != 2 || results[0] != nil || results[1] == nil {
		t.Errorf("reload results = %v, want [nil, error]", results)
	}
}
