package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pcodetools/pcode/internal/engine"
)

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e, err := engine.New("")
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func waitFor(t *testing.T, ch <-chan *engine.Result) *engine.Result {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a re-check result")
		return nil
	}
}

func TestRecheckOnWrite(t *testing.T) {
	dir := t.TempDir()
	results := make(chan *engine.Result, 4)

	w, err := New(newTestEngine(t), Options{
		Debounce:   50 * time.Millisecond,
		Extensions: []string{".pcode"},
	}, func(res *engine.Result) { results <- res })
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch([]string{dir}); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, "prog.pcode")
	if err := os.WriteFile(path, []byte(`Local number &x = 1;`), 0o644); err != nil {
		t.Fatal(err)
	}

	res := waitFor(t, results)
	if res.Filename != path {
		t.Errorf("result filename = %q, want %q", res.Filename, path)
	}
	if len(res.Diagnostics) != 0 {
		t.Errorf("clean file produced diagnostics: %v", res.Diagnostics)
	}
}

func TestDebounceCoalescesBurst(t *testing.T) {
	dir := t.TempDir()
	results := make(chan *engine.Result, 16)

	w, err := New(newTestEngine(t), Options{
		Debounce:   150 * time.Millisecond,
		Extensions: []string{".pcode"},
	}, func(res *engine.Result) { results <- res })
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch([]string{dir}); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, "burst.pcode")
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte(`&x = 1;`), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	waitFor(t, results)

	// The burst of writes collapses into one pending entry; allow the
	// debounce window to pass again and verify no flood followed.
	time.Sleep(300 * time.Millisecond)
	if extra := len(results); extra > 1 {
		t.Errorf("burst produced %d extra results, want at most 1", extra)
	}
}

func TestIgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	results := make(chan *engine.Result, 4)

	w, err := New(newTestEngine(t), Options{
		Debounce:   50 * time.Millisecond,
		Extensions: []string{".pcode"},
	}, func(res *engine.Result) { results <- res })
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch([]string{dir}); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case res := <-results:
		t.Errorf("unexpected result for %q", res.Filename)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestExcludeFileGlobs(t *testing.T) {
	dir := t.TempDir()
	results := make(chan *engine.Result, 4)

	w, err := New(newTestEngine(t), Options{
		Debounce:     50 * time.Millisecond,
		Extensions:   []string{".pcode"},
		ExcludeFiles: []string{"gen_*"},
	}, func(res *engine.Result) { results <- res })
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch([]string{dir}); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "gen_skip.pcode"), []byte(`&x = 1;`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "keep.pcode"), []byte(`Local number &x;`), 0o644); err != nil {
		t.Fatal(err)
	}

	res := waitFor(t, results)
	if filepath.Base(res.Filename) != "keep.pcode" {
		t.Errorf("excluded file slipped through: %q", res.Filename)
	}
}

func TestBadGlobRejected(t *testing.T) {
	if _, err := New(newTestEngine(t), Options{ExcludeDirs: []string{"[unclosed"}}, nil); err == nil {
		t.Error("invalid glob must be rejected")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	w, err := New(newTestEngine(t), Options{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}
