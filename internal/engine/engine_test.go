package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/devraj-nair/kvcask/internal/logfile"
)

func TestSetThenGet(t *testing.T) {
	e, err := Open(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer e.Close()

	if err := e.Set("a", "1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := e.Set("a", "2"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, ok, err := e.Get("a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok || value != "2" {
		t.Fatalf("Get() = (%q, %v), want (2, true)", value, ok)
	}
}

func TestRemoveThenGetIsAbsent(t *testing.T) {
	e, err := Open(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer e.Close()

	if err := e.Set("k", "v"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := e.Remove("k"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	_, ok, err := e.Get("k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Fatal("expected key to be absent after Remove")
	}

	if err := e.Remove("k"); err == nil {
		t.Fatal("expected second Remove of an absent key to fail")
	}
}

func TestRemoveAbsentKeyFails(t *testing.T) {
	e, err := Open(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer e.Close()

	if err := e.Remove("ghost"); err == nil {
		t.Fatal("expected KeyNotFound for removing an absent key")
	}
}

func TestReopenPreservesState(t *testing.T) {
	dir := t.TempDir()
	e, err := Open(dir, 0)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	for i := 0; i < 50; i++ {
		key := fmt.Sprintf("key-%d", i)
		value := fmt.Sprintf("val-%d", i)
		if err := e.Set(key, value); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}
	if err := e.Remove("key-0"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(dir, 0)
	if err != nil {
		t.Fatalf("reopen Open() error = %v", err)
	}
	defer reopened.Close()

	if _, ok, _ := reopened.Get("key-0"); ok {
		t.Fatal("key-0 should stay removed across reopen")
	}
	for i := 1; i < 50; i++ {
		key := fmt.Sprintf("key-%d", i)
		want := fmt.Sprintf("val-%d", i)
		got, ok, err := reopened.Get(key)
		if err != nil {
			t.Fatalf("Get(%q) error = %v", key, err)
		}
		if !ok || got != want {
			t.Fatalf("Get(%q) = (%q, %v), want (%q, true)", key, got, ok, want)
		}
	}
}

func TestCompactionPreservesState(t *testing.T) {
	dir := t.TempDir()
	// A tiny threshold forces compaction well before 2,000 writes finish.
	e, err := Open(dir, 256)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	const n = 2000
	var history int64
	for i := 0; i < n; i++ {
		key := fmt.Sprintf("k-%d", i%200) // overlapping keys to create dead bytes
		value := fmt.Sprintf("v-%d", i)
		if err := e.Set(key, value); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		data, _ := logfile.NewSet(key, value).Encode()
		history += int64(len(data))
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Directory must now hold far fewer live bytes than the full history.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	var total int64
	for _, ent := range entries {
		info, err := ent.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	if total <= 0 {
		t.Fatal("expected some bytes on disk after compaction")
	}
	if total >= history/2 {
		t.Fatalf("directory holds %d bytes, want far fewer than the %d-byte full history", total, history)
	}

	reopened, err := Open(dir, 256)
	if err != nil {
		t.Fatalf("reopen Open() error = %v", err)
	}
	defer reopened.Close()

	for i := 0; i < 200; i++ {
		key := fmt.Sprintf("k-%d", i)
		lastIdx := i
		for j := i; j < n; j += 200 {
			lastIdx = j
		}
		want := fmt.Sprintf("v-%d", lastIdx)
		got, ok, err := reopened.Get(key)
		if err != nil {
			t.Fatalf("Get(%q) error = %v", key, err)
		}
		if !ok || got != want {
			t.Fatalf("Get(%q) = (%q, %v), want (%q, true)", key, got, ok, want)
		}
	}
}

func TestConcurrentSetsOnDisjointKeysAreLinearizable(t *testing.T) {
	e, err := Open(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer e.Close()

	var wg sync.WaitGroup
	for c := 0; c < 8; c++ {
		wg.Add(1)
		go func(client int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("c%d-k%d", client, i)
				value := fmt.Sprintf("c%d-v%d", client, i)
				if err := e.Set(key, value); err != nil {
					t.Errorf("Set() error = %v", err)
					return
				}
			}
		}(c)
	}
	wg.Wait()

	for c := 0; c < 8; c++ {
		for i := 0; i < 100; i++ {
			key := fmt.Sprintf("c%d-k%d", c, i)
			want := fmt.Sprintf("c%d-v%d", c, i)
			got, ok, err := e.Get(key)
			if err != nil {
				t.Fatalf("Get(%q) error = %v", key, err)
			}
			if !ok || got != want {
				t.Fatalf("Get(%q) = (%q, %v), want (%q, true)", key, got, ok, want)
			}
		}
	}
}

func TestOpenCreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	e, err := Open(dir, 0)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer e.Close()

	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("expected directory to be created: %v", err)
	}
}
