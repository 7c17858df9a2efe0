package messagelog

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func TestFileStore_RoundTrip(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "logs"))

	names, err := store.List()
	if err != nil || len(names) != 0 {
		t.Fatalf("List on missing dir = %v, %v", names, err)
	}

	lines := []string{"alpha", "beta", "gamma"}
	if err := store.Write("log @ 2026-01-02 03.04.05", lines); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := store.Read("log @ 2026-01-02 03.04.05")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !slices.Equal(got, lines) {
		t.Errorf("Read = %v, want %v", got, lines)
	}

	if err := store.Write("log @ 2026-01-02 03.04.05", lines); err == nil {
		t.Error("writing an existing record should fail")
	}
}

func TestFileStore_EmptyRecord(t *testing.T) {
	store := NewFileStore(t.TempDir())
	if err := store.Write("empty", nil); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := store.Read("empty")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Read = %v, want no lines", got)
	}
}

func TestFileStore_ListIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	_ = store.Write("b", []string{"x"})
	_ = store.Write("a", []string{"x"})
	_ = os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), 0644)
	_ = os.Mkdir(filepath.Join(dir, "sub.txt"), 0755)

	names, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if !slices.Equal(names, []string{"a", "b"}) {
		t.Errorf("List = %v, want [a b]", names)
	}
}

func TestFileStore_DeleteAll(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	for _, name := range []string{"a", "b", "c"} {
		_ = store.Write(name, []string{name})
	}

	if err := store.DeleteAll(); err != nil {
		t.Fatalf("DeleteAll failed: %v", err)
	}
	names, _ := store.List()
	if len(names) != 0 {
		t.Errorf("expected empty store, got %v", names)
	}
}

func TestFileStore_ReadMissing(t *testing.T) {
	store := NewFileStore(t.TempDir())
	if _, err := store.Read("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Read error = %v, want ErrNotFound", err)
	}
}

func TestFileStore_FlushRetention(t *testing.T) {
	store := NewFileStore(t.TempDir())
	seed(t, store, DefaultRetentionLimit+1)

	b := NewBuffer()
	b.Append("fresh")
	res, err := b.Flush(store, DefaultRetentionLimit, flushTime)
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	names, _ := store.List()
	if !slices.Equal(names, []string{res.Name}) {
		t.Errorf("records = %v, want only %q", names, res.Name)
	}
}

func TestWatch_ReportsCounts(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "logs"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	counts, err := Watch(ctx, store)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	expect := func(want int) {
		t.Helper()
		deadline := time.After(5 * time.Second)
		for {
			select {
			case got, ok := <-counts:
				if !ok {
					t.Fatal("counts channel closed early")
				}
				if got == want {
					return
				}
			case <-deadline:
				t.Fatalf("timed out waiting for count %d", want)
			}
		}
	}

	expect(0)
	_ = store.Write("one", []string{"x"})
	_ = store.Write("two", []string{"x"})
	expect(2)
	_ = store.DeleteAll()
	expect(0)

	cancel()
	for range counts {
	}
}

func TestFileStore_MultiLineEntriesRoundTrip(t *testing.T) {
	store := NewFileStore(t.TempDir())
	b := NewBuffer()
	b.Append("starting")
	b.Printf("farmbot encountered an Exception: %v", errors.New("template not found\nat step 3"))
	b.Append("windows\r\nline")

	res, err := b.Flush(store, DefaultRetentionLimit, time.Now())
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	got, err := store.Read(res.Name)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	want := []string{
		"starting",
		"farmbot encountered an Exception: template not found at step 3",
		"windows line",
	}
	if !slices.Equal(got, want) {
		t.Errorf("Read = %q, want %q", got, want)
	}
	if !slices.Equal(b.Lines(), want) {
		t.Errorf("Lines = %q, want %q", b.Lines(), want)
	}
}

func TestFileStore_WriteWithEmbeddedNewlines(t *testing.T) {
	store := NewFileStore(t.TempDir())
	if err := store.Write("direct", []string{"a\nb", "c"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := store.Read("direct")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !slices.Equal(got, []string{"a b", "c"}) {
		t.Errorf("Read = %q, want 2 lines", got)
	}
}

// failingFile accepts the create but fails every write.
type failingFile struct {
	io.WriteCloser
}

func (failingFile) Write([]byte) (int, error) {
	return 0, errors.New("no space left on device")
}

func TestFileStore_FailedWriteLeavesNoRecord(t *testing.T) {
	original := openRecord
	openRecord = func(path string) (io.WriteCloser, error) {
		f, err := original(path)
		if err != nil {
			return nil, err
		}
		return failingFile{WriteCloser: f}, nil
	}
	t.Cleanup(func() { openRecord = original })

	store := NewFileStore(t.TempDir())
	if err := store.Write("partial", []string{"one", "two"}); err == nil {
		t.Fatal("expected the write to fail")
	}

	names, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 0 {
		t.Errorf("List = %v, want no records after a failed write", names)
	}
}
