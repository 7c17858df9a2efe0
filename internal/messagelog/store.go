package messagelog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// ErrNotFound is returned by Read for unknown records.
var ErrNotFound = errors.New("message log not found")

// Store is an append-only collection of named message-log records.
type Store interface {
	// List returns the names of all records, oldest name first.
	List() ([]string, error)
	// DeleteAll removes every record.
	DeleteAll() error
	// Write creates a new record. Writing an existing name is an error.
	Write(name string, lines []string) error
	// Read returns the lines of a record.
	Read(name string) ([]string, error)
}

// recordExt is the file extension of records in a FileStore.
const recordExt = ".txt"

// openRecord creates a new record file, failing if it exists.
var openRecord = func(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
}

// FileStore keeps one text file per record in a directory, one line per
// message. The directory is created on first write.
type FileStore struct {
	dir string
}

// NewFileStore returns a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the store's directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// List implements Store. A missing directory is an empty store.
func (s *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), recordExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), recordExt))
	}
	slices.Sort(names)
	return names, nil
}

// DeleteAll implements Store. It removes every record file and keeps
// going past individual failures, returning them joined.
func (s *FileStore) DeleteAll() error {
	names, err := s.List()
	if err != nil {
		return err
	}

	var errs []error
	for _, name := range names {
		if err := os.Remove(s.path(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Write implements Store. Line breaks inside a line are flattened so that
// Read returns exactly len(lines) lines. A record that cannot be written
// completely is removed.
func (s *FileStore) Write(name string, lines []string) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	path := s.path(name)
	file, err := openRecord(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(file)
	for _, line := range lines {
		_, _ = w.WriteString(flattenLine(line))
		_ = w.WriteByte('\n')
	}
	err = w.Flush()
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}

// Read implements Store.
func (s *FileStore) Read(name string) ([]string, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, err
	}

	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return []string{}, nil
	}
	return strings.Split(text, "\n"), nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+recordExt)
}

// MemoryStore is an in-process Store. It also counts writes, which makes it
// convenient for asserting flush behavior.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string][]string
	writes  int
	// FailWrites makes every Write fail with this error when non-nil.
	FailWrites error
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]string)}
}

// List implements Store.
func (s *MemoryStore) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.records))
	for name := range s.records {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// DeleteAll implements Store.
func (s *MemoryStore) DeleteAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string][]string)
	return nil
}

// Write implements Store.
func (s *MemoryStore) Write(name string, lines []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWrites != nil {
		return s.FailWrites
	}
	if _, exists := s.records[name]; exists {
		return fmt.Errorf("message log %q already exists", name)
	}
	record := make([]string, len(lines))
	for i, line := range lines {
		record[i] = flattenLine(line)
	}
	s.records[name] = record
	s.writes++
	return nil
}

// Read implements Store.
func (s *MemoryStore) Read(name string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, ok := s.records[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return slices.Clone(lines), nil
}

// Writes returns the number of successful writes.
func (s *MemoryStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
