// Package messagelog holds the message log of a task run and persists it.
//
// The message log is the flat, ordered, user-facing record of what a run
// did. Lines accumulate in a [Buffer] while the run is active and are
// written to a [Store] exactly once, when the run ends. Before each write
// the store is subjected to a retention wipe: once it holds more than the
// retention limit, every prior record is deleted.
package messagelog

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultRetentionLimit is the number of records a store may hold before
// the next flush wipes them all.
const DefaultRetentionLimit = 50

// RecordTimeLayout formats the timestamp part of a record name.
const RecordTimeLayout = "2006-01-02 15.04.05"

// Buffer is an ordered, append-only sequence of lines plus a flush latch.
// It is safe for concurrent use.
type Buffer struct {
	mu      sync.Mutex
	lines   []string
	flushed bool
}

// NewBuffer returns an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append adds a line to the end of the buffer. Line breaks inside line are
// replaced with spaces, so one Append is always one line.
func (b *Buffer) Append(line string) {
	line = flattenLine(line)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, line)
}

// Printf formats and appends a line. It lets a Buffer serve as a task.Log.
func (b *Buffer) Printf(format string, args ...any) {
	b.Append(fmt.Sprintf(format, args...))
}

// Lines returns a copy of the buffered lines in order.
func (b *Buffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// Tail returns a copy of the last n lines.
func (b *Buffer) Tail(n int) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n <= 0 {
		return nil
	}
	start := max(len(b.lines)-n, 0)
	out := make([]string, len(b.lines)-start)
	copy(out, b.lines[start:])
	return out
}

// Len returns the number of buffered lines.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}

// Flushed reports whether the current contents were already flushed.
func (b *Buffer) Flushed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.flushed
}

// Reset clears the lines and the flush latch, readying the buffer for a
// new run.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = nil
	b.flushed = false
}

// FlushResult describes what a Flush did.
type FlushResult struct {
	// Name is the record written. Empty when the flush was skipped.
	Name string
	// Lines is the number of lines written.
	Lines int
	// Wiped is the number of prior records removed by the retention wipe.
	Wiped int
	// Skipped is true when the latch was already set.
	Skipped bool
}

// Flush writes the buffered lines to a new record named after now, unless
// the buffer was already flushed. The retention wipe runs first.
//
// The latch is set before any store access, so a failed write is not
// retried for the same run.
func (b *Buffer) Flush(store Store, retentionLimit int, now time.Time) (FlushResult, error) {
	b.mu.Lock()
	if b.flushed {
		b.mu.Unlock()
		return FlushResult{Skipped: true}, nil
	}
	b.flushed = true
	lines := make([]string, len(b.lines))
	copy(lines, b.lines)
	b.mu.Unlock()

	wiped, err := Rotate(store, retentionLimit)
	if err != nil {
		return FlushResult{}, err
	}

	existing, err := store.List()
	if err != nil {
		return FlushResult{Wiped: wiped}, fmt.Errorf("failed to list message logs: %w", err)
	}

	name := uniqueName(RecordName(now), existing)
	if err := store.Write(name, lines); err != nil {
		return FlushResult{Wiped: wiped}, fmt.Errorf("failed to write message log %q: %w", name, err)
	}

	return FlushResult{Name: name, Lines: len(lines), Wiped: wiped}, nil
}

// Rotate deletes every record in store when it holds more than limit
// records. It returns how many were deleted. A non-positive limit uses
// DefaultRetentionLimit.
func Rotate(store Store, limit int) (int, error) {
	if limit <= 0 {
		limit = DefaultRetentionLimit
	}

	names, err := store.List()
	if err != nil {
		return 0, fmt.Errorf("failed to list message logs: %w", err)
	}
	if len(names) <= limit {
		return 0, nil
	}

	if err := store.DeleteAll(); err != nil {
		return 0, fmt.Errorf("failed to wipe message logs: %w", err)
	}
	return len(names), nil
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func flattenLine(line string) string {
	if !strings.ContainsAny(line, "\r\n") {
		return line
	}
	return lineBreaks.Replace(line)
}

// RecordName returns the record name for a run that ended at t.
func RecordName(t time.Time) string {
	return "log @ " + t.Format(RecordTimeLayout)
}

// uniqueName appends " (n)" to base when a record of that name exists.
// Two runs can end within the same second.
func uniqueName(base string, existing []string) string {
	taken := make(map[string]bool, len(existing))
	for _, name := range existing {
		taken[name] = true
	}

	name := base
	for n := 2; taken[name]; n++ {
		name = base + " (" + strconv.Itoa(n) + ")"
	}
	return name
}
