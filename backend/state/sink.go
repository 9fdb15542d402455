package state

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/klppl/digg-invite-brutforce/backend/verdict"
)

// Sink durably stores accepted records.
type Sink interface {
	Append(rec Record) error
	// Path names the destination for the final summary.
	Path() string
	Close() error
}

const timestampLayout = "2006-01-02 15:04:05.000000"

// FormatLine renders rec as one result log line. Low-confidence hits carry a
// distinct tag so they can be verified before use.
func FormatLine(rec Record) string {
	tier := "confirmed"
	if rec.Verdict == verdict.AcceptedLowConfidence {
		tier = "unconfirmed"
	}
	return fmt.Sprintf("%s - %s - Found at %s [%s]\n", rec.Token, rec.URL, rec.FoundAt.Format(timestampLayout), tier)
}

// FileName is the result log name for a run started at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("valid_codes_%s.txt", t.Format("20060102_150405"))
}

// FileSink appends to a per-run log file. The file is created on the first
// append and is never truncated; an existing file of the same name is an error.
type FileSink struct {
	path string

	mu   sync.Mutex
	file *os.File
}

func NewFileSink(dir string, runStart time.Time) (*FileSink, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(err, "resolve results directory")
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create results directory")
	}
	return &FileSink{path: filepath.Join(absDir, FileName(runStart))}, nil
}

func (f *FileSink) Path() string {
	return f.path
}

func (f *FileSink) Append(rec Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		file, err := os.OpenFile(f.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL|os.O_APPEND, 0o644)
		if err != nil {
			return errors.Wrapf(err, "open result log %s", f.path)
		}
		f.file = file
	}
	if _, err := f.file.WriteString(FormatLine(rec)); err != nil {
		return errors.Wrapf(err, "write %s to result log", rec.Token)
	}
	if err := f.file.Sync(); err != nil {
		return errors.Wrap(err, "sync result log")
	}
	return nil
}

func (f *FileSink) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}
