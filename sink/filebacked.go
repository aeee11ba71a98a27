package sink

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/matgreaves/evtrace/evtspec"
	"github.com/matgreaves/evtrace/sink/retention"
)

// fileBacked is embedded by the Text and Trace sinks: it owns the current
// on-disk file, the rotation clock, and retention. It is not exported ,
// callers only ever see Sink/Rotatable/Flusher through the concrete Text
// or Trace type.
type fileBacked struct {
	name             string
	extension        string // ".log" or ".etl"
	directory        string
	filenameTemplate string
	timestampLocal   bool

	retentionPolicy retention.Policy
	archiver        retention.Archiver // nil unless the LogConfig opted into archival and the Manager has one wired

	mu             sync.Mutex
	file           *os.File
	writer         *bufio.Writer
	currentPath    string
	rotationStart  time.Time
	nextRotationAt time.Time
	rotationPeriod time.Duration
}

func newFileBacked(lc *evtspec.LogConfig, extension string, now time.Time) (*fileBacked, error) {
	period := time.Duration(lc.RotationInterval) * time.Second
	fb := &fileBacked{
		name:             lc.Name,
		extension:        extension,
		directory:        lc.Directory,
		filenameTemplate: lc.FilenameTemplate,
		timestampLocal:   lc.TimestampLocal,
		rotationStart:    now,
		nextRotationAt:   now.Add(period),
		rotationPeriod:   period,
	}
	if lc.MaximumAge != nil {
		fb.retentionPolicy.MaximumAge = time.Duration(lc.MaximumAge.Seconds * float64(time.Second))
	}
	if lc.MaximumSize != nil {
		fb.retentionPolicy.MaximumSize = *lc.MaximumSize
	}
	if err := fb.openNewFile(now); err != nil {
		return nil, err
	}
	return fb, nil
}

func (fb *fileBacked) openNewFile(openedAt time.Time) error {
	if err := os.MkdirAll(fb.directory, 0o755); err != nil {
		return evtspec.NewError(evtspec.InvalidConfiguration, "fileBacked.openNewFile", "create directory", err)
	}
	stem, err := ExpandFilename(fb.filenameTemplate, fb.name, fb.rotationStart, openedAt, fb.timestampLocal)
	if err != nil {
		return err
	}
	path := filepath.Join(fb.directory, stem+fb.extension)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return evtspec.NewError(evtspec.InvalidConfiguration, "fileBacked.openNewFile", "open file", err)
	}
	fb.file = f
	fb.writer = bufio.NewWriter(f)
	fb.currentPath = path
	return nil
}

// writeLine appends line plus a trailing newline to the current file.
func (fb *fileBacked) writeLine(line string) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if _, err := fb.writer.WriteString(line); err != nil {
		return err
	}
	return fb.writer.WriteByte('\n')
}

// writeBytes appends raw bytes (used by the Trace sink's encoded records).
func (fb *fileBacked) writeBytes(p []byte) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	_, err := fb.writer.Write(p)
	return err
}

func (fb *fileBacked) flush() error {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.writer.Flush()
}

// checkedRotate rotates iff now >= nextRotationAt; repeated calls within
// the interval are no-ops, per §4.3's idempotence requirement.
func (fb *fileBacked) checkedRotate(now time.Time) (bool, error) {
	fb.mu.Lock()
	if now.Before(fb.nextRotationAt) {
		fb.mu.Unlock()
		return false, nil
	}
	fb.mu.Unlock()
	return true, fb.rotate(now)
}

// rotate unconditionally closes the current file and opens a new one,
// then runs retention over the sink's directory.
func (fb *fileBacked) rotate(now time.Time) error {
	fb.mu.Lock()
	if err := fb.writer.Flush(); err != nil {
		fb.mu.Unlock()
		return err
	}
	closeAndCleanup(fb.file, fb.currentPath)
	fb.rotationStart = now
	fb.nextRotationAt = now.Add(fb.rotationPeriod)
	err := fb.openNewFile(now)
	fb.mu.Unlock()
	if err != nil {
		return err
	}
	fb.runRetention(now)
	return nil
}

// closeAndCleanup closes f and deletes path if the file ended up empty,
// per §4.3's empty-file cleanup rule. Errors are ignored on a best-effort basis.
func closeAndCleanup(f *os.File, path string) {
	if f == nil {
		return
	}
	info, statErr := f.Stat()
	f.Close()
	if statErr == nil && info.Size() == 0 {
		os.Remove(path)
	}
}

// SetArchiver installs arch as the cold-storage destination a retention
// sweep uploads a file to before deleting it. nil disables archival.
func (fb *fileBacked) SetArchiver(arch retention.Archiver) {
	fb.mu.Lock()
	fb.archiver = arch
	fb.mu.Unlock()
}

// runRetention globs the sink's directory for prior rotated files and
// applies the configured age/size policy, archiving each doomed file
// first when an archiver is installed.
func (fb *fileBacked) runRetention(now time.Time) {
	if fb.retentionPolicy.MaximumAge <= 0 && fb.retentionPolicy.MaximumSize <= 0 {
		return
	}
	matches, err := filepath.Glob(filepath.Join(fb.directory, "*"+fb.extension))
	if err != nil {
		return
	}
	var files []retention.FileInfo
	for _, m := range matches {
		if m == fb.currentPath {
			continue
		}
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		files = append(files, retention.FileInfo{Path: m, ModTime: info.ModTime(), Size: info.Size()})
	}
	fb.mu.Lock()
	arch := fb.archiver
	fb.mu.Unlock()
	if arch != nil {
		fb.retentionPolicy.ApplyArchived(context.Background(), arch, files, now)
		return
	}
	fb.retentionPolicy.Apply(files, now)
}

// close flushes, closes, and (if empty) deletes the current file, per the
// empty-file cleanup rule for a destroyed sink.
func (fb *fileBacked) close() error {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if fb.writer != nil {
		fb.writer.Flush()
	}
	closeAndCleanup(fb.file, fb.currentPath)
	fb.file = nil
	return nil
}
