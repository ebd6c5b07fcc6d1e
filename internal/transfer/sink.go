package transfer

import (
	"fmt"
	"os"
)

// Sink is the local output file shared by concurrent chunk workers.
// Writes carry absolute offsets (pwrite), so workers on disjoint ranges
// never block or corrupt each other and no locking is needed. WriteAt is
// unbuffered: bytes have reached the OS when it returns, which keeps the
// length-based resume check trustworthy after a crash.
type Sink struct {
	file *os.File
	path string
}

// OpenSink opens (or creates) the output file for random-offset writes.
// An existing file is never truncated: its current length is what a
// resumed transfer plans against.
func OpenSink(path string) (*Sink, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("error opening output file: %v", err)
	}
	return &Sink{file: file, path: path}, nil
}

func (s *Sink) WriteAt(p []byte, off int64) (int, error) {
	return s.file.WriteAt(p, off)
}

func (s *Sink) Path() string {
	return s.path
}

// Close flushes and closes the file. The file is never deleted here,
// partial bytes stay usable for a future resume.
func (s *Sink) Close() error {
	if err := s.file.Sync(); err != nil {
		s.file.Close()
		return fmt.Errorf("error syncing output file: %v", err)
	}
	return s.file.Close()
}

// ExistingLength resolves the local file length before a transfer
// starts. An absent file counts as zero bytes.
func ExistingLength(path string) (int64, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("error inspecting output path: %v", err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("output path %s is a directory", path)
	}
	return info.Size(), nil
}
