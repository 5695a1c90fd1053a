package logstore

import (
	"os"

	"golang.org/x/exp/mmap"
)

// mappedFile provides memory-mapped read access to one log file.
type mappedFile struct {
	reader *mmap.ReaderAt
	size   int64
}

func openMapped(path string) (*mappedFile, error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		reader.Close()
		return nil, err
	}

	return &mappedFile{
		reader: reader,
		size:   info.Size(),
	}, nil
}

// ReadAt reads len(p) bytes at offset.
func (m *mappedFile) ReadAt(p []byte, off int64) (int, error) {
	return m.reader.ReadAt(p, off)
}

// Size returns the file size at open time. Stream files never grow;
// uploads rebind a stream to a fresh file instead.
func (m *mappedFile) Size() int64 {
	return m.size
}

func (m *mappedFile) Close() error {
	return m.reader.Close()
}

// ReadRange reads bytes from start to end (exclusive).
func (m *mappedFile) ReadRange(start, end int64) ([]byte, error) {
	if end > m.size {
		end = m.size
	}
	if start >= end {
		return nil, nil
	}

	buf := make([]byte, end-start)
	_, err := m.reader.ReadAt(buf, start)
	if err != nil {
		return nil, err
	}
	return buf, nil
}
