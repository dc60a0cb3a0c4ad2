//go:build !windows

package lsm

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// mappedFile is a read-only memory mapping of an SSTable's full contents.
type mappedFile struct {
	data []byte
}

func mapFileReadOnly(path string) (mappedFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return mappedFile{}, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return mappedFile{}, err
	}
	size := info.Size()
	if size == 0 {
		return mappedFile{}, fmt.Errorf("sstable file %s is empty", path)
	}

	data, err := unix.Mmap(int(file.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return mappedFile{}, fmt.Errorf("mmap: %w", err)
	}
	return mappedFile{data: data}, nil
}

func (m mappedFile) bytes() []byte {
	return m.data
}

func (m mappedFile) close() error {
	if m.data == nil {
		return nil
	}
	return unix.Munmap(m.data)
}
