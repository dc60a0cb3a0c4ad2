//go:build windows

package lsm

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

// mappedFile is a read-only memory mapping of an SSTable's full contents.
type mappedFile struct {
	handle windows.Handle
	addr   uintptr
	data   []byte
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

	mapping, err := windows.CreateFileMapping(windows.Handle(file.Fd()), nil, windows.PAGE_READONLY, 0, 0, nil)
	if err != nil {
		return mappedFile{}, fmt.Errorf("CreateFileMapping: %w", err)
	}

	addr, err := windows.MapViewOfFile(mapping, windows.FILE_MAP_READ, 0, 0, uintptr(size))
	if err != nil {
		windows.CloseHandle(mapping)
		return mappedFile{}, fmt.Errorf("MapViewOfFile: %w", err)
	}

	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), int(size))
	return mappedFile{handle: mapping, addr: addr, data: data}, nil
}

func (m mappedFile) bytes() []byte {
	return m.data
}

func (m mappedFile) close() error {
	if m.addr == 0 {
		return nil
	}
	if err := windows.UnmapViewOfFile(m.addr); err != nil {
		return err
	}
	return windows.CloseHandle(m.handle)
}
