//go:build windows

package trash

import (
	"fmt"
	"path/filepath"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modshell32             = windows.NewLazySystemDLL("shell32.dll")
	procSHFileOperationW    = modshell32.NewProc("SHFileOperationW")
)

const (
	foDelete            = 0x0003
	fofAllowUndo        = 0x0040
	fofNoConfirmation   = 0x0010
	fofSilent           = 0x0004
)

// shFileOpStruct mirrors the Win32 SHFILEOPSTRUCTW layout used to request a
// recycle-bin delete.
type shFileOpStruct struct {
	hwnd                  uintptr
	wFunc                 uint32
	pFrom                 *uint16
	pTo                   *uint16
	fFlags                uint16
	fAnyOperationsAborted int32
	hNameMappings         uintptr
	lpszProgressTitle     *uint16
}

// move sends the file to the Windows recycle bin via SHFileOperationW, which
// is the same mechanism Explorer's "Delete" uses and is what makes the
// operation restorable.
func move(path string) (Entry, error) {
	absolute, err := filepath.Abs(path)
	if err != nil {
		return Entry{}, fmt.Errorf("resolve absolute path: %w", err)
	}

	// pFrom must be double-NUL-terminated.
	from, err := syscall.UTF16FromString(absolute + "\x00")
	if err != nil {
		return Entry{}, fmt.Errorf("encode path: %w", err)
	}

	op := shFileOpStruct{
		wFunc:  foDelete,
		pFrom:  &from[0],
		fFlags: fofAllowUndo | fofNoConfirmation | fofSilent,
	}

	ret, _, _ := procSHFileOperationW.Call(uintptr(unsafe.Pointer(&op)))
	if ret != 0 {
		return Entry{}, fmt.Errorf("SHFileOperationW failed with code %#x", ret)
	}
	if op.fAnyOperationsAborted != 0 {
		return Entry{}, fmt.Errorf("recycle bin operation aborted for %s", absolute)
	}
	return Entry{Name: filepath.Base(absolute), OriginalPath: absolute, DeletionDate: time.Now()}, nil
}

// list is not implemented on Windows: enumerating the recycle bin requires
// the IShellFolder/IEnumIDList COM interfaces rather than a simple directory
// read, since the recycle bin is a virtual shell namespace, not a plain
// directory. SHFileOperationW alone (what move uses) cannot enumerate it.
func list() ([]Entry, error) {
	return nil, fmt.Errorf("listing the recycle bin is not supported on Windows")
}

// restore is not implemented on Windows for the same reason as list: doing so
// correctly requires driving the shell namespace COM interfaces instead of a
// file-level rename, since the recycle bin renames and indexes items
// internally when SHFileOperationW deletes them.
func restore(entry Entry) error {
	return fmt.Errorf("restoring from the recycle bin is not supported on Windows")
}
