//go:build windows

package mmap

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

func osMapAnon(size int) ([]byte, error) {
	// Committed pages are still backed lazily, on first touch.
	addr, err := windows.VirtualAlloc(0, uintptr(size),
		windows.MEM_RESERVE|windows.MEM_COMMIT, windows.PAGE_READWRITE)
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil //nolint:gosec // VirtualAlloc returns a valid region
}

func osUnmap(data []byte) error {
	return windows.VirtualFree(uintptr(unsafe.Pointer(&data[0])), 0, windows.MEM_RELEASE) //nolint:gosec // data starts the region
}

// osDiscard is a no-op: MEM_RESET would leave the pages with undefined
// contents, and callers may depend on zeroed memory.
func osDiscard([]byte) error {
	return nil
}
