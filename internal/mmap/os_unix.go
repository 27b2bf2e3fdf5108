//go:build unix

package mmap

import (
	"golang.org/x/sys/unix"
)

func osMapAnon(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
}

func osUnmap(data []byte) error {
	return unix.Munmap(data)
}

// osDiscard releases the physical pages behind data. data is page aligned.
func osDiscard(data []byte) error {
	return unix.Madvise(data, unix.MADV_DONTNEED)
}
