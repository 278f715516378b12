// Package mmap provides read-only memory-mapped file access for zero-copy I/O.
//
// Spill files are read exactly once, front to back, during the counting
// phase. Mapping them avoids copying partition contents through userspace
// read buffers before line scanning:
//
//	m, err := mmap.Open("part_0031.spill")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.AccessSequential)
//	data := m.Bytes()
//
// # Platform Support
//
// Unix-like systems use mmap/madvise via golang.org/x/sys/unix. Windows uses
// CreateFileMapping/MapViewOfFile via golang.org/x/sys/windows; access-pattern
// advice is a no-op there.
package mmap
