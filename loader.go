// loader.go - raw binary loader

/*
loader.go replaces the teacher's FileIODevice (file_io.go), a
guest-addressable MMIO file API with path sanitisation and an error-code
register set, with the much smaller host-side operation spec.md §6
actually specifies: the driver reads one binary straight off disk and
copies it verbatim into the code segment starting at the fixed entry
point, no header, no relocation, no guest-visible registers at all.
What's kept from the teacher is the defensive posture around host
paths — LoadProgramFile stats the file before reading it, the same
habit file_io.go uses before touching the host filesystem, even though
there is no sandboxing concern here since the path comes from the
operator's own command line rather than from guest-controlled memory.
*/

package main

import (
	"fmt"
	"os"
)

// LoadProgram copies data verbatim into mem starting at the fixed
// program entry point, per spec.md §6 ("Loader copies the whole file
// verbatim to virtual address 0x80000000; no header, no relocation").
func LoadProgram(mem *Memory, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("program image is empty")
	}
	if len(data) > CodeSegmentEnd-CodeSegmentBase {
		return fmt.Errorf("program image (%d bytes) exceeds code segment size", len(data))
	}
	return mem.WriteBytes(EntryPoint, data)
}

// LoadProgramFile reads path off the host filesystem and loads it via
// LoadProgram.
func LoadProgramFile(mem *Memory, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("loader: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("loader: %s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("loader: %w", err)
	}
	return LoadProgram(mem, data)
}
