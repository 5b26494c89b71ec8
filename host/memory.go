package host

import (
	"github.com/tetratelabs/wazero/api"

	avroruntime "github.com/wippyai/avro-runtime"
	"github.com/wippyai/avro-runtime/errors"
)

// guestMemory adapts wazero memory to avroruntime.Memory.
type guestMemory struct {
	mem api.Memory
}

var (
	_ avroruntime.Memory      = guestMemory{}
	_ avroruntime.MemorySizer = guestMemory{}
)

// MemoryExport is the name under which guests export their memory.
const MemoryExport = "memory"

// memoryOf returns the caller's exported memory. api.Module.Memory cannot be
// used here: for a module without memory it returns a nil *MemoryInstance
// wrapped in a non-nil interface.
func memoryOf(mod api.Module) (guestMemory, error) {
	mem := mod.ExportedMemory(MemoryExport)
	if mem == nil {
		return guestMemory{}, errors.New(errors.PhaseHost, errors.KindNotFound).
			Detail("guest %q exports no memory", mod.Name()).
			Build()
	}
	return guestMemory{mem: mem}, nil
}

// Read copies length bytes at offset out of guest memory.
func (g guestMemory) Read(offset, length uint32) ([]byte, error) {
	view, ok := g.mem.Read(offset, length)
	if !ok {
		return nil, g.outOfRange(offset, length)
	}
	out := make([]byte, length)
	copy(out, view)
	return out, nil
}

// Write copies data into guest memory at offset.
func (g guestMemory) Write(offset uint32, data []byte) error {
	if !g.mem.Write(offset, data) {
		return g.outOfRange(offset, uint32(len(data)))
	}
	return nil
}

// Size returns the current memory size in bytes.
func (g guestMemory) Size() uint32 {
	return g.mem.Size()
}

func (g guestMemory) outOfRange(offset, length uint32) error {
	return errors.New(errors.PhaseHost, errors.KindInvalidInput).
		Detail("range [%d, %d) outside guest memory of %d bytes", offset, uint64(offset)+uint64(length), g.mem.Size()).
		Build()
}

// readString reads a (ptr, len) string argument.
func readString(mem avroruntime.Memory, ptr, length uint32) (string, error) {
	b, err := mem.Read(ptr, length)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// writeBounded writes data at ptr when it fits in capacity and returns the
// full length either way.
func writeBounded(mem avroruntime.Memory, ptr, capacity uint32, data []byte) (uint32, error) {
	n := uint32(len(data))
	if n > capacity {
		return n, nil
	}
	if err := mem.Write(ptr, data); err != nil {
		return 0, err
	}
	return n, nil
}
