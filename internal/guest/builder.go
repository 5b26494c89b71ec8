package guest

import (
	"github.com/tetratelabs/wazero/api"
)

// TrampolinePrefix is prepended to an import name to form the export that
// forwards to it.
const TrampolinePrefix = "call_"

// MemoryExport is the name under which the guest exports its memory.
const MemoryExport = "memory"

// Builder assembles a guest module. The zero value is not usable; call
// NewBuilder.
type Builder struct {
	hostModule  string
	funcs       []Func
	memoryPages uint32
	noMemory    bool
}

// Func describes one imported host function.
type Func struct {
	Name    string
	Params  []api.ValueType
	Results []api.ValueType
}

// NewBuilder creates a builder for guests importing from hostModule.
func NewBuilder(hostModule string) *Builder {
	return &Builder{
		hostModule:  hostModule,
		memoryPages: 1,
	}
}

// Import adds a host function to import and re-export as a trampoline.
func (b *Builder) Import(name string, params, results []api.ValueType) *Builder {
	b.funcs = append(b.funcs, Func{Name: name, Params: params, Results: results})
	return b
}

// ImportAll adds every function in fs.
func (b *Builder) ImportAll(fs []Func) *Builder {
	b.funcs = append(b.funcs, fs...)
	return b
}

// MemoryPages sets the initial size of the exported memory in 64KiB pages.
func (b *Builder) MemoryPages(n uint32) *Builder {
	b.memoryPages = n
	return b
}

// WithoutMemory omits the memory section and its export.
func (b *Builder) WithoutMemory() *Builder {
	b.noMemory = true
	return b
}

// Build generates the module bytes.
func (b *Builder) Build() []byte {
	wasm := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

	if len(b.funcs) > 0 {
		wasm = appendSection(wasm, 0x01, b.buildTypeSection())
		wasm = appendSection(wasm, 0x02, b.buildImportSection())
		wasm = appendSection(wasm, 0x03, b.buildFuncSection())
	}
	if !b.noMemory {
		wasm = appendSection(wasm, 0x05, b.buildMemorySection())
	}
	if !b.noMemory || len(b.funcs) > 0 {
		wasm = appendSection(wasm, 0x07, b.buildExportSection())
	}
	if len(b.funcs) > 0 {
		wasm = appendSection(wasm, 0x0a, b.buildCodeSection())
	}
	return wasm
}

// Each function gets its own type; import i and trampoline i share type i.
func (b *Builder) buildTypeSection() []byte {
	section := EncodeULEB128(uint32(len(b.funcs)))
	for _, f := range b.funcs {
		section = append(section, 0x60)
		section = append(section, EncodeULEB128(uint32(len(f.Params)))...)
		for _, t := range f.Params {
			section = append(section, ValTypeToWasm(t))
		}
		section = append(section, EncodeULEB128(uint32(len(f.Results)))...)
		for _, t := range f.Results {
			section = append(section, ValTypeToWasm(t))
		}
	}
	return section
}

func (b *Builder) buildImportSection() []byte {
	section := EncodeULEB128(uint32(len(b.funcs)))
	for i, f := range b.funcs {
		section = appendName(section, b.hostModule)
		section = appendName(section, f.Name)
		section = append(section, 0x00)
		section = append(section, EncodeULEB128(uint32(i))...)
	}
	return section
}

func (b *Builder) buildFuncSection() []byte {
	section := EncodeULEB128(uint32(len(b.funcs)))
	for i := range b.funcs {
		section = append(section, EncodeULEB128(uint32(i))...)
	}
	return section
}

func (b *Builder) buildMemorySection() []byte {
	section := []byte{0x01, 0x00}
	return append(section, EncodeULEB128(b.memoryPages)...)
}

func (b *Builder) buildExportSection() []byte {
	count := len(b.funcs)
	if !b.noMemory {
		count++
	}
	section := EncodeULEB128(uint32(count))

	if !b.noMemory {
		section = appendName(section, MemoryExport)
		section = append(section, 0x02, 0x00)
	}

	imports := len(b.funcs)
	for i, f := range b.funcs {
		section = appendName(section, TrampolinePrefix+f.Name)
		section = append(section, 0x00)
		section = append(section, EncodeULEB128(uint32(imports+i))...)
	}
	return section
}

func (b *Builder) buildCodeSection() []byte {
	section := EncodeULEB128(uint32(len(b.funcs)))
	for i, f := range b.funcs {
		body := buildFuncBody(i, f)
		section = append(section, EncodeULEB128(uint32(len(body)))...)
		section = append(section, body...)
	}
	return section
}

// buildFuncBody emits: no locals, local.get 0..n-1, call importIdx, end.
func buildFuncBody(importIdx int, f Func) []byte {
	body := []byte{0x00}
	for i := range f.Params {
		body = append(body, 0x20)
		body = append(body, EncodeULEB128(uint32(i))...)
	}
	body = append(body, 0x10)
	body = append(body, EncodeULEB128(uint32(importIdx))...)
	return append(body, 0x0b)
}
