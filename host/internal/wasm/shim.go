// Package wasm builds the guest shim module used to call host functions
// from Go.
package wasm

import (
	"github.com/tetratelabs/wazero/api"
)

// ShimBuilder builds a module that imports host functions, re-exports a
// forwarding function for each and defines one exported linear memory the
// host functions read and write.
type ShimBuilder struct {
	importModule string
	memoryExport string
	funcs        []shimFunc
	minPages     uint32
	maxPages     uint32
}

type shimFunc struct {
	name        string
	paramTypes  []api.ValueType
	resultTypes []api.ValueType
}

// NewShimBuilder creates a builder importing from importModule with a
// one-page memory exported as "memory".
func NewShimBuilder(importModule string) *ShimBuilder {
	return &ShimBuilder{
		importModule: importModule,
		memoryExport: "memory",
		minPages:     1,
	}
}

// AddFunc adds a function to import and re-export under the same name.
func (b *ShimBuilder) AddFunc(name string, params, results []api.ValueType) {
	b.funcs = append(b.funcs, shimFunc{
		name:        name,
		paramTypes:  params,
		resultTypes: results,
	})
}

// SetMemory sets the memory export name and limits in 64 KiB pages.
// A zero maxPages leaves memory unbounded.
func (b *ShimBuilder) SetMemory(exportName string, minPages, maxPages uint32) {
	b.memoryExport = exportName
	b.minPages = minPages
	b.maxPages = maxPages
}

// Build generates the module bytes.
func (b *ShimBuilder) Build() []byte {
	var wasm []byte

	wasm = append(wasm, 0x00, 0x61, 0x73, 0x6d)
	wasm = append(wasm, 0x01, 0x00, 0x00, 0x00)

	if len(b.funcs) > 0 {
		wasm = appendSection(wasm, 0x01, b.buildTypeSection())
		wasm = appendSection(wasm, 0x02, b.buildImportSection())
		wasm = appendSection(wasm, 0x03, b.buildFuncSection())
	}
	wasm = appendSection(wasm, 0x05, b.buildMemorySection())
	wasm = appendSection(wasm, 0x07, b.buildExportSection())
	if len(b.funcs) > 0 {
		wasm = appendSection(wasm, 0x0a, b.buildCodeSection())
	}
	return wasm
}

func (b *ShimBuilder) buildTypeSection() []byte {
	section := EncodeULEB128(uint32(len(b.funcs)))
	for _, f := range b.funcs {
		section = append(section, 0x60)
		section = append(section, EncodeULEB128(uint32(len(f.paramTypes)))...)
		for _, t := range f.paramTypes {
			section = append(section, ValTypeToWasm(t))
		}
		section = append(section, EncodeULEB128(uint32(len(f.resultTypes)))...)
		for _, t := range f.resultTypes {
			section = append(section, ValTypeToWasm(t))
		}
	}
	return section
}

// Imported functions take indices 0..n-1 and use type i.
func (b *ShimBuilder) buildImportSection() []byte {
	section := EncodeULEB128(uint32(len(b.funcs)))
	for i, f := range b.funcs {
		section = appendName(section, b.importModule)
		section = appendName(section, f.name)
		section = append(section, 0x00)
		section = append(section, EncodeULEB128(uint32(i))...)
	}
	return section
}

func (b *ShimBuilder) buildFuncSection() []byte {
	section := EncodeULEB128(uint32(len(b.funcs)))
	for i := range b.funcs {
		section = append(section, EncodeULEB128(uint32(i))...)
	}
	return section
}

func (b *ShimBuilder) buildMemorySection() []byte {
	section := []byte{0x01}
	if b.maxPages > 0 {
		section = append(section, 0x01)
		section = append(section, EncodeULEB128(b.minPages)...)
		section = append(section, EncodeULEB128(b.maxPages)...)
	} else {
		section = append(section, 0x00)
		section = append(section, EncodeULEB128(b.minPages)...)
	}
	return section
}

func (b *ShimBuilder) buildExportSection() []byte {
	section := EncodeULEB128(uint32(len(b.funcs) + 1))

	section = appendName(section, b.memoryExport)
	section = append(section, 0x02, 0x00)

	numImports := len(b.funcs)
	for i, f := range b.funcs {
		section = appendName(section, f.name)
		section = append(section, 0x00)
		section = append(section, EncodeULEB128(uint32(numImports+i))...)
	}
	return section
}

func (b *ShimBuilder) buildCodeSection() []byte {
	section := EncodeULEB128(uint32(len(b.funcs)))
	for i, f := range b.funcs {
		body := buildFuncBody(i, f)
		section = append(section, EncodeULEB128(uint32(len(body)))...)
		section = append(section, body...)
	}
	return section
}

// buildFuncBody forwards every parameter to the imported function at importIdx.
func buildFuncBody(importIdx int, f shimFunc) []byte {
	body := []byte{0x00} // no locals

	for i := range f.paramTypes {
		body = append(body, 0x20) // local.get
		body = append(body, EncodeULEB128(uint32(i))...)
	}

	body = append(body, 0x10) // call
	body = append(body, EncodeULEB128(uint32(importIdx))...)
	body = append(body, 0x0b)
	return body
}
