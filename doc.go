// Package wheelbindings exposes a small tire domain across language
// boundaries: as a WebAssembly host module and as a C ABI shared library.
//
// # Architecture Overview
//
//	wheelbindings/       Root package with the Memory interface
//	├── tire/            Domain values and operations
//	├── binding/         Declared module: WIT types, layouts, emitters
//	├── host/            wazero host module and Go bridge
//	├── errors/          Structured error types for every boundary
//	└── cmd/
//	    ├── libwheels/   cgo c-shared library exporting the C ABI
//	    └── bindgen/     bindings.h and WIT generator
//
// # Quick Start
//
// Call the functions through the wasm boundary:
//
//	r := wazero.NewRuntime(ctx)
//	defer r.Close(ctx)
//
//	b, err := host.New(host.Config{}).Bridge(ctx, r)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer b.Close(ctx)
//
//	t, err := b.CreateRandomTire(ctx)
//	aspect, err := b.WheelSizeAspect(ctx, t.Size.Width, t.Size.Height)
//
// Guests import the functions from the module named by the WIT interface
// path, "cpy:example/wheels@0.1.0".
//
// # Error Codes
//
// Fallible functions return result<T, error-code> to wasm guests and an
// int32 status to C callers: 0 on success, -(code+1) on failure. Codes are
// listed in binding.ErrorCode.
package wheelbindings
