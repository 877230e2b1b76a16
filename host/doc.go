// Package host exposes the wheels functions to WebAssembly guests.
//
// A Host builds a wazero host module named after the WIT interface path
// (cpy:example/wheels@0.1.0). Each function uses the core signature the
// canonical ABI assigns to its WIT type: records are flattened into
// parameters, lists travel as (ptr, len) and any result wider than one
// value is written to a trailing return pointer.
//
// Fallible functions write result<T, error-code> at the return pointer.
// When the return pointer itself is unusable the call traps with the
// structured error.
//
// Bridge instantiates a small guest module that imports every host
// function and owns one linear memory, so Go code can drive the same
// boundary a wasm guest would:
//
//	r := wazero.NewRuntime(ctx)
//	defer r.Close(ctx)
//
//	b, err := host.New(host.Config{}).Bridge(ctx, r)
//	if err != nil {
//	    return err
//	}
//	defer b.Close(ctx)
//
//	err = b.FormatSizeOfWheels(ctx, []byte{77, 42, 69})
package host
