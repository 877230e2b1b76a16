// Package binding describes the wheel binding surface as data.
//
// A Module is the single declaration that every boundary is derived from:
// the wasm host module (package host), the C shared library
// (cmd/libwheels) and the generated bindings.h and wheels.wit files. It is
// loaded from a YAML manifest:
//
//	mod, err := binding.LoadManifest(data)
//	mod := binding.Wheels() // the embedded wheels manifest
//
// Types are WIT type definitions (go.bytecodealliance.org/wit). Layout and
// flattening follow the canonical ABI:
//
//	WIT Type        Core Representation    Flat Count
//	─────────────────────────────────────────────────
//	bool, u8-u32    i32                    1
//	enum            i32                    1
//	u64, s64        i64                    1
//	f32             f32                    1
//	f64             f64                    1
//	string, list    (ptr, len) as i32×2    2
//	record          flattened fields       sum of fields
//	result<T,E>     (disc, payload)        1 + joined cases
//
// When flat results exceed MaxFlatResults (1), the caller passes a trailing
// i32 return pointer and the callee stores the result in linear memory.
//
// Fallible functions return result<T, error-code>. The error-code enum is
// added to every module automatically; ErrorCode and Status translate
// between its cases and errors.Kind.
package binding
