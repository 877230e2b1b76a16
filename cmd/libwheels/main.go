// Command libwheels builds the wheels C ABI as a shared library:
//
//	go build -buildmode=c-shared -o libexample.so ./cmd/libwheels
//
// Callers include bindings.h. Fallible functions return 0 or a negative
// WHEELS_ERR_* status.
package main

//go:generate go run ../bindgen c -o bindings.h

/*
#define EXAMPLE_BINDINGS_TYPES_ONLY
#include "bindings.h"
*/
import "C"

import (
	"unsafe"

	"github.com/wippyai/wheel-bindings/errors"
	"github.com/wippyai/wheel-bindings/tire"
)

//export create_random_tire
func create_random_tire() C.Tire {
	t := tire.CreateRandomTire()
	return C.Tire{
		material: C.Material(t.Material.Index()),
		pressure: C.double(t.Pressure),
		size: C.Size2D{
			width:  C.double(t.Size.Width),
			height: C.double(t.Size.Height),
		},
	}
}

//export wheel_size_aspect
func wheel_size_aspect(width, height C.double, out *C.double) C.int32_t {
	return C.int32_t(wheelSizeAspect(float64(width), float64(height), (*float64)(unsafe.Pointer(out))))
}

//export format_wheel_identifier
func format_wheel_identifier(dimensions *C.uint8_t) C.int32_t {
	return C.int32_t(formatWheelIdentifier((*tire.Identifier)(unsafe.Pointer(dimensions))))
}

//export format_size_of_wheels
func format_size_of_wheels(sizes *C.uint8_t, sizesLen C.size_t) C.int32_t {
	return C.int32_t(formatSizeOfWheels((*byte)(unsafe.Pointer(sizes)), uint(sizesLen)))
}

//export func_with_no_return
func func_with_no_return() {
	funcWithNoReturn()
}

//export describe_tire
func describe_tire(t *C.Tire) C.int32_t {
	if t == nil {
		return C.int32_t(status("describe_tire", errors.NilPointer(errors.PhaseValidate, []string{"tire"}, "*Tire")))
	}
	return C.int32_t(describeTire(int(t.material), float64(t.pressure), float64(t.size.width), float64(t.size.height)))
}

func main() {}
