// Package tire holds the values and operations behind the wheel binding surface.
//
// The package is boundary-neutral: the wasm host (package host) and the C
// shared library (cmd/libwheels) both translate their wire representations
// into these types and call the same functions.
//
// # Values
//
//	Material    closed enumeration {Plastic, Rubber}
//	Size        width and height in float64
//	Tire        material, pressure and size
//	Identifier  fixed three-byte wheel identifier
//
// Material cannot be built from an arbitrary integer. Use MaterialFromIndex
// or ParseMaterial, which reject unknown values with errors.KindInvalidEnum.
//
// # Operations
//
//	CreateRandomTire      random tire from the global source
//	Generator.Tire        random tire from a seeded source
//	WheelSizeAspect       width / height, fails on zero height
//	Printer               formatting operations that write to an io.Writer
//
// FormatWheelIdentifier and FormatSizeOfWheels render bytes the same way, so
// an Identifier and a three-byte slice with the same contents produce the
// same line.
package tire
