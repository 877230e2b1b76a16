package tire

import (
	"math"

	"github.com/wippyai/wheel-bindings/errors"
)

// Size is a wheel's width and height.
type Size struct {
	Width  float64
	Height float64
}

// Tire is a plain value; copies are independent.
type Tire struct {
	Material Material
	Pressure float64
	Size     Size
}

// Aspect returns the aspect ratio of the tire's size.
func (t Tire) Aspect() (float64, error) {
	return WheelSizeAspect(t.Size.Width, t.Size.Height)
}

// IdentifierLen is the fixed length of a wheel identifier.
const IdentifierLen = 3

// Identifier is a fixed three-byte wheel identifier.
type Identifier [IdentifierLen]byte

// IdentifierFromBytes copies b into an Identifier. b must hold exactly
// IdentifierLen bytes.
func IdentifierFromBytes(b []byte) (Identifier, error) {
	var id Identifier
	if len(b) != IdentifierLen {
		return id, errors.LengthMismatch(errors.PhaseValidate, []string{"dimensions"}, IdentifierLen, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// WheelSizeAspect returns width / height. A zero height is rejected rather
// than producing an infinity.
func WheelSizeAspect(width, height float64) (float64, error) {
	if height == 0 {
		return math.NaN(), errors.DivisionByZero(errors.PhaseValidate, []string{"height"})
	}
	return width / height, nil
}
