package tire

import (
	"strings"

	"github.com/wippyai/wheel-bindings/errors"
)

// Material is the closed set of tire materials. The zero value is Plastic.
type Material struct {
	idx uint8
}

var (
	Plastic = Material{idx: 0}
	Rubber  = Material{idx: 1}
)

var materialNames = [...]string{"Plastic", "Rubber"}

// NumMaterials is the number of registered materials.
const NumMaterials = len(materialNames)

// Materials returns every material in discriminant order.
func Materials() []Material {
	out := make([]Material, NumMaterials)
	for i := range out {
		out[i] = Material{idx: uint8(i)}
	}
	return out
}

// MaterialFromIndex converts a discriminant into a Material.
func MaterialFromIndex(i int) (Material, error) {
	if i < 0 || i >= NumMaterials {
		return Material{}, errors.New(errors.PhaseValidate, errors.KindInvalidEnum).
			GoType("tire.Material").
			WitType("material").
			Value(i).
			Detail("discriminant %d out of range (max %d)", i, NumMaterials-1).
			Build()
	}
	return Material{idx: uint8(i)}, nil
}

// ParseMaterial looks a material up by display name, ignoring case.
func ParseMaterial(name string) (Material, error) {
	for i, n := range materialNames {
		if strings.EqualFold(n, name) {
			return Material{idx: uint8(i)}, nil
		}
	}
	return Material{}, errors.InvalidEnum(errors.PhaseValidate, nil, name, "material")
}

// Index returns the discriminant used on the wire.
func (m Material) Index() int {
	return int(m.idx)
}

func (m Material) String() string {
	return materialNames[m.idx]
}

func (m Material) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Material) UnmarshalText(text []byte) error {
	parsed, err := ParseMaterial(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
