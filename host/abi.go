package host

import (
	"math"

	wheelbindings "github.com/wippyai/wheel-bindings"
	"github.com/wippyai/wheel-bindings/binding"
	"github.com/wippyai/wheel-bindings/errors"
	"github.com/wippyai/wheel-bindings/tire"
)

// abi holds the canonical layouts of the wheels types.
type abi struct {
	tire   binding.Layout
	size   binding.Layout
	aspect binding.Layout // result<f64, error-code>
	unit   binding.Layout // result<_, error-code>
}

func newABI(m *binding.Module) abi {
	calc := binding.NewCalculator()
	return abi{
		tire:   calc.Calculate(m.Type("tire").Def),
		size:   calc.Calculate(m.Type("size2d").Def),
		aspect: calc.Calculate(m.Func("wheel_size_aspect").ResultType()),
		unit:   calc.Calculate(m.Func("describe_tire").ResultType()),
	}
}

func (a *abi) lowerTire(mem wheelbindings.Memory, ptr uint32, t tire.Tire) error {
	offs := a.tire.FieldOffs
	if err := mem.WriteU8(ptr+offs["material"], uint8(t.Material.Index())); err != nil {
		return err
	}
	if err := mem.WriteU64(ptr+offs["pressure"], math.Float64bits(t.Pressure)); err != nil {
		return err
	}
	return a.lowerSize(mem, ptr+offs["size"], t.Size)
}

func (a *abi) lowerSize(mem wheelbindings.Memory, ptr uint32, s tire.Size) error {
	offs := a.size.FieldOffs
	if err := mem.WriteU64(ptr+offs["width"], math.Float64bits(s.Width)); err != nil {
		return err
	}
	return mem.WriteU64(ptr+offs["height"], math.Float64bits(s.Height))
}

func (a *abi) liftTire(mem wheelbindings.Memory, ptr uint32) (tire.Tire, error) {
	offs := a.tire.FieldOffs

	disc, err := mem.ReadU8(ptr + offs["material"])
	if err != nil {
		return tire.Tire{}, err
	}
	material, err := tire.MaterialFromIndex(int(disc))
	if err != nil {
		return tire.Tire{}, err
	}
	pressure, err := readF64(mem, ptr+offs["pressure"])
	if err != nil {
		return tire.Tire{}, err
	}
	size, err := a.liftSize(mem, ptr+offs["size"])
	if err != nil {
		return tire.Tire{}, err
	}
	return tire.Tire{Material: material, Pressure: pressure, Size: size}, nil
}

func (a *abi) liftSize(mem wheelbindings.Memory, ptr uint32) (tire.Size, error) {
	offs := a.size.FieldOffs
	width, err := readF64(mem, ptr+offs["width"])
	if err != nil {
		return tire.Size{}, err
	}
	height, err := readF64(mem, ptr+offs["height"])
	if err != nil {
		return tire.Size{}, err
	}
	return tire.Size{Width: width, Height: height}, nil
}

func readF64(mem wheelbindings.Memory, ptr uint32) (float64, error) {
	bits, err := mem.ReadU64(ptr)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

// lowerResult writes result<T, error-code> at ptr. A nil callErr selects the
// ok case and ok, if set, writes the payload.
func lowerResult(mem wheelbindings.Memory, ptr uint32, l binding.Layout, callErr error, ok func(payload uint32) error) error {
	if callErr != nil {
		if err := mem.WriteU8(ptr, 1); err != nil {
			return err
		}
		return mem.WriteU8(ptr+l.PayloadOffset, uint8(binding.CodeOf(callErr)))
	}
	if err := mem.WriteU8(ptr, 0); err != nil {
		return err
	}
	if ok != nil {
		return ok(ptr + l.PayloadOffset)
	}
	return nil
}

// liftResult reads result<T, error-code> at ptr. The err case is returned as
// the error its code stands for.
func liftResult(mem wheelbindings.Memory, ptr uint32, l binding.Layout, ok func(payload uint32) error) error {
	disc, err := mem.ReadU8(ptr)
	if err != nil {
		return err
	}
	switch disc {
	case 0:
		if ok != nil {
			return ok(ptr + l.PayloadOffset)
		}
		return nil
	case 1:
		code, err := mem.ReadU8(ptr + l.PayloadOffset)
		if err != nil {
			return err
		}
		return binding.ErrorCode(code).Err()
	default:
		return errors.InvalidEnum(errors.PhaseLift, []string{"result"}, disc, "result")
	}
}
