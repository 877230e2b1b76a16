package binding

import (
	"sync"

	"go.bytecodealliance.org/wit"
)

// Layout is the canonical ABI memory layout of a type.
type Layout struct {
	FieldOffs     map[string]uint32
	Size          uint32
	Align         uint32
	PayloadOffset uint32 // result types only
}

// Calculator computes canonical ABI layouts. It is safe for concurrent use.
type Calculator struct {
	cache map[*wit.TypeDef]Layout
	mu    sync.Mutex
}

func NewCalculator() *Calculator {
	return &Calculator{
		cache: make(map[*wit.TypeDef]Layout),
	}
}

func (c *Calculator) Calculate(t wit.Type) Layout {
	switch typ := t.(type) {
	case wit.U8, wit.S8, wit.Bool:
		return Layout{Size: 1, Align: 1}
	case wit.U16, wit.S16:
		return Layout{Size: 2, Align: 2}
	case wit.U32, wit.S32, wit.F32, wit.Char:
		return Layout{Size: 4, Align: 4}
	case wit.U64, wit.S64, wit.F64:
		return Layout{Size: 8, Align: 8}
	case wit.String:
		return Layout{Size: 8, Align: 4} // [ptr: u32, len: u32]
	case *wit.TypeDef:
		return c.calculateTypeDef(typ)
	default:
		return Layout{Size: 0, Align: 1}
	}
}

func (c *Calculator) calculateTypeDef(t *wit.TypeDef) Layout {
	c.mu.Lock()
	cached, ok := c.cache[t]
	c.mu.Unlock()
	if ok {
		return cached
	}

	var info Layout

	switch kind := t.Kind.(type) {
	case *wit.Record:
		info = c.calculateRecord(kind)
	case *wit.Enum:
		size := DiscriminantSize(len(kind.Cases))
		info = Layout{Size: size, Align: size}
	case *wit.List:
		info = Layout{Size: 8, Align: 4}
	case *wit.Result:
		info = c.calculateResult(kind)
	case wit.Type:
		info = c.Calculate(kind)
	default:
		info = Layout{Size: 0, Align: 1}
	}

	c.mu.Lock()
	c.cache[t] = info
	c.mu.Unlock()
	return info
}

func (c *Calculator) calculateRecord(r *wit.Record) Layout {
	members := make([]Layout, len(r.Fields))
	for i, field := range r.Fields {
		members[i] = c.Calculate(field.Type)
	}
	offs, info := sequence(members...)
	if len(r.Fields) > 0 {
		info.FieldOffs = make(map[string]uint32, len(r.Fields))
		for i, field := range r.Fields {
			info.FieldOffs[field.Name] = offs[i]
		}
	}
	return info
}

// calculateResult lays a result out as a one-byte discriminant followed by
// a payload large enough for either case.
func (c *Calculator) calculateResult(r *wit.Result) Layout {
	payload := Layout{Align: 1}
	for _, t := range []wit.Type{r.OK, r.Err} {
		if t == nil {
			continue
		}
		l := c.Calculate(t)
		payload.Size = max(payload.Size, l.Size)
		payload.Align = max(payload.Align, l.Align)
	}
	offs, info := sequence(Layout{Size: 1, Align: 1}, payload)
	info.PayloadOffset = offs[1]
	return info
}

// sequence places members one after another, each at its own alignment.
// It returns their offsets and the size and alignment of the whole.
func sequence(members ...Layout) ([]uint32, Layout) {
	offs := make([]uint32, len(members))
	align, offset := uint32(1), uint32(0)
	for i, m := range members {
		offset = AlignTo(offset, m.Align)
		offs[i] = offset
		offset += m.Size
		align = max(align, m.Align)
	}
	return offs, Layout{Size: AlignTo(offset, align), Align: align}
}

// AlignTo rounds offset up to a multiple of align.
func AlignTo(offset, align uint32) uint32 {
	if align <= 1 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

// DiscriminantSize returns the byte width of a discriminant for n cases.
func DiscriminantSize(n int) uint32 {
	switch {
	case n <= 1<<8:
		return 1
	case n <= 1<<16:
		return 2
	default:
		return 4
	}
}
