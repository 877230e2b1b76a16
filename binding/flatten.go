package binding

import (
	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"
)

// Canonical ABI flattening limits
const (
	MaxFlatParams  = 16
	MaxFlatResults = 1
)

// CoreValType is a core wasm value type
type CoreValType = api.ValueType

// FlattenType flattens a WIT type to core wasm types
func FlattenType(t wit.Type) []CoreValType {
	switch v := t.(type) {
	case nil:
		return nil
	case wit.Bool, wit.U8, wit.U16, wit.U32, wit.S8, wit.S16, wit.S32, wit.Char:
		return []CoreValType{api.ValueTypeI32}
	case wit.U64, wit.S64:
		return []CoreValType{api.ValueTypeI64}
	case wit.F32:
		return []CoreValType{api.ValueTypeF32}
	case wit.F64:
		return []CoreValType{api.ValueTypeF64}
	case wit.String:
		return []CoreValType{api.ValueTypeI32, api.ValueTypeI32} // ptr, len
	case *wit.TypeDef:
		return flattenTypeDef(v)
	default:
		return []CoreValType{api.ValueTypeI32}
	}
}

func flattenTypeDef(td *wit.TypeDef) []CoreValType {
	switch kind := td.Kind.(type) {
	case *wit.Record:
		var flat []CoreValType
		for _, f := range kind.Fields {
			flat = append(flat, FlattenType(f.Type)...)
		}
		return flat
	case *wit.List:
		return []CoreValType{api.ValueTypeI32, api.ValueTypeI32} // ptr, len
	case *wit.Enum:
		return []CoreValType{api.ValueTypeI32} // discriminant only
	case *wit.Result:
		var payload []CoreValType
		for _, c := range []wit.Type{kind.OK, kind.Err} {
			for i, ft := range FlattenType(c) {
				if i < len(payload) {
					payload[i] = joinTypes(payload[i], ft)
				} else {
					payload = append(payload, ft)
				}
			}
		}
		return append([]CoreValType{api.ValueTypeI32}, payload...)
	case wit.Type:
		return FlattenType(kind)
	default:
		return []CoreValType{api.ValueTypeI32}
	}
}

// joinTypes joins two core types for variant payload flattening.
func joinTypes(a, b CoreValType) CoreValType {
	if a == b {
		return a
	}
	if (a == api.ValueTypeI32 && b == api.ValueTypeF32) || (a == api.ValueTypeF32 && b == api.ValueTypeI32) {
		return api.ValueTypeI32
	}
	return api.ValueTypeI64
}

// CoreSignature returns the lowered core wasm signature of f.
// Results that do not fit in MaxFlatResults become a trailing i32 return pointer.
func (f *Func) CoreSignature() (params, results []CoreValType) {
	for _, p := range f.Params {
		params = append(params, FlattenType(p.Type)...)
	}
	if len(params) > MaxFlatParams {
		params = []CoreValType{api.ValueTypeI32}
	}

	results = FlattenType(f.ResultType())
	if len(results) > MaxFlatResults {
		params = append(params, api.ValueTypeI32)
		results = nil
	}
	return params, results
}

// UsesRetptr reports whether f returns its result through memory.
func (f *Func) UsesRetptr() bool {
	return len(FlattenType(f.ResultType())) > MaxFlatResults
}
