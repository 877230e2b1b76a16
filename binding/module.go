package binding

import (
	"strings"

	"go.bytecodealliance.org/wit"
)

// Module is a declared binding surface.
type Module struct {
	Package   string // WIT package, e.g. "cpy:example"
	Interface string // WIT interface, e.g. "wheels"
	Version   string
	Library   string // library and world name, e.g. "example"

	Types []*TypeDecl
	Funcs []*Func

	types     map[string]*TypeDecl
	funcs     map[string]*Func
	errorCode *wit.TypeDef
	pkg       *wit.Package
}

// TypeDecl is a named type with its C spelling and documentation.
type TypeDecl struct {
	Def   *wit.TypeDef
	CName string
	Doc   string
}

// Name returns the WIT name of the type.
func (d *TypeDecl) Name() string {
	if d.Def.Name == nil {
		return ""
	}
	return *d.Def.Name
}

// Param is a function parameter. Length fixes the element count of a list
// parameter; zero means any length.
type Param struct {
	Type   wit.Type
	Name   string
	Length int
}

// Func is a declared function. Result is nil for functions without a value.
// A fallible function returns result<Result, error-code>.
type Func struct {
	Result     wit.Type
	resultType wit.Type
	Name       string
	Doc        string
	Params     []Param
	Fallible   bool
}

// Namespace returns the full WIT interface path, e.g. "cpy:example/wheels@0.1.0".
func (m *Module) Namespace() string {
	ns := m.Package + "/" + m.Interface
	if m.Version != "" {
		ns += "@" + m.Version
	}
	return ns
}

// Type looks up a declared type by WIT name.
func (m *Module) Type(name string) *TypeDecl {
	return m.types[kebab(name)]
}

// Func looks up a function by name in snake_case or kebab-case.
func (m *Module) Func(name string) *Func {
	return m.funcs[snake(name)]
}

// ErrorCodeType returns the module's error-code enum.
func (m *Module) ErrorCodeType() *wit.TypeDef {
	return m.errorCode
}

// declFor returns the declaration owning td, if any.
func (m *Module) declFor(td *wit.TypeDef) *TypeDecl {
	if td == nil || td.Name == nil {
		return nil
	}
	if d := m.types[*td.Name]; d != nil && d.Def == td {
		return d
	}
	return nil
}

// WITName returns the kebab-case name used by WIT and the wasm host.
func (f *Func) WITName() string {
	return kebab(f.Name)
}

// CName returns the snake_case symbol exported to C.
func (f *Func) CName() string {
	return snake(f.Name)
}

// ResultType returns the WIT result type as seen across the boundary:
// result<Result, error-code> for fallible functions, Result otherwise.
func (f *Func) ResultType() wit.Type {
	if f.resultType != nil {
		return f.resultType
	}
	return f.Result
}

// ParamTypes returns the WIT types of the parameters in order.
func (f *Func) ParamTypes() []wit.Type {
	out := make([]wit.Type, len(f.Params))
	for i, p := range f.Params {
		out[i] = p.Type
	}
	return out
}

func kebab(s string) string {
	return strings.ReplaceAll(s, "_", "-")
}

func snake(s string) string {
	return strings.ReplaceAll(s, "-", "_")
}

// pascal converts "size-2d" or "error_code" to "Size2d" / "ErrorCode".
func pascal(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		if r == '-' || r == '_' {
			upper = true
			continue
		}
		if upper && r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		upper = false
		b.WriteRune(r)
	}
	return b.String()
}

// screaming converts "Material" + "plastic" style names to "MATERIAL", "PLASTIC".
// Lower-to-upper transitions in camel case start a new word.
func screaming(s string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range s {
		switch {
		case r == '-' || r == '_':
			b.WriteByte('_')
			prevLower = false
			continue
		case r >= 'A' && r <= 'Z':
			if prevLower {
				b.WriteByte('_')
			}
			prevLower = false
		case r >= 'a' && r <= 'z':
			r -= 'a' - 'A'
			prevLower = true
		default:
			prevLower = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
