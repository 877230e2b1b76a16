package binding

import (
	"strings"

	"go.bytecodealliance.org/wit"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/wheel-bindings/errors"
)

// RawManifest is the YAML form of a Module.
type RawManifest struct {
	Package   string       `yaml:"package"`
	Interface string       `yaml:"interface"`
	Version   string       `yaml:"version"`
	Library   string       `yaml:"library"`
	Types     []RawTypeDef `yaml:"types"`
	Functions []RawFuncDef `yaml:"functions"`
}

// RawTypeDef declares either an enum or a record.
type RawTypeDef struct {
	Name   string        `yaml:"name"`
	CName  string        `yaml:"c_name"`
	Doc    string        `yaml:"doc"`
	Enum   []string      `yaml:"enum"`
	Record []RawFieldDef `yaml:"record"`
}

// RawFieldDef is a record field or a function parameter.
type RawFieldDef struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Length int    `yaml:"length"` // fixed element count for list parameters
}

// RawFuncDef declares a function.
type RawFuncDef struct {
	Name     string        `yaml:"name"`
	Doc      string        `yaml:"doc"`
	Params   []RawFieldDef `yaml:"params"`
	Result   string        `yaml:"result"`
	Fallible bool          `yaml:"fallible"`
}

// LoadManifest parses a YAML manifest into a Module.
func LoadManifest(data []byte) (*Module, error) {
	var raw RawManifest
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.ParseFailed("manifest", err)
	}
	return raw.Build()
}

// Build validates the raw manifest and resolves its type references.
func (raw *RawManifest) Build() (*Module, error) {
	if raw.Package == "" || raw.Interface == "" {
		return nil, errors.InvalidData(errors.PhaseParse, nil, "manifest needs package and interface")
	}

	m := &Module{
		Package:   raw.Package,
		Interface: raw.Interface,
		Version:   raw.Version,
		Library:   raw.Library,
		types:     make(map[string]*TypeDecl),
		funcs:     make(map[string]*Func),
		errorCode: newErrorCodeType(),
	}
	if m.Library == "" {
		m.Library = snake(raw.Interface)
	}

	// Declare names first so records may reference types declared later.
	for _, rt := range raw.Types {
		name := kebab(rt.Name)
		if name == "" {
			return nil, errors.InvalidData(errors.PhaseParse, []string{"types"}, "type without name")
		}
		if name == ErrorCodeTypeName || m.types[name] != nil {
			return nil, errors.InvalidData(errors.PhaseParse, []string{"types", name}, "duplicate type name")
		}
		decl := &TypeDecl{
			Def:   &wit.TypeDef{Name: &name},
			CName: rt.CName,
			Doc:   rt.Doc,
		}
		if decl.CName == "" {
			decl.CName = pascal(name)
		}
		m.types[name] = decl
		m.Types = append(m.Types, decl)
	}

	for i, rt := range raw.Types {
		decl := m.Types[i]
		path := []string{"types", decl.Name()}
		switch {
		case len(rt.Enum) > 0 && len(rt.Record) > 0:
			return nil, errors.InvalidData(errors.PhaseParse, path, "type is both enum and record")
		case len(rt.Enum) > 0:
			cases := make([]wit.EnumCase, len(rt.Enum))
			for j, c := range rt.Enum {
				cases[j] = wit.EnumCase{Name: kebab(c)}
			}
			decl.Def.Kind = &wit.Enum{Cases: cases}
		case len(rt.Record) > 0:
			fields := make([]wit.Field, len(rt.Record))
			for j, f := range rt.Record {
				ft, err := m.parseType(f.Type, append(path, f.Name))
				if err != nil {
					return nil, err
				}
				fields[j] = wit.Field{Name: kebab(f.Name), Type: ft}
			}
			decl.Def.Kind = &wit.Record{Fields: fields}
		default:
			return nil, errors.InvalidData(errors.PhaseParse, path, "type needs enum cases or record fields")
		}
	}

	for _, rf := range raw.Functions {
		fn, err := m.buildFunc(rf)
		if err != nil {
			return nil, err
		}
		if m.funcs[fn.Name] != nil {
			return nil, errors.InvalidData(errors.PhaseParse, []string{"functions", fn.Name}, "duplicate function")
		}
		m.funcs[fn.Name] = fn
		m.Funcs = append(m.Funcs, fn)
	}

	if err := m.buildPackage(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Module) buildFunc(rf RawFuncDef) (*Func, error) {
	name := snake(rf.Name)
	if name == "" {
		return nil, errors.InvalidData(errors.PhaseParse, []string{"functions"}, "function without name")
	}
	path := []string{"functions", name}

	fn := &Func{
		Name:     name,
		Doc:      rf.Doc,
		Fallible: rf.Fallible,
	}
	for _, rp := range rf.Params {
		pt, err := m.parseType(rp.Type, append(path, rp.Name))
		if err != nil {
			return nil, err
		}
		if rp.Length < 0 {
			return nil, errors.InvalidData(errors.PhaseParse, append(path, rp.Name), "negative length")
		}
		if rp.Length > 0 && !isList(pt) {
			return nil, errors.InvalidData(errors.PhaseParse, append(path, rp.Name), "length applies to list parameters only")
		}
		fn.Params = append(fn.Params, Param{Name: snake(rp.Name), Type: pt, Length: rp.Length})
	}

	if rf.Result != "" {
		rt, err := m.parseType(rf.Result, append(path, "result"))
		if err != nil {
			return nil, err
		}
		fn.Result = rt
	}
	if fn.Fallible {
		fn.resultType = &wit.TypeDef{
			Kind: &wit.Result{OK: fn.Result, Err: m.errorCode},
		}
	}
	return fn, nil
}

var primitives = map[string]wit.Type{
	"bool":   wit.Bool{},
	"u8":     wit.U8{},
	"u16":    wit.U16{},
	"u32":    wit.U32{},
	"u64":    wit.U64{},
	"s8":     wit.S8{},
	"s16":    wit.S16{},
	"s32":    wit.S32{},
	"s64":    wit.S64{},
	"f32":    wit.F32{},
	"f64":    wit.F64{},
	"char":   wit.Char{},
	"string": wit.String{},
}

// parseType resolves a type expression: a primitive, list<T> or a declared name.
func (m *Module) parseType(expr string, path []string) (wit.Type, error) {
	expr = strings.TrimSpace(expr)
	if t, ok := primitives[expr]; ok {
		return t, nil
	}
	if inner, ok := strings.CutPrefix(expr, "list<"); ok {
		inner, ok = strings.CutSuffix(inner, ">")
		if !ok {
			return nil, errors.InvalidData(errors.PhaseParse, path, "unterminated list type "+expr)
		}
		elem, err := m.parseType(inner, path)
		if err != nil {
			return nil, err
		}
		return &wit.TypeDef{Kind: &wit.List{Type: elem}}, nil
	}
	if decl := m.types[kebab(expr)]; decl != nil {
		return decl.Def, nil
	}
	return nil, errors.New(errors.PhaseParse, errors.KindNotFound).
		Path(path...).
		Detail("unknown type %q", expr).
		Build()
}

func isList(t wit.Type) bool {
	td, ok := t.(*wit.TypeDef)
	if !ok {
		return false
	}
	_, ok = td.Kind.(*wit.List)
	return ok
}

// listElem returns the element type of a list, or nil.
func listElem(t wit.Type) wit.Type {
	if td, ok := t.(*wit.TypeDef); ok {
		if l, ok := td.Kind.(*wit.List); ok {
			return l.Type
		}
	}
	return nil
}
