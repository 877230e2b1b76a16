package binding

import (
	"fmt"
	"io"
	"strings"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wheel-bindings/errors"
)

// EmitWIT writes the module's WIT package: one interface and a world
// exporting it.
func EmitWIT(w io.Writer, m *Module) error {
	text := "// Code generated by bindgen. DO NOT EDIT.\n\n" + m.WITPackage().WIT(nil, "")
	if _, err := io.WriteString(w, text); err != nil {
		return errors.IO(errors.PhaseEmit, "wit", err)
	}
	return nil
}

// EmitCHeader writes a C header declaring the module's types, status codes
// and exported functions. Defining <LIBRARY>_BINDINGS_TYPES_ONLY before
// inclusion omits the function prototypes; cgo preambles need this because
// cgo declares exported functions itself.
func EmitCHeader(w io.Writer, m *Module) error {
	var b strings.Builder

	guard := screaming(m.Library) + "_BINDINGS_H"
	typesOnly := screaming(m.Library) + "_BINDINGS_TYPES_ONLY"
	prefix := screaming(m.Interface)

	fmt.Fprintf(&b, "/* Code generated by bindgen from %s. DO NOT EDIT. */\n\n", m.Namespace())
	fmt.Fprintf(&b, "#ifndef %s\n#define %s\n\n", guard, guard)
	b.WriteString("#include <stdbool.h>\n#include <stddef.h>\n#include <stdint.h>\n")

	if m.hasFallible() {
		b.WriteByte('\n')
		fmt.Fprintf(&b, "#define %s_OK 0\n", prefix)
		for i := 0; i < NumErrorCodes; i++ {
			fmt.Fprintf(&b, "#define %s_ERR_%s (%d)\n", prefix, screaming(ErrorCode(i).String()), -(i + 1))
		}
	}

	for _, d := range m.Types {
		b.WriteByte('\n')
		writeCDoc(&b, d.Doc)
		switch kind := d.Def.Kind.(type) {
		case *wit.Enum:
			fmt.Fprintf(&b, "typedef enum %s {\n", d.CName)
			for i, c := range kind.Cases {
				fmt.Fprintf(&b, "  %s_%s = %d,\n", screaming(d.CName), screaming(c.Name), i)
			}
		case *wit.Record:
			fmt.Fprintf(&b, "typedef struct %s {\n", d.CName)
			for _, f := range kind.Fields {
				ct, err := m.cScalar(f.Type)
				if err != nil {
					return err
				}
				fmt.Fprintf(&b, "  %s %s;\n", ct, snake(f.Name))
			}
		default:
			return errors.Unsupported(errors.PhaseEmit, fmt.Sprintf("C declaration of %T", kind))
		}
		fmt.Fprintf(&b, "} %s;\n", d.CName)
	}

	fmt.Fprintf(&b, "\n#ifndef %s\n\n", typesOnly)
	b.WriteString("#ifdef __cplusplus\nextern \"C\" {\n#endif\n")

	for _, fn := range m.Funcs {
		proto, err := m.CPrototype(fn)
		if err != nil {
			return err
		}
		b.WriteByte('\n')
		writeCDoc(&b, fn.Doc)
		b.WriteString(proto + ";\n")
	}

	b.WriteString("\n#ifdef __cplusplus\n}  /* extern \"C\" */\n#endif\n\n")
	fmt.Fprintf(&b, "#endif /* %s */\n\n", typesOnly)
	fmt.Fprintf(&b, "#endif /* %s */\n", guard)

	if _, err := io.WriteString(w, b.String()); err != nil {
		return errors.IO(errors.PhaseEmit, "c header", err)
	}
	return nil
}

// CPrototype returns the C declaration of fn without a trailing semicolon.
func (m *Module) CPrototype(fn *Func) (string, error) {
	var params []string
	for _, p := range fn.Params {
		ps, err := m.cParam(fn, p)
		if err != nil {
			return "", err
		}
		params = append(params, ps...)
	}

	ret := "void"
	switch {
	case fn.Fallible:
		ret = "int32_t"
		if fn.Result != nil {
			ct, err := m.cScalar(fn.Result)
			if err != nil {
				return "", err
			}
			params = append(params, ct+" *out")
		}
	case fn.Result != nil:
		ct, err := m.cScalar(fn.Result)
		if err != nil {
			return "", err
		}
		ret = ct
	}

	if len(params) == 0 {
		params = []string{"void"}
	}
	return fmt.Sprintf("%s %s(%s)", ret, fn.CName(), strings.Join(params, ", ")), nil
}

func (m *Module) cParam(fn *Func, p Param) ([]string, error) {
	if elem := listElem(p.Type); elem != nil {
		ct, err := m.cScalar(elem)
		if err != nil {
			return nil, err
		}
		if p.Length > 0 {
			return []string{fmt.Sprintf("const %s %s[%d]", ct, p.Name, p.Length)}, nil
		}
		return []string{
			fmt.Sprintf("const %s *%s", ct, p.Name),
			fmt.Sprintf("size_t %s_len", p.Name),
		}, nil
	}

	ct, err := m.cScalar(p.Type)
	if err != nil {
		return nil, errors.New(errors.PhaseEmit, errors.KindUnsupported).
			Path(fn.Name, p.Name).
			Cause(err).
			Build()
	}
	if td, ok := p.Type.(*wit.TypeDef); ok {
		if _, isRecord := td.Kind.(*wit.Record); isRecord {
			return []string{fmt.Sprintf("const %s *%s", ct, p.Name)}, nil
		}
	}
	return []string{ct + " " + p.Name}, nil
}

var cPrimitives = map[string]string{
	"bool": "bool",
	"u8":   "uint8_t",
	"u16":  "uint16_t",
	"u32":  "uint32_t",
	"u64":  "uint64_t",
	"s8":   "int8_t",
	"s16":  "int16_t",
	"s32":  "int32_t",
	"s64":  "int64_t",
	"f32":  "float",
	"f64":  "double",
	"char": "uint32_t",
}

// cScalar returns the C spelling of a value type that C can hold by value.
func (m *Module) cScalar(t wit.Type) (string, error) {
	if td, ok := t.(*wit.TypeDef); ok {
		if d := m.declFor(td); d != nil {
			return d.CName, nil
		}
	}
	name := t.WIT(nil, "")
	if ct, ok := cPrimitives[name]; ok {
		return ct, nil
	}
	return "", errors.Unsupported(errors.PhaseEmit, "C field of type "+name)
}

func (m *Module) hasFallible() bool {
	for _, fn := range m.Funcs {
		if fn.Fallible {
			return true
		}
	}
	return false
}

func writeCDoc(b *strings.Builder, doc string) {
	if doc == "" {
		return
	}
	fmt.Fprintf(b, "/* %s */\n", strings.ReplaceAll(strings.TrimSpace(doc), "\n", " "))
}
