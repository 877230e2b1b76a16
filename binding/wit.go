package binding

import (
	"fmt"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wheel-bindings/errors"
)

// WITPackage returns the module as a WIT package holding one interface and a
// world that exports it.
func (m *Module) WITPackage() *wit.Package {
	return m.pkg
}

// buildPackage assembles the WIT package from the resolved types and
// functions. Declared types and error-code are owned by the interface.
func (m *Module) buildPackage() error {
	ident := m.Package
	if m.Version != "" {
		ident += "@" + m.Version
	}
	id, err := wit.ParseIdent(ident)
	if err == nil && id.Extension != "" {
		err = fmt.Errorf("package %q names an interface", m.Package)
	}
	if err != nil {
		return errors.New(errors.PhaseParse, errors.KindInvalidData).
			Path("package").
			Detail("invalid package %q", ident).
			Cause(err).
			Build()
	}

	pkg := &wit.Package{Name: id}
	ifaceName := m.Interface
	iface := &wit.Interface{Name: &ifaceName, Package: pkg}

	for _, d := range m.Types {
		d.Def.Owner = iface
		d.Def.Docs = wit.Docs{Contents: d.Doc}
		iface.TypeDefs.Set(d.Name(), d.Def)
	}
	if m.hasFallible() {
		m.errorCode.Owner = iface
		iface.TypeDefs.Set(ErrorCodeTypeName, m.errorCode)
	}

	for _, fn := range m.Funcs {
		f := &wit.Function{
			Name: fn.WITName(),
			Kind: &wit.Freestanding{},
			Docs: wit.Docs{Contents: fn.witDoc()},
		}
		for _, p := range fn.Params {
			f.Params = append(f.Params, wit.Param{Name: kebab(p.Name), Type: p.Type})
		}
		if rt := fn.ResultType(); rt != nil {
			f.Results = []wit.Param{{Type: rt}}
		}
		iface.Functions.Set(f.Name, f)
	}
	pkg.Interfaces.Set(ifaceName, iface)

	world := &wit.World{Name: kebab(m.Library), Package: pkg}
	world.Exports.Set(ifaceName, &wit.InterfaceRef{Interface: iface})
	pkg.Worlds.Set(world.Name, world)

	m.pkg = pkg
	return nil
}

// witDoc returns the function docs with a note for each fixed-length list.
func (f *Func) witDoc() string {
	doc := f.Doc
	for _, p := range f.Params {
		if p.Length == 0 {
			continue
		}
		if doc != "" {
			doc += "\n\n"
		}
		doc += fmt.Sprintf("`%s` must hold exactly %d elements.", kebab(p.Name), p.Length)
	}
	return doc
}
