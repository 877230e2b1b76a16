package host

import (
	"context"
	"slices"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	wheelbindings "github.com/wippyai/wheel-bindings"
	"github.com/wippyai/wheel-bindings/binding"
	"github.com/wippyai/wheel-bindings/errors"
	"github.com/wippyai/wheel-bindings/tire"
)

// DefaultMemoryLimitPages caps bridge memory at 1 MiB.
const DefaultMemoryLimitPages = 16

// Config configures a Host.
type Config struct {
	// Module declares the exported functions. Defaults to binding.Wheels().
	Module *binding.Module

	// Printer receives the format calls. Defaults to a stdout printer.
	Printer *tire.Printer

	// Generator supplies tires for create-random-tire. When nil the global
	// random source is used.
	Generator *tire.Generator

	// Logger defaults to the package Logger().
	Logger *zap.Logger

	// MemoryLimitPages caps the memory of a Bridge guest, in 64 KiB pages.
	MemoryLimitPages uint32
}

// Host implements the wheels functions for wasm guests.
// A Host holds no per-call state and may back any number of guests.
type Host struct {
	module   *binding.Module
	printer  *tire.Printer
	gen      *tire.Generator
	log      *zap.Logger
	abi      abi
	memLimit uint32
}

// New creates a Host from cfg, filling in defaults.
func New(cfg Config) *Host {
	h := &Host{
		module:   cfg.Module,
		printer:  cfg.Printer,
		gen:      cfg.Generator,
		log:      cfg.Logger,
		memLimit: cfg.MemoryLimitPages,
		abi:      newABI(binding.Wheels()),
	}
	if h.module == nil {
		h.module = binding.Wheels()
	}
	if h.log == nil {
		h.log = Logger()
	}
	if h.printer == nil {
		h.printer = tire.NewPrinter(nil, tire.WithLogger(h.log))
	}
	if h.memLimit == 0 {
		h.memLimit = DefaultMemoryLimitPages
	}
	return h
}

// Namespace returns the WIT interface path guests import from.
func (h *Host) Namespace() string {
	return h.module.Namespace()
}

// Module returns the declared module served by h.
func (h *Host) Module() *binding.Module {
	return h.module
}

func (h *Host) handlers() map[string]api.GoModuleFunc {
	return map[string]api.GoModuleFunc{
		"create-random-tire":      h.createRandomTire,
		"wheel-size-aspect":       h.wheelSizeAspect,
		"format-wheel-identifier": h.formatWheelIdentifier,
		"format-size-of-wheels":   h.formatSizeOfWheels,
		"func-with-no-return":     h.funcWithNoReturn,
		"describe-tire":           h.describeTire,
	}
}

// Instantiate registers the host module in r. Every declared function must
// have a handler whose core signature matches the declaration.
func (h *Host) Instantiate(ctx context.Context, r wazero.Runtime) (api.Module, error) {
	ns := h.Namespace()
	handlers := h.handlers()
	builder := r.NewHostModuleBuilder(ns)

	for _, fn := range h.module.Funcs {
		name := fn.WITName()
		handler, ok := handlers[name]
		if !ok {
			return nil, errors.Registration(errors.PhaseHost, ns, name,
				errors.NotFound(errors.PhaseHost, "handler", name))
		}

		params, results := fn.CoreSignature()
		wantParams, wantResults := binding.Wheels().Func(name).CoreSignature()
		if !slices.Equal(params, wantParams) || !slices.Equal(results, wantResults) {
			return nil, errors.Registration(errors.PhaseHost, ns, name,
				errors.InvalidData(errors.PhaseHost, []string{name}, "declared core signature does not match handler"))
		}

		builder.NewFunctionBuilder().
			WithGoModuleFunction(handler, params, results).
			Export(name)
	}

	mod, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, errors.Instantiation("host module "+ns, err)
	}
	h.log.Debug("host module instantiated",
		zap.String("namespace", ns),
		zap.Int("funcs", len(h.module.Funcs)))
	return mod, nil
}

func (h *Host) memory(mod api.Module) (wheelbindings.Memory, error) {
	mem := mod.Memory()
	if mem == nil {
		return nil, errors.New(errors.PhaseCall, errors.KindNilPointer).
			Detail("module %q has no memory", mod.Name()).
			Build()
	}
	return NewGuestMemory(mem), nil
}

// callMemory returns the caller's memory for a call whose outcome is stored
// at retptr. It traps before any side effect when the l.Size bytes at retptr
// are not addressable.
func (h *Host) callMemory(mod api.Module, name string, retptr uint32, l binding.Layout) wheelbindings.Memory {
	mem, err := h.memory(mod)
	if err != nil {
		h.trap(name, err)
	}
	if _, err := mem.Read(retptr, l.Size); err != nil {
		h.trap(name, errors.OutOfBounds(errors.PhaseLower, []string{"retptr"}, retptr, l.Size))
	}
	return mem
}

// trap aborts the call. wazero recovers the panic and returns err from the
// guest's call.
func (h *Host) trap(name string, err error) {
	h.log.Error("host call trapped", zap.String("func", name), zap.Error(err))
	panic(err)
}

// finish reports the outcome of a fallible call at retptr.
func (h *Host) finish(mem wheelbindings.Memory, name string, retptr uint32, l binding.Layout, callErr error, ok func(payload uint32) error) {
	if callErr != nil {
		h.log.Warn("host call failed",
			zap.String("func", name),
			zap.Stringer("code", binding.CodeOf(callErr)),
			zap.Error(callErr))
	}
	if err := lowerResult(mem, retptr, l, callErr, ok); err != nil {
		h.trap(name, err)
	}
}

func (h *Host) nextTire() tire.Tire {
	if h.gen != nil {
		return h.gen.Tire()
	}
	return tire.CreateRandomTire()
}

func (h *Host) createRandomTire(_ context.Context, mod api.Module, stack []uint64) {
	const name = "create-random-tire"
	retptr := api.DecodeU32(stack[0])
	h.log.Debug("host call", zap.String("func", name))

	mem := h.callMemory(mod, name, retptr, h.abi.tire)
	if err := h.abi.lowerTire(mem, retptr, h.nextTire()); err != nil {
		h.trap(name, err)
	}
}

func (h *Host) wheelSizeAspect(_ context.Context, mod api.Module, stack []uint64) {
	const name = "wheel-size-aspect"
	width, height := api.DecodeF64(stack[0]), api.DecodeF64(stack[1])
	retptr := api.DecodeU32(stack[2])
	h.log.Debug("host call", zap.String("func", name),
		zap.Float64("width", width), zap.Float64("height", height))

	mem := h.callMemory(mod, name, retptr, h.abi.aspect)
	aspect, callErr := tire.WheelSizeAspect(width, height)
	h.finish(mem, name, retptr, h.abi.aspect, callErr, func(payload uint32) error {
		return mem.WriteU64(payload, api.EncodeF64(aspect))
	})
}

func (h *Host) formatWheelIdentifier(_ context.Context, mod api.Module, stack []uint64) {
	const name = "format-wheel-identifier"
	ptr, n, retptr := api.DecodeU32(stack[0]), api.DecodeU32(stack[1]), api.DecodeU32(stack[2])
	h.log.Debug("host call", zap.String("func", name), zap.Uint32("len", n))

	mem := h.callMemory(mod, name, retptr, h.abi.unit)
	h.finish(mem, name, retptr, h.abi.unit, h.identifier(mem, ptr, n), nil)
}

func (h *Host) identifier(mem wheelbindings.Memory, ptr, n uint32) error {
	if n != tire.IdentifierLen {
		return errors.LengthMismatch(errors.PhaseValidate, []string{"dimensions"}, tire.IdentifierLen, int(n))
	}
	data, err := mem.Read(ptr, n)
	if err != nil {
		return err
	}
	id, err := tire.IdentifierFromBytes(data)
	if err != nil {
		return err
	}
	return h.printer.FormatWheelIdentifier(id)
}

func (h *Host) formatSizeOfWheels(_ context.Context, mod api.Module, stack []uint64) {
	const name = "format-size-of-wheels"
	ptr, n, retptr := api.DecodeU32(stack[0]), api.DecodeU32(stack[1]), api.DecodeU32(stack[2])
	h.log.Debug("host call", zap.String("func", name), zap.Uint32("len", n))

	mem := h.callMemory(mod, name, retptr, h.abi.unit)
	callErr := func() error {
		sizes, err := mem.Read(ptr, n)
		if err != nil {
			return err
		}
		return h.printer.FormatSizeOfWheels(sizes)
	}()
	h.finish(mem, name, retptr, h.abi.unit, callErr, nil)
}

func (h *Host) funcWithNoReturn(_ context.Context, _ api.Module, _ []uint64) {
	const name = "func-with-no-return"
	h.log.Debug("host call", zap.String("func", name))

	// The printer already logs write failures and there is no result to carry them.
	_ = h.printer.FuncWithNoReturn()
}

func (h *Host) describeTire(_ context.Context, mod api.Module, stack []uint64) {
	const name = "describe-tire"
	disc := api.DecodeU32(stack[0])
	pressure, width, height := api.DecodeF64(stack[1]), api.DecodeF64(stack[2]), api.DecodeF64(stack[3])
	retptr := api.DecodeU32(stack[4])
	h.log.Debug("host call", zap.String("func", name), zap.Uint32("material", disc))

	mem := h.callMemory(mod, name, retptr, h.abi.unit)
	callErr := func() error {
		material, err := tire.MaterialFromIndex(int(disc))
		if err != nil {
			return err
		}
		return h.printer.DescribeTire(tire.Tire{
			Material: material,
			Pressure: pressure,
			Size:     tire.Size{Width: width, Height: height},
		})
	}()
	h.finish(mem, name, retptr, h.abi.unit, callErr, nil)
}
