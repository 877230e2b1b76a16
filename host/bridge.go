package host

import (
	"context"
	"math"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	wheelbindings "github.com/wippyai/wheel-bindings"
	"github.com/wippyai/wheel-bindings/errors"
	"github.com/wippyai/wheel-bindings/host/internal/wasm"
	"github.com/wippyai/wheel-bindings/tire"
)

const (
	pageSize = 65536

	// retArea holds results returned through a return pointer.
	retArea uint32 = 0
	// bufArea holds buffers passed as (ptr, len).
	bufArea uint32 = 64
)

// Bridge calls the host functions through a guest shim module, so every
// value crosses the same canonical ABI boundary a wasm guest uses.
// A Bridge reuses one scratch area in guest memory and is not safe for
// concurrent use.
type Bridge struct {
	host    *Host
	hostMod api.Module
	guest   api.Module
	raw     api.Memory
	mem     *GuestMemory
	funcs   map[string]api.Function
}

// Bridge instantiates the host module and a shim guest in r.
// The namespace must not already be instantiated in r.
func (h *Host) Bridge(ctx context.Context, r wazero.Runtime) (*Bridge, error) {
	hostMod, err := h.Instantiate(ctx, r)
	if err != nil {
		return nil, err
	}

	shim := wasm.NewShimBuilder(h.Namespace())
	shim.SetMemory("memory", 1, h.memLimit)
	for _, fn := range h.module.Funcs {
		params, results := fn.CoreSignature()
		shim.AddFunc(fn.WITName(), params, results)
	}

	guest, err := r.InstantiateWithConfig(ctx, shim.Build(), wazero.NewModuleConfig().WithName(""))
	if err != nil {
		_ = hostMod.Close(ctx)
		return nil, errors.Instantiation("bridge shim for "+h.Namespace(), err)
	}

	raw := guest.ExportedMemory("memory")
	b := &Bridge{
		host:    h,
		hostMod: hostMod,
		guest:   guest,
		raw:     raw,
		mem:     NewGuestMemory(raw),
		funcs:   make(map[string]api.Function, len(h.module.Funcs)),
	}
	for _, fn := range h.module.Funcs {
		b.funcs[fn.WITName()] = guest.ExportedFunction(fn.WITName())
	}
	return b, nil
}

// Memory returns the shim's linear memory.
func (b *Bridge) Memory() wheelbindings.Memory {
	return b.mem
}

// Call invokes a function by WIT name with raw core values.
func (b *Bridge) Call(ctx context.Context, name string, params ...uint64) ([]uint64, error) {
	fn := b.funcs[name]
	if fn == nil {
		return nil, errors.NotFound(errors.PhaseCall, "function", name)
	}
	return fn.Call(ctx, params...)
}

// CreateRandomTire returns a tire from the host's generator.
func (b *Bridge) CreateRandomTire(ctx context.Context) (tire.Tire, error) {
	if _, err := b.Call(ctx, "create-random-tire", uint64(retArea)); err != nil {
		return tire.Tire{}, err
	}
	return b.host.abi.liftTire(b.mem, retArea)
}

// WheelSizeAspect returns width/height. A zero height returns NaN and a
// division-by-zero error.
func (b *Bridge) WheelSizeAspect(ctx context.Context, width, height float64) (float64, error) {
	if _, err := b.Call(ctx, "wheel-size-aspect", api.EncodeF64(width), api.EncodeF64(height), uint64(retArea)); err != nil {
		return math.NaN(), err
	}
	aspect := math.NaN()
	err := liftResult(b.mem, retArea, b.host.abi.aspect, func(payload uint32) error {
		v, err := readF64(b.mem, payload)
		aspect = v
		return err
	})
	if err != nil {
		return math.NaN(), err
	}
	return aspect, nil
}

// FormatWheelIdentifier passes dimensions as a list<u8>. The host rejects
// any length other than tire.IdentifierLen.
func (b *Bridge) FormatWheelIdentifier(ctx context.Context, dimensions []byte) error {
	return b.callBuffer(ctx, "format-wheel-identifier", dimensions)
}

// FormatSizeOfWheels passes sizes as a list<u8> of any length.
func (b *Bridge) FormatSizeOfWheels(ctx context.Context, sizes []byte) error {
	return b.callBuffer(ctx, "format-size-of-wheels", sizes)
}

// FuncWithNoReturn only fails if the call itself traps.
func (b *Bridge) FuncWithNoReturn(ctx context.Context) error {
	_, err := b.Call(ctx, "func-with-no-return")
	return err
}

// DescribeTire passes t as flattened fields.
func (b *Bridge) DescribeTire(ctx context.Context, t tire.Tire) error {
	_, err := b.Call(ctx, "describe-tire",
		uint64(t.Material.Index()),
		api.EncodeF64(t.Pressure),
		api.EncodeF64(t.Size.Width),
		api.EncodeF64(t.Size.Height),
		uint64(retArea))
	if err != nil {
		return err
	}
	return liftResult(b.mem, retArea, b.host.abi.unit, nil)
}

func (b *Bridge) callBuffer(ctx context.Context, name string, data []byte) error {
	ptr, err := b.stage(data)
	if err != nil {
		return err
	}
	if _, err := b.Call(ctx, name, uint64(ptr), uint64(len(data)), uint64(retArea)); err != nil {
		return err
	}
	return liftResult(b.mem, retArea, b.host.abi.unit, nil)
}

// stage copies data into the buffer area, growing memory when needed.
func (b *Bridge) stage(data []byte) (uint32, error) {
	need := uint64(bufArea) + uint64(len(data))
	if size := uint64(b.raw.Size()); need > size {
		pages := (need - size + pageSize - 1) / pageSize
		if pages > math.MaxUint32 {
			return 0, errors.OutOfBounds(errors.PhaseLower, []string{"buffer"}, bufArea, math.MaxUint32)
		}
		if _, ok := b.raw.Grow(uint32(pages)); !ok {
			return 0, errors.OutOfBounds(errors.PhaseLower, []string{"buffer"}, bufArea, uint32(len(data)))
		}
		b.host.log.Debug("bridge memory grown", zap.Uint64("pages", pages))
	}
	if err := b.mem.Write(bufArea, data); err != nil {
		return 0, err
	}
	return bufArea, nil
}

// Close releases the shim and the host module.
func (b *Bridge) Close(ctx context.Context) error {
	err := b.guest.Close(ctx)
	if herr := b.hostMod.Close(ctx); err == nil {
		err = herr
	}
	return err
}
