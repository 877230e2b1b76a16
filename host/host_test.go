package host

import (
	"bytes"
	"context"
	stderrors "errors"
	"math"
	"strings"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/wheel-bindings/binding"
	"github.com/wippyai/wheel-bindings/errors"
	"github.com/wippyai/wheel-bindings/tire"
)

func newBridge(t *testing.T, cfg Config) (*Bridge, *bytes.Buffer) {
	t.Helper()
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	t.Cleanup(func() { _ = r.Close(ctx) })

	var out bytes.Buffer
	if cfg.Printer == nil {
		cfg.Printer = tire.NewPrinter(&out)
	}
	b, err := New(cfg).Bridge(ctx, r)
	if err != nil {
		t.Fatalf("Bridge: %v", err)
	}
	t.Cleanup(func() { _ = b.Close(ctx) })
	return b, &out
}

func TestBridge_CreateRandomTire(t *testing.T) {
	b, _ := newBridge(t, Config{Generator: tire.NewGenerator(42)})
	want := tire.NewGenerator(42)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		got, err := b.CreateRandomTire(ctx)
		if err != nil {
			t.Fatalf("CreateRandomTire: %v", err)
		}
		if w := want.Tire(); got != w {
			t.Errorf("tire %d = %+v, want %+v", i, got, w)
		}
	}
}

func TestBridge_CreateRandomTireGlobalSource(t *testing.T) {
	b, _ := newBridge(t, Config{})
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		got, err := b.CreateRandomTire(ctx)
		if err != nil {
			t.Fatalf("CreateRandomTire: %v", err)
		}
		if got.Pressure < 30 || got.Pressure >= 60 {
			t.Errorf("pressure %v out of range", got.Pressure)
		}
		if got.Size.Width < 5 || got.Size.Width >= 10 {
			t.Errorf("width %v out of range", got.Size.Width)
		}
		if got.Size.Height < 10 || got.Size.Height >= 20 {
			t.Errorf("height %v out of range", got.Size.Height)
		}
	}
}

func TestBridge_WheelSizeAspect(t *testing.T) {
	b, _ := newBridge(t, Config{})
	ctx := context.Background()

	tests := []struct {
		width, height, want float64
	}{
		{10, 20, 0.5},
		{6, 12, 0.5},
		{9, 3, 3},
		{0, 4, 0},
	}
	for _, tt := range tests {
		got, err := b.WheelSizeAspect(ctx, tt.width, tt.height)
		if err != nil {
			t.Errorf("WheelSizeAspect(%v, %v): %v", tt.width, tt.height, err)
			continue
		}
		if got != tt.want {
			t.Errorf("WheelSizeAspect(%v, %v) = %v, want %v", tt.width, tt.height, got, tt.want)
		}
	}

	got, err := b.WheelSizeAspect(ctx, 8, 0)
	if !errors.IsKind(err, errors.KindDivisionByZero) {
		t.Errorf("zero height error = %v, want division_by_zero", err)
	}
	if !math.IsNaN(got) {
		t.Errorf("zero height value = %v, want NaN", got)
	}
}

func TestBridge_FormatFunctionsAgree(t *testing.T) {
	b, out := newBridge(t, Config{})
	ctx := context.Background()

	sizes := []byte{77, 42, 69}
	if err := b.FormatWheelIdentifier(ctx, sizes); err != nil {
		t.Fatalf("FormatWheelIdentifier: %v", err)
	}
	fromIdentifier := out.String()
	out.Reset()

	if err := b.FormatSizeOfWheels(ctx, sizes); err != nil {
		t.Fatalf("FormatSizeOfWheels: %v", err)
	}
	if out.String() != fromIdentifier {
		t.Errorf("outputs differ: %q vs %q", fromIdentifier, out.String())
	}
	if fromIdentifier != "Wheel sizes: [77, 42, 69]\n" {
		t.Errorf("output = %q", fromIdentifier)
	}
	out.Reset()

	sizes = append(sizes, 30)
	if err := b.FormatSizeOfWheels(ctx, sizes); err != nil {
		t.Fatalf("FormatSizeOfWheels: %v", err)
	}
	if out.String() != "Wheel sizes: [77, 42, 69, 30]\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestBridge_IdentifierLength(t *testing.T) {
	b, out := newBridge(t, Config{})
	ctx := context.Background()

	for _, n := range []int{0, 1, 2, 4, 10} {
		err := b.FormatWheelIdentifier(ctx, make([]byte, n))
		if !errors.IsKind(err, errors.KindLengthMismatch) {
			t.Errorf("len %d: error = %v, want length_mismatch", n, err)
		}
	}
	if out.Len() != 0 {
		t.Errorf("rejected identifiers wrote %q", out.String())
	}
}

func TestBridge_SizeBufferLengths(t *testing.T) {
	b, out := newBridge(t, Config{})
	ctx := context.Background()

	large := make([]byte, 70000)
	for i := range large {
		large[i] = byte(i)
	}

	for _, sizes := range [][]byte{nil, {9}, {1, 2, 3}, bytes.Repeat([]byte{255}, 100), large} {
		out.Reset()
		if err := b.FormatSizeOfWheels(ctx, sizes); err != nil {
			t.Fatalf("len %d: %v", len(sizes), err)
		}
		want := "Wheel sizes: " + tire.FormatBytes(sizes) + "\n"
		if out.String() != want {
			t.Errorf("len %d: output mismatch (got %d bytes, want %d)", len(sizes), out.Len(), len(want))
		}
	}
}

func TestBridge_BufferPastMemoryLimit(t *testing.T) {
	b, out := newBridge(t, Config{MemoryLimitPages: 1})

	err := b.FormatSizeOfWheels(context.Background(), make([]byte, pageSize))
	if !errors.IsKind(err, errors.KindOutOfBounds) {
		t.Errorf("error = %v, want out_of_bounds", err)
	}
	if out.Len() != 0 {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestHost_GuestBufferOutOfBounds(t *testing.T) {
	b, out := newBridge(t, Config{})
	ctx := context.Background()

	for _, name := range []string{"format-size-of-wheels", "format-wheel-identifier"} {
		if _, err := b.Call(ctx, name, 0xffff0000, 3, uint64(retArea)); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		err := liftResult(b.Memory(), retArea, b.host.abi.unit, nil)
		if !errors.IsKind(err, errors.KindOutOfBounds) {
			t.Errorf("%s: result = %v, want out_of_bounds", name, err)
		}
	}
	if out.Len() != 0 {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestBridge_DescribeTire(t *testing.T) {
	b, out := newBridge(t, Config{})
	ctx := context.Background()

	err := b.DescribeTire(ctx, tire.Tire{
		Material: tire.Rubber,
		Pressure: 45.126,
		Size:     tire.Size{Width: 8, Height: 16},
	})
	if err != nil {
		t.Fatalf("DescribeTire: %v", err)
	}
	want := "Tire pressure: 45.13\n" +
		"Tire material: Rubber\n" +
		"Tire size: 8.00w, 16.00h\n" +
		"Tire aspect ratio: 0.50\n"
	if out.String() != want {
		t.Errorf("output:\n%s\nwant:\n%s", out.String(), want)
	}

	out.Reset()
	err = b.DescribeTire(ctx, tire.Tire{Size: tire.Size{Width: 8}})
	if !errors.IsKind(err, errors.KindDivisionByZero) {
		t.Errorf("zero height error = %v, want division_by_zero", err)
	}
	if out.Len() != 0 {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestHost_DescribeTireInvalidMaterial(t *testing.T) {
	b, out := newBridge(t, Config{})
	ctx := context.Background()

	for _, disc := range []uint64{2, 7, 0xffffffff} {
		_, err := b.Call(ctx, "describe-tire",
			disc, api.EncodeF64(40), api.EncodeF64(8), api.EncodeF64(16), uint64(retArea))
		if err != nil {
			t.Fatalf("call: %v", err)
		}
		err = liftResult(b.Memory(), retArea, b.host.abi.unit, nil)
		if !errors.IsKind(err, errors.KindInvalidEnum) {
			t.Errorf("material %d: result = %v, want invalid_enum", disc, err)
		}
	}
	if out.Len() != 0 {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestBridge_FuncWithNoReturn(t *testing.T) {
	b, out := newBridge(t, Config{})

	if err := b.FuncWithNoReturn(context.Background()); err != nil {
		t.Fatal(err)
	}
	if out.String() != "Yep, no returns\n" {
		t.Errorf("output = %q", out.String())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, stderrors.New("closed") }

func TestBridge_PrinterFailure(t *testing.T) {
	b, _ := newBridge(t, Config{Printer: tire.NewPrinter(failingWriter{})})
	ctx := context.Background()

	if err := b.FormatSizeOfWheels(ctx, []byte{1}); !errors.IsKind(err, errors.KindIO) {
		t.Errorf("FormatSizeOfWheels = %v, want io", err)
	}
	if err := b.FuncWithNoReturn(ctx); err != nil {
		t.Errorf("FuncWithNoReturn = %v, want nil", err)
	}
}

func TestHost_TrapOnBadReturnPointer(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	b, _ := newBridge(t, Config{Logger: zap.New(core)})

	_, err := b.Call(context.Background(), "create-random-tire", 0xfffffff0)
	if err == nil {
		t.Fatal("expected trap")
	}
	if !errors.IsKind(err, errors.KindOutOfBounds) {
		t.Errorf("trap error = %v, want out_of_bounds", err)
	}

	trapped := logs.FilterMessage("host call trapped").All()
	if len(trapped) != 1 {
		t.Fatalf("got %d trap logs, want 1", len(trapped))
	}
	if trapped[0].Level != zapcore.ErrorLevel {
		t.Errorf("trap logged at %s", trapped[0].Level)
	}
	if trapped[0].ContextMap()["func"] != "create-random-tire" {
		t.Errorf("trap log fields = %v", trapped[0].ContextMap())
	}
}

func TestHost_BadReturnPointerHasNoSideEffects(t *testing.T) {
	b, out := newBridge(t, Config{Generator: tire.NewGenerator(7)})
	ctx := context.Background()
	if err := b.Memory().Write(bufArea, []byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}

	calls := []struct {
		name   string
		params []uint64
	}{
		{"format-size-of-wheels", []uint64{uint64(bufArea), 2, 0xfffffff0}},
		{"format-wheel-identifier", []uint64{uint64(bufArea), 3, 0xfffffff0}},
		{"wheel-size-aspect", []uint64{api.EncodeF64(1), api.EncodeF64(0), 0xfffffff0}},
		{"describe-tire", []uint64{0, api.EncodeF64(40), api.EncodeF64(8), api.EncodeF64(16), 0xfffffff0}},
		{"create-random-tire", []uint64{0xfffffff0}},
	}
	for _, c := range calls {
		_, err := b.Call(ctx, c.name, c.params...)
		if !errors.IsKind(err, errors.KindOutOfBounds) {
			t.Errorf("%s: error = %v, want out_of_bounds", c.name, err)
		}
	}
	if out.Len() != 0 {
		t.Errorf("trapped calls printed %q", out.String())
	}

	got, err := b.CreateRandomTire(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if want := tire.NewGenerator(7).Tire(); got != want {
		t.Errorf("tire after trap = %+v, want first generated %+v", got, want)
	}
}

func TestHost_LogsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	b, _ := newBridge(t, Config{Logger: zap.New(core)})

	if _, err := b.WheelSizeAspect(context.Background(), 1, 0); err == nil {
		t.Fatal("expected error")
	}

	failed := logs.FilterMessage("host call failed").All()
	if len(failed) != 1 {
		t.Fatalf("got %d failure logs, want 1", len(failed))
	}
	fields := failed[0].ContextMap()
	if fields["func"] != "wheel-size-aspect" || fields["code"] != "division-by-zero" {
		t.Errorf("failure log fields = %v", fields)
	}
	if logs.FilterMessage("host call").Len() == 0 {
		t.Error("expected debug call logs")
	}
}

func TestBridge_UnknownFunction(t *testing.T) {
	b, _ := newBridge(t, Config{})
	if _, err := b.Call(context.Background(), "spin-wheel"); !errors.IsKind(err, errors.KindNotFound) {
		t.Errorf("error = %v, want not_found", err)
	}
}

func wheelsRaw(t *testing.T) binding.RawManifest {
	t.Helper()
	var raw binding.RawManifest
	if err := yaml.Unmarshal(binding.WheelsManifest(), &raw); err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestHost_Registration(t *testing.T) {
	tests := []struct {
		name   string
		modify func(raw *binding.RawManifest)
	}{
		{
			name: "missing handler",
			modify: func(raw *binding.RawManifest) {
				raw.Functions = append(raw.Functions, binding.RawFuncDef{Name: "spin_wheel"})
			},
		},
		{
			name: "signature mismatch",
			modify: func(raw *binding.RawManifest) {
				for i := range raw.Functions {
					if raw.Functions[i].Name == "wheel_size_aspect" {
						raw.Functions[i].Params[1].Type = "f32"
					}
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := wheelsRaw(t)
			tt.modify(&raw)
			m, err := raw.Build()
			if err != nil {
				t.Fatalf("Build: %v", err)
			}

			ctx := context.Background()
			r := wazero.NewRuntime(ctx)
			defer r.Close(ctx)

			_, err = New(Config{Module: m}).Instantiate(ctx, r)
			if !errors.IsKind(err, errors.KindRegistration) {
				t.Errorf("error = %v, want registration", err)
			}
			if r.Module(m.Namespace()) != nil {
				t.Error("host module should not be instantiated")
			}
		})
	}
}

func TestHost_InstantiateTwice(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	h := New(Config{})
	if _, err := h.Instantiate(ctx, r); err != nil {
		t.Fatal(err)
	}
	_, err := h.Instantiate(ctx, r)
	if !errors.IsKind(err, errors.KindInstantiation) {
		t.Errorf("error = %v, want instantiation", err)
	}
}

func TestHost_Defaults(t *testing.T) {
	h := New(Config{})
	if h.Namespace() != "cpy:example/wheels@0.1.0" {
		t.Errorf("Namespace = %q", h.Namespace())
	}
	if h.Module() != binding.Wheels() {
		t.Error("default module should be binding.Wheels()")
	}
	if h.memLimit != DefaultMemoryLimitPages {
		t.Errorf("memLimit = %d", h.memLimit)
	}
	if h.printer == nil || h.log == nil {
		t.Error("printer and logger should default")
	}
}

func TestHost_CustomNamespace(t *testing.T) {
	raw := wheelsRaw(t)
	raw.Version = "0.2.0"
	m, err := raw.Build()
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	b, _ := newBridge(t, Config{Module: m, Printer: tire.NewPrinter(&out)})
	if b.host.Namespace() != "cpy:example/wheels@0.2.0" {
		t.Errorf("Namespace = %q", b.host.Namespace())
	}
	if err := b.FormatSizeOfWheels(context.Background(), []byte{4, 2}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "[4, 2]") {
		t.Errorf("output = %q", out.String())
	}
}

func TestLogger(t *testing.T) {
	if Logger() == nil {
		t.Fatal("default logger is nil")
	}
	core, logs := observer.New(zapcore.InfoLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	Logger().Info("hello")
	if logs.Len() != 1 {
		t.Errorf("got %d entries, want 1", logs.Len())
	}
}
