package main

import (
	"os"
	"unsafe"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/wheel-bindings/binding"
	"github.com/wippyai/wheel-bindings/errors"
	"github.com/wippyai/wheel-bindings/tire"
)

// logLevelEnv selects a stderr log level, e.g. WHEELS_LOG_LEVEL=debug.
const logLevelEnv = "WHEELS_LOG_LEVEL"

var (
	logger  = newLogger(os.Getenv(logLevelEnv))
	printer = tire.NewPrinter(os.Stdout, tire.WithLogger(logger))
)

func newLogger(level string) *zap.Logger {
	if level == "" {
		return zap.NewNop()
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return zap.NewNop()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// status converts err to a C status code, logging failures.
func status(fn string, err error) int32 {
	if err != nil {
		logger.Warn("call failed", zap.String("func", fn), zap.Error(err))
	}
	return binding.Status(err)
}

func wheelSizeAspect(width, height float64, out *float64) int32 {
	if out == nil {
		return status("wheel_size_aspect", errors.NilPointer(errors.PhaseValidate, []string{"out"}, "*double"))
	}
	aspect, err := tire.WheelSizeAspect(width, height)
	if err != nil {
		return status("wheel_size_aspect", err)
	}
	*out = aspect
	return 0
}

func formatWheelIdentifier(p *tire.Identifier) int32 {
	if p == nil {
		return status("format_wheel_identifier", errors.NilPointer(errors.PhaseValidate, []string{"dimensions"}, "*uint8_t"))
	}
	return status("format_wheel_identifier", printer.FormatWheelIdentifier(*p))
}

// formatSizeOfWheels reads n bytes at p. A nil p is an empty buffer when n is 0.
func formatSizeOfWheels(p *byte, n uint) int32 {
	if p == nil && n > 0 {
		return status("format_size_of_wheels", errors.NilPointer(errors.PhaseValidate, []string{"sizes"}, "*uint8_t"))
	}
	var sizes []byte
	if n > 0 {
		sizes = unsafe.Slice(p, n)
	}
	return status("format_size_of_wheels", printer.FormatSizeOfWheels(sizes))
}

func funcWithNoReturn() {
	_ = printer.FuncWithNoReturn()
}

func describeTire(material int, pressure, width, height float64) int32 {
	m, err := tire.MaterialFromIndex(material)
	if err != nil {
		return status("describe_tire", err)
	}
	return status("describe_tire", printer.DescribeTire(tire.Tire{
		Material: m,
		Pressure: pressure,
		Size:     tire.Size{Width: width, Height: height},
	}))
}
