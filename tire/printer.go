package tire

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/wheel-bindings/errors"
)

// Printer performs the side-effecting operations of the binding surface.
// Each call writes whole lines; concurrent calls never interleave.
type Printer struct {
	w   io.Writer
	log *zap.Logger
	mu  sync.Mutex
}

// PrinterOption configures a Printer.
type PrinterOption func(*Printer)

// WithLogger sets the logger used for call tracing.
func WithLogger(l *zap.Logger) PrinterOption {
	return func(p *Printer) {
		if l != nil {
			p.log = l
		}
	}
}

// NewPrinter creates a Printer writing to w. A nil w writes to stdout.
func NewPrinter(w io.Writer, opts ...PrinterOption) *Printer {
	if w == nil {
		w = os.Stdout
	}
	p := &Printer{w: w, log: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FormatWheelIdentifier writes the identifier's bytes.
func (p *Printer) FormatWheelIdentifier(id Identifier) error {
	p.log.Debug("format wheel identifier", zap.Binary("dimensions", id[:]))
	return p.writeSizes(id[:])
}

// FormatSizeOfWheels writes every byte of sizes. Only sizes[:len(sizes)] is read.
func (p *Printer) FormatSizeOfWheels(sizes []byte) error {
	p.log.Debug("format size of wheels", zap.Int("len", len(sizes)))
	return p.writeSizes(sizes)
}

// FuncWithNoReturn writes a fixed acknowledgement line.
func (p *Printer) FuncWithNoReturn() error {
	p.log.Debug("func with no return")
	return p.writeLine("no-return line", "Yep, no returns\n")
}

// DescribeTire writes the tire's pressure, material, size and aspect ratio.
// Nothing is written when the aspect ratio is undefined.
func (p *Printer) DescribeTire(t Tire) error {
	aspect, err := t.Aspect()
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("Tire pressure: ")
	b.WriteString(strconv.FormatFloat(t.Pressure, 'f', 2, 64))
	b.WriteString("\nTire material: ")
	b.WriteString(t.Material.String())
	b.WriteString("\nTire size: ")
	b.WriteString(strconv.FormatFloat(t.Size.Width, 'f', 2, 64))
	b.WriteString("w, ")
	b.WriteString(strconv.FormatFloat(t.Size.Height, 'f', 2, 64))
	b.WriteString("h\nTire aspect ratio: ")
	b.WriteString(strconv.FormatFloat(aspect, 'f', 2, 64))
	b.WriteByte('\n')

	p.log.Debug("describe tire", zap.Stringer("material", t.Material))
	return p.writeLine("tire description", b.String())
}

func (p *Printer) writeSizes(sizes []byte) error {
	return p.writeLine("wheel sizes", "Wheel sizes: "+FormatBytes(sizes)+"\n")
}

func (p *Printer) writeLine(what, line string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := io.WriteString(p.w, line); err != nil {
		p.log.Warn("printer write failed", zap.String("what", what), zap.Error(err))
		return errors.IO(errors.PhaseCall, what, err)
	}
	return nil
}

// FormatBytes renders b as a bracketed, comma-separated list of decimal
// values, e.g. "[77, 42, 69]".
func FormatBytes(b []byte) string {
	var sb strings.Builder
	sb.Grow(2 + len(b)*5)
	sb.WriteByte('[')
	for i, v := range b {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Itoa(int(v)))
	}
	sb.WriteByte(']')
	return sb.String()
}
