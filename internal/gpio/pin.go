package gpio

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultSysfsRoot is where the kernel exposes the GPIO control plane.
const DefaultSysfsRoot = "/sys/class/gpio"

// Direction of a GPIO line.
type Direction uint8

const (
	In Direction = iota
	Out
)

func (d Direction) String() string {
	if d == Out {
		return "out"
	}
	return "in"
}

// Value is the logic level of a GPIO line.
type Value uint8

const (
	Low Value = iota
	High
)

func (v Value) String() string {
	if v == High {
		return "1"
	}
	return "0"
}

// Line is the contract the panel driver needs from a GPIO line. *Pin and
// *PeriphLine implement it; tests substitute recording fakes.
type Line interface {
	Init() error
	Close() error
	FixValue(v Value) error
	FixHigh()
	FixLow()
	Number() int
	LastError() string
}

var (
	_ Line = (*Pin)(nil)
	_ Line = (*PeriphLine)(nil)
)

// Option configures a Pin.
type Option func(*Pin)

// WithSysfsRoot points the pin at an alternative control-plane directory.
func WithSysfsRoot(root string) Option {
	return func(p *Pin) {
		p.root = root
	}
}

// WithExportSettle sets how long Init waits after exporting before touching
// the per-pin files. udev may still be adjusting their permissions.
func WithExportSettle(d time.Duration) Option {
	return func(p *Pin) {
		p.settle = d
	}
}

// Pin is one sysfs GPIO line. It is not safe for concurrent use.
type Pin struct {
	number    int
	direction Direction
	initial   Value
	root      string
	settle    time.Duration

	value    *os.File
	reserved bool
	lastErr  string
}

// New describes a line. Nothing is written to the kernel until Init.
// initial only matters for outputs.
func New(number int, direction Direction, initial Value, opts ...Option) *Pin {
	p := &Pin{
		number:    number,
		direction: direction,
		initial:   initial,
		root:      DefaultSysfsRoot,
		lastErr:   NoError,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Init reserves the line and leaves it configured. A reserved pin returns
// nil without touching the kernel again.
func (p *Pin) Init() error {
	if p.reserved {
		return nil
	}
	if p.number < 0 {
		return p.fail(newPinError(p.number, OpValidate, ErrNegativePin))
	}

	if err := writeControl(p.controlPath("export"), p.number, OpExport); err != nil {
		return p.fail(err)
	}
	p.reserved = true

	if p.settle > 0 {
		time.Sleep(p.settle)
	}

	if err := p.FixDirection(p.direction); err != nil {
		p.release()
		return err
	}

	f, err := os.OpenFile(p.pinPath("value"), os.O_RDWR, 0)
	if err != nil {
		p.release()
		return p.fail(newAccessError(p.number, OpOpen, err))
	}
	p.value = f

	if p.direction == Out {
		if err := p.FixValue(p.initial); err != nil {
			p.closeValue()
			p.release()
			return err
		}
	}
	return nil
}

// Close reverts the line to an input and releases it. It stops at the first
// failing step.
func (p *Pin) Close() error {
	p.closeValue()

	if err := p.FixDirection(In); err != nil {
		return err
	}
	if err := writeControl(p.controlPath("unexport"), p.number, OpUnexport); err != nil {
		return p.fail(err)
	}
	p.reserved = false
	return nil
}

// FixDirection writes the direction file and updates the pin's direction.
func (p *Pin) FixDirection(d Direction) error {
	if err := writeAttribute(p.pinPath("direction"), p.number, d.String(), OpDirection); err != nil {
		return p.fail(err)
	}
	p.direction = d
	return nil
}

// FixValue drives an output line.
func (p *Pin) FixValue(v Value) error {
	if p.direction != Out {
		return p.fail(newPinError(p.number, OpWrite, ErrWriteToInput))
	}
	if p.value == nil {
		return p.fail(newPinError(p.number, OpWrite, ErrNotReserved))
	}
	if _, err := p.value.WriteString(v.String()); err != nil {
		return p.fail(newPinError(p.number, OpWrite, err))
	}
	return nil
}

// FixHigh drives the line high without any checks. It does nothing on an
// input or unreserved pin.
func (p *Pin) FixHigh() {
	p.fastWrite('1')
}

// FixLow drives the line low without any checks. It does nothing on an
// input or unreserved pin.
func (p *Pin) FixLow() {
	p.fastWrite('0')
}

func (p *Pin) fastWrite(b byte) {
	if p.direction != Out || p.value == nil {
		return
	}
	_, _ = p.value.Write([]byte{b})
}

// ReadValue samples an input line. "0" reads as Low, any other token as High.
func (p *Pin) ReadValue() (Value, error) {
	if p.direction != In {
		return Low, p.fail(newPinError(p.number, OpRead, ErrReadFromOutput))
	}
	if p.value == nil {
		return Low, p.fail(newPinError(p.number, OpRead, ErrNotReserved))
	}
	if _, err := p.value.Seek(0, io.SeekStart); err != nil {
		return Low, p.fail(newPinError(p.number, OpRead, err))
	}

	buf := make([]byte, 16)
	n, err := p.value.Read(buf)
	if err != nil && err != io.EOF {
		return Low, p.fail(newPinError(p.number, OpRead, err))
	}
	fields := strings.Fields(string(buf[:n]))
	if len(fields) == 0 {
		return Low, p.fail(newPinError(p.number, OpRead, ErrEmptyValue))
	}
	if fields[0] == "0" {
		return Low, nil
	}
	return High, nil
}

// Number returns the kernel pin number.
func (p *Pin) Number() int {
	return p.number
}

// Direction returns the configured direction.
func (p *Pin) Direction() Direction {
	return p.direction
}

// Reserved reports whether the pin is currently exported by this handle.
func (p *Pin) Reserved() bool {
	return p.reserved
}

// LastError returns the most recent failure message and clears it.
func (p *Pin) LastError() string {
	msg := p.lastErr
	p.lastErr = NoError
	return msg
}

func (p *Pin) fail(err *PinError) error {
	p.lastErr = err.Error()
	return err
}

// release unexports after a failed Init. The original failure stays the
// recorded one.
func (p *Pin) release() {
	_ = writeControl(p.controlPath("unexport"), p.number, OpUnexport)
	p.reserved = false
}

func (p *Pin) closeValue() {
	if p.value != nil {
		_ = p.value.Close()
		p.value = nil
	}
}

func (p *Pin) controlPath(name string) string {
	return filepath.Join(p.root, name)
}

func (p *Pin) pinPath(name string) string {
	return filepath.Join(p.root, "gpio"+strconv.Itoa(p.number), name)
}
