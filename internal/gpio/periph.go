package gpio

import (
	"fmt"
	"sync"

	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

var (
	hostOnce sync.Once
	hostErr  error
)

func initHost() error {
	hostOnce.Do(func() {
		_, hostErr = host.Init()
	})
	return hostErr
}

// PeriphLine drives a GPIO line through periph.io instead of the sysfs
// files. Lines are resolved by their "GPIO<N>" registry name.
type PeriphLine struct {
	number    int
	direction Direction
	initial   Value

	pin     pgpio.PinIO
	lastErr string
}

// NewPeriphLine describes a periph-backed line. Nothing is claimed until Init.
func NewPeriphLine(number int, direction Direction, initial Value) *PeriphLine {
	return &PeriphLine{
		number:    number,
		direction: direction,
		initial:   initial,
		lastErr:   NoError,
	}
}

func (l *PeriphLine) Init() error {
	if l.pin != nil {
		return nil
	}
	if l.number < 0 {
		return l.fail(newPinError(l.number, OpValidate, ErrNegativePin))
	}
	if err := initHost(); err != nil {
		return l.fail(newAccessError(l.number, OpExport, err))
	}

	p := gpioreg.ByName(fmt.Sprintf("GPIO%d", l.number))
	if p == nil {
		return l.fail(newPinError(l.number, OpLookup, ErrUnknownPin))
	}

	var err error
	if l.direction == Out {
		err = p.Out(toLevel(l.initial))
	} else {
		err = p.In(pgpio.PullNoChange, pgpio.NoEdge)
	}
	if err != nil {
		return l.fail(newPinError(l.number, OpDirection, err))
	}
	l.pin = p
	return nil
}

// Close returns the line to a floating input. The line stays claimed if that
// fails, so Close can be retried.
func (l *PeriphLine) Close() error {
	if l.pin == nil {
		return nil
	}
	if err := l.pin.In(pgpio.PullNoChange, pgpio.NoEdge); err != nil {
		return l.fail(newPinError(l.number, OpDirection, err))
	}
	l.pin = nil
	return nil
}

func (l *PeriphLine) FixValue(v Value) error {
	if l.direction != Out {
		return l.fail(newPinError(l.number, OpWrite, ErrWriteToInput))
	}
	if l.pin == nil {
		return l.fail(newPinError(l.number, OpWrite, ErrNotReserved))
	}
	if err := l.pin.Out(toLevel(v)); err != nil {
		return l.fail(newPinError(l.number, OpWrite, err))
	}
	return nil
}

func (l *PeriphLine) FixHigh() {
	if l.direction == Out && l.pin != nil {
		_ = l.pin.Out(pgpio.High)
	}
}

func (l *PeriphLine) FixLow() {
	if l.direction == Out && l.pin != nil {
		_ = l.pin.Out(pgpio.Low)
	}
}

// ReadValue samples an input line.
func (l *PeriphLine) ReadValue() (Value, error) {
	if l.direction != In {
		return Low, l.fail(newPinError(l.number, OpRead, ErrReadFromOutput))
	}
	if l.pin == nil {
		return Low, l.fail(newPinError(l.number, OpRead, ErrNotReserved))
	}
	if l.pin.Read() == pgpio.High {
		return High, nil
	}
	return Low, nil
}

func (l *PeriphLine) Number() int {
	return l.number
}

func (l *PeriphLine) LastError() string {
	msg := l.lastErr
	l.lastErr = NoError
	return msg
}

func (l *PeriphLine) fail(err *PinError) error {
	l.lastErr = err.Error()
	return err
}

func toLevel(v Value) pgpio.Level {
	if v == High {
		return pgpio.High
	}
	return pgpio.Low
}
