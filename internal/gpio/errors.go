package gpio

import (
	"errors"
	"fmt"
)

// NoError is returned by LastError when no failure has been recorded.
const NoError = "no error"

// Op names the step of the pin lifecycle that failed.
type Op string

// Pin operations reported in PinError.
const (
	OpValidate  Op = "validate"
	OpExport    Op = "export"
	OpUnexport  Op = "unexport"
	OpDirection Op = "direction"
	OpOpen      Op = "open"
	OpWrite     Op = "write"
	OpRead      Op = "read"
	OpLookup    Op = "lookup"
)

var (
	ErrNegativePin    = errors.New("a pin cannot have a negative number")
	ErrWriteToInput   = errors.New("cannot write to an input pin")
	ErrReadFromOutput = errors.New("cannot read an output pin")
	ErrNotReserved    = errors.New("pin is not reserved")
	ErrUnknownPin     = errors.New("pin is not known to the host")
	ErrEmptyValue     = errors.New("value file returned no token")
)

// PinError describes a failed operation on one GPIO line.
type PinError struct {
	Pin int
	Op  Op
	Err error
	// Hint is set for permission-class failures on the control files.
	Hint bool
}

func (e *PinError) Error() string {
	msg := fmt.Sprintf("gpio %d: %s: %v", e.Pin, e.Op, e.Err)
	if e.Hint {
		msg += " (maybe you need to be root)"
	}
	return msg
}

func (e *PinError) Unwrap() error {
	return e.Err
}

func newPinError(pin int, op Op, err error) *PinError {
	return &PinError{Pin: pin, Op: op, Err: err}
}

// newAccessError is used when a control file cannot be opened. The usual
// cause is missing privileges, so the hint is always attached.
func newAccessError(pin int, op Op, err error) *PinError {
	return &PinError{Pin: pin, Op: op, Err: err, Hint: true}
}
