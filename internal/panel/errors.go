package panel

import (
	"errors"
	"fmt"
)

// Kind classifies panel failures so callers can branch without parsing text.
type Kind int

const (
	// KindConfig is an invalid panel description or a call in the wrong state.
	KindConfig Kind = iota + 1
	// KindPin is a failure reported by one of the GPIO lines.
	KindPin
	// KindFormat is a number string the panel cannot show.
	KindFormat
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindPin:
		return "pin"
	case KindFormat:
		return "format"
	default:
		return "unknown"
	}
}

// Sentinels matched by errors.Is against any *Error of the same kind.
var (
	ErrConfig = errors.New("panel configuration error")
	ErrPin    = errors.New("panel pin error")
	ErrFormat = errors.New("panel format error")
)

// Error is returned by every failing Panel operation.
type Error struct {
	Kind    Kind
	Message string
	// Pin is the GPIO number involved, or -1.
	Pin int
	// Role names the panel line behind Pin: oe, le, data or clock.
	Role string
	Err  error
}

func (e *Error) Error() string {
	if e.Pin >= 0 && e.Role != "" {
		return fmt.Sprintf("panel %s error on %s gpio %d: %s", e.Kind, e.Role, e.Pin, e.Message)
	}
	if e.Pin >= 0 {
		return fmt.Sprintf("panel %s error on gpio %d: %s", e.Kind, e.Pin, e.Message)
	}
	return fmt.Sprintf("panel %s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrConfig:
		return e.Kind == KindConfig
	case ErrPin:
		return e.Kind == KindPin
	case ErrFormat:
		return e.Kind == KindFormat
	}
	return false
}

// Messages for the fixed validation failures.
const (
	msgNoDigits       = "the number of digits must be at least 1"
	msgNegativePin    = "a pin cannot have a negative number"
	msgDuplicatePins  = "pin numbers must all be different"
	msgNotInitialized = "panel is not initialized"
	msgTooBig         = "number too big to be displayed"
	msgEmpty          = "the number to display cannot be empty"
	msgDigitsOnly     = "only digits 0 to 9 can be displayed"
)

func configError(msg string) *Error {
	return &Error{Kind: KindConfig, Message: msg, Pin: -1}
}

func formatError(msg string) *Error {
	return &Error{Kind: KindFormat, Message: msg, Pin: -1}
}

// pinError carries the line's own diagnostic unchanged as Message.
func pinError(pin int, role, msg string, err error) *Error {
	return &Error{Kind: KindPin, Message: msg, Pin: pin, Role: role, Err: err}
}
