package gpio

import (
	"os"
	"strconv"
)

// writeControl writes a pin number to export or unexport.
func writeControl(path string, pin int, op Op) *PinError {
	return writeAttribute(path, pin, strconv.Itoa(pin), op)
}

// writeAttribute replaces the content of a sysfs attribute. The file must
// already exist; sysfs never creates attributes on open.
func writeAttribute(path string, pin int, payload string, op Op) *PinError {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return newAccessError(pin, op, err)
	}
	defer f.Close()

	if _, err := f.WriteString(payload); err != nil {
		return newPinError(pin, op, err)
	}
	return nil
}
