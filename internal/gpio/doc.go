// Package gpio controls individual GPIO lines through the Linux sysfs
// pin-control interface.
//
// # Lifecycle
//
// A Pin is created without touching the kernel. Init reserves the line,
// configures its direction and opens a persistent read-write channel to the
// value file. Close reverts the line to an input and releases it:
//
//	p := gpio.New(18, gpio.Out, gpio.High)
//	if err := p.Init(); err != nil {
//		return err
//	}
//	defer p.Close()
//	p.FixLow()
//
// # Control plane
//
// The kernel contract is a handful of pseudo-files under the sysfs root
// (default /sys/class/gpio):
//
//	export               write  decimal pin number
//	unexport             write  decimal pin number
//	gpio<N>/direction    write  "in" or "out"
//	gpio<N>/value        write  "0" or "1"
//	gpio<N>/value        read   "0" is low, any other token is high
//
// The kernel's export file is the single arbiter of ownership: exporting a
// pin twice fails there and surfaces as an ordinary Init error.
//
// # Errors
//
// Every checked operation returns a *PinError and also records its message in
// a one-slot buffer read by LastError. FixHigh and FixLow are unchecked and
// report nothing; they exist for the shift-register hot path.
//
// Sysfs calls block without a deadline. A wedged kernel interface hangs the
// caller.
package gpio
