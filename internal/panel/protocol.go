package panel

import "time"

// Fade timing: fadeSteps PWM periods of fadePeriod each, the duty cycle
// moving by fadeStep per period.
const (
	fadeSteps  = 100
	fadeStep   = 100 * time.Microsecond
	fadePeriod = 10000 * time.Microsecond
)

// sendByte shifts v into the chain, bit 0 first. Data is set before each
// clock pulse.
func (p *Panel) sendByte(v byte) {
	for i := 0; i < 8; i++ {
		if v&0x01 == 1 {
			p.data.FixHigh()
		} else {
			p.data.FixLow()
		}
		p.clk.FixHigh()
		p.clk.FixLow()
		v >>= 1
	}
}

// latch copies the shift registers to the segment outputs.
func (p *Panel) latch() {
	p.le.FixHigh()
	p.le.FixLow()
}

// Enable lights the latched pattern (OE is active low).
func (p *Panel) Enable() {
	if p.oe != nil {
		p.oe.FixLow()
	}
}

// Disable blanks the panel without losing the latched pattern.
func (p *Panel) Disable() {
	if p.oe != nil {
		p.oe.FixHigh()
	}
}

// FadeIn ramps the brightness up over about one second by software PWM on
// OE and leaves the output enabled.
func (p *Panel) FadeIn() {
	if p.oe == nil {
		return
	}
	for j := 0; j < fadeSteps; j++ {
		p.oe.FixLow()
		p.sleep(time.Duration(j) * fadeStep)
		p.oe.FixHigh()
		p.sleep(fadePeriod - time.Duration(j)*fadeStep)
	}
	p.oe.FixLow()
}

// FadeOut ramps the brightness down and leaves the output disabled.
func (p *Panel) FadeOut() {
	if p.oe == nil {
		return
	}
	for j := 0; j < fadeSteps; j++ {
		p.oe.FixHigh()
		p.sleep(time.Duration(j) * fadeStep)
		p.oe.FixLow()
		p.sleep(fadePeriod - time.Duration(j)*fadeStep)
	}
	p.oe.FixHigh()
}
