package panel

import "strings"

// DisplayNumber shifts s into the chain, right aligned, and latches it.
// Positions left of s are blanked. The output is disabled while shifting and
// stays disabled; use Enable or FadeIn to show the result.
func (p *Panel) DisplayNumber(s string) error {
	if err := p.checkNumber(s); err != nil {
		return err
	}
	if !p.ready() {
		return configError(msgNotInitialized)
	}

	p.Disable()
	for i := len(s); i < p.digits; i++ {
		p.sendByte(0)
	}
	for i := 0; i < len(s); i++ {
		p.sendByte(DigitsDPDown[s[i]-'0'])
	}
	p.latch()
	return nil
}

// DisplayNumberWithLeadingZero pads s with '0' to the panel width and
// displays it.
func (p *Panel) DisplayNumberWithLeadingZero(s string) error {
	if pad := p.digits - len(s); pad > 0 {
		s = strings.Repeat("0", pad) + s
	}
	return p.DisplayNumber(s)
}

func (p *Panel) checkNumber(s string) error {
	if len(s) > p.digits {
		return formatError(msgTooBig)
	}
	if len(s) == 0 {
		return formatError(msgEmpty)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return formatError(msgDigitsOnly)
		}
	}
	return nil
}

// DisplayDateTime shows the local day, month and year, pauses, then shows
// the hour and minute. Each group fades in and out. The returned stamp holds
// the ten digits shown, ddmmyyHHMM, read from a single clock sample.
func (p *Panel) DisplayDateTime() (string, error) {
	stamp := p.now().Format("0201061504")

	for _, group := range []string{stamp[0:2], stamp[2:4], stamp[4:6]} {
		if err := p.showFaded(group); err != nil {
			return "", err
		}
	}

	p.sleep(p.dateTimePause)

	for _, group := range []string{stamp[6:8], stamp[8:10]} {
		if err := p.showFaded(group); err != nil {
			return "", err
		}
	}
	return stamp, nil
}

func (p *Panel) showFaded(s string) error {
	if err := p.DisplayNumber(s); err != nil {
		return err
	}
	p.FadeIn()
	p.FadeOut()
	return nil
}
