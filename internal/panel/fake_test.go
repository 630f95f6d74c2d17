package panel

import (
	"errors"
	"fmt"
	"time"

	"github.com/smazurov/segpanel/internal/gpio"
)

// step is one observable action on a fake line.
type step struct {
	role string
	op   string
}

// recorder collects the actions of every line built by its factory, in order.
type recorder struct {
	roles     map[int]string
	steps     []step
	built     int
	failInit  map[string]bool
	failClose map[string]bool
	sleeps    []time.Duration
}

func newRecorder(pins Pins) *recorder {
	return &recorder{
		roles: map[int]string{
			pins.OE:    "oe",
			pins.LE:    "le",
			pins.Data:  "data",
			pins.Clock: "clock",
		},
		failInit:  map[string]bool{},
		failClose: map[string]bool{},
	}
}

func (r *recorder) factory() LineFactory {
	return func(number int, direction gpio.Direction, initial gpio.Value) gpio.Line {
		r.built++
		return &fakeLine{rec: r, role: r.roles[number], number: number, direction: direction, initial: initial}
	}
}

func (r *recorder) sleep(d time.Duration) {
	r.sleeps = append(r.sleeps, d)
	r.steps = append(r.steps, step{role: "sleep", op: d.String()})
}

func (r *recorder) reset() {
	r.steps = nil
	r.sleeps = nil
}

// ops returns the operations recorded for one role.
func (r *recorder) ops(role string) []string {
	var out []string
	for _, s := range r.steps {
		if s.role == role {
			out = append(out, s.op)
		}
	}
	return out
}

// shifted decodes the bytes clocked into the chain, grouped per latch pulse.
func (r *recorder) shifted() [][]byte {
	var (
		frames  [][]byte
		current []byte
		value   byte
		bits    int
		data    bool
	)
	for _, s := range r.steps {
		switch {
		case s.role == "data" && s.op == "high":
			data = true
		case s.role == "data" && s.op == "low":
			data = false
		case s.role == "clock" && s.op == "high":
			if data {
				value |= 1 << bits
			}
			bits++
			if bits == 8 {
				current = append(current, value)
				value, bits = 0, 0
			}
		case s.role == "le" && s.op == "high":
			frames = append(frames, current)
			current = nil
		}
	}
	return frames
}

type fakeLine struct {
	rec       *recorder
	role      string
	number    int
	direction gpio.Direction
	initial   gpio.Value
	lastErr   string
}

func (f *fakeLine) Init() error {
	if f.rec.failInit[f.role] {
		f.lastErr = fmt.Sprintf("cannot export gpio %d", f.number)
		return errors.New(f.lastErr)
	}
	f.rec.steps = append(f.rec.steps, step{role: f.role, op: "init:" + f.direction.String() + ":" + f.initial.String()})
	return nil
}

func (f *fakeLine) Close() error {
	if f.rec.failClose[f.role] {
		f.lastErr = fmt.Sprintf("cannot unexport gpio %d", f.number)
		return errors.New(f.lastErr)
	}
	f.rec.steps = append(f.rec.steps, step{role: f.role, op: "close"})
	return nil
}

func (f *fakeLine) FixValue(v gpio.Value) error {
	if v == gpio.High {
		f.FixHigh()
	} else {
		f.FixLow()
	}
	return nil
}

func (f *fakeLine) FixHigh() {
	f.rec.steps = append(f.rec.steps, step{role: f.role, op: "high"})
}

func (f *fakeLine) FixLow() {
	f.rec.steps = append(f.rec.steps, step{role: f.role, op: "low"})
}

func (f *fakeLine) Number() int {
	return f.number
}

func (f *fakeLine) LastError() string {
	msg := f.lastErr
	f.lastErr = gpio.NoError
	if msg == "" {
		return gpio.NoError
	}
	return msg
}
