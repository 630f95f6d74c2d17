package gpio

import (
	"errors"
	"testing"

	pgpio "periph.io/x/conn/v3/gpio"
)

// stubPin fails the first failIn calls to In. Other PinIO methods are not
// used by these tests.
type stubPin struct {
	pgpio.PinIO
	failIn int
	ins    int
	outs   []pgpio.Level
}

var errBusy = errors.New("device busy")

func (p *stubPin) In(pgpio.Pull, pgpio.Edge) error {
	p.ins++
	if p.ins <= p.failIn {
		return errBusy
	}
	return nil
}

func (p *stubPin) Out(l pgpio.Level) error {
	p.outs = append(p.outs, l)
	return nil
}

func claimedPeriphLine(stub *stubPin) *PeriphLine {
	l := NewPeriphLine(17, Out, Low)
	l.pin = stub
	return l
}

func TestPeriphLineCloseRetry(t *testing.T) {
	tests := []struct {
		name       string
		failIn     int
		wantErrs   int
		wantClosed bool
	}{
		{"first close succeeds", 0, 0, true},
		{"retry after one failure", 1, 1, true},
		{"still failing", 3, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubPin{failIn: tt.failIn}
			l := claimedPeriphLine(stub)

			errs := 0
			for range 2 {
				if err := l.Close(); err != nil {
					errs++
					if !errors.Is(err, errBusy) {
						t.Errorf("Close() error = %v, want %v", err, errBusy)
					}
					if l.LastError() == NoError {
						t.Error("LastError() empty after failed Close")
					}
				}
			}
			if errs != tt.wantErrs {
				t.Errorf("failed closes = %d, want %d", errs, tt.wantErrs)
			}
			if closed := l.pin == nil; closed != tt.wantClosed {
				t.Errorf("released = %v, want %v", closed, tt.wantClosed)
			}
		})
	}
}

func TestPeriphLineWritesWhileClaimed(t *testing.T) {
	stub := &stubPin{failIn: 1}
	l := claimedPeriphLine(stub)

	if err := l.Close(); err == nil {
		t.Fatal("Close() succeeded, want failure")
	}
	if err := l.FixValue(High); err != nil {
		t.Fatalf("FixValue() after failed Close error = %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("retry Close() error = %v", err)
	}
	if err := l.FixValue(Low); !errors.Is(err, ErrNotReserved) {
		t.Errorf("FixValue() after Close error = %v, want ErrNotReserved", err)
	}
	if len(stub.outs) != 1 || stub.outs[0] != pgpio.High {
		t.Errorf("outs = %v, want [High]", stub.outs)
	}
}
