package display

import (
	"context"
	"time"
)

// RunClock shows the date and time, waits interval and repeats until ctx is
// done. A failed sequence is logged and the loop carries on; a sequence in
// progress is not interrupted by cancellation.
func (s *Service) RunClock(ctx context.Context, interval time.Duration) {
	s.logger.Info("Clock loop started", "interval", interval)
	defer s.logger.Info("Clock loop stopped")

	for {
		if ctx.Err() != nil {
			return
		}
		if err := s.ShowDateTime(); err != nil {
			s.logger.Debug("Clock cycle failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}
