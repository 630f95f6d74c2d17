package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/smazurov/segpanel/internal/config"
	"github.com/smazurov/segpanel/internal/display"
	"github.com/smazurov/segpanel/internal/logging"
	"github.com/spf13/cobra"
)

// CreateClockCmd creates the clock command. It runs the panel self test:
// "99" is faded in and out, then the date and time are shown for the given
// number of cycles, or until interrupted when cycles is 0.
func CreateClockCmd(hardware HardwareFunc) *cobra.Command {
	var cycles int
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "clock",
		Short: "Run the panel self test and date/time loop",
		Args:  cobra.NoArgs,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			if interval <= 0 {
				return fmt.Errorf("--interval must be positive, got %s", interval)
			}
			if cycles < 0 {
				return fmt.Errorf("--cycles must not be negative, got %d", cycles)
			}
			return nil
		},
		Run: func(_ *cobra.Command, _ []string) {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := logging.GetLogger("clock")
			withPanel(hardware(), "clock", func(svc *display.Service) error {
				if err := svc.ShowFaded(display.SourceCLI, "99", true); err != nil {
					return err
				}
				if err := svc.Fade(display.FadeOut); err != nil {
					return err
				}

				for i := 0; cycles == 0 || i < cycles; i++ {
					if err := svc.ShowDateTime(); err != nil {
						return err
					}
					logger.Debug("Date/time cycle complete", "cycle", i+1)
					if cycles != 0 && i == cycles-1 {
						break
					}
					select {
					case <-ctx.Done():
						logger.Info("Clock interrupted", "cycles", i+1)
						return nil
					case <-time.After(interval):
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&cycles, "cycles", 1, "Date/time cycles to run, 0 runs until interrupted")
	cmd.Flags().DurationVar(&interval, "interval", config.DefaultClockInterval, "Pause between cycles")
	return cmd
}
