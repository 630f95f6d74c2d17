package cmd

import (
	"fmt"

	"github.com/smazurov/segpanel/internal/display"
	"github.com/spf13/cobra"
)

// CreateShowCmd creates the show command.
func CreateShowCmd(hardware HardwareFunc) *cobra.Command {
	var leadingZero bool
	var fade bool

	cmd := &cobra.Command{
		Use:   "show <digits>",
		Short: "Display a number on the panel",
		Long: `Initializes the panel, latches the given decimal digits and lights them. ` +
			`With --fade the digits are faded in instead of switched on.`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			withPanel(hardware(), "cli", func(svc *display.Service) error {
				var err error
				if fade {
					err = svc.ShowFaded(display.SourceCLI, args[0], leadingZero)
				} else {
					err = svc.Show(display.SourceCLI, args[0], leadingZero)
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), svc.Status().LastShown)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&leadingZero, "leading-zero", false, "Pad with zeros to the panel width")
	cmd.Flags().BoolVar(&fade, "fade", false, "Fade the digits in")
	return cmd
}

// CreateFadeCmd creates the fade command.
func CreateFadeCmd(hardware HardwareFunc) *cobra.Command {
	return &cobra.Command{
		Use:       "fade in|out",
		Short:     "Fade the panel in or out",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{display.FadeIn, display.FadeOut},
		Run: func(_ *cobra.Command, args []string) {
			withPanel(hardware(), "cli", func(svc *display.Service) error {
				return svc.Fade(args[0])
			})
		},
	}
}
