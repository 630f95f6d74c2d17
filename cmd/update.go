package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/smazurov/segpanel/internal/logging"
	"github.com/smazurov/segpanel/internal/updater"
	"github.com/spf13/cobra"
)

// UpdateOptionsFunc returns the resolved updater settings.
type UpdateOptionsFunc func() updater.Options

// CreateUpdateCmd creates the update command.
func CreateUpdateCmd(options UpdateOptionsFunc) *cobra.Command {
	var checkOnly bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update segpanel to the latest release",
		Long: `Checks GitHub for a newer release and installs it, keeping a backup of ` +
			`the current binary. With --check only the check is performed.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			logger := logging.GetLogger("updater")
			if err := runUpdate(cmd.Context(), cmd, options(), checkOnly); err != nil {
				logger.Error("Update failed", "error", err)
				os.Exit(1)
			}
		},
	}

	cmd.Flags().BoolVar(&checkOnly, "check", false, "Only check for a newer release")
	return cmd
}

func runUpdate(ctx context.Context, cmd *cobra.Command, opts updater.Options, checkOnly bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	// The command exits on its own; nothing to restart.
	opts.OnRestart = func() {}

	svc, err := updater.NewService(&opts)
	if err != nil {
		return err
	}
	if !svc.IsEnabled() {
		return fmt.Errorf("updates disabled: %s", svc.DisabledReason())
	}

	out := cmd.OutOrStdout()
	info, err := svc.CheckForUpdate(ctx)
	if updater.IsCode(err, updater.ErrCodeNotFound) {
		fmt.Fprintf(out, "no releases published for %s\n", opts.Repository)
		return nil
	}
	if err != nil {
		return err
	}
	if !info.UpdateAvailable {
		fmt.Fprintf(out, "segpanel %s is up to date\n", info.CurrentVersion)
		return nil
	}
	fmt.Fprintf(out, "update available: %s -> %s\n", info.CurrentVersion, info.LatestVersion)
	if checkOnly {
		return nil
	}

	if err := svc.ApplyUpdate(ctx); err != nil {
		return err
	}
	fmt.Fprintf(out, "updated to %s, restart segpanel to run it\n", info.LatestVersion)
	return nil
}
