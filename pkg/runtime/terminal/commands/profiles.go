package commands

import (
	"fmt"

	"github.com/de-tools/activity-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/activity-atlas/pkg/services/vendor"
	"github.com/spf13/cobra"
)

type ProfilesCmd struct {
	serviceFlags
	vendors  vendor.Registry
	reporter *export.Reporter
}

func NewProfilesCmd(vendors vendor.Registry, reporter *export.Reporter) *cobra.Command {
	pc := &ProfilesCmd{vendors: vendors, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List the profiles of a profiles file",
		Args:  cobra.NoArgs,
		RunE:  pc.run,
	}
	pc.serviceFlags.register(cmd)
	return cmd
}

func (pc *ProfilesCmd) run(cmd *cobra.Command, _ []string) error {
	svc, logger, err := pc.build(pc.vendors, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	profiles, err := svc.Profiles(logger.WithContext(cmd.Context()))
	if err != nil {
		return fmt.Errorf("failed to list profiles: %w", err)
	}
	return pc.reporter.HandleProfiles(profiles)
}
