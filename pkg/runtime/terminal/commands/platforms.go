package commands

import (
	"github.com/de-tools/activity-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/activity-atlas/pkg/services/activity"
	"github.com/de-tools/activity-atlas/pkg/services/fetch"
	"github.com/de-tools/activity-atlas/pkg/services/vendor"
	"github.com/spf13/cobra"
)

func NewPlatformsCmd(vendors vendor.Registry, reporter *export.Reporter) *cobra.Command {
	return &cobra.Command{
		Use:   "platforms",
		Short: "List fitness platforms and whether they can be fetched",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := activity.NewService(vendors, nil, fetch.Settings{})
			return reporter.HandlePlatforms(svc.Platforms())
		},
	}
}
