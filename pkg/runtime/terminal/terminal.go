package terminal

import (
	"context"
	"io"
	"os"

	"github.com/de-tools/activity-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/activity-atlas/pkg/runtime/terminal/export"

	"github.com/de-tools/activity-atlas/pkg/services/vendor"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	vendors  vendor.Registry
	reporter *export.Reporter
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Vendors vendor.Registry
	Output  io.Writer
	// ErrOutput receives logs; defaults to os.Stderr.
	ErrOutput io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.ErrOutput == nil {
		opts.ErrOutput = os.Stderr
	}

	cli := &CLI{
		vendors:  opts.Vendors,
		reporter: export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	cli.rootCmd.SetErr(opts.ErrOutput)
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

// ExecuteContext runs the command line in args under ctx.
func (cli *CLI) ExecuteContext(ctx context.Context, args ...string) error {
	cli.rootCmd.SetArgs(args)
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "activity",
		Short:         "Step activity normalization and analysis",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(commands.NewAnalyzeCmd(cli.vendors, cli.reporter))
	cmd.AddCommand(commands.NewPlatformsCmd(cli.vendors, cli.reporter))
	cmd.AddCommand(commands.NewProfilesCmd(cli.vendors, cli.reporter))

	return cmd
}
