package main

import (
	"context"
	goflag "flag"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// rootOptions carries state shared by every subcommand.
type rootOptions struct {
	zap zap.Options
	log logr.Logger
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{zap: zap.Options{Development: true}, log: logr.Discard()}

	cmd := &cobra.Command{
		Use:           "ariadne",
		Short:         "Compute remediation upgrade tiers for internal artifacts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.zap.DestWriter = cmd.ErrOrStderr()
			opts.log = zap.New(zap.UseFlagOptions(&opts.zap))
		},
	}
	bindZapFlags(cmd.PersistentFlags(), &opts.zap)

	cmd.AddCommand(newAnalyzeCommand(opts))
	cmd.AddCommand(newGenerateTreesCommand(opts))
	return cmd
}

// bindZapFlags exposes the controller-runtime zap flags (--zap-log-level and
// friends) on a cobra flag set.
func bindZapFlags(flags *pflag.FlagSet, opts *zap.Options) {
	fs := goflag.NewFlagSet("zap", goflag.ContinueOnError)
	opts.BindFlags(fs)
	flags.AddGoFlagSet(fs)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
