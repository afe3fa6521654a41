package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bayleafwalker/ariadne/internal/mvntree"
)

func newGenerateTreesCommand(root *rootOptions) *cobra.Command {
	var (
		projects      string
		out           string
		maxDepth      int
		defaultOption string
		special       []string
	)

	cmd := &cobra.Command{
		Use:   "generate-trees",
		Short: "Run mvn dependency:tree over a directory of Maven projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g := &mvntree.Generator{
				OutputDir:      out,
				MaxDepth:       maxDepth,
				DefaultOption:  defaultOption,
				SpecialOptions: mvntree.ParseSpecialOptions(special),
				Runner:         mvntree.ExecRunner{},
				Logger:         root.log.WithName("generate-trees"),
			}
			if err := g.Generate(commandContext(cmd), projects); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "dependency trees written to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&projects, "projects", "", "Directory containing Maven projects")
	cmd.Flags().StringVar(&out, "out", "trees", "Directory receiving the tree files")
	cmd.Flags().IntVar(&maxDepth, "max-depth", mvntree.DefaultMaxDepth, "How many directory levels to search for POM files")
	cmd.Flags().StringVar(&defaultOption, "default-option", "", "Extra Maven argument for every project")
	cmd.Flags().StringArrayVar(&special, "special-option", nil, "Per-project Maven argument as <project>,<option> (repeatable)")
	_ = cmd.MarkFlagRequired("projects")
	return cmd
}
