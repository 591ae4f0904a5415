package main

import (
	"github.com/spf13/cobra"

	"record-mapper/internal/metadata"
)

func newInspectCmd(a *app) *cobra.Command {
	var (
		src    sourceFlags
		format string
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the resolved metadata of a class",
		Long: `Print the resolved metadata of a class, every subset unless --subset is
given. Resolved metadata is written to the cache when one is configured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.provider(&src)
			if err != nil {
				return err
			}

			class := metadata.ParseClassID(src.class)

			subsets, err := p.Subsets(class)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("subset") {
				md, err := p.Metadata(class, src.subset)
				if err != nil {
					return err
				}

				subsets = map[string]*metadata.ClassMetadata{src.subset: md}
			}

			blob, err := metadata.Encode(subsets)
			if err != nil {
				return err
			}

			return write(cmd.OutOrStdout(), format, blob.Any())
		},
	}

	src.register(cmd)
	cmd.Flags().StringVarP(&format, "output", "o", formatYAML, "output format: yaml or json")

	return cmd
}
