package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"record-mapper/internal/metadata"
)

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the metadata cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete every cached metadata file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.cache()
			if err != nil {
				return err
			}

			if !c.Enabled() {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "cache is disabled")

				return err
			}

			if err := c.Purge(); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "purged %s\n", c.Root())

			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path CLASS",
		Short: "Print the cache file used for a class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.cache()
			if err != nil {
				return err
			}

			if !c.Enabled() {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "cache is disabled")

				return err
			}

			path, err := c.Path(metadata.ParseClassID(args[0]))
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)

			return err
		},
	})

	return cmd
}
