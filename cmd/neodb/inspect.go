package main

import (
	"errors"
	"fmt"

	service "github.com/okian/neodb/internal/app"
	"github.com/spf13/cobra"
)

func newInspectCmd(c *cli) *cobra.Command {
	var (
		pdes    string
		name    string
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show one NEO by designation or name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.startService(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Stop()

			out := cmd.OutOrStdout()
			neo, err := svc.Inspect(cmd.Context(), pdes, name)
			if errors.Is(err, service.ErrNotFound) {
				fmt.Fprintln(out, "No matching NEOs exist in the database.")
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(out, neo)
			if verbose {
				for _, ca := range neo.Approaches {
					fmt.Fprintf(out, "- %s\n", ca)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&pdes, "pdes", "p", "", "primary designation of the NEO")
	cmd.Flags().StringVarP(&name, "name", "n", "", "IAU name of the NEO")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "also list the NEO's close approaches")
	cmd.MarkFlagsMutuallyExclusive("pdes", "name")
	cmd.MarkFlagsOneRequired("pdes", "name")
	return cmd
}
