package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newSuffixCommand(o *rootOptions) *cobra.Command {
	var custom []string
	cmd := &cobra.Command{
		Use:   "suffix DOMAIN...",
		Short: "Print the canonical domain credentials are stored under",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := o.load()
			if err != nil {
				return err
			}
			suffixes := append(append([]string{}, a.Config.Autofill.CustomSuffixes...), custom...)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, d := range args {
				canonical, err := a.Suffixes.Resolve(cmd.Context(), d, suffixes)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\n", d, canonical)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringSliceVar(&custom, "custom", nil, "additional custom suffixes")
	return cmd
}
