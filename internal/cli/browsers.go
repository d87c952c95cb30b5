package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type browserOutput struct {
	Package   string `json:"package"`
	Method    string `json:"method"`
	SaveFlags string `json:"save_flags,omitempty"`
	Pinned    bool   `json:"pinned"`
}

func newBrowsersCommand(o *rootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "browsers",
		Short: "List the browsers the trust table knows and whether they are pinned",
		Long: `Unpinned browsers are never trusted: their fields are matched under the
browser's own app identity.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			a, _, err := o.load()
			if err != nil {
				return err
			}

			var out []browserOutput
			for _, pkg := range a.Registry.Packages() {
				info, _ := a.Registry.Known(pkg)
				out = append(out, browserOutput{
					Package:   pkg,
					Method:    info.Method.String(),
					SaveFlags: info.SaveFlags.String(),
					Pinned:    a.Registry.Pinned(pkg),
				})
			}

			w := cmd.OutOrStdout()
			if format == formatJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PACKAGE\tMETHOD\tPINNED\tSAVE FLAGS")
			for _, b := range out {
				fmt.Fprintf(tw, "%s\t%s\t%v\t%s\n", b.Package, b.Method, b.Pinned, b.SaveFlags)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format (text|json)")
	return cmd
}
