package cli

import (
	"github.com/spf13/cobra"
)

func newServeCommand(o *rootOptions) *cobra.Command {
	var addr string
	var watch bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the matching engine over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, loader, err := o.load()
			if err != nil {
				return err
			}
			defer loader.Close()
			if addr != "" {
				a.Config.Server.Addr = addr
			}
			if !watch || o.configPath == "" {
				loader = nil
			}
			return a.Serve(cmd.Context(), loader)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides config")
	cmd.Flags().BoolVar(&watch, "watch", true, "reload custom suffixes when the config file changes")
	return cmd
}
