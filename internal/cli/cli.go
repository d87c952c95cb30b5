// Package cli implements the autofill-inspect command line.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/android-password-store/Android-Password-Store-sub001/internal/app"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/config"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/logging"
)

const (
	formatText = "text"
	formatJSON = "json"
)

// rootOptions are the persistent flags shared by all commands.
type rootOptions struct {
	configPath string
	logLevel   string
	logDev     bool
}

// NewRootCommand returns the autofill-inspect command tree.
func NewRootCommand() *cobra.Command {
	o := &rootOptions{}
	root := &cobra.Command{
		Use:   "autofill-inspect",
		Short: "Inspect how a password manager would autofill a screen or page",
		Long: `autofill-inspect runs the autofill matching engine against view trees
captured from a device, against live web pages, or as an HTTP service.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&o.configPath, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&o.logLevel, "log-level", "", "override log level (debug|info|warn|error)")
	root.PersistentFlags().BoolVar(&o.logDev, "log-dev", false, "human readable log output")

	root.AddCommand(
		newMatchCommand(o),
		newInspectCommand(o),
		newSuffixCommand(o),
		newServeCommand(o),
		newBrowsersCommand(o),
	)
	return root
}

// Execute runs the command line with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

// load reads the configuration and builds the application. Logs go to
// stderr so command output stays parseable.
func (o *rootOptions) load() (*app.Application, *config.Loader, error) {
	loader := config.NewLoader(o.configPath)
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, err
	}
	level := cfg.Log.Level
	if o.logLevel != "" {
		level = o.logLevel
	}
	logger, err := logging.NewLogger(logging.Options{
		Level:       level,
		Component:   "autofill-inspect",
		Development: cfg.Log.Development || o.logDev,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return nil, nil, err
	}
	a, err := app.New(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return a, loader, nil
}

func checkFormat(format string) error {
	switch format {
	case formatText, formatJSON:
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text or json)", format)
	}
}
