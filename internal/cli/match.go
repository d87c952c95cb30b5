package cli

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/android-password-store/Android-Password-Store-sub001/internal/app"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/formparser"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/model"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/report"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/server"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/trust"
)

func newMatchCommand(o *rootOptions) *cobra.Command {
	var format, action string
	cmd := &cobra.Command{
		Use:   "match [file]",
		Short: "Match a captured view tree",
		Long: `Reads a match request (the JSON body of POST /v1/match) from file, or
from stdin when file is "-" or omitted, and prints the resulting scenario.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			req, err := readMatchRequest(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}
			if action != "" {
				req.Action = action
			}
			act := model.ActionMatch
			if req.Action != "" {
				var ok bool
				if act, ok = model.ParseAutofillAction(req.Action); !ok {
					return fmt.Errorf("unknown action %q", req.Action)
				}
			}

			if req.Package == app.RendererPackage {
				return fmt.Errorf("package %q is reserved", req.Package)
			}

			a, _, err := o.load()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if len(req.Signatures) > 0 {
				certs := make([][]byte, 0, len(req.Signatures))
				for _, s := range req.Signatures {
					der, err := base64.StdEncoding.DecodeString(s)
					if err != nil {
						return fmt.Errorf("signatures: %w", err)
					}
					certs = append(certs, der)
				}
				ctx = trust.WithReportedCertificates(ctx, req.Package, certs)
			}

			res, err := a.Parser.Parse(ctx, formparser.Request{
				Package:        req.Package,
				Windows:        req.Windows,
				Manual:         req.Manual,
				CustomSuffixes: append(append([]string{}, a.Config.Autofill.CustomSuffixes...), req.CustomSuffixes...),
			})
			if err != nil {
				return err
			}
			r := report.New(res, act, req.Credentials)
			if r != nil && path != "-" {
				r.Source = path
			}
			return writeReport(cmd.OutOrStdout(), format, r)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format (text|json)")
	cmd.Flags().StringVar(&action, "action", "", "fill action (match|search|generate|fill_otp_from_sms)")
	return cmd
}

func readMatchRequest(stdin io.Reader, path string) (*server.MatchRequest, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read request: %w", err)
	}
	var req server.MatchRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	return &req, nil
}

func writeReport(w io.Writer, format string, r *report.Report) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(server.MatchResponse{Matched: r != nil, Report: r})
	}
	return report.WriteText(w, r)
}
