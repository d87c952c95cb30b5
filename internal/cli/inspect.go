package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/android-password-store/Android-Password-Store-sub001/internal/app"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/fetcher"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/model"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/report"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/webclient"
)

type inspectOptions struct {
	format       string
	backend      string
	concurrency  int
	followFrames bool
	manual       bool
	crawl        int
}

type pageOutput struct {
	URL        string         `json:"url"`
	FinalURL   string         `json:"final_url,omitempty"`
	StatusCode int            `json:"status_code,omitempty"`
	Error      string         `json:"error,omitempty"`
	Matched    bool           `json:"matched"`
	Report     *report.Report `json:"report,omitempty"`
}

func newInspectCommand(o *rootOptions) *cobra.Command {
	opts := &inspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect URL...",
		Short: "Fetch web pages and show how their login forms would be filled",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(opts.format); err != nil {
				return err
			}
			a, _, err := o.load()
			if err != nil {
				return err
			}
			if opts.backend != "" {
				a.Config.WebClient.Client = webclient.Client(opts.backend)
			}
			if opts.concurrency > 0 {
				a.Config.Inspect.Concurrency = opts.concurrency
			}

			wc, err := a.NewWebClient()
			if err != nil {
				return err
			}
			defer wc.Close()

			targets := args
			if opts.crawl > 0 {
				if targets, err = crawl(cmd.Context(), a, wc, opts.crawl, args); err != nil {
					return err
				}
			}

			f, err := a.NewFetcher(wc, opts.followFrames, opts.manual)
			if err != nil {
				return err
			}
			pages, err := f.Fetch(cmd.Context(), targets)
			if err != nil {
				return err
			}
			return writePages(cmd.OutOrStdout(), opts.format, pages)
		},
	}
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatText, "output format (text|json)")
	cmd.Flags().StringVar(&opts.backend, "backend", "", "fetch backend (nethttp|chromedp), overrides config")
	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "j", 0, "pages fetched in parallel, overrides config")
	cmd.Flags().BoolVar(&opts.followFrames, "follow-frames", true, "fetch cross-document iframes")
	cmd.Flags().BoolVar(&opts.manual, "manual", false, "treat as a manually requested fill")
	cmd.Flags().IntVar(&opts.crawl, "crawl", 0, "follow same-site links this many hops from each URL")
	return cmd
}

// crawl expands targets with the same-site pages reachable from them.
func crawl(ctx context.Context, a *app.Application, wc webclient.WebClient, depth int, targets []string) ([]string, error) {
	spider, err := a.NewSpider(wc, depth)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var out []string
	for _, t := range targets {
		found, err := spider.Enumerate(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("crawl %s: %w", t, err)
		}
		for _, p := range found {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func writePages(w io.Writer, format string, pages []fetcher.Page) error {
	failed := 0
	out := make([]pageOutput, 0, len(pages))
	for _, p := range pages {
		po := pageOutput{URL: p.URL, FinalURL: p.FinalURL, StatusCode: p.StatusCode}
		if p.Err != nil {
			po.Error = p.Err.Error()
			failed++
		} else if p.Result != nil {
			po.Matched = true
			po.Report = report.New(p.Result, model.ActionMatch, nil)
			po.Report.Source = p.URL
		}
		out = append(out, po)
	}

	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	} else {
		for i, po := range out {
			if i > 0 {
				fmt.Fprintln(w)
			}
			switch {
			case po.Error != "":
				fmt.Fprintf(w, "source:  %s\nerror:   %s\n", po.URL, po.Error)
			case po.Report == nil:
				fmt.Fprintf(w, "source:  %s\n", po.URL)
				if err := report.WriteText(w, nil); err != nil {
					return err
				}
			default:
				if err := report.WriteText(w, po.Report); err != nil {
					return err
				}
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d pages failed", failed, len(pages))
	}
	return nil
}
