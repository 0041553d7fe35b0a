package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-metaform/internal/output"
	"github.com/goliatone/go-metaform/internal/server"
	"github.com/goliatone/go-metaform/pkg/prompt"
)

// ErrBlocked is returned by fill when the form still has field errors after
// every field was asked for.
var ErrBlocked = errors.New("submission blocked by field errors")

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve pages and accept form submissions over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := a.engine()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(engine).ListenAndServe(ctx, a.cfg.Addr)
		},
	}
	cmd.Flags().String("addr", ":8080", "Listen address (env: METAFORM_ADDR)")
	return cmd
}

func newRenderCmd(a *app) *cobra.Command {
	var ref string
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the page for a top-level node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := a.engine()
			if err != nil {
				return err
			}
			page, err := engine.RenderPage(cmd.Context(), location(ref, ""))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, page)
			return err
		},
	}
	cmd.Flags().StringVar(&ref, "ref", "", "Top-level node to render (defaults to --default-ref)")
	return cmd
}

func newFillCmd(a *app) *cobra.Command {
	var (
		ref         string
		formID      string
		maxAttempts int
	)
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Fill a form from the terminal and print its payload as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := a.engine()
			if err != nil {
				return err
			}
			driver := a.driver
			if driver == nil {
				driver = prompt.NewSurveyDriver()
			}
			result, err := engine.Fill(cmd.Context(), driver, location(ref, formID), prompt.WithMaxAttempts(maxAttempts))
			if err != nil {
				return err
			}
			if result.Blocked {
				output.Warn("form has errors", "fields", len(result.Payload))
				return ErrBlocked
			}
			enc := json.NewEncoder(a.out)
			enc.SetIndent("", "  ")
			return enc.Encode(result.Payload)
		},
	}
	cmd.Flags().StringVar(&ref, "ref", "", "Top-level node holding the form (defaults to --default-ref)")
	cmd.Flags().StringVar(&formID, "form", "", "Element id of the form (defaults to the first form)")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", prompt.DefaultMaxAttempts, "How often a rejected field is asked again")
	return cmd
}

func newSchemaCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the OpenAPI description of every form's payload",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			engine, err := a.engine()
			if err != nil {
				return err
			}
			spec, err := engine.Schema()
			if err != nil {
				return err
			}
			switch format {
			case "json":
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(spec)
			case "yaml":
				data, err := yaml.Marshal(spec)
				if err != nil {
					return fmt.Errorf("encode schema: %w", err)
				}
				_, err = a.out.Write(data)
				return err
			default:
				return fmt.Errorf("unknown format %q (want json or yaml)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or yaml")
	return cmd
}

func location(ref, formID string) *url.URL {
	query := url.Values{}
	if ref != "" {
		query.Set("ref", ref)
	}
	if formID != "" {
		query.Set("form", formID)
	}
	return &url.URL{Path: "/", RawQuery: query.Encode()}
}
