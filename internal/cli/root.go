// Package cli implements the metaform command tree.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-metaform"
	"github.com/goliatone/go-metaform/internal/config"
	"github.com/goliatone/go-metaform/internal/output"
	"github.com/goliatone/go-metaform/pkg/page"
	"github.com/goliatone/go-metaform/pkg/prompt"
)

// Option customises the command tree, mostly for tests.
type Option func(*app)

// WithIO redirects command output.
func WithIO(out, errOut io.Writer) Option {
	return func(a *app) {
		if out != nil {
			a.out = out
		}
		if errOut != nil {
			a.errOut = errOut
		}
	}
}

// WithDriver replaces the terminal driver used by fill.
func WithDriver(driver prompt.Driver) Option {
	return func(a *app) {
		if driver != nil {
			a.driver = driver
		}
	}
}

// app holds the state shared by one command tree.
type app struct {
	out    io.Writer
	errOut io.Writer
	driver prompt.Driver

	configFile string
	loader     *config.Loader
	cfg        *config.Config
}

// NewRootCmd creates the root command.
func NewRootCmd(opts ...Option) *cobra.Command {
	a := &app{
		out:    os.Stdout,
		errOut: os.Stderr,
		loader: config.NewLoader(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	root := &cobra.Command{
		Use:           "metaform",
		Short:         "Render metadata-driven pages and forms",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initialize(cmd)
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Path to a YAML config file")
	flags.String("metadata", "", "Path to the metadata document (env: METAFORM_METADATA)")
	flags.String("title", "metaform", "Page title (env: METAFORM_TITLE)")
	flags.Int("uni-select", 0, "Options above which single choices render as a dropdown (env: METAFORM_UNI_SELECT_THRESHOLD)")
	flags.Int("multi-select", 0, "Options above which multiple choices render as a dropdown (env: METAFORM_MULTI_SELECT_THRESHOLD)")
	flags.String("default-ref", "_", "Top-level node rendered when the location has no ref (env: METAFORM_DEFAULT_REF)")
	flags.String("templates", "", "Directory holding a page.tpl that replaces the built-in page shell (env: METAFORM_TEMPLATES)")
	flags.BoolP("verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newServeCmd(a),
		newRenderCmd(a),
		newFillCmd(a),
		newSchemaCmd(a),
	)
	return root
}

func (a *app) initialize(cmd *cobra.Command) error {
	if err := a.loader.BindFlags(cmd.Flags()); err != nil {
		return err
	}
	cfg, err := a.loader.Load(a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	output.SetupLogging(output.LogConfig{Verbose: cfg.Verbose, Out: a.errOut})
	output.Debug("configuration loaded",
		"metadata", cfg.Metadata,
		"addr", cfg.Addr,
		"uniSelect", cfg.UniSelectThreshold,
		"multiSelect", cfg.MultiSelectThreshold,
		"defaultRef", cfg.DefaultRef,
		"templates", cfg.Templates,
	)
	return nil
}

func (a *app) engine() (*metaform.Engine, error) {
	if err := a.cfg.RequireMetadata(); err != nil {
		return nil, err
	}
	opts := []metaform.Option{
		metaform.WithTitle(a.cfg.Title),
		metaform.WithRenderOptions(a.cfg.RenderOptions()...),
	}
	if pageOpts := a.cfg.PageOptions(); len(pageOpts) > 0 {
		pages, err := page.New(pageOpts...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, metaform.WithPages(pages))
	}
	engine, err := metaform.NewFromFile(a.cfg.Metadata, opts...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", a.cfg.Metadata, err)
	}
	return engine, nil
}
