package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/oneof/internal/codec"
	"github.com/roach88/oneof/internal/config"
	"github.com/roach88/oneof/internal/docbridge"
	"github.com/roach88/oneof/internal/harness"
	"github.com/roach88/oneof/internal/sample"
	"github.com/roach88/oneof/internal/typereg"
)

// RootOptions holds global flags and the state shared by all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Config is loaded in PersistentPreRunE; commands run after it.
	Config *config.Config

	// Registry names the types the CLI can resolve.
	Registry *typereg.Registry

	// Catalog names the unions commands can target with --union.
	Catalog harness.Catalog
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command with the sample registry and
// union catalog.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWith(sample.NewRegistry(), harness.DefaultCatalog())
}

// NewRootCommandWith creates the root command for an application's own
// registry and union catalog.
func NewRootCommandWith(reg *typereg.Registry, catalog harness.Catalog) *cobra.Command {
	opts := &RootOptions{Registry: reg, Catalog: catalog}

	cmd := &cobra.Command{
		Use:   "oneof",
		Short: "oneof - self-describing tagged union envelopes",
		Long: `Inspect, convert, validate and store {"value","type"} envelopes
for tagged union values.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")

	cmd.AddCommand(NewConvertCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTypesCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewStoreCommand(opts))

	return cmd
}

// setup loads configuration, resolves the output format and installs the
// default logger.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if o.ConfigPath != "" {
		loaded, err := config.Load(o.ConfigPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load config", err)
		}
		cfg = loaded
	}
	o.Config = cfg

	// The flag wins over the config file when given explicitly.
	if f := cmd.Flags().Lookup("format"); f == nil || !f.Changed {
		o.Format = cfg.Output.Format
	}
	if !isValidFormat(o.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", o.Format, ValidFormats)
	}

	level := cfg.SlogLevel()
	if o.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	})))
	return nil
}

// cfg returns the loaded configuration, or defaults when a command runs
// without the root (as in tests).
func (o *RootOptions) cfg() *config.Config {
	if o.Config == nil {
		o.Config = config.Default()
	}
	return o.Config
}

func (o *RootOptions) registry() *typereg.Registry {
	if o.Registry == nil {
		o.Registry = sample.NewRegistry()
	}
	return o.Registry
}

func (o *RootOptions) catalog() harness.Catalog {
	if o.Catalog == nil {
		o.Catalog = harness.DefaultCatalog()
	}
	return o.Catalog
}

// newCodec builds a codec in mode over the CLI registry.
func (o *RootOptions) newCodec(mode codec.Mode) *codec.Codec {
	return codec.New(
		codec.WithMode(mode),
		codec.WithRegistry(o.registry()),
		codec.WithLogger(slog.Default()),
	)
}

// newBridge builds a BSON bridge over an envelope-mode codec.
func (o *RootOptions) newBridge() *docbridge.Bridge {
	return docbridge.New(o.newCodec(codec.ModeEnvelope))
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
