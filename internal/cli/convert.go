package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/oneof/internal/codec"
	"github.com/roach88/oneof/internal/docbridge"
)

// ConvertOptions holds flags for the convert command.
type ConvertOptions struct {
	*RootOptions
	To    string // "bson" | "json"
	Out   string // output file; stdout when empty
	Union string // optional catalog union to decode through
}

// ConvertResult describes a conversion in JSON output.
type ConvertResult struct {
	To       string          `json:"to"`
	Bytes    int             `json:"bytes"`
	Output   string          `json:"output,omitempty"`
	Envelope json.RawMessage `json:"envelope,omitempty"`
	Document []byte          `json:"document,omitempty"`
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "convert <file|->",
		Short: "Convert envelopes between JSON and BSON",
		Long: `Convert an envelope between JSON text and a BSON document.

Without --union the conversion is structural: members and scalars are
carried over as-is and no type is resolved. With --union the input is
decoded as that union first, so unresolvable or foreign types are
rejected. Converting to JSON with --union honors the configured mode,
so a transparent-mode config writes the bare payload.

Examples:
  oneof convert --to bson envelope.json --out envelope.bson
  oneof convert --to json envelope.bson
  oneof convert --to bson --union classes envelope.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.To, "to", "", "target encoding (bson|json)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&opts.Union, "union", "", "decode through this union from the catalog")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func runConvert(opts *ConvertOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	data, err := readInput(cmd, path)
	if err != nil {
		_ = formatter.Error(ErrCodeReadFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read input", err)
	}

	var out []byte
	switch opts.To {
	case "bson":
		out, err = convertToBSON(opts, data)
	case "json":
		out, err = convertToJSON(opts, data)
	default:
		_ = formatter.Error(ErrCodeBadFlag, fmt.Sprintf("invalid --to %q: must be bson or json", opts.To), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid --to %q", opts.To))
	}
	if err != nil {
		return formatter.Fail("conversion failed", err)
	}
	formatter.VerboseLog("converted %d bytes to %d bytes of %s", len(data), len(out), opts.To)

	if opts.Out != "" {
		if err := os.WriteFile(opts.Out, out, 0o644); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to write output", err)
		}
		if formatter.Format == "json" {
			return formatter.Success(ConvertResult{To: opts.To, Bytes: len(out), Output: opts.Out})
		}
		fmt.Fprintf(formatter.Writer, "✓ Wrote %d bytes to %s\n", len(out), opts.Out)
		return nil
	}

	if formatter.Format == "json" {
		result := ConvertResult{To: opts.To, Bytes: len(out)}
		if opts.To == "json" {
			result.Envelope = json.RawMessage(out)
		} else {
			result.Document = out
		}
		return formatter.Success(result)
	}

	if _, err := formatter.Writer.Write(out); err != nil {
		return WrapExitError(ExitCommandError, "failed to write output", err)
	}
	if opts.To == "json" {
		fmt.Fprintln(formatter.Writer)
	}
	return nil
}

func convertToBSON(opts *ConvertOptions, data []byte) ([]byte, error) {
	if opts.Union == "" {
		return docbridge.JSONToBSON(data)
	}
	ut, err := opts.unionType(opts.Union)
	if err != nil {
		return nil, err
	}
	bridge := opts.newBridge()
	u, err := bridge.Codec().Deserialize(data, ut)
	if err != nil {
		return nil, err
	}
	return bridge.Marshal(u)
}

func convertToJSON(opts *ConvertOptions, data []byte) ([]byte, error) {
	if opts.Union == "" {
		return docbridge.BSONToJSON(data)
	}
	ut, err := opts.unionType(opts.Union)
	if err != nil {
		return nil, err
	}
	u, err := opts.newBridge().Unmarshal(data, ut)
	if err != nil {
		return nil, err
	}
	return opts.newCodec(opts.codecMode()).Serialize(u)
}

// codecMode is the mode commands write JSON in.
func (o *RootOptions) codecMode() codec.Mode {
	return o.cfg().CodecMode()
}
