package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/oneof/internal/codec"
	"github.com/roach88/oneof/internal/schema"
	"github.com/roach88/oneof/internal/union"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Strict bool
	Union  string
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                      `json:"valid"`
	Type   string                    `json:"type,omitempty"`
	Errors []schema.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <file|->",
		Short: "Check the shape of envelope JSON",
		Long: `Check that JSON text is a well-formed envelope: an object with a
non-null "value" and a non-blank string "type".

--strict also rejects members other than "value" and "type".
--union additionally decodes the envelope as a union from the catalog,
reporting codec errors such as UNRESOLVABLE_TYPE or NOT_IN_UNION.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "reject extra envelope members")
	cmd.Flags().StringVar(&opts.Union, "union", "", "also decode as this union from the catalog")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	data, err := readInput(cmd, path)
	if err != nil {
		return outputValidateError(formatter, ErrCodeReadFailed, err.Error())
	}

	validator, err := schema.New()
	if err != nil {
		return outputValidateError(formatter, schema.ErrCodeSchema, err.Error())
	}

	errs := validator.Validate(data, opts.Strict)
	formatter.VerboseLog("shape check: %d violation(s)", len(errs))

	var typeID string
	if len(errs) == 0 && opts.Union != "" {
		ut, err := opts.unionType(opts.Union)
		if err != nil {
			return outputValidateError(formatter, ErrCodeBadFlag, err.Error())
		}
		c := opts.newCodec(codec.ModeEnvelope)
		u, err := c.Deserialize(data, ut)
		if err != nil {
			errs = append(errs, schema.ValidationError{
				Field:   codec.FieldType,
				Message: err.Error(),
				Code:    string(codec.CodeOf(err)),
			})
		} else if _, alt, err := union.Current(u); err == nil {
			typeID, _ = c.Registry().NameOf(alt)
		}
	}

	if len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}
	return outputValidateSuccess(formatter, typeID)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, typeID string) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Type: typeID})
	}

	if typeID != "" {
		fmt.Fprintf(formatter.Writer, "✓ Valid envelope (%s)\n", typeID)
		return nil
	}
	fmt.Fprintln(formatter.Writer, "✓ Valid envelope")
	return nil
}

// outputValidateError outputs a command-level error (exit code 2).
func outputValidateError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs envelope violations (exit code 1).
func outputValidationErrors(formatter *OutputFormatter, errs []schema.ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
