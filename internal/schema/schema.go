// Package schema checks the shape of envelope JSON without a type registry.
//
// The envelope is described in CUE (envelope.cue). Validation answers "is
// this something the codec could attempt to decode": an object with a
// non-null "value" and a non-blank string "type". Whether the identifier
// resolves, or belongs to a particular union, is the codec's business.
package schema

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed envelope.cue
var envelopeCUE string

// Validation error codes (E200-E299).
const (
	ErrCodeSyntax = "E201" // input is not JSON
	ErrCodeShape  = "E202" // input does not match the envelope definition
	ErrCodeSchema = "E203" // embedded schema failed to build
)

const inputFile = "input.json"

// ValidationError describes one envelope violation.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validator holds the compiled envelope definitions.
// A cue.Context is not safe for concurrent use, so calls are serialized.
type Validator struct {
	mu       sync.Mutex
	ctx      *cue.Context
	envelope cue.Value
	strict   cue.Value
}

// New compiles the embedded envelope schema.
func New() (*Validator, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(envelopeCUE, cue.Filename("envelope.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile envelope schema: %w", err)
	}
	return &Validator{
		ctx:      ctx,
		envelope: v.LookupPath(cue.ParsePath("#Envelope")),
		strict:   v.LookupPath(cue.ParsePath("#StrictEnvelope")),
	}, nil
}

// Validate checks data against the envelope definition. In strict mode
// members other than "value" and "type" are rejected.
// Returns all violations found; nil means the shape is valid.
func (v *Validator) Validate(data []byte, strict bool) []ValidationError {
	expr, err := cuejson.Extract(inputFile, data)
	if err != nil {
		return []ValidationError{{Field: "input", Message: err.Error(), Code: ErrCodeSyntax}}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	input := v.ctx.BuildExpr(expr)
	if err := input.Err(); err != nil {
		return []ValidationError{{Field: "input", Message: err.Error(), Code: ErrCodeSyntax}}
	}

	def := v.envelope
	if strict {
		def = v.strict
	}
	if err := def.Unify(input).Validate(cue.Concrete(true)); err != nil {
		return convertErrors(err)
	}
	return nil
}

func convertErrors(err error) []ValidationError {
	var out []ValidationError
	for _, e := range errors.Errors(err) {
		format, args := e.Msg()
		field := strings.Join(e.Path(), ".")
		if field == "" {
			field = "envelope"
		}
		out = append(out, ValidationError{
			Field:   field,
			Message: fmt.Sprintf(format, args...),
			Code:    ErrCodeShape,
			Line:    inputLine(e),
		})
	}
	if len(out) == 0 {
		out = append(out, ValidationError{Field: "envelope", Message: err.Error(), Code: ErrCodeShape})
	}
	return out
}

// inputLine returns the line in the validated input an error points at,
// or 0 when it only points into the schema.
func inputLine(e errors.Error) int {
	for _, pos := range errors.Positions(e) {
		if pos.Filename() == inputFile {
			return pos.Line()
		}
	}
	return 0
}

var (
	defaultOnce      sync.Once
	defaultValidator *Validator
	defaultErr       error
)

// Validate checks data against the lax envelope definition using a shared
// validator and returns the first violation as an error.
func Validate(data []byte) error {
	defaultOnce.Do(func() {
		defaultValidator, defaultErr = New()
	})
	if defaultErr != nil {
		return ValidationError{Field: "schema", Message: defaultErr.Error(), Code: ErrCodeSchema}
	}
	if errs := defaultValidator.Validate(data, false); len(errs) > 0 {
		return errs[0]
	}
	return nil
}
