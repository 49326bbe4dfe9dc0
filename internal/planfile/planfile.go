// Package planfile loads quantity-plan files for import.
//
// A plan file names one work order and the plans to materialize for it.
// Files may be written as YAML or CUE; both are checked against the same
// embedded CUE schema before they reach the engine.
package planfile

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/opsledger/internal/ops"
)

//go:embed schema.cue
var schemaSource string

// File is a decoded plan file.
type File struct {
	WorkOrder ops.WorkOrder         `json:"work_order" yaml:"work_order"`
	Plans     []ops.PlanDescription `json:"plans" yaml:"plans"`
}

// Error codes reported by LoadError.
const (
	ErrCodeRead     = "P001" // file could not be read
	ErrCodeFormat   = "P002" // unsupported file extension
	ErrCodeSyntax   = "P003" // YAML or CUE syntax error
	ErrCodeSchema   = "P004" // schema violation
	ErrCodeDecode   = "P005" // value could not be decoded
	ErrCodeDupPlan  = "P006" // two plans share an id
	ErrCodeInternal = "P999" // embedded schema failed to compile
)

// LoadError describes a plan file that could not be loaded.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Load reads the plan file at path. The format is chosen by extension:
// .yaml and .yml are YAML, .cue is CUE.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeRead, Message: fmt.Sprintf("reading plan file: %v", err)}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(path, data)
	case ".cue":
		return ParseCUE(path, data)
	default:
		return nil, &LoadError{Code: ErrCodeFormat, Message: fmt.Sprintf("unsupported plan file extension %q", filepath.Ext(path))}
	}
}

// ParseYAML decodes a YAML plan file. Unknown fields are rejected.
func ParseYAML(name string, data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, &LoadError{Code: ErrCodeSyntax, Message: fmt.Sprintf("%s: %v", name, err)}
	}
	if f.Plans == nil {
		f.Plans = []ops.PlanDescription{}
	}

	ctx := cuecontext.New()
	schema, err := fileSchema(ctx)
	if err != nil {
		return nil, err
	}
	v := schema.Unify(ctx.Encode(f))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, schemaError(err)
	}
	return finish(&f)
}

// ParseCUE compiles a CUE plan file, unifies it with the schema, and
// decodes the result.
func ParseCUE(name string, data []byte) (*File, error) {
	ctx := cuecontext.New()
	schema, err := fileSchema(ctx)
	if err != nil {
		return nil, err
	}

	src := ctx.CompileBytes(data, cue.Filename(name))
	if err := src.Err(); err != nil {
		return nil, syntaxError(err)
	}
	v := schema.Unify(src)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, schemaError(err)
	}

	var f File
	if err := v.Decode(&f); err != nil {
		return nil, &LoadError{Code: ErrCodeDecode, Message: fmt.Sprintf("decoding plan file: %v", err)}
	}
	return finish(&f)
}

func fileSchema(ctx *cue.Context) (cue.Value, error) {
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return cue.Value{}, &LoadError{Code: ErrCodeInternal, Message: fmt.Sprintf("compiling schema: %v", err)}
	}
	return schema.LookupPath(cue.ParsePath("#File")), nil
}

// finish fills defaults the schema leaves open and checks cross-plan rules.
func finish(f *File) (*File, error) {
	if f.Plans == nil {
		f.Plans = []ops.PlanDescription{}
	}
	seen := make(map[string]int, len(f.Plans))
	for i := range f.Plans {
		p := &f.Plans[i]
		if p.Ordinal == 0 {
			p.Ordinal = i + 1
		}
		if j, dup := seen[p.ID]; dup {
			return nil, &LoadError{
				Code:    ErrCodeDupPlan,
				Message: fmt.Sprintf("plans[%d] repeats id %q from plans[%d]", i, p.ID, j),
			}
		}
		seen[p.ID] = i
	}
	return f, nil
}

func syntaxError(err error) *LoadError {
	return positioned(ErrCodeSyntax, err)
}

func schemaError(err error) *LoadError {
	return positioned(ErrCodeSchema, err)
}

// positioned converts the first CUE error into a LoadError, keeping its
// source position when CUE reports one.
func positioned(code string, err error) *LoadError {
	var cueErr cueerrors.Error
	if errors.As(err, &cueErr) {
		list := cueerrors.Errors(cueErr)
		if len(list) > 0 {
			first := list[0]
			return &LoadError{
				Code:    code,
				Message: first.Error(),
				Pos:     first.Position(),
			}
		}
	}
	return &LoadError{Code: code, Message: err.Error()}
}
