// Package tools exposes the progressive-disclosure operations as tools with
// fixed JSON input schemas. A tool takes its parameters as a JSON object,
// validates them, and runs inside a tracing span; hosts such as the MCP
// server only need to forward the raw arguments.
package tools

import (
	"context"
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/jingkaihe/skillz/pkg/disclosure"
	"github.com/jingkaihe/skillz/pkg/logger"
	"github.com/jingkaihe/skillz/pkg/skills"
	"github.com/jingkaihe/skillz/pkg/telemetry"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

// Tool is a single operation exposed to an agent
type Tool interface {
	GenerateSchema() *jsonschema.Schema
	Name() string
	Description() string
	ValidateInput(parameters string) error
	Execute(ctx context.Context, parameters string) Result
	TracingKVs(parameters string) ([]attribute.KeyValue, error)
}

// Result is the outcome of a tool execution
type Result struct {
	Content string
	Err     error
}

// IsError returns true if the tool failed
func (r Result) IsError() bool {
	return r.Err != nil
}

// GetError returns the error message, or "" on success
func (r Result) GetError() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// GenerateSchema reflects T into an inline JSON schema
func GenerateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T

	return reflector.Reflect(v)
}

// NewToolset returns the disclosure tools backed by svc, in registration order
func NewToolset(svc *disclosure.Service) []Tool {
	return []Tool{
		NewLoadSkillTool(svc),
		NewReadSkillFileTool(svc),
		NewListSkillFilesTool(svc),
	}
}

// RunTool validates and executes tool inside a "tools.<name>" span
func RunTool(ctx context.Context, tool Tool, parameters string) Result {
	kvs, err := tool.TracingKVs(parameters)
	if err != nil {
		logger.G(ctx).WithError(err).Debug("failed to get tracing kvs")
	}

	var result Result
	_ = telemetry.WithSpan(ctx, "tools."+tool.Name(), func(ctx context.Context) error {
		if err := tool.ValidateInput(parameters); err != nil {
			result = Result{Err: err}
			return err
		}

		result = tool.Execute(ctx, parameters)
		if result.IsError() {
			telemetry.SetAttributes(ctx, attribute.String("error.kind", skills.KindOf(result.Err).String()))
		}
		return result.Err
	}, kvs...)

	return result
}

func decodeInput[T any](parameters string) (T, error) {
	var input T
	if err := json.Unmarshal([]byte(parameters), &input); err != nil {
		return input, errors.Wrap(err, "invalid input")
	}
	return input, nil
}
