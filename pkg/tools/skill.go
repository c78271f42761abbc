package tools

import (
	"context"

	"github.com/invopop/jsonschema"
	"github.com/jingkaihe/skillz/pkg/disclosure"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

// LoadSkillTool returns a skill's full instructions
type LoadSkillTool struct {
	svc *disclosure.Service
}

// LoadSkillInput defines the input parameters for load_skill
type LoadSkillInput struct {
	SkillName string `json:"skill_name" jsonschema:"description=The name of the skill to load"`
}

// NewLoadSkillTool creates a load_skill tool
func NewLoadSkillTool(svc *disclosure.Service) *LoadSkillTool {
	return &LoadSkillTool{svc: svc}
}

// Name returns the tool name
func (t *LoadSkillTool) Name() string {
	return "load_skill"
}

// Description returns the tool description
func (t *LoadSkillTool) Description() string {
	return "Load the complete instructions for a skill. " +
		"Use this when you've decided a skill is relevant based on " +
		"the skill metadata in your system prompt. " +
		"Returns the full SKILL.md content without frontmatter."
}

// GenerateSchema generates the JSON schema for the tool's input
func (t *LoadSkillTool) GenerateSchema() *jsonschema.Schema {
	return GenerateSchema[LoadSkillInput]()
}

// ValidateInput validates the input parameters
func (t *LoadSkillTool) ValidateInput(parameters string) error {
	input, err := decodeInput[LoadSkillInput](parameters)
	if err != nil {
		return err
	}
	if input.SkillName == "" {
		return errors.New("skill_name is required")
	}
	return nil
}

// TracingKVs returns tracing key-value pairs for observability
func (t *LoadSkillTool) TracingKVs(parameters string) ([]attribute.KeyValue, error) {
	input, err := decodeInput[LoadSkillInput](parameters)
	if err != nil {
		return nil, err
	}
	return []attribute.KeyValue{
		attribute.String("skill_name", input.SkillName),
	}, nil
}

// Execute loads the skill body
func (t *LoadSkillTool) Execute(_ context.Context, parameters string) Result {
	input, err := decodeInput[LoadSkillInput](parameters)
	if err != nil {
		return Result{Err: err}
	}

	body, err := t.svc.LoadSkill(input.SkillName)
	if err != nil {
		return Result{Err: err}
	}
	return Result{Content: body}
}
