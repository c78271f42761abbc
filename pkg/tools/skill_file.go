package tools

import (
	"context"

	"github.com/invopop/jsonschema"
	"github.com/jingkaihe/skillz/pkg/disclosure"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

// ReadSkillFileTool reads one file from a skill's directory
type ReadSkillFileTool struct {
	svc *disclosure.Service
}

// ReadSkillFileInput defines the input parameters for read_skill_file
type ReadSkillFileInput struct {
	SkillName string `json:"skill_name" jsonschema:"description=The name of the skill"`
	FilePath  string `json:"file_path" jsonschema:"description=Path of the file relative to the skill directory (e.g. references/api_reference.md)"`
}

// NewReadSkillFileTool creates a read_skill_file tool
func NewReadSkillFileTool(svc *disclosure.Service) *ReadSkillFileTool {
	return &ReadSkillFileTool{svc: svc}
}

// Name returns the tool name
func (t *ReadSkillFileTool) Name() string {
	return "read_skill_file"
}

// Description returns the tool description
func (t *ReadSkillFileTool) Description() string {
	return "Read a specific file from a skill's directory. " +
		"Use this when skill instructions reference a file " +
		"(e.g., 'See references/api_reference.md'). " +
		"Provide the skill name and relative file path. " +
		"Binary files are returned base64 encoded after a '" + disclosure.BinaryMarker + "' line."
}

// GenerateSchema generates the JSON schema for the tool's input
func (t *ReadSkillFileTool) GenerateSchema() *jsonschema.Schema {
	return GenerateSchema[ReadSkillFileInput]()
}

// ValidateInput validates the input parameters
func (t *ReadSkillFileTool) ValidateInput(parameters string) error {
	input, err := decodeInput[ReadSkillFileInput](parameters)
	if err != nil {
		return err
	}
	if input.SkillName == "" {
		return errors.New("skill_name is required")
	}
	if input.FilePath == "" {
		return errors.New("file_path is required")
	}
	return nil
}

// TracingKVs returns tracing key-value pairs for observability
func (t *ReadSkillFileTool) TracingKVs(parameters string) ([]attribute.KeyValue, error) {
	input, err := decodeInput[ReadSkillFileInput](parameters)
	if err != nil {
		return nil, err
	}
	return []attribute.KeyValue{
		attribute.String("skill_name", input.SkillName),
		attribute.String("file_path", input.FilePath),
	}, nil
}

// Execute reads the requested file
func (t *ReadSkillFileTool) Execute(_ context.Context, parameters string) Result {
	input, err := decodeInput[ReadSkillFileInput](parameters)
	if err != nil {
		return Result{Err: err}
	}

	content, err := t.svc.ReadSkillFile(input.SkillName, input.FilePath)
	if err != nil {
		return Result{Err: err}
	}
	return Result{Content: content}
}

// ListSkillFilesTool lists the files in a skill's directory
type ListSkillFilesTool struct {
	svc *disclosure.Service
}

// ListSkillFilesInput defines the input parameters for list_skill_files
type ListSkillFilesInput struct {
	SkillName    string `json:"skill_name" jsonschema:"description=The name of the skill"`
	Subdirectory string `json:"subdirectory,omitempty" jsonschema:"description=Optional subdirectory to list (e.g. references or scripts)"`
}

// NewListSkillFilesTool creates a list_skill_files tool
func NewListSkillFilesTool(svc *disclosure.Service) *ListSkillFilesTool {
	return &ListSkillFilesTool{svc: svc}
}

// Name returns the tool name
func (t *ListSkillFilesTool) Name() string {
	return "list_skill_files"
}

// Description returns the tool description
func (t *ListSkillFilesTool) Description() string {
	return "List files available in a skill's directory. " +
		"Use this to discover what reference files, scripts, or resources " +
		"a skill provides. Optionally specify a subdirectory like " +
		"'references' or 'scripts'."
}

// GenerateSchema generates the JSON schema for the tool's input
func (t *ListSkillFilesTool) GenerateSchema() *jsonschema.Schema {
	return GenerateSchema[ListSkillFilesInput]()
}

// ValidateInput validates the input parameters
func (t *ListSkillFilesTool) ValidateInput(parameters string) error {
	input, err := decodeInput[ListSkillFilesInput](parameters)
	if err != nil {
		return err
	}
	if input.SkillName == "" {
		return errors.New("skill_name is required")
	}
	return nil
}

// TracingKVs returns tracing key-value pairs for observability
func (t *ListSkillFilesTool) TracingKVs(parameters string) ([]attribute.KeyValue, error) {
	input, err := decodeInput[ListSkillFilesInput](parameters)
	if err != nil {
		return nil, err
	}
	return []attribute.KeyValue{
		attribute.String("skill_name", input.SkillName),
		attribute.String("subdirectory", input.Subdirectory),
	}, nil
}

// Execute lists the skill's files
func (t *ListSkillFilesTool) Execute(_ context.Context, parameters string) Result {
	input, err := decodeInput[ListSkillFilesInput](parameters)
	if err != nil {
		return Result{Err: err}
	}

	listing, err := t.svc.ListSkillFiles(input.SkillName, input.Subdirectory)
	if err != nil {
		return Result{Err: err}
	}
	return Result{Content: listing}
}
