package tools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jingkaihe/skillz/pkg/disclosure"
	"github.com/jingkaihe/skillz/pkg/skills"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestService(t *testing.T) *disclosure.Service {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "pdf")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "scripts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "SKILL.md"),
		[]byte("---\nname: pdf\ndescription: Handle PDF files\n---\n# PDF\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scripts", "extract.py"), []byte("print(1)\n"), 0o644))

	registry, err := skills.Load(root)
	require.NoError(t, err)
	return disclosure.New(registry)
}

func TestToolset(t *testing.T) {
	toolset := NewToolset(newTestService(t))

	names := make([]string, 0, len(toolset))
	for _, tool := range toolset {
		names = append(names, tool.Name())
		assert.NotEmpty(t, tool.Description())
		assert.NotNil(t, tool.GenerateSchema())
	}
	assert.Equal(t, []string{"load_skill", "read_skill_file", "list_skill_files"}, names)
}

func TestLoadSkillTool(t *testing.T) {
	tool := NewLoadSkillTool(newTestService(t))

	t.Run("valid input", func(t *testing.T) {
		assert.NoError(t, tool.ValidateInput(`{"skill_name": "pdf"}`))

		result := tool.Execute(context.Background(), `{"skill_name": "pdf"}`)
		require.False(t, result.IsError())
		assert.Equal(t, "# PDF\n", result.Content)
		assert.Empty(t, result.GetError())
	})

	t.Run("missing skill_name", func(t *testing.T) {
		err := tool.ValidateInput(`{}`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "skill_name is required")
	})

	t.Run("invalid JSON", func(t *testing.T) {
		err := tool.ValidateInput(`{invalid`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid input")
	})

	t.Run("unknown skill", func(t *testing.T) {
		result := tool.Execute(context.Background(), `{"skill_name": "unknown"}`)
		require.True(t, result.IsError())
		assert.True(t, skills.IsNotFound(result.Err))
		assert.Contains(t, result.GetError(), "Available skills can be seen in your system prompt")
	})

	t.Run("tracing kvs", func(t *testing.T) {
		kvs, err := tool.TracingKVs(`{"skill_name": "pdf"}`)
		require.NoError(t, err)
		assert.Equal(t, []attribute.KeyValue{attribute.String("skill_name", "pdf")}, kvs)
	})
}

func TestReadSkillFileTool(t *testing.T) {
	tool := NewReadSkillFileTool(newTestService(t))

	assert.Error(t, tool.ValidateInput(`{"skill_name": "pdf"}`))
	assert.Error(t, tool.ValidateInput(`{"file_path": "x"}`))
	assert.NoError(t, tool.ValidateInput(`{"skill_name": "pdf", "file_path": "scripts/extract.py"}`))

	result := tool.Execute(context.Background(), `{"skill_name": "pdf", "file_path": "scripts/extract.py"}`)
	require.False(t, result.IsError())
	assert.Equal(t, "print(1)\n", result.Content)

	result = tool.Execute(context.Background(), `{"skill_name": "pdf", "file_path": "/etc/passwd"}`)
	assert.True(t, skills.IsInvalidInput(result.Err))

	kvs, err := tool.TracingKVs(`{"skill_name": "pdf", "file_path": "a.md"}`)
	require.NoError(t, err)
	assert.Contains(t, kvs, attribute.String("file_path", "a.md"))
}

func TestListSkillFilesTool(t *testing.T) {
	tool := NewListSkillFilesTool(newTestService(t))

	assert.NoError(t, tool.ValidateInput(`{"skill_name": "pdf"}`))

	result := tool.Execute(context.Background(), `{"skill_name": "pdf"}`)
	require.False(t, result.IsError())
	assert.Equal(t, "Files in skill 'pdf':\n  - scripts/extract.py", result.Content)

	result = tool.Execute(context.Background(), `{"skill_name": "pdf", "subdirectory": "references"}`)
	require.False(t, result.IsError())
	assert.Equal(t, "No files found in skill 'pdf' in subdirectory 'references'", result.Content)
}

func TestRunToolRecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	svc := newTestService(t)
	ctx := context.Background()

	result := RunTool(ctx, NewLoadSkillTool(svc), `{"skill_name": "pdf"}`)
	require.False(t, result.IsError())

	result = RunTool(ctx, NewReadSkillFileTool(svc), `{"skill_name": "pdf", "file_path": "../x"}`)
	require.True(t, result.IsError())

	result = RunTool(ctx, NewListSkillFilesTool(svc), `{}`)
	require.True(t, result.IsError())
	assert.Equal(t, "skill_name is required", result.GetError())

	spans := recorder.Ended()
	require.Len(t, spans, 3)

	assert.Equal(t, "tools.load_skill", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.String("skill_name", "pdf"))

	assert.Equal(t, "tools.read_skill_file", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Contains(t, spans[1].Attributes(), attribute.String("error.kind", "invalid_input"))

	assert.Equal(t, "tools.list_skill_files", spans[2].Name())
	assert.Equal(t, codes.Error, spans[2].Status().Code)
}
