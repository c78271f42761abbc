package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jingkaihe/skillz/pkg/disclosure"
	"github.com/jingkaihe/skillz/pkg/presenter"
	"github.com/jingkaihe/skillz/pkg/skills"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSkillsDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	write := func(path string, content []byte) {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, content, 0o644))
	}
	write(filepath.Join(root, "pdf", "SKILL.md"),
		[]byte("---\nname: pdf\ndescription: Work with PDF documents\nallowed-tools: bash, file_read\n---\n# PDF\n"))
	write(filepath.Join(root, "pdf", "references", "forms.md"), []byte("forms"))
	write(filepath.Join(root, "pdf", "assets", "logo.png"), []byte{0x89, 'P', 'N', 'G', 0xff})
	write(filepath.Join(root, "xlsx", "SKILL.md"),
		[]byte("---\ndescription: Spreadsheets\n---\nUse openpyxl."))

	return root
}

func newTestCmdService(t *testing.T) *disclosure.Service {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("skills_dir", setupSkillsDir(t))
	viper.Set("skills.max_file_size", int64(1024))

	svc, err := newService(context.Background())
	require.NoError(t, err)
	return svc
}

func TestNewServiceFromViper(t *testing.T) {
	svc := newTestCmdService(t)
	assert.Equal(t, []string{"pdf", "xlsx"}, svc.Registry().Names())

	t.Run("allowlist", func(t *testing.T) {
		viper.Set("skills.allowed", []string{"x*"})
		svc, err := newService(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"xlsx"}, svc.Registry().Names())
	})

	t.Run("missing directory", func(t *testing.T) {
		viper.Set("skills_dir", filepath.Join(t.TempDir(), "missing"))
		_, err := newService(context.Background())
		assert.Error(t, err)
	})
}

func TestListSkillsCmd(t *testing.T) {
	svc := newTestCmdService(t)

	var out bytes.Buffer
	p := presenter.NewWithOptions(&out, &out, presenter.ColorNever)
	listSkillsCmd(p, svc.Registry())

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Contains(t, string(lines[0]), "NAME")
	assert.Contains(t, string(lines[1]), "pdf")
	assert.Contains(t, string(lines[1]), "bash,file_read")
	assert.Contains(t, string(lines[2]), "xlsx")

	t.Run("empty registry", func(t *testing.T) {
		registry, err := skills.Load(t.TempDir())
		require.NoError(t, err)

		var out bytes.Buffer
		listSkillsCmd(presenter.NewWithOptions(&out, &out, presenter.ColorNever), registry)
		assert.Contains(t, out.String(), "No skills found")
	})
}

func TestLoadSkillCmd(t *testing.T) {
	svc := newTestCmdService(t)

	var out bytes.Buffer
	require.NoError(t, loadSkillCmd(&out, svc, "pdf"))
	assert.Equal(t, "# PDF\n", out.String())

	err := loadSkillCmd(&out, svc, "missing")
	assert.True(t, skills.IsNotFound(err))
}

func TestReadSkillFileCmd(t *testing.T) {
	svc := newTestCmdService(t)

	t.Run("text", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, readSkillFileCmd(&out, svc, "pdf", "references/forms.md", NewSkillReadConfig()))
		assert.Equal(t, "forms", out.String())
	})

	t.Run("binary is base64 by default", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, readSkillFileCmd(&out, svc, "pdf", "assets/logo.png", NewSkillReadConfig()))
		assert.Contains(t, out.String(), disclosure.BinaryMarker)
	})

	t.Run("binary decoded", func(t *testing.T) {
		var out bytes.Buffer
		config := &SkillReadConfig{Decode: true}
		require.NoError(t, readSkillFileCmd(&out, svc, "pdf", "assets/logo.png", config))
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G', 0xff}, out.Bytes())
	})

	t.Run("traversal", func(t *testing.T) {
		var out bytes.Buffer
		err := readSkillFileCmd(&out, svc, "pdf", "../xlsx/SKILL.md", NewSkillReadConfig())
		assert.True(t, skills.IsInvalidInput(err))
		assert.Empty(t, out.String())
	})
}

func TestListSkillFilesCmd(t *testing.T) {
	svc := newTestCmdService(t)

	var out bytes.Buffer
	require.NoError(t, listSkillFilesCmd(&out, svc, "pdf", NewSkillFilesConfig()))
	assert.Equal(t, "Files in skill 'pdf':\n  - assets/logo.png\n  - references/forms.md\n", out.String())

	out.Reset()
	require.NoError(t, listSkillFilesCmd(&out, svc, "pdf", &SkillFilesConfig{Subdirectory: "references"}))
	assert.Equal(t, "Files in skill 'pdf' in 'references':\n  - references/forms.md\n", out.String())
}

func TestPrintMetadataCmd(t *testing.T) {
	svc := newTestCmdService(t)

	var out bytes.Buffer
	require.NoError(t, printMetadataCmd(&out, svc.Registry(), NewMetadataConfig()))
	assert.Contains(t, out.String(), "- **pdf**: Work with PDF documents")
	assert.Contains(t, out.String(), "- **xlsx**: Spreadsheets")

	out.Reset()
	require.NoError(t, printMetadataCmd(&out, svc.Registry(), &MetadataConfig{Format: "JSON"}))
	assert.JSONEq(t, `[
		{"name": "pdf", "description": "Work with PDF documents", "allowed_tools": ["bash", "file_read"]},
		{"name": "xlsx", "description": "Spreadsheets", "allowed_tools": []}
	]`, out.String())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
