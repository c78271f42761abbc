// Package metadata generates the compact skill digest advertised to callers
// before any skill is loaded, either as markdown for a system prompt or as
// structured records for programmatic use.
package metadata

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jingkaihe/skillz/pkg/skills"
	"github.com/pkg/errors"
)

// NoSkillsAvailable is returned by SummaryText for an empty registry.
const NoSkillsAvailable = "No skills available."

// Format selects the summary rendering
type Format string

const (
	// FormatMarkdown renders the system prompt digest (default)
	FormatMarkdown Format = "markdown"
	// FormatJSON renders the structured records as indented JSON
	FormatJSON Format = "json"
)

// ParseFormat maps a user supplied format to a Format. Anything other than
// "json" selects markdown.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), string(FormatJSON)) {
		return FormatJSON
	}
	return FormatMarkdown
}

// Record is the structured summary of one skill. Field order is fixed so
// the JSON encoding is deterministic.
type Record struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	AllowedTools []string `json:"allowed_tools"`
}

// Generator produces skill summaries from a registry
type Generator struct {
	registry *skills.Registry
}

// NewGenerator creates a Generator reading from registry
func NewGenerator(registry *skills.Registry) *Generator {
	return &Generator{registry: registry}
}

// SummaryText returns a markdown digest with one "- **slug**: description"
// bullet per skill, sorted by slug.
func (g *Generator) SummaryText() string {
	all := g.registry.Skills()
	if len(all) == 0 {
		return NoSkillsAvailable
	}

	lines := []string{
		"## Available Skills",
		"",
		"You have access to specialized skills. To use a skill, call the `load_skill` tool with the skill name.",
		"",
	}
	for _, skill := range all {
		lines = append(lines, fmt.Sprintf("- **%s**: %s", skill.Slug, skill.Description()))
	}

	return strings.Join(lines, "\n")
}

// SummaryStructured returns one Record per skill, sorted by slug.
func (g *Generator) SummaryStructured() []Record {
	all := g.registry.Skills()
	records := make([]Record, 0, len(all))
	for _, skill := range all {
		records = append(records, Record{
			Name:         skill.Slug,
			Description:  skill.Description(),
			AllowedTools: skill.AllowedTools(),
		})
	}
	return records
}

// JSON returns SummaryStructured as two-space indented JSON.
func (g *Generator) JSON() (string, error) {
	data, err := json.MarshalIndent(g.SummaryStructured(), "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal skill metadata")
	}
	return string(data), nil
}

// Render returns the summary in the requested format
func (g *Generator) Render(format Format) (string, error) {
	if format == FormatJSON {
		return g.JSON()
	}
	return g.SummaryText(), nil
}
