package view

import (
	"sort"
	"strings"

	"github.com/trialdata/harvester-deploy/pkg/convention/pipeline"

	"github.com/charmbracelet/lipgloss"
	"github.com/golang-module/carbon/v2"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	labelStyle  = lipgloss.NewStyle().Faint(true).Width(14)
	benignStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

// RenderSummary prints the resulting function configuration after a
// successful run.
func RenderSummary(s pipeline.Summary) string {
	var b strings.Builder

	verb := "updated"
	if s.Created {
		verb = "created"
	}

	b.WriteString(titleStyle.Render(s.FunctionName+" "+verb) + "\n")
	row(&b, "arn", s.FunctionArn)
	row(&b, "image", s.ImageUri)
	row(&b, "state", s.State)
	row(&b, "modified", humanize(s.LastModified))
	row(&b, "schedule", s.Expression)
	row(&b, "rule", s.RuleArn)

	keys := make([]string, 0, len(s.Environment))
	for key := range s.Environment {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		row(&b, "env", key+"="+s.Environment[key])
	}

	for _, step := range s.Steps {
		style := okStyle
		if step.Class == pipeline.ClassBenign {
			style = benignStyle
		}
		row(&b, step.Step, style.Render(step.Class.String())+" "+step.Detail)
	}

	return b.String()
}

func row(b *strings.Builder, label, value string) {
	b.WriteString(labelStyle.Render(label) + " " + value + "\n")
}

func humanize(lastModified string) string {
	if lastModified == "" {
		return ""
	}

	parsed := carbon.Parse(lastModified)
	if parsed.Error != nil {
		return lastModified
	}

	return parsed.DiffForHumans()
}
