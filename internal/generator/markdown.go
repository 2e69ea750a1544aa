package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"behave/internal/analysis"
	"behave/internal/dataflow"
	"behave/internal/ir"
)

const maxLinearized = 2000

// MarkdownGenerator renders a behavioral model as a standalone Markdown
// report.
type MarkdownGenerator struct {
	mermaid *MermaidGenerator
}

func NewMarkdownGenerator() *MarkdownGenerator {
	return &MarkdownGenerator{mermaid: &MermaidGenerator{}}
}

// Generate returns the report for m.
func (g *MarkdownGenerator) Generate(m *ir.BehavioralModel) string {
	var sb strings.Builder

	title := m.SourceRef
	if title == "" {
		title = m.ID
	}
	fmt.Fprintf(&sb, "# Behavioral Model: %s\n\n", title)

	sb.WriteString("| Field | Value |\n")
	sb.WriteString("| :--- | :--- |\n")
	fmt.Fprintf(&sb, "| ID | `%s` |\n", m.ID)
	fmt.Fprintf(&sb, "| Semantic score | %.4f (%s) |\n", m.QualityScore, m.Rating())
	fmt.Fprintf(&sb, "| Valid | %t |\n", m.Valid())
	if m.ContentHash != "" {
		fmt.Fprintf(&sb, "| Content hash | `%s` |\n", m.ContentHash)
	}
	if !m.CreatedAt.IsZero() {
		fmt.Fprintf(&sb, "| Created | %s |\n", m.CreatedAt.UTC().Format(time.RFC3339))
	}

	sb.WriteString("\n## Behavior\n\n")
	fmt.Fprintf(&sb, "- **Precondition**: %s\n", orDash(m.Annotations.Precondition))
	fmt.Fprintf(&sb, "- **Postcondition**: %s\n", orDash(m.Annotations.Postcondition))
	fmt.Fprintf(&sb, "- **Invariant**: %s\n", orDash(m.Annotations.Invariant))

	sb.WriteString("\n## Score Breakdown\n\n")
	sb.WriteString("| Component | Score |\n")
	sb.WriteString("| :--- | ---: |\n")
	b := m.Breakdown
	fmt.Fprintf(&sb, "| Imports | %.2f |\n", b.Imports)
	fmt.Fprintf(&sb, "| Assignments | %.2f |\n", b.Assignments)
	fmt.Fprintf(&sb, "| Types | %.2f |\n", b.Types)
	fmt.Fprintf(&sb, "| Functions | %.2f |\n", b.Functions)
	fmt.Fprintf(&sb, "| Control flow | %.2f |\n", b.ControlFlow)
	fmt.Fprintf(&sb, "| **Total** | **%.4f** |\n", b.Total)

	sb.WriteString("\n## Data Flow\n\n")
	sb.WriteString(dataFlowMarkdown(m.DataFlow))

	r := analysis.Analyze(m.AST, m.CFG)
	sb.WriteString("\n## Control Flow\n\n")
	fmt.Fprintf(&sb, "%s. Cyclomatic complexity %d.\n\n", r.CFGSummary, r.Complexity)
	if m.CFG != nil {
		sb.WriteString(g.mermaid.GenerateFlowChart(m.CFG))
	}

	if len(m.Warnings) > 0 {
		sb.WriteString("\n## Warnings\n\n")
		for _, w := range m.Warnings {
			fmt.Fprintf(&sb, "- %s\n", w)
		}
	}

	if m.Linearized != "" {
		sb.WriteString("\n## Linearized Tree\n\n")
		fmt.Fprintf(&sb, "```\n%s\n```\n", truncate(m.Linearized, maxLinearized))
	}
	return sb.String()
}

// WriteFile writes the report to path, creating parent directories.
func (g *MarkdownGenerator) WriteFile(m *ir.BehavioralModel, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(g.Generate(m)), 0644)
}

func dataFlowMarkdown(flow *dataflow.Summary) string {
	if flow == nil {
		flow = dataflow.Empty()
	}
	constants := make([]string, 0, len(flow.Constants))
	for _, c := range flow.Constants {
		constants = append(constants, fmt.Sprint(c))
	}

	var sb strings.Builder
	rows := []struct {
		label  string
		values []string
	}{
		{"Reads", flow.Reads},
		{"Writes", flow.Writes},
		{"Constants", constants},
		{"Imports", flow.Imports},
		{"Calls", flow.Calls},
		{"Types", flow.Types},
		{"Global refs", flow.GlobalRefs},
	}
	for _, row := range rows {
		fmt.Fprintf(&sb, "- **%s**: %s\n", row.label, codeList(row.values))
	}
	return sb.String()
}

func codeList(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "`" + v + "`"
	}
	return strings.Join(quoted, ", ")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + " ... truncated ..."
}
