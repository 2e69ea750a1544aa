package generator

import (
	"fmt"
	"regexp"
	"strings"

	"behave/internal/graph"
)

var mermaidIDPattern = regexp.MustCompile(`[^a-z0-9_]`)

// MermaidGenerator renders control-flow graphs as Mermaid flowcharts.
type MermaidGenerator struct{}

// GenerateFlowChart draws every node and edge of cfg, top-down. Branch edges
// carry their condition, exception edges are dotted and back edges thick.
func (m *MermaidGenerator) GenerateFlowChart(cfg *graph.ControlFlowGraph) string {
	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("graph TD\n")

	if cfg != nil {
		for _, n := range cfg.Nodes {
			fmt.Fprintf(&sb, "    %s\n", mermaidNode(n))
		}
		for _, e := range cfg.Edges {
			fmt.Fprintf(&sb, "    %s\n", mermaidEdge(e))
		}
	}

	sb.WriteString("```\n")
	return sb.String()
}

func mermaidNode(n *graph.Node) string {
	id := sanitizeMermaidID(n.ID)
	label := escapeMermaidLabel(n.Label)
	if label == "" {
		label = string(n.Kind)
	}

	switch n.Kind {
	case graph.NodeEntry, graph.NodeExit:
		return fmt.Sprintf(`%s(["%s"])`, id, label)
	case graph.NodeCondition, graph.NodeLoopHeader:
		return fmt.Sprintf(`%s{"%s"}`, id, label)
	case graph.NodeFunction:
		return fmt.Sprintf(`%s[["%s"]]`, id, label)
	case graph.NodeReturn:
		return fmt.Sprintf(`%s>"%s"]`, id, label)
	default:
		return fmt.Sprintf(`%s["%s"]`, id, label)
	}
}

func mermaidEdge(e graph.Edge) string {
	from, to := sanitizeMermaidID(e.Source), sanitizeMermaidID(e.Target)

	text := escapeMermaidLabel(e.Condition)
	if text == "" && e.Kind != graph.EdgeNormal && e.Kind != "" {
		text = string(e.Kind)
	}

	arrow := "-->"
	switch e.Kind {
	case graph.EdgeException:
		arrow = "-.->"
	case graph.EdgeBack:
		arrow = "==>"
	}

	if text == "" {
		return fmt.Sprintf("%s %s %s", from, arrow, to)
	}
	return fmt.Sprintf("%s %s|%s| %s", from, arrow, text, to)
}

func sanitizeMermaidID(v string) string {
	v = strings.TrimSpace(strings.ToLower(v))
	if v == "" {
		return "node"
	}
	v = mermaidIDPattern.ReplaceAllString(strings.ReplaceAll(v, "-", "_"), "_")
	if v[0] >= '0' && v[0] <= '9' {
		v = "n_" + v
	}
	return v
}

func escapeMermaidLabel(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, `"`, "#quot;")
	s = strings.ReplaceAll(s, "|", "#124;")
	return strings.ReplaceAll(s, "\n", " ")
}
