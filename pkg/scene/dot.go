package scene

import (
	"fmt"
	"strings"
)

// GenerateDOT converts a scene to Graphviz DOT. Containers become
// clusters; transitions touching a container are clipped to the cluster
// border through an invisible anchor node.
func GenerateDOT(s *Scene, title string) string {
	var sb strings.Builder

	sb.WriteString("digraph HSM {\n")
	sb.WriteString("    compound=true;\n")
	sb.WriteString("    rankdir=LR;\n")
	sb.WriteString("    node [fontname=\"Helvetica\", fontsize=11, shape=box, style=rounded];\n")
	sb.WriteString("    edge [fontname=\"Helvetica\", fontsize=10];\n")
	sb.WriteString("\n")

	if title == "" {
		title = s.Name
	}
	if title != "" {
		sb.WriteString("    labelloc=\"t\";\n")
		sb.WriteString(fmt.Sprintf("    label=\"%s\";\n", escapeDOT(title)))
		sb.WriteString("\n")
	}

	containers := make(map[uint64]bool)
	for _, n := range s.Roots {
		writeNode(&sb, n, 1, containers)
	}
	if len(s.Transitions) > 0 {
		sb.WriteString("\n")
	}

	for _, t := range s.Transitions {
		var attrs []string
		attrs = append(attrs, fmt.Sprintf("label=\"%s\"", escapeDOT(t.Label)))
		if containers[t.Source] {
			attrs = append(attrs, fmt.Sprintf("ltail=%s", clusterName(t.Source)))
		}
		if containers[t.Target] && t.Target != t.Source {
			attrs = append(attrs, fmt.Sprintf("lhead=%s", clusterName(t.Target)))
		}
		sb.WriteString(fmt.Sprintf("    %s -> %s [%s];\n",
			nodeName(t.Source), nodeName(t.Target), strings.Join(attrs, ", ")))
	}

	sb.WriteString("}\n")
	return sb.String()
}

func writeNode(sb *strings.Builder, n Node, depth int, containers map[uint64]bool) {
	indent := strings.Repeat("    ", depth)
	if len(n.Children) == 0 {
		sb.WriteString(fmt.Sprintf("%s%s [label=\"%s\"];\n", indent, nodeName(n.ID), escapeDOT(n.Name)))
		return
	}

	containers[n.ID] = true
	sb.WriteString(fmt.Sprintf("%ssubgraph %s {\n", indent, clusterName(n.ID)))
	sb.WriteString(fmt.Sprintf("%s    label=\"%s\";\n", indent, escapeDOT(n.Name)))
	if n.Kind == KindParallel {
		sb.WriteString(fmt.Sprintf("%s    style=\"rounded,dashed\";\n", indent))
	} else {
		sb.WriteString(fmt.Sprintf("%s    style=rounded;\n", indent))
	}
	sb.WriteString(fmt.Sprintf("%s    %s [shape=point, style=invis, width=0, height=0];\n", indent, nodeName(n.ID)))

	if n.Initial != 0 {
		start := fmt.Sprintf("__start_%d", n.ID)
		sb.WriteString(fmt.Sprintf("%s    %s [shape=point, label=\"\"];\n", indent, start))
		sb.WriteString(fmt.Sprintf("%s    %s -> %s;\n", indent, start, nodeName(n.Initial)))
	}
	for _, c := range n.Children {
		writeNode(sb, c, depth+1, containers)
	}
	sb.WriteString(fmt.Sprintf("%s}\n", indent))
}

func nodeName(id uint64) string { return fmt.Sprintf("n%d", id) }

func clusterName(id uint64) string { return fmt.Sprintf("cluster_%d", id) }

func escapeDOT(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "<", "\\<")
	s = strings.ReplaceAll(s, ">", "\\>")
	return s
}
