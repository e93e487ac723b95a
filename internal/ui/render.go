package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gsdkit/reqgraph/internal/layout"
	"github.com/gsdkit/reqgraph/internal/requirement"
	"github.com/gsdkit/reqgraph/internal/store"
	"github.com/gsdkit/reqgraph/internal/validate"
)

// GraphView renders the layered layout as one block per layer, with a
// colored chip per node. Chips wrap to fit width.
func GraphView(snap *requirement.Snapshot, result layout.Result, width int) string {
	if len(result.Nodes) == 0 {
		return Styles.Muted.Render("no requirements")
	}
	if width <= 0 {
		width = defaultWidth
	}

	var b strings.Builder
	currentLayer := -1
	var line string
	flush := func() {
		if line != "" {
			b.WriteString(line)
			b.WriteString("\n")
			line = ""
		}
	}

	for _, node := range result.Nodes {
		if node.Layer != currentLayer {
			flush()
			currentLayer = node.Layer
			b.WriteString(Styles.Muted.Render(fmt.Sprintf("Layer %d", node.Layer)))
			b.WriteString("\n")
		}

		var status requirement.Status
		if req, ok := snap.Get(node.ID); ok {
			status = req.Status
		}
		chip := NodeChip(node.ID, status, node.IsReady, node.IsBlocked)

		switch {
		case line == "":
			line = "  " + chip
		case lipgloss.Width(line)+2+lipgloss.Width(chip) <= width:
			line += "  " + chip
		default:
			flush()
			line = "  " + chip
		}
	}
	flush()

	return strings.TrimRight(b.String(), "\n")
}

// ValidationReport renders a validity banner followed by graph statistics.
func ValidationReport(result validate.Result) string {
	var b strings.Builder

	if result.Valid {
		b.WriteString(Styles.Valid.Render("✓ graph is valid"))
	} else {
		b.WriteString(Styles.Error.Render("✗ " + result.Error))
	}

	if result.Stats != nil {
		s := result.Stats
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%s %d  %s %d  %s %d",
			Styles.Muted.Render("nodes"), s.NodeCount,
			Styles.Muted.Render("edges"), s.EdgeCount,
			Styles.Muted.Render("max depth"), s.MaxDepth))
		if len(s.RootNodes) > 0 {
			b.WriteString("\n" + Styles.Muted.Render("roots: ") + strings.Join(s.RootNodes, ", "))
		}
		if len(s.DanglingRefs) > 0 {
			b.WriteString("\n" + Styles.Warning.Render("dangling refs: "+strings.Join(s.DanglingRefs, ", ")))
		}
	}

	return b.String()
}

// DetailCard renders one requirement and its graph annotations in a
// bordered box.
func DetailCard(req requirement.Requirement, node layout.Node) string {
	var lines []string

	lines = append(lines, Styles.Title.Render(req.Title))
	lines = append(lines, Styles.Muted.Render(req.ID)+"  "+StatusText(req.Status))

	var meta []string
	if req.Category != "" {
		meta = append(meta, "category: "+req.Category)
	}
	if req.Scope != "" {
		meta = append(meta, "scope: "+string(req.Scope))
	}
	if len(meta) > 0 {
		lines = append(lines, Styles.Muted.Render(strings.Join(meta, "  ")))
	}

	switch {
	case node.IsReady:
		lines = append(lines, Styles.Ready.Render("ready to start"))
	case node.IsBlocked:
		lines = append(lines, Styles.Blocked.Render("blocked by: "+strings.Join(node.BlockedBy, ", ")))
	}

	if req.Description != "" {
		lines = append(lines, "", req.Description)
	}
	if len(req.DependsOn) > 0 {
		lines = append(lines, "", Styles.Muted.Render("depends on: ")+strings.Join(req.DependsOn, ", "))
	}
	if len(node.Blocks) > 0 {
		lines = append(lines, Styles.Muted.Render("blocks: ")+strings.Join(node.Blocks, ", "))
	}
	if len(req.AcceptanceCriteria) > 0 {
		lines = append(lines, "", Styles.Bold.Render("Acceptance criteria"))
		for _, c := range req.AcceptanceCriteria {
			lines = append(lines, "  • "+c)
		}
	}

	return Styles.Card.Render(strings.Join(lines, "\n"))
}

// StatsLine renders aggregate counts in one line.
func StatsLine(stats store.Stats) string {
	done := stats.ByStatus[string(requirement.StatusDone)]
	inProgress := stats.ByStatus[string(requirement.StatusInProgress)]

	return fmt.Sprintf("%s %s  %s %s  %s %s  %s %s  %s %s",
		Styles.Bold.Render(fmt.Sprintf("%d", stats.Total)), Styles.Muted.Render("total"),
		Styles.Ready.Render(fmt.Sprintf("%d", stats.Ready)), Styles.Muted.Render("ready"),
		Styles.Blocked.Render(fmt.Sprintf("%d", stats.Blocked)), Styles.Muted.Render("blocked"),
		Styles.InProgress.Render(fmt.Sprintf("%d", inProgress)), Styles.Muted.Render("in progress"),
		Styles.Done.Render(fmt.Sprintf("%d", done)), Styles.Muted.Render("done"),
	)
}
