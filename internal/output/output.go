// Package output renders finished inventory trees as Markdown, JSON or raw text.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/temirov/inventory/internal/inventory"
	"github.com/temirov/inventory/internal/types"
	"github.com/temirov/inventory/internal/utils"
)

const (
	indentPrefix = ""
	indentSpacer = "  "

	markdownDepthIndicator = "--"
	markdownTitleFormat    = "\n## Directory Report for %s\n"
	markdownRootPathFormat = "( %s )<br/>\n"
	markdownAsOfFormat     = "as of %s<br/>\n"
	markdownTableHeader    = "| name | type |  dirs  |  mods  |  clss  |  fncs  | lines  | chars  |"
	markdownTableAlignment = "| :--- | :--: | -----: | -----: | -----: | -----: | -----: | -----: |"
	markdownTokensHeader   = " tokens |"
	markdownTokensAlign    = " -----: |"
	markdownCellSeparator  = " | "

	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "
	rawNodeFormat       = "%s%s [%s] %s\n"
)

var numberPrinter = message.NewPrinter(language.English)

// ReportMetadata describes the scan a report was generated for.
type ReportMetadata struct {
	// RootPath is the scanned directory as given to the walker.
	RootPath    string
	GeneratedAt time.Time
	// IncludeTokens appends a tokens column.
	IncludeTokens bool
}

// FormatCount renders value with thousands separators.
func FormatCount(value int) string {
	return numberPrinter.Sprintf("%d", value)
}

// RenderMarkdown returns the Markdown inventory report for root.
func RenderMarkdown(root *inventory.Node, metadata ReportMetadata) string {
	var buffer bytes.Buffer

	fmt.Fprintf(&buffer, markdownTitleFormat, root.Name)
	fmt.Fprintf(&buffer, markdownRootPathFormat, metadata.RootPath)
	fmt.Fprintf(&buffer, markdownAsOfFormat, utils.FormatReportHeaderTimestamp(metadata.GeneratedAt))
	buffer.WriteString("\n")

	buffer.WriteString(markdownTableHeader)
	if metadata.IncludeTokens {
		buffer.WriteString(markdownTokensHeader)
	}
	buffer.WriteString("\n")
	buffer.WriteString(markdownTableAlignment)
	if metadata.IncludeTokens {
		buffer.WriteString(markdownTokensAlign)
	}
	buffer.WriteString("\n")

	root.Visit(func(current *inventory.Node, depth int) bool {
		writeMarkdownRow(&buffer, current, depth, metadata.IncludeTokens)
		return true
	})

	return buffer.String()
}

// writeMarkdownRow writes one table row. Non-directory rows render zero directories and modules.
func writeMarkdownRow(writer io.Writer, node *inventory.Node, depth int, includeTokens bool) {
	nameCell := node.Name
	if depth > 0 {
		nameCell = strings.Repeat(markdownDepthIndicator, depth) + " " + node.Name
	}

	directories, modules := 0, 0
	if node.Kind.IsDirectory() {
		directories = node.Statistics.Directories
		modules = node.Statistics.Modules
	}

	cells := []string{
		nameCell,
		string(node.Kind),
		FormatCount(directories),
		FormatCount(modules),
		FormatCount(node.Statistics.Classes),
		FormatCount(node.Statistics.Functions),
		FormatCount(node.Statistics.Lines),
		FormatCount(node.Statistics.Characters),
	}
	if includeTokens {
		cells = append(cells, FormatCount(node.Statistics.Tokens))
	}
	fmt.Fprintf(writer, "| %s |\n", strings.Join(cells, markdownCellSeparator))
}

// RenderJSON marshals the tree with two-space indentation.
func RenderJSON(root *inventory.Node) (string, error) {
	encoded, jsonEncodeError := json.MarshalIndent(root, indentPrefix, indentSpacer)
	if jsonEncodeError != nil {
		return "", fmt.Errorf("encode inventory %s: %w", root.Name, jsonEncodeError)
	}
	return string(encoded), nil
}

// RenderRaw returns an indented plain-text tree with per-node totals.
func RenderRaw(root *inventory.Node) string {
	var buffer bytes.Buffer
	renderRawNode(&buffer, root, "", true, true)
	return buffer.String()
}

func treeNodeLinePrefix(prefix string, isRoot bool, isLast bool) (string, string) {
	if isRoot {
		return "", ""
	}
	connector := treeBranchConnector
	childPrefix := prefix + treeBranchPadding
	if isLast {
		connector = treeLastConnector
		childPrefix = prefix + treeLastPadding
	}
	return prefix + connector, childPrefix
}

func renderRawNode(writer io.Writer, node *inventory.Node, prefix string, isRoot bool, isLast bool) {
	if node == nil {
		return
	}
	linePrefix, childPrefix := treeNodeLinePrefix(prefix, isRoot, isLast)
	fmt.Fprintf(writer, rawNodeFormat, linePrefix, node.Name, node.Kind, rawSummary(node))
	for index, child := range node.Children {
		renderRawNode(writer, child, childPrefix, false, index == len(node.Children)-1)
	}
}

func rawSummary(node *inventory.Node) string {
	statistics := node.Statistics
	parts := make([]string, 0, 7)
	if node.Kind == types.NodeKindDirectory {
		parts = append(parts,
			"dirs="+FormatCount(statistics.Directories),
			"mods="+FormatCount(statistics.Modules),
		)
	}
	parts = append(parts,
		"clss="+FormatCount(statistics.Classes),
		"fncs="+FormatCount(statistics.Functions),
		"lines="+FormatCount(statistics.Lines),
		"chars="+FormatCount(statistics.Characters),
	)
	if statistics.Tokens > 0 {
		parts = append(parts, "tokens="+FormatCount(statistics.Tokens))
	}
	return strings.Join(parts, " ")
}
