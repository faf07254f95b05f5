// Package types defines the constants shared by the inventory CLI packages.
package types

// NodeKind discriminates the four kinds of inventory nodes.
type NodeKind string

const (
	NodeKindDirectory NodeKind = "dir"
	NodeKindModule    NodeKind = "mod"
	NodeKindClass     NodeKind = "cls"
	NodeKindFunction  NodeKind = "fnc"

	CommandScan = "scan"
	CommandInit = "init"

	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatRaw      = "raw"
	FormatNone     = "none"
)

// IsDirectory reports whether the kind carries directory and module counts.
func (kind NodeKind) IsDirectory() bool {
	return kind == NodeKindDirectory
}

// ValidatedPath is an absolute input path that already passed existence checks.
type ValidatedPath struct {
	AbsolutePath string
	IsDir        bool
}
