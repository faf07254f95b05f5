package inventory

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/temirov/inventory/internal/types"
)

const (
	classKeyword    = "class"
	functionKeyword = "def"

	lineTerminator = "\n"

	// moduleScanStartLine is zero because a module has no header line of its own.
	moduleScanStartLine = 0
	// definitionScanStartLine skips the definition's own header.
	definitionScanStartLine = 1
)

// definitionHeaderPattern matches a class or function header: optional leading spaces,
// the keyword, one space and a name terminated by "(" or ":".
var definitionHeaderPattern = regexp.MustCompile(`^(?P<indent> *)(?P<keyword>\w+) (?P<name>[^(:]*)[(:]`)

var (
	headerIndentIndex  = definitionHeaderPattern.SubexpIndex("indent")
	headerKeywordIndex = definitionHeaderPattern.SubexpIndex("keyword")
	headerNameIndex    = definitionHeaderPattern.SubexpIndex("name")
)

var universalNewlineReplacer = strings.NewReplacer("\r\n", lineTerminator, "\r", lineTerminator)

// Block is the contiguous run of lines belonging to one definition.
type Block struct {
	// Content starts with the definition header.
	Content []string
	// Consumed is the number of input lines the block spans.
	Consumed int
}

// ExtractBlock returns the block starting at lines[0], a definition header indented by
// indentWidth spaces. The block ends before the first later line whose first
// non-space character sits at or left of indentWidth. Blank and whitespace-only lines
// never end a block; without a terminating line the block runs to the end of lines.
func ExtractBlock(lines []string, indentWidth int) Block {
	for lineIndex := 1; lineIndex < len(lines); lineIndex++ {
		lineIndentWidth, hasCode := codeIndentWidth(lines[lineIndex])
		if hasCode && lineIndentWidth <= indentWidth {
			return Block{Content: lines[:lineIndex], Consumed: lineIndex}
		}
	}
	return Block{Content: lines, Consumed: len(lines)}
}

// codeIndentWidth returns the number of leading spaces of line and whether a
// non-whitespace character follows them. Lines indented with other whitespace,
// such as tabs, report false.
func codeIndentWidth(line string) (int, bool) {
	trimmedLine := strings.TrimLeft(line, " ")
	firstRune, runeSize := utf8.DecodeRuneInString(trimmedLine)
	if runeSize == 0 || unicode.IsSpace(firstRune) {
		return 0, false
	}
	return len(line) - len(trimmedLine), true
}

// kindForKeyword maps a definition keyword to its node kind.
func kindForKeyword(keyword string) (types.NodeKind, bool) {
	switch keyword {
	case classKeyword:
		return types.NodeKindClass, true
	case functionKeyword:
		return types.NodeKindFunction, true
	default:
		return "", false
	}
}

// isDefinitionKeyword reports whether keyword opens a class or function header.
func isDefinitionKeyword(keyword string) bool {
	_, supported := kindForKeyword(keyword)
	return supported
}

// ScanDefinitions finds the class and function definitions in lines starting at
// startLine, appends one child per immediate definition to node and adds their
// direct and nested counts to node.Statistics. Lines belonging to an extracted
// block are not scanned again at this level.
func ScanDefinitions(lines []string, startLine int, node *Node) error {
	return scanDefinitions(lines, startLine, node, isDefinitionKeyword)
}

// scanDefinitions is ScanDefinitions with a pluggable header filter; headers whose
// keyword passes the filter but has no node kind violate the parser invariant.
func scanDefinitions(lines []string, startLine int, node *Node, acceptsKeyword func(string) bool) error {
	lineIndex := startLine
	for lineIndex < len(lines) {
		headerMatch := definitionHeaderPattern.FindStringSubmatch(lines[lineIndex])
		if headerMatch == nil || !acceptsKeyword(headerMatch[headerKeywordIndex]) {
			lineIndex++
			continue
		}

		keyword := headerMatch[headerKeywordIndex]
		kind, supported := kindForKeyword(keyword)
		if !supported {
			return &InvariantViolationError{Keyword: keyword, RelativePath: node.RelativePath}
		}

		block := ExtractBlock(lines[lineIndex:], len(headerMatch[headerIndentIndex]))
		definitionName := strings.TrimSpace(headerMatch[headerNameIndex])
		definitionNode := &Node{
			Name:         definitionName,
			RelativePath: joinRelativePath(node.RelativePath, definitionName),
			Kind:         kind,
			Statistics: Statistics{
				Lines:      len(block.Content),
				Characters: countCharacters(block.Content),
			},
		}
		if scanError := scanDefinitions(block.Content, definitionScanStartLine, definitionNode, acceptsKeyword); scanError != nil {
			return scanError
		}

		if kind == types.NodeKindClass {
			node.Statistics.Classes++
		} else {
			node.Statistics.Functions++
		}
		node.Statistics.Classes += definitionNode.Statistics.Classes
		node.Statistics.Functions += definitionNode.Statistics.Functions
		node.Children = append(node.Children, definitionNode)

		lineIndex += block.Consumed
	}
	return nil
}

// ParseSource builds the module node for source text. name is the file basename and
// relativePathPrefix the dot-joined path of the containing directory.
func ParseSource(name string, relativePathPrefix string, source string) (*Node, error) {
	lines := SplitLines(source)
	moduleNode := &Node{
		Name:         name,
		RelativePath: joinRelativePath(relativePathPrefix, strings.TrimSuffix(name, filepath.Ext(name))),
		Kind:         types.NodeKindModule,
		Statistics: Statistics{
			Lines:      len(lines),
			Characters: countCharacters(lines),
		},
	}
	if scanError := ScanDefinitions(lines, moduleScanStartLine, moduleNode); scanError != nil {
		return nil, scanError
	}
	return moduleNode, nil
}

// ParseModule reads filePath and builds its module node.
func ParseModule(filePath string, relativePathPrefix string) (*Node, error) {
	moduleNode, _, parseError := parseModuleFile(filePath, relativePathPrefix)
	return moduleNode, parseError
}

// parseModuleFile is ParseModule that also returns the normalised source text.
func parseModuleFile(filePath string, relativePathPrefix string) (*Node, string, error) {
	source, readError := readSource(filePath)
	if readError != nil {
		return nil, "", readError
	}
	moduleNode, parseError := ParseSource(filepath.Base(filePath), relativePathPrefix, source)
	if parseError != nil {
		return nil, "", parseError
	}
	return moduleNode, source, nil
}

// readSource returns the file text with universal newlines applied.
//
// #nosec G304
func readSource(filePath string) (string, error) {
	fileBytes, readError := os.ReadFile(filePath)
	if readError != nil {
		return "", newFilesystemError(operationRead, filePath, readError)
	}
	return universalNewlineReplacer.Replace(string(fileBytes)), nil
}

// SplitLines splits text into lines that keep their terminating newline.
// A trailing line without a newline is kept; empty text has no lines.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, lineTerminator)
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func countCharacters(lines []string) int {
	total := 0
	for _, line := range lines {
		total += utf8.RuneCountInString(line)
	}
	return total
}
