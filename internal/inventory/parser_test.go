package inventory

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temirov/inventory/internal/types"
)

const nestedFunctionSource = "def outer():\n" +
	"    def inner():\n" +
	"        pass\n" +
	"    return 1\n" +
	"x = 2\n"

func TestParseSourceBlockBoundary(t *testing.T) {
	moduleNode, err := ParseSource("sample.py", "", nestedFunctionSource)
	require.NoError(t, err)

	assert.Equal(t, types.NodeKindModule, moduleNode.Kind)
	assert.Equal(t, "sample.py", moduleNode.Name)
	assert.Equal(t, "sample", moduleNode.RelativePath)
	assert.Equal(t, 5, moduleNode.Statistics.Lines)
	assert.Equal(t, 2, moduleNode.Statistics.Functions)
	assert.Equal(t, 0, moduleNode.Statistics.Classes)

	require.Len(t, moduleNode.Children, 1)
	outerNode := moduleNode.Children[0]
	assert.Equal(t, "outer", outerNode.Name)
	assert.Equal(t, "sample.outer", outerNode.RelativePath)
	assert.Equal(t, types.NodeKindFunction, outerNode.Kind)
	assert.Equal(t, 4, outerNode.Statistics.Lines)
	assert.Equal(t, 1, outerNode.Statistics.Functions)

	require.Len(t, outerNode.Children, 1)
	innerNode := outerNode.Children[0]
	assert.Equal(t, "inner", innerNode.Name)
	assert.Equal(t, "sample.outer.inner", innerNode.RelativePath)
	assert.Equal(t, 2, innerNode.Statistics.Lines)
	assert.Empty(t, innerNode.Children)
}

func TestParseSourceDeepNesting(t *testing.T) {
	source := "class A:\n" +
		"    class B:\n" +
		"        def c(self):\n" +
		"            def d():\n" +
		"                pass\n"

	moduleNode, err := ParseSource("deep.py", "pkg", source)
	require.NoError(t, err)

	assert.Equal(t, 2, moduleNode.Statistics.Classes)
	assert.Equal(t, 2, moduleNode.Statistics.Functions)

	classA := moduleNode.Children[0]
	assert.Equal(t, types.NodeKindClass, classA.Kind)
	assert.Equal(t, 1, classA.Statistics.Classes)
	assert.Equal(t, 2, classA.Statistics.Functions)
	assert.Equal(t, 5, classA.Statistics.Lines)

	classB := classA.Children[0]
	assert.Equal(t, types.NodeKindClass, classB.Kind)
	assert.Equal(t, 0, classB.Statistics.Classes)
	assert.Equal(t, 2, classB.Statistics.Functions)

	functionC := classB.Children[0]
	assert.Equal(t, "pkg.deep.A.B.c", functionC.RelativePath)
	assert.Equal(t, 1, functionC.Statistics.Functions)

	functionD := functionC.Children[0]
	assert.Equal(t, 0, functionD.Statistics.Functions)
	assert.Equal(t, 2, functionD.Statistics.Lines)

	assert.Equal(t, 2, moduleNode.Count(types.NodeKindClass))
	assert.Equal(t, 2, moduleNode.Count(types.NodeKindFunction))
}

func TestParseSourceSiblingDefinitions(t *testing.T) {
	source := "import os\n" +
		"\n" +
		"class Service(Base):\n" +
		"    def start(self):\n" +
		"        pass\n" +
		"\n" +
		"    def stop(self):\n" +
		"        pass\n" +
		"\n" +
		"def main():\n" +
		"    Service().start()\n"

	moduleNode, err := ParseSource("service.py", "", source)
	require.NoError(t, err)

	require.Len(t, moduleNode.Children, 2)
	assert.Equal(t, "Service", moduleNode.Children[0].Name)
	assert.Equal(t, "main", moduleNode.Children[1].Name)
	assert.Equal(t, 1, moduleNode.Statistics.Classes)
	assert.Equal(t, 3, moduleNode.Statistics.Functions)

	serviceNode := moduleNode.Children[0]
	require.Len(t, serviceNode.Children, 2)
	assert.Equal(t, 7, serviceNode.Statistics.Lines)
	assert.Equal(t, 3, serviceNode.Children[0].Statistics.Lines)
	assert.Equal(t, 3, serviceNode.Children[1].Statistics.Lines)
}

func TestParseSourceNonDefinitionsAreIgnored(t *testing.T) {
	source := "x = 2\n" +
		"classes = []\n" +
		"define(1)\n" +
		"return_value = call(a)\n" +
		"\tdef tabbed():\n" +
		"async def fetch():\n"

	moduleNode, err := ParseSource("plain.py", "", source)
	require.NoError(t, err)

	assert.Empty(t, moduleNode.Children)
	assert.Equal(t, 0, moduleNode.Statistics.Classes)
	assert.Equal(t, 0, moduleNode.Statistics.Functions)
	assert.Equal(t, 6, moduleNode.Statistics.Lines)
}

func TestParseSourceCharacters(t *testing.T) {
	testCases := []struct {
		name               string
		source             string
		expectedLines      int
		expectedCharacters int
	}{
		{name: "empty", source: "", expectedLines: 0, expectedCharacters: 0},
		{name: "no trailing newline", source: "x = 1", expectedLines: 1, expectedCharacters: 5},
		{name: "newlines counted", source: "def f():\n    pass\n", expectedLines: 2, expectedCharacters: 18},
		{name: "crlf normalized", source: "def f():\r\n    pass\r\n", expectedLines: 2, expectedCharacters: 18},
		{name: "runes not bytes", source: "s = 'é'\n", expectedLines: 1, expectedCharacters: 8},
		{name: "blank lines", source: "\n\n\n", expectedLines: 3, expectedCharacters: 3},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			source := universalNewlineReplacer.Replace(testCase.source)
			moduleNode, err := ParseSource("chars.py", "", source)
			require.NoError(t, err)
			assert.Equal(t, testCase.expectedLines, moduleNode.Statistics.Lines)
			assert.Equal(t, testCase.expectedCharacters, moduleNode.Statistics.Characters)
		})
	}
}

func TestExtractBlock(t *testing.T) {
	testCases := []struct {
		name             string
		lines            []string
		indentWidth      int
		expectedConsumed int
	}{
		{
			name:             "ends at dedent",
			lines:            []string{"def f():\n", "    a = 1\n", "b = 2\n"},
			indentWidth:      0,
			expectedConsumed: 2,
		},
		{
			name:             "ends at same indentation",
			lines:            []string{"    def f():\n", "        a = 1\n", "    b = 2\n"},
			indentWidth:      4,
			expectedConsumed: 2,
		},
		{
			name:             "blank and whitespace lines do not end the block",
			lines:            []string{"def f():\n", "    a = 1\n", "\n", "  \n", "    b = 2\n"},
			indentWidth:      0,
			expectedConsumed: 5,
		},
		{
			name:             "runs to end of input",
			lines:            []string{"def f():\n", "    pass\n"},
			indentWidth:      0,
			expectedConsumed: 2,
		},
		{
			name:             "header only",
			lines:            []string{"def f(): pass\n"},
			indentWidth:      0,
			expectedConsumed: 1,
		},
		{
			name:             "column zero comment ends the block",
			lines:            []string{"def f():\n", "# note\n", "    pass\n"},
			indentWidth:      0,
			expectedConsumed: 1,
		},
		{
			name:             "tab indented line is not a boundary",
			lines:            []string{"def f():\n", "\tpass\n", "x = 1\n"},
			indentWidth:      0,
			expectedConsumed: 2,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			block := ExtractBlock(testCase.lines, testCase.indentWidth)
			assert.Equal(t, testCase.expectedConsumed, block.Consumed)
			assert.Equal(t, testCase.lines[:testCase.expectedConsumed], block.Content)
		})
	}
}

func TestScanDefinitionsResumesAfterBlock(t *testing.T) {
	lines := SplitLines("def a():\n    def b():\n        pass\ndef c():\n    pass\n")
	moduleNode := &Node{Kind: types.NodeKindModule, RelativePath: "m"}

	require.NoError(t, ScanDefinitions(lines, 0, moduleNode))

	require.Len(t, moduleNode.Children, 2)
	assert.Equal(t, "a", moduleNode.Children[0].Name)
	assert.Equal(t, "c", moduleNode.Children[1].Name)
	assert.Equal(t, 3, moduleNode.Statistics.Functions)
}

func TestScanDefinitionsRejectsUnsupportedKeyword(t *testing.T) {
	lines := SplitLines("async def fetch():\n    pass\n")
	moduleNode := &Node{Kind: types.NodeKindModule, RelativePath: "client"}
	acceptEveryKeyword := func(string) bool { return true }

	err := scanDefinitions(lines, 0, moduleNode, acceptEveryKeyword)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvariantViolation))
	var violationError *InvariantViolationError
	require.True(t, errors.As(err, &violationError))
	assert.Equal(t, "async", violationError.Keyword)
	assert.Equal(t, "client", violationError.RelativePath)
	assert.Empty(t, moduleNode.Children)
}

func TestParseModuleReadsFile(t *testing.T) {
	directory := t.TempDir()
	filePath := filepath.Join(directory, "tool.py")
	require.NoError(t, os.WriteFile(filePath, []byte(nestedFunctionSource), 0o644))

	moduleNode, err := ParseModule(filePath, "scripts")
	require.NoError(t, err)
	assert.Equal(t, "tool.py", moduleNode.Name)
	assert.Equal(t, "scripts.tool", moduleNode.RelativePath)
	assert.Equal(t, 2, moduleNode.Statistics.Functions)
}

func TestParseModuleMissingFile(t *testing.T) {
	_, err := ParseModule(filepath.Join(t.TempDir(), "missing.py"), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFilesystem))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, SplitLines(""))
	assert.Equal(t, []string{"a\n", "b"}, SplitLines("a\nb"))
	assert.Equal(t, []string{"a\n", "\n"}, SplitLines("a\n\n"))
}
