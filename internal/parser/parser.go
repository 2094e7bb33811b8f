// Package parser wraps tree-sitter and reduces a candidate's parse tree to
// the small surface the rest of the pipeline needs: parse validity, import
// statements, and test-function shape. Trees are closed before returning so
// callers never hold C-backed memory.
package parser

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/sevigo/testward/internal/stack"
)

// Import is one imported module reference.
type Import struct {
	// Module is the dotted or path-style module name as written.
	Module string
	// Symbol is the imported member for from-style imports, empty otherwise.
	Symbol string
	// Alias is the binding name when the import is aliased.
	Alias string
	// Line is the 1-based source line of the import statement.
	Line int
}

// Qualified returns "module.symbol" for from-style imports, else the module.
func (i Import) Qualified() string {
	if i.Symbol == "" {
		return i.Module
	}
	return i.Module + "." + i.Symbol
}

// TestFunc is one recognized test-entry construct.
type TestFunc struct {
	Name       string
	Line       int
	EndLine    int
	Assertions int
}

// Surface is the parse-derived view of one candidate file.
type Surface struct {
	ParseOK         bool
	ErrorLine       int // first syntax-error line, 0 when ParseOK
	Imports         []Import
	Tests           []TestFunc
	TotalAssertions int
}

// Lines returns the number of lines a test function spans.
func (t TestFunc) Lines() int { return t.EndLine - t.Line + 1 }

// Analyze parses src with the profile's grammar and extracts its surface.
// A syntactically broken file still yields a Surface (ParseOK=false) as long
// as tree-sitter produced a tree; only a hard parser failure returns an error.
func Analyze(ctx context.Context, profile stack.Profile, src []byte) (*Surface, error) {
	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(profile.Language())

	tree, err := p.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse: %w", err)
	}
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter returned no tree")
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("tree-sitter returned no root node")
	}

	surface := &Surface{ParseOK: !root.HasError()}
	if !surface.ParseOK {
		surface.ErrorLine = firstErrorLine(root)
	}

	switch profile.Stack() {
	case stack.Python:
		extractPython(root, src, surface)
	case stack.Node:
		extractNode(root, src, surface)
	case stack.Java:
		extractJava(root, src, surface)
	}
	return surface, nil
}

// CheckSyntax reports whether src parses cleanly under the profile's grammar.
func CheckSyntax(ctx context.Context, profile stack.Profile, src []byte) (bool, int, error) {
	surface, err := Analyze(ctx, profile, src)
	if err != nil {
		return false, 0, err
	}
	return surface.ParseOK, surface.ErrorLine, nil
}

// walk visits every node in document order, which keeps extracted imports and
// tests in source line order.
func walk(n *sitter.Node, visit func(*sitter.Node)) {
	if n == nil {
		return
	}
	visit(n)
	for i := 0; i < int(n.ChildCount()); i++ {
		walk(n.Child(i), visit)
	}
}

func firstErrorLine(root *sitter.Node) int {
	line := 0
	walk(root, func(n *sitter.Node) {
		if line != 0 {
			return
		}
		if n.Type() == "ERROR" || n.IsMissing() {
			line = int(n.StartPoint().Row) + 1
		}
	})
	if line == 0 {
		line = 1
	}
	return line
}

func content(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	start, end := n.StartByte(), n.EndByte()
	if int(end) > len(src) || start > end {
		return ""
	}
	return string(src[start:end])
}

func lineOf(n *sitter.Node) int { return int(n.StartPoint().Row) + 1 }

func endLineOf(n *sitter.Node) int { return int(n.EndPoint().Row) + 1 }

func stripQuotes(s string) string {
	return strings.Trim(s, "\"'`")
}
