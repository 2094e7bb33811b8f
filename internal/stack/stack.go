// Package stack models the closed set of supported test ecosystems. All
// stack-conditional behavior in the pipeline goes through a Profile selected
// from the dispatch table here, never through scattered string comparisons.
package stack

import (
	"fmt"
	"path/filepath"
	"regexp"

	sitter "github.com/smacker/go-tree-sitter"
)

// Stack is a tagged ecosystem variant.
type Stack string

const (
	Python Stack = "python"
	Node   Stack = "node"
	Java   Stack = "java"
)

// Parse validates a stack tag supplied by a caller or a detection
// collaborator.
func Parse(s string) (Stack, error) {
	switch Stack(s) {
	case Python, Node, Java:
		return Stack(s), nil
	}
	return "", fmt.Errorf("unknown stack %q (supported: python, node, java)", s)
}

// FromPath guesses the stack from a file extension. It returns false for
// extensions outside the supported set; callers fall back to the batch hint.
func FromPath(path string) (Stack, bool) {
	switch filepath.Ext(path) {
	case ".py":
		return Python, true
	case ".js", ".ts", ".mjs":
		return Node, true
	case ".java":
		return Java, true
	}
	return "", false
}

// Profile is the per-ecosystem behavior bundle: how to parse, what a test
// declaration looks like, which imports are banned outright, and how to run
// the native test runner. One implementation exists per Stack variant.
type Profile interface {
	Stack() Stack

	// Language returns the tree-sitter grammar used for syntax checks and
	// parse-tree rules.
	Language() *sitter.Language

	// TestIdioms returns patterns recognizing the ecosystem's canonical
	// test-declaration construct. A candidate matching none of them has no
	// tests at all.
	TestIdioms() []*regexp.Regexp

	// ForbiddenImports is the default deny-list of imported modules/symbols.
	ForbiddenImports() []string

	// TestFileGlobs lists filename patterns used by directory scans.
	TestFileGlobs() []string

	// RunnerArgs builds the native test-runner invocation for one file.
	// A nil result means no runner is wired for this ecosystem and the
	// execution check degrades.
	RunnerArgs(path string) []string

	// PlaceholderTest is the minimal trivially-true test substituted for
	// unparseable candidates.
	PlaceholderTest() string

	// KnownAliases maps conventional short names to the import line that
	// binds them, used by the undefined-name repair pass.
	KnownAliases() map[string]string

	// MockUsage returns a usage marker and the import line it requires,
	// for the mock-usage repair pass. Empty marker disables the pass.
	MockUsage() (marker, importLine string)

	// LayoutPrefixes lists conventional source-layout prefixes tried when
	// rewriting unresolvable local imports.
	LayoutPrefixes() []string

	// CommentPrefix is the single-line comment leader, used when commenting
	// out unresolvable imports.
	CommentPrefix() string
}

var profiles = map[Stack]Profile{
	Python: pythonProfile{},
	Node:   nodeProfile{},
	Java:   javaProfile{},
}

// ProfileFor looks up the profile for a stack tag.
func ProfileFor(s Stack) (Profile, bool) {
	p, ok := profiles[s]
	return p, ok
}
