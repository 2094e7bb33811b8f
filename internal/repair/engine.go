// Package repair implements the multi-pass auto-fixer for LLM-generated test
// candidates. Passes run in a fixed order, each consuming the previous pass's
// output, and the engine guarantees two things: the returned text parses, and
// the fix log enumerates every transformation in application order. It never
// returns an error; an internal failure stops further fixing and logs a
// catch-all entry.
package repair

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/sevigo/testward/internal/core"
	"github.com/sevigo/testward/internal/parser"
	"github.com/sevigo/testward/internal/stack"
)

// Context carries the repair-relevant slice of the candidate's surroundings.
type Context struct {
	Stack        stack.Stack
	TargetPath   string
	Availability core.Availability
}

// Engine applies the ordered repair pipeline.
type Engine struct {
	logger *slog.Logger
}

func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{logger: logger}
}

// Repair runs all passes over text and returns the repaired text plus the fix
// log. The pass order is a contract: syntax, imports, undefined names, mock
// usage, structure, final validation. Reordering changes outcomes.
func (e *Engine) Repair(ctx context.Context, text string, rctx Context) (repaired string, fixLog []string) {
	profile, ok := stack.ProfileFor(rctx.Stack)
	if !ok {
		return text, []string{fmt.Sprintf("no repair profile for stack %q, candidate left untouched", rctx.Stack)}
	}

	repaired = text
	defer func() {
		if r := recover(); r != nil {
			if e.logger != nil {
				e.logger.Error("repair pass panicked", "stack", rctx.Stack, "panic", r)
			}
			fixLog = append(fixLog, fmt.Sprintf("repair aborted early: %v", r))
		}
	}()

	repaired, fixLog = e.syntaxPass(ctx, profile, repaired, fixLog)
	repaired, fixLog = e.importPass(profile, repaired, rctx, fixLog)
	repaired, fixLog = e.undefinedNamePass(profile, repaired, fixLog)
	repaired, fixLog = e.mockPass(profile, repaired, fixLog)
	repaired, fixLog = e.structurePass(ctx, profile, repaired, fixLog)
	fixLog = e.finalValidationPass(ctx, profile, repaired, fixLog)

	return repaired, fixLog
}

// syntaxPass guarantees downstream passes always receive parseable input.
// A candidate that stays unparseable after indentation normalization is
// discarded and replaced with the ecosystem's placeholder test.
func (e *Engine) syntaxPass(ctx context.Context, profile stack.Profile, text string, fixLog []string) (string, []string) {
	ok, errLine, err := parser.CheckSyntax(ctx, profile, []byte(text))
	if err == nil && ok {
		return text, fixLog
	}

	fixLog = append(fixLog, fmt.Sprintf("syntax error near line %d, attempting indentation normalization", errLine))
	normalized := normalizeIndentation(text)

	ok, _, err = parser.CheckSyntax(ctx, profile, []byte(normalized))
	if err == nil && ok {
		fixLog = append(fixLog, "normalized indentation fixed the syntax error")
		return normalized, fixLog
	}

	placeholder := profile.PlaceholderTest() + commentedOriginal(profile, text)
	fixLog = append(fixLog, "candidate unparseable, substituted placeholder test")
	return placeholder, fixLog
}

// normalizeIndentation converts tabs to four spaces and snaps leading
// whitespace to the nearest four-space step.
func normalizeIndentation(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			out[i] = ""
			continue
		}
		expanded := strings.ReplaceAll(line, "\t", "    ")
		trimmed := strings.TrimLeft(expanded, " ")
		depth := (len(expanded) - len(trimmed)) / 4
		out[i] = strings.Repeat("    ", depth) + trimmed
	}
	return strings.Join(out, "\n")
}

// commentedOriginal preserves the discarded candidate as comments so the
// substitution stays auditable.
func commentedOriginal(profile stack.Profile, original string) string {
	cp := profile.CommentPrefix()
	var b strings.Builder
	b.WriteString("\n" + cp + " original candidate (unparseable):\n")
	for _, line := range strings.Split(strings.TrimRight(original, "\n"), "\n") {
		b.WriteString(cp + " " + line + "\n")
	}
	return b.String()
}

// undefinedNamePass inserts imports for well-known aliases that are used but
// never bound.
func (e *Engine) undefinedNamePass(profile stack.Profile, text string, fixLog []string) (string, []string) {
	aliases := profile.KnownAliases()
	if len(aliases) == 0 {
		return text, fixLog
	}

	var missing []string
	for alias, importLine := range aliases {
		if aliasUsed(text, alias) && !strings.Contains(text, importLine) && !aliasBound(text, alias) {
			missing = append(missing, importLine)
		}
	}
	if len(missing) == 0 {
		return text, fixLog
	}

	sort.Strings(missing)
	text = insertAfterImports(text, missing)
	for _, imp := range missing {
		fixLog = append(fixLog, fmt.Sprintf("added missing import: %s", imp))
	}
	return text, fixLog
}

func aliasUsed(text, alias string) bool {
	return strings.Contains(text, alias+".") || strings.Contains(text, alias+"(")
}

// aliasBound reports whether any line already imports or assigns the alias.
func aliasBound(text, alias string) bool {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "import ") || strings.HasPrefix(trimmed, "from ") ||
			strings.HasPrefix(trimmed, "const ") || strings.HasPrefix(trimmed, "let ") {
			if strings.Contains(trimmed, " "+alias+" ") || strings.HasSuffix(trimmed, " "+alias) ||
				strings.Contains(trimmed, " "+alias+",") || strings.Contains(trimmed, "{ "+alias+" }") {
				return true
			}
		}
	}
	return false
}

// insertAfterImports places new import lines immediately after the existing
// import block, or at the top of the file if none exists.
func insertAfterImports(text string, imports []string) string {
	lines := strings.Split(text, "\n")
	insertAt := 0
scan:
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
		case strings.HasPrefix(trimmed, "import "),
			strings.HasPrefix(trimmed, "from "),
			strings.HasPrefix(trimmed, "#"),
			strings.HasPrefix(trimmed, "//"),
			strings.HasPrefix(trimmed, "const "),
			strings.HasPrefix(trimmed, `"""`), strings.HasPrefix(trimmed, "'''"):
			insertAt = i + 1
		default:
			break scan
		}
	}

	out := make([]string, 0, len(lines)+len(imports))
	out = append(out, lines[:insertAt]...)
	out = append(out, imports...)
	out = append(out, lines[insertAt:]...)
	return strings.Join(out, "\n")
}

// mockPass injects the mocking import when its usage marker appears unbound.
func (e *Engine) mockPass(profile stack.Profile, text string, fixLog []string) (string, []string) {
	marker, importLine := profile.MockUsage()
	if marker == "" || !strings.Contains(text, marker) || strings.Contains(text, importLine) {
		return text, fixLog
	}
	text = importLine + "\n" + text
	fixLog = append(fixLog, fmt.Sprintf("added missing mock import: %s", importLine))
	return text, fixLog
}

// structurePass guarantees the file contains at least one test entry.
func (e *Engine) structurePass(ctx context.Context, profile stack.Profile, text string, fixLog []string) (string, []string) {
	for _, re := range profile.TestIdioms() {
		if re.MatchString(text) {
			return text, fixLog
		}
	}

	switch profile.Stack() {
	case stack.Python:
		var b strings.Builder
		b.WriteString("def test_generated():\n")
		for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
			if strings.TrimSpace(line) == "" {
				b.WriteString("\n")
				continue
			}
			b.WriteString("    " + line + "\n")
		}
		fixLog = append(fixLog, "wrapped body in a test function")
		return b.String(), fixLog
	case stack.Node:
		var b strings.Builder
		b.WriteString("const { test } = require('node:test');\n\n")
		b.WriteString("test('generated', () => {\n")
		for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
			b.WriteString("  " + line + "\n")
		}
		b.WriteString("});\n")
		fixLog = append(fixLog, "wrapped body in a test function")
		return b.String(), fixLog
	default:
		// Wrapping arbitrary statements is not expressible for JVM sources;
		// substitute the placeholder instead.
		text = profile.PlaceholderTest() + commentedOriginal(profile, text)
		fixLog = append(fixLog, "no test entry found, substituted placeholder test")
		return text, fixLog
	}
}

// finalValidationPass re-checks the repaired candidate and records anything
// still wrong as unresolved issues rather than silently dropping it.
func (e *Engine) finalValidationPass(ctx context.Context, profile stack.Profile, text string, fixLog []string) []string {
	surface, err := parser.Analyze(ctx, profile, []byte(text))
	if err != nil {
		return append(fixLog, fmt.Sprintf("unresolved: final parse check failed: %v", err))
	}
	if !surface.ParseOK {
		fixLog = append(fixLog, fmt.Sprintf("unresolved: repaired text still has a syntax error near line %d", surface.ErrorLine))
	}
	if len(surface.Tests) == 0 {
		fixLog = append(fixLog, "unresolved: no test functions found after repair")
	}
	for _, test := range surface.Tests {
		if test.Assertions == 0 {
			fixLog = append(fixLog, fmt.Sprintf("unresolved: test %q has no assertions", test.Name))
		}
	}
	return fixLog
}
