// Package policy implements the rule engine that scans one candidate file for
// flaky patterns, unsafe imports, and structural defects. Checking is a pure
// function of the candidate text and its parse tree: the same input always
// yields the same ordered violation list, and a broken rule degrades into a
// synthetic violation instead of taking the other rules down with it.
package policy

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/sevigo/testward/internal/core"
	"github.com/sevigo/testward/internal/parser"
	"github.com/sevigo/testward/internal/stack"
)

// Checker evaluates the configured rule set against candidates.
type Checker struct {
	cfg      *Config
	patterns []*regexp.Regexp
	logger   *slog.Logger
}

// NewChecker compiles the configured forbidden patterns up front so a bad
// expression fails loudly at construction instead of during a run.
func NewChecker(cfg *Config, logger *slog.Logger) (*Checker, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	patterns := make([]*regexp.Regexp, 0, len(cfg.ForbiddenPatterns))
	for _, expr := range cfg.ForbiddenPatterns {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid forbidden pattern %q: %w", expr, err)
		}
		patterns = append(patterns, re)
	}
	return &Checker{cfg: cfg, patterns: patterns, logger: logger}, nil
}

// Check runs every rule against one candidate and returns the ordered
// violation list. It never returns an error and never panics: rule failures
// are contained and reported as violations.
func (c *Checker) Check(ctx context.Context, cand core.Candidate, st stack.Stack) []core.Violation {
	profile, ok := stack.ProfileFor(st)
	if !ok {
		return []core.Violation{{
			FilePath: cand.Path,
			Line:     1,
			Rule:     "unknown_stack",
			Severity: core.SeverityError,
			Message:  fmt.Sprintf("no rule profile for stack %q", st),
		}}
	}

	var violations []core.Violation
	lines := strings.Split(cand.Content, "\n")

	surface, err := parser.Analyze(ctx, profile, []byte(cand.Content))
	if err != nil || !surface.ParseOK {
		line := 1
		msg := "failed to parse file"
		if err != nil {
			msg = fmt.Sprintf("failed to parse file: %v", err)
		} else {
			line = surface.ErrorLine
			msg = fmt.Sprintf("syntax error near line %d", surface.ErrorLine)
		}
		violations = append(violations, core.Violation{
			FilePath: cand.Path,
			Line:     line,
			Rule:     "parse_error",
			Severity: core.SeverityError,
			Message:  msg,
		})
		surface = nil
	}

	// Text rules run regardless of parse outcome; structured rules need a
	// surface. Each rule is isolated so one failure cannot starve the rest.
	violations = append(violations, c.runRule("file_size", cand.Path, func() []core.Violation {
		return c.checkFileSize(cand)
	})...)
	violations = append(violations, c.runRule("forbidden_pattern", cand.Path, func() []core.Violation {
		return c.checkForbiddenPatterns(cand, lines)
	})...)
	violations = append(violations, c.runRule("todo_comment", cand.Path, func() []core.Violation {
		return c.checkUnfinishedMarkers(cand, lines)
	})...)

	if surface != nil {
		violations = append(violations, c.runRule("forbidden_import", cand.Path, func() []core.Violation {
			return c.checkForbiddenImports(cand, profile, surface)
		})...)
		violations = append(violations, c.runRule("test_structure", cand.Path, func() []core.Violation {
			return c.checkTestStructure(cand, surface)
		})...)
		violations = append(violations, c.runRule("test_idiom", cand.Path, func() []core.Violation {
			return c.checkTestIdiom(cand, profile)
		})...)
		violations = append(violations, c.runRule("short_test_name", cand.Path, func() []core.Violation {
			return c.checkTestNames(cand, surface)
		})...)
	}

	return violations
}

// runRule converts a panicking rule into a synthetic violation so rule
// evaluation always returns a list. The synthetic violation carries the
// candidate's path so batch reports can attribute it.
func (c *Checker) runRule(name, filePath string, rule func() []core.Violation) (out []core.Violation) {
	defer func() {
		if r := recover(); r != nil {
			if c.logger != nil {
				c.logger.Error("policy rule panicked", "rule", name, "file", filePath, "panic", r)
			}
			out = []core.Violation{{
				FilePath: filePath,
				Line:     1,
				Rule:     name,
				Severity: core.SeverityError,
				Message:  fmt.Sprintf("rule %q failed to evaluate: %v", name, r),
			}}
		}
	}()
	return rule()
}

func (c *Checker) checkFileSize(cand core.Candidate) []core.Violation {
	if len(cand.Content) <= c.cfg.MaxFileSize {
		return nil
	}
	return []core.Violation{{
		FilePath: cand.Path,
		Line:     1,
		Rule:     "file_size",
		Severity: core.SeverityWarning,
		Message:  fmt.Sprintf("file too large (%d chars, max %d)", len(cand.Content), c.cfg.MaxFileSize),
	}}
}

// checkForbiddenPatterns walks lines in source order so violations within the
// rule stay line-ordered for reproducible reports.
func (c *Checker) checkForbiddenPatterns(cand core.Candidate, lines []string) []core.Violation {
	var out []core.Violation
	for lineNum, line := range lines {
		for _, re := range c.patterns {
			if re.MatchString(line) {
				out = append(out, core.Violation{
					FilePath:    cand.Path,
					Line:        lineNum + 1,
					Rule:        "forbidden_pattern",
					Severity:    core.SeverityError,
					Message:     fmt.Sprintf("forbidden pattern %q found", re.String()),
					CodeSnippet: strings.TrimSpace(line),
				})
			}
		}
	}
	return out
}

var unfinishedMarker = regexp.MustCompile(`(?i)(TODO|FIXME|XXX)`)

func (c *Checker) checkUnfinishedMarkers(cand core.Candidate, lines []string) []core.Violation {
	var out []core.Violation
	for lineNum, line := range lines {
		if unfinishedMarker.MatchString(line) {
			out = append(out, core.Violation{
				FilePath:    cand.Path,
				Line:        lineNum + 1,
				Rule:        "todo_comment",
				Severity:    core.SeverityInfo,
				Message:     "test contains an unfinished-work marker",
				CodeSnippet: strings.TrimSpace(line),
			})
		}
	}
	return out
}

func (c *Checker) checkForbiddenImports(cand core.Candidate, profile stack.Profile, surface *parser.Surface) []core.Violation {
	denied := profile.ForbiddenImports()
	if override, ok := c.cfg.ForbiddenImports[string(profile.Stack())]; ok {
		denied = override
	}

	var out []core.Violation
	for _, imp := range surface.Imports {
		for _, banned := range denied {
			if imp.Module == banned || imp.Qualified() == banned {
				out = append(out, core.Violation{
					FilePath: cand.Path,
					Line:     imp.Line,
					Rule:     "forbidden_import",
					Severity: core.SeverityError,
					Message:  fmt.Sprintf("forbidden import: %s", imp.Qualified()),
				})
				break
			}
		}
	}
	return out
}

func (c *Checker) checkTestStructure(cand core.Candidate, surface *parser.Surface) []core.Violation {
	var out []core.Violation
	for _, test := range surface.Tests {
		if test.Lines() > c.cfg.MaxTestLines {
			out = append(out, core.Violation{
				FilePath: cand.Path,
				Line:     test.Line,
				Rule:     "test_too_long",
				Severity: core.SeverityWarning,
				Message:  fmt.Sprintf("test %q too long (%d lines, max %d)", test.Name, test.Lines(), c.cfg.MaxTestLines),
			})
		}
		if test.Assertions == 0 {
			out = append(out, core.Violation{
				FilePath: cand.Path,
				Line:     test.Line,
				Rule:     "no_assertions",
				Severity: core.SeverityError,
				Message:  fmt.Sprintf("test %q has no assertions", test.Name),
			})
		}
	}
	return out
}

// checkTestIdiom confirms the presence of the ecosystem's canonical
// test-declaration construct somewhere in the file.
func (c *Checker) checkTestIdiom(cand core.Candidate, profile stack.Profile) []core.Violation {
	for _, re := range profile.TestIdioms() {
		if re.MatchString(cand.Content) {
			return nil
		}
	}
	return []core.Violation{{
		FilePath: cand.Path,
		Line:     1,
		Rule:     "no_test_idiom",
		Severity: core.SeverityError,
		Message:  fmt.Sprintf("no recognizable %s test declaration found", profile.Stack()),
	}}
}

func (c *Checker) checkTestNames(cand core.Candidate, surface *parser.Surface) []core.Violation {
	var out []core.Violation
	for _, test := range surface.Tests {
		if len(test.Name) < c.cfg.MinTestNameLen {
			out = append(out, core.Violation{
				FilePath: cand.Path,
				Line:     test.Line,
				Rule:     "short_test_name",
				Severity: core.SeverityInfo,
				Message:  fmt.Sprintf("test name %q should be more descriptive", test.Name),
			})
		}
	}
	return out
}
