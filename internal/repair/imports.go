package repair

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sevigo/testward/internal/core"
	"github.com/sevigo/testward/internal/stack"
)

var (
	pyFromImportRe = regexp.MustCompile(`^(\s*)from\s+([\w.]+)\s+import\s+(.+)$`)
	pyImportRe     = regexp.MustCompile(`^(\s*)import\s+([\w.]+)(\s+as\s+\w+)?\s*$`)
	jsRequireRe    = regexp.MustCompile(`require\(\s*['"]([^'"]+)['"]\s*\)`)
	jsImportRe     = regexp.MustCompile(`^\s*import\s+.*from\s+['"]([^'"]+)['"]`)
)

// baseline modules whose availability is assumed even when the harvested sets
// omit them, mirroring the "common testing imports" the generator relies on.
var baselineModules = map[stack.Stack][]string{
	stack.Python: {"os", "sys", "json", "re", "math", "time", "pathlib", "datetime",
		"typing", "collections", "itertools", "functools", "unittest", "pytest", "mock"},
	stack.Node: {"assert", "fs", "path", "util", "events"},
}

// importPass checks every import against the provided availability sets,
// rewrites local imports through conventional layout prefixes, and comments
// out whatever stays unresolvable so the original line remains auditable.
func (e *Engine) importPass(profile stack.Profile, text string, rctx Context, fixLog []string) (string, []string) {
	avail := rctx.Availability
	if len(avail.Stdlib) == 0 && len(avail.Local) == 0 && len(avail.External) == 0 {
		return text, fixLog
	}

	switch profile.Stack() {
	case stack.Python:
		return e.pythonImportPass(profile, text, avail, fixLog)
	case stack.Node:
		return e.nodeImportPass(profile, text, avail, fixLog)
	default:
		return text, fixLog
	}
}

func (e *Engine) pythonImportPass(profile stack.Profile, text string, avail core.Availability, fixLog []string) (string, []string) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		var module, rest, indent string
		isFrom := false

		if m := pyFromImportRe.FindStringSubmatch(line); m != nil {
			indent, module, rest = m[1], m[2], m[3]
			isFrom = true
		} else if m := pyImportRe.FindStringSubmatch(line); m != nil {
			indent, module = m[1], m[2]
			if m[3] != "" {
				rest = strings.TrimSpace(m[3])
			}
		} else {
			continue
		}

		if moduleAvailable(profile.Stack(), module, avail) {
			continue
		}

		resolved, ok := resolveModule(profile, module, avail)
		if ok {
			var fixed string
			if isFrom {
				fixed = fmt.Sprintf("%sfrom %s import %s", indent, resolved, rest)
			} else if rest != "" {
				fixed = fmt.Sprintf("%simport %s %s", indent, resolved, rest)
			} else {
				fixed = fmt.Sprintf("%simport %s", indent, resolved)
			}
			lines[i] = fixed
			fixLog = append(fixLog, fmt.Sprintf("rewrote import: %s -> %s", strings.TrimSpace(line), strings.TrimSpace(fixed)))
			continue
		}

		lines[i] = commentOutImport(profile, line)
		fixLog = append(fixLog, fmt.Sprintf("commented out unresolvable import: %s", strings.TrimSpace(line)))
	}
	return strings.Join(lines, "\n"), fixLog
}

func (e *Engine) nodeImportPass(profile stack.Profile, text string, avail core.Availability, fixLog []string) (string, []string) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		module := ""
		if m := jsImportRe.FindStringSubmatch(line); m != nil {
			module = m[1]
		} else if m := jsRequireRe.FindStringSubmatch(line); m != nil {
			module = m[1]
		}
		if module == "" || strings.HasPrefix(module, ".") || strings.HasPrefix(module, "node:") {
			continue
		}
		if moduleAvailable(profile.Stack(), module, avail) {
			continue
		}
		lines[i] = commentOutImport(profile, line)
		fixLog = append(fixLog, fmt.Sprintf("commented out unresolvable import: %s", strings.TrimSpace(line)))
	}
	return strings.Join(lines, "\n"), fixLog
}

// moduleAvailable checks the harvested sets and the baseline by the module's
// root segment, so "unittest.mock" resolves through "unittest".
func moduleAvailable(st stack.Stack, module string, avail core.Availability) bool {
	root := module
	if idx := strings.IndexByte(module, '.'); idx > 0 {
		root = module[:idx]
	}
	if avail.Has(module) || avail.Has(root) {
		return true
	}
	for _, m := range baselineModules[st] {
		if m == root {
			return true
		}
	}
	return false
}

// resolveModule searches the local set directly and then through the
// conventional layout prefixes, returning the first path that resolves.
func resolveModule(profile stack.Profile, module string, avail core.Availability) (string, bool) {
	if resolved, ok := avail.ResolveLocal(module); ok {
		return resolved, true
	}
	for _, prefix := range profile.LayoutPrefixes() {
		candidate := prefix + "." + module
		if avail.Has(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func commentOutImport(profile stack.Profile, line string) string {
	cp := profile.CommentPrefix()
	return cp + " " + strings.TrimRight(line, " \t") + "  " + cp + " unresolved import, kept for audit"
}
