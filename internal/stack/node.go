package stack

import (
	"regexp"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

type nodeProfile struct{}

func (nodeProfile) Stack() Stack { return Node }

func (nodeProfile) Language() *sitter.Language { return javascript.GetLanguage() }

var nodeIdioms = []*regexp.Regexp{
	regexp.MustCompile(`describe\(`),
	regexp.MustCompile(`\bit\(`),
	regexp.MustCompile(`\btest\(`),
}

func (nodeProfile) TestIdioms() []*regexp.Regexp { return nodeIdioms }

func (nodeProfile) ForbiddenImports() []string {
	return []string{
		"child_process",
		"node:child_process",
		"net",
		"node:net",
		"dgram",
		"http",
		"https",
		"request",
	}
}

func (nodeProfile) TestFileGlobs() []string {
	return []string{"*.test.js", "*.spec.js", "*.test.ts", "*.spec.ts"}
}

func (nodeProfile) RunnerArgs(path string) []string {
	return []string{"node", "--test", path}
}

func (nodeProfile) PlaceholderTest() string {
	return `const { test } = require('node:test');
const assert = require('node:assert');

test('placeholder', () => {
  // Placeholder test substituted for an unparseable candidate.
  assert.ok(true);
});
`
}

func (nodeProfile) KnownAliases() map[string]string {
	return map[string]string{
		"assert": "const assert = require('node:assert');",
		"sinon":  "const sinon = require('sinon');",
	}
}

func (nodeProfile) MockUsage() (string, string) {
	return "sinon.", "const sinon = require('sinon');"
}

func (nodeProfile) LayoutPrefixes() []string {
	return []string{"src", "lib"}
}

func (nodeProfile) CommentPrefix() string { return "//" }
