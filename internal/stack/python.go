package stack

import (
	"regexp"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

type pythonProfile struct{}

func (pythonProfile) Stack() Stack { return Python }

func (pythonProfile) Language() *sitter.Language { return python.GetLanguage() }

var pythonIdioms = []*regexp.Regexp{
	regexp.MustCompile(`def test_\w+`),
	regexp.MustCompile(`class Test\w+`),
}

func (pythonProfile) TestIdioms() []*regexp.Regexp { return pythonIdioms }

func (pythonProfile) ForbiddenImports() []string {
	return []string{
		"time.sleep",
		"random.random",
		"requests.get",
		"requests.post",
		"urllib.request",
		"socket",
		"http.client",
		"subprocess.run",
		"subprocess",
		"os.system",
	}
}

func (pythonProfile) TestFileGlobs() []string {
	return []string{"test_*.py", "*_test.py"}
}

func (pythonProfile) RunnerArgs(path string) []string {
	return []string{"python", "-m", "pytest", path, "-v", "--tb=short"}
}

func (pythonProfile) PlaceholderTest() string {
	return `import pytest


def test_placeholder():
    """Placeholder test substituted for an unparseable candidate."""
    assert True
`
}

func (pythonProfile) KnownAliases() map[string]string {
	return map[string]string{
		"pd":        "import pandas as pd",
		"np":        "import numpy as np",
		"pytest":    "import pytest",
		"Mock":      "from unittest.mock import Mock",
		"patch":     "from unittest.mock import patch",
		"MagicMock": "from unittest.mock import MagicMock",
	}
}

func (pythonProfile) MockUsage() (string, string) {
	return "patch(", "from unittest.mock import patch"
}

func (pythonProfile) LayoutPrefixes() []string {
	return []string{"src", "app", "code"}
}

func (pythonProfile) CommentPrefix() string { return "#" }
