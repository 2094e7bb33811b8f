package review

import (
	"strings"

	"github.com/sevigo/testward/internal/core"
)

// buildChecklist derives the reviewer checklist for one generated file from
// its test kind and the content itself.
func buildChecklist(kind core.TestKind, content string) []string {
	items := []string{
		"Test targets the correct function/class",
		"Test name is descriptive and follows naming conventions",
		"Test is deterministic (no sleep, random, network calls)",
		"Test is properly isolated (no shared state)",
		"Assertions are specific and meaningful",
		"Edge cases are covered (null, empty, boundary values)",
		"Error conditions are tested appropriately",
		"Test follows AAA pattern (Arrange, Act, Assert)",
		"External dependencies are properly mocked",
		"Test imports are correct and minimal",
	}

	switch kind {
	case core.TestKindUnit:
		items = append(items,
			"Test focuses on single unit of functionality",
			"No external system dependencies",
			"Fast execution (under 1 second)",
		)
	case core.TestKindIntegration:
		items = append(items,
			"Tests interaction between components",
			"Uses appropriate test fixtures",
			"Cleans up resources after test",
		)
	case core.TestKindE2E:
		items = append(items,
			"Tests complete user workflow",
			"Uses appropriate test data",
			"Handles async operations correctly",
		)
	}

	if strings.Contains(content, "async") {
		items = append(items, "Async operations are properly awaited")
	}
	if strings.Contains(strings.ToLower(content), "mock") {
		items = append(items, "Mocks are configured correctly")
	}
	if strings.Contains(content, "parametrize") {
		items = append(items, "Parametrized tests cover meaningful scenarios")
	}

	return items
}

// defaultCriteria is the standardized rubric embedded in every artifact.
func defaultCriteria() core.ReviewCriteria {
	return core.ReviewCriteria{
		MustHave: []string{
			"Deterministic behavior",
			"Proper isolation",
			"Clear assertions",
			"Correct imports",
			"Valid syntax",
		},
		ShouldHave: []string{
			"Descriptive test names",
			"Edge case coverage",
			"Error condition testing",
			"Appropriate mocking",
			"AAA pattern structure",
		},
		NiceToHave: []string{
			"Performance considerations",
			"Comprehensive documentation",
			"Parametrized test cases",
			"Custom fixtures",
		},
		AutoReject: []string{
			"Uses sleep() or delays",
			"Makes real network calls",
			"Has syntax errors",
			"Missing assertions",
			"Accesses real filesystem",
			"Uses random() without seed",
		},
	}
}
