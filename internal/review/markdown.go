package review

import (
	"fmt"
	"strings"

	"github.com/sevigo/testward/internal/core"
)

// renderMarkdown produces the human-readable companion document for an
// artifact. It is regenerated on every state change so the document always
// mirrors the JSON record.
func renderMarkdown(artifact *core.ReviewArtifact) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Test Review: %s\n\n", artifact.ID)
	b.WriteString("## Repository Context\n")
	fmt.Fprintf(&b, "- **Stack**: %s\n", orUnknown(artifact.Context.Stack))
	fmt.Fprintf(&b, "- **Total Files**: %d\n", len(artifact.Items))
	fmt.Fprintf(&b, "- **Generation Method**: %s\n", orUnknown(artifact.Context.GenerationMethod))
	fmt.Fprintf(&b, "- **Created**: %s\n\n", artifact.CreatedAt.Format("2006-01-02T15:04:05Z"))

	fmt.Fprintf(&b, "## Review Status: %s\n\n---\n\n## Review Items\n\n", strings.ToUpper(string(artifact.Status)))

	for i, item := range artifact.Items {
		fmt.Fprintf(&b, "### %d. %s\n\n", i+1, item.FilePath)
		fmt.Fprintf(&b, "**Target**: `%s` (%s test)\n", item.TargetSymbol, item.TestKind)
		fmt.Fprintf(&b, "**Status**: %s\n\n", item.Status)

		b.WriteString("#### Generated Code:\n")
		fmt.Fprintf(&b, "```%s\n%s\n```\n\n", codeFence(artifact.Context.Stack), item.GeneratedContent)

		b.WriteString("#### Review Checklist:\n")
		for _, check := range item.Checklist {
			fmt.Fprintf(&b, "- [ ] %s\n", check)
		}

		notes := item.ReviewerNotes
		if notes == "" {
			notes = "(No notes yet)"
		}
		fmt.Fprintf(&b, "\n#### Reviewer Notes:\n```\n%s\n```\n\n---\n\n", notes)
	}

	b.WriteString("## Review Criteria\n\n### Automatic Reject:\n")
	for _, c := range artifact.Criteria.AutoReject {
		fmt.Fprintf(&b, "- **NO** %s\n", c)
	}
	b.WriteString("\n### Required:\n")
	for _, c := range artifact.Criteria.MustHave {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	b.WriteString("\n### Recommended:\n")
	for _, c := range artifact.Criteria.ShouldHave {
		fmt.Fprintf(&b, "- %s\n", c)
	}

	fmt.Fprintf(&b, `
## Reviewer Instructions

1. Review each test against the checklist items.
2. Mark items as complete by changing [ ] to [x].
3. Add notes in the "Reviewer Notes" sections.
4. Run the approval command when ready:

`+"```bash\ntestward review approve %s --reviewer \"Your Name\"\n```\n", artifact.ID)

	if artifact.Reviewer != "" {
		fmt.Fprintf(&b, "\n**Reviewed by**: %s", artifact.Reviewer)
		if artifact.ReviewedAt != nil {
			fmt.Fprintf(&b, " at %s", artifact.ReviewedAt.Format("2006-01-02T15:04:05Z"))
		}
		b.WriteString("\n")
	}
	if artifact.RejectionReason != "" {
		fmt.Fprintf(&b, "\n**Rejection Reason**: %s\n", artifact.RejectionReason)
	}

	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func codeFence(stack string) string {
	switch stack {
	case "node":
		return "javascript"
	case "java":
		return "java"
	default:
		return "python"
	}
}
