package stack

import (
	"regexp"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

type javaProfile struct{}

func (javaProfile) Stack() Stack { return Java }

func (javaProfile) Language() *sitter.Language { return java.GetLanguage() }

var javaIdioms = []*regexp.Regexp{
	regexp.MustCompile(`@Test`),
	regexp.MustCompile(`public.*test\w+`),
}

func (javaProfile) TestIdioms() []*regexp.Regexp { return javaIdioms }

func (javaProfile) ForbiddenImports() []string {
	return []string{
		"java.net.Socket",
		"java.net.http.HttpClient",
		"java.lang.Runtime",
		"java.lang.ProcessBuilder",
	}
}

func (javaProfile) TestFileGlobs() []string {
	return []string{"*Test.java", "*Tests.java"}
}

// RunnerArgs returns nil: no standalone single-file runner exists for JVM
// tests, so the execution check degrades to a neutral result.
func (javaProfile) RunnerArgs(string) []string { return nil }

func (javaProfile) PlaceholderTest() string {
	return `import org.junit.jupiter.api.Test;
import static org.junit.jupiter.api.Assertions.assertTrue;

// Placeholder test substituted for an unparseable candidate.
class PlaceholderTest {
    @Test
    void placeholder() {
        assertTrue(true);
    }
}
`
}

func (javaProfile) KnownAliases() map[string]string { return nil }

func (javaProfile) MockUsage() (string, string) {
	return "Mockito.", "import static org.mockito.Mockito.*;"
}

func (javaProfile) LayoutPrefixes() []string { return nil }

func (javaProfile) CommentPrefix() string { return "//" }
