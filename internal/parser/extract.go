package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// extractPython pulls imports, test functions, and assertion counts from a
// Python parse tree. Test functions start with "test_" at any nesting depth,
// matching how pytest collects them from modules and Test* classes.
func extractPython(root *sitter.Node, src []byte, surface *Surface) {
	walk(root, func(n *sitter.Node) {
		switch n.Type() {
		case "import_statement":
			for i := 0; i < int(n.NamedChildCount()); i++ {
				child := n.NamedChild(i)
				switch child.Type() {
				case "dotted_name":
					surface.Imports = append(surface.Imports, Import{
						Module: content(child, src),
						Line:   lineOf(n),
					})
				case "aliased_import":
					surface.Imports = append(surface.Imports, Import{
						Module: content(child.ChildByFieldName("name"), src),
						Alias:  content(child.ChildByFieldName("alias"), src),
						Line:   lineOf(n),
					})
				}
			}
		case "import_from_statement":
			module := content(n.ChildByFieldName("module_name"), src)
			names := pythonFromImportNames(n, src)
			if len(names) == 0 {
				surface.Imports = append(surface.Imports, Import{Module: module, Line: lineOf(n)})
			}
			for _, name := range names {
				surface.Imports = append(surface.Imports, Import{
					Module: module,
					Symbol: name,
					Line:   lineOf(n),
				})
			}
		case "function_definition":
			name := content(n.ChildByFieldName("name"), src)
			if !strings.HasPrefix(name, "test_") {
				return
			}
			surface.Tests = append(surface.Tests, TestFunc{
				Name:       name,
				Line:       lineOf(n),
				EndLine:    endLineOf(n),
				Assertions: countPythonAssertions(n.ChildByFieldName("body"), src),
			})
		case "assert_statement":
			surface.TotalAssertions++
		case "call":
			if isPythonAssertCall(n, src) {
				surface.TotalAssertions++
			}
		}
	})
}

// pythonFromImportNames collects the imported names of a from-import,
// skipping the module itself.
func pythonFromImportNames(n *sitter.Node, src []byte) []string {
	module := n.ChildByFieldName("module_name")
	var names []string
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if module != nil && child.StartByte() == module.StartByte() {
			continue
		}
		switch child.Type() {
		case "dotted_name", "identifier":
			names = append(names, content(child, src))
		case "aliased_import":
			names = append(names, content(child.ChildByFieldName("name"), src))
		case "wildcard_import":
			names = append(names, "*")
		}
	}
	return names
}

func countPythonAssertions(body *sitter.Node, src []byte) int {
	count := 0
	walk(body, func(n *sitter.Node) {
		switch n.Type() {
		case "assert_statement":
			count++
		case "call":
			if isPythonAssertCall(n, src) {
				count++
			}
		}
	})
	return count
}

// isPythonAssertCall recognizes unittest-style method assertions such as
// self.assertEqual(...) as assertion-like expressions.
func isPythonAssertCall(n *sitter.Node, src []byte) bool {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return false
	}
	switch fn.Type() {
	case "attribute":
		return strings.HasPrefix(content(fn.ChildByFieldName("attribute"), src), "assert")
	case "identifier":
		name := content(fn, src)
		return name != "assert" && strings.HasPrefix(name, "assert")
	}
	return false
}

// extractNode pulls imports, test declarations, and assertion counts from a
// JavaScript/TypeScript parse tree. Both ESM imports and require() calls are
// treated as imports; test()/it() calls are the test-entry constructs.
func extractNode(root *sitter.Node, src []byte, surface *Surface) {
	walk(root, func(n *sitter.Node) {
		switch n.Type() {
		case "import_statement":
			if source := n.ChildByFieldName("source"); source != nil {
				surface.Imports = append(surface.Imports, Import{
					Module: stripQuotes(content(source, src)),
					Line:   lineOf(n),
				})
			}
		case "call_expression":
			fn := n.ChildByFieldName("function")
			if fn == nil {
				return
			}
			name := content(fn, src)
			switch {
			case fn.Type() == "identifier" && name == "require":
				if mod := firstStringArg(n, src); mod != "" {
					surface.Imports = append(surface.Imports, Import{Module: mod, Line: lineOf(n)})
				}
			case fn.Type() == "identifier" && (name == "test" || name == "it"):
				title := firstStringArg(n, src)
				if title == "" {
					title = name
				}
				surface.Tests = append(surface.Tests, TestFunc{
					Name:       title,
					Line:       lineOf(n),
					EndLine:    endLineOf(n),
					Assertions: countNodeAssertions(n, src),
				})
			case isNodeAssertion(fn, name):
				surface.TotalAssertions++
			}
		}
	})
}

func isNodeAssertion(fn *sitter.Node, name string) bool {
	if fn.Type() == "identifier" && name == "expect" {
		return true
	}
	return fn.Type() == "member_expression" && strings.HasPrefix(name, "assert.")
}

func countNodeAssertions(testCall *sitter.Node, src []byte) int {
	count := 0
	walk(testCall.ChildByFieldName("arguments"), func(n *sitter.Node) {
		if n.Type() != "call_expression" {
			return
		}
		fn := n.ChildByFieldName("function")
		if fn == nil {
			return
		}
		if isNodeAssertion(fn, content(fn, src)) {
			count++
		}
	})
	return count
}

func firstStringArg(call *sitter.Node, src []byte) string {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return ""
	}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)
		if arg.Type() == "string" || arg.Type() == "template_string" {
			return stripQuotes(content(arg, src))
		}
	}
	return ""
}

// extractJava pulls imports and @Test methods from a Java parse tree.
func extractJava(root *sitter.Node, src []byte, surface *Surface) {
	walk(root, func(n *sitter.Node) {
		switch n.Type() {
		case "import_declaration":
			for i := 0; i < int(n.NamedChildCount()); i++ {
				child := n.NamedChild(i)
				if child.Type() == "scoped_identifier" || child.Type() == "identifier" {
					surface.Imports = append(surface.Imports, Import{
						Module: content(child, src),
						Line:   lineOf(n),
					})
					break
				}
			}
		case "method_declaration":
			if !javaHasTestAnnotation(n, src) {
				return
			}
			surface.Tests = append(surface.Tests, TestFunc{
				Name:       content(n.ChildByFieldName("name"), src),
				Line:       lineOf(n),
				EndLine:    endLineOf(n),
				Assertions: countJavaAssertions(n.ChildByFieldName("body"), src),
			})
		case "method_invocation":
			if strings.HasPrefix(content(n.ChildByFieldName("name"), src), "assert") {
				surface.TotalAssertions++
			}
		}
	})
}

func javaHasTestAnnotation(method *sitter.Node, src []byte) bool {
	for i := 0; i < int(method.ChildCount()); i++ {
		child := method.Child(i)
		if child.Type() != "modifiers" {
			continue
		}
		found := false
		walk(child, func(n *sitter.Node) {
			if n.Type() == "marker_annotation" || n.Type() == "annotation" {
				if content(n.ChildByFieldName("name"), src) == "Test" {
					found = true
				}
			}
		})
		return found
	}
	return false
}

func countJavaAssertions(body *sitter.Node, src []byte) int {
	count := 0
	walk(body, func(n *sitter.Node) {
		if n.Type() != "method_invocation" {
			return
		}
		name := content(n.ChildByFieldName("name"), src)
		if strings.HasPrefix(name, "assert") || strings.HasPrefix(name, "verify") {
			count++
		}
	})
	return count
}
