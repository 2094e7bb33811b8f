package stack

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		input   string
		want    Stack
		wantErr bool
	}{
		{input: "python", want: Python},
		{input: "node", want: Node},
		{input: "java", want: Java},
		{input: "ruby", wantErr: true},
		{input: "", wantErr: true},
		{input: "Python", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := Parse(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFromPath(t *testing.T) {
	testCases := []struct {
		path string
		want Stack
		ok   bool
	}{
		{path: "tests/test_orders.py", want: Python, ok: true},
		{path: "orders.test.js", want: Node, ok: true},
		{path: "orders.spec.ts", want: Node, ok: true},
		{path: "helper.mjs", want: Node, ok: true},
		{path: "OrderTest.java", want: Java, ok: true},
		{path: "main.go", ok: false},
		{path: "README", ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			got, ok := FromPath(tc.path)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestProfileDispatch(t *testing.T) {
	for _, st := range []Stack{Python, Node, Java} {
		profile, ok := ProfileFor(st)
		require.True(t, ok, st)
		assert.Equal(t, st, profile.Stack())
		assert.NotNil(t, profile.Language())
		assert.NotEmpty(t, profile.TestIdioms())
		assert.NotEmpty(t, profile.TestFileGlobs())
		assert.NotEmpty(t, profile.PlaceholderTest())
		assert.NotEmpty(t, profile.CommentPrefix())
	}

	_, ok := ProfileFor(Stack("ruby"))
	assert.False(t, ok)
}

func TestRunnerAvailability(t *testing.T) {
	python, _ := ProfileFor(Python)
	assert.Equal(t, []string{"python", "-m", "pytest", "tests/test_a.py", "-v", "--tb=short"},
		python.RunnerArgs("tests/test_a.py"))

	node, _ := ProfileFor(Node)
	assert.Equal(t, []string{"node", "--test", "a.test.js"}, node.RunnerArgs("a.test.js"))

	java, _ := ProfileFor(Java)
	assert.Nil(t, java.RunnerArgs("OrderTest.java"))
}

func TestTestFileGlobsMatch(t *testing.T) {
	testCases := []struct {
		stack Stack
		file  string
		want  bool
	}{
		{Python, "test_orders.py", true},
		{Python, "orders_test.py", true},
		{Python, "orders.py", false},
		{Node, "orders.test.js", true},
		{Node, "orders.spec.ts", true},
		{Node, "orders.js", false},
		{Java, "OrderTest.java", true},
		{Java, "OrderTests.java", true},
		{Java, "Order.java", false},
	}

	for _, tc := range testCases {
		t.Run(tc.file, func(t *testing.T) {
			profile, _ := ProfileFor(tc.stack)
			matched := false
			for _, glob := range profile.TestFileGlobs() {
				ok, err := filepath.Match(glob, tc.file)
				require.NoError(t, err)
				if ok {
					matched = true
				}
			}
			assert.Equal(t, tc.want, matched)
		})
	}
}
