package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *Unit {
	t.Helper()
	unit, err := ParseUnit(context.Background(), []byte(src))
	require.NoError(t, err)
	t.Cleanup(unit.Close)
	return unit
}

func declByName(t *testing.T, unit *Unit, qualified string) Declaration {
	t.Helper()
	for _, d := range unit.Declarations() {
		if d.QualifiedName == qualified {
			return d
		}
	}
	t.Fatalf("declaration %q not found", qualified)
	return Declaration{}
}

func TestParseUnitRejectsBrokenSource(t *testing.T) {
	_, err := ParseUnit(context.Background(), []byte("def broken(:\n    pass\n"))
	assert.ErrorIs(t, err, ErrUnitParse)
}

func TestDocstringDetection(t *testing.T) {
	src := `def documented():
    """Already has one."""
    return 1

def bare():
    return 2
`
	unit := mustParse(t, src)

	assert.True(t, declByName(t, unit, "documented").HasDocstring)
	assert.False(t, declByName(t, unit, "bare").HasDocstring)
}

func TestMethodQualifiedNames(t *testing.T) {
	src := `class Config:
    def reload(self):
        return self.path
`
	unit := mustParse(t, src)

	decls := unit.Declarations()
	require.Len(t, decls, 2)
	assert.Equal(t, "Config", declByName(t, unit, "Config").QualifiedName)

	method := declByName(t, unit, "Config.reload")
	assert.Equal(t, "reload", method.Name)
	assert.Equal(t, KindFunction, method.Kind)
}

func TestParamsSkipSelfAndCls(t *testing.T) {
	src := `class Box:
    def fill(self, item, count: int = 1, *args, **kwargs):
        return count

    @classmethod
    def empty(cls):
        return Box()
`
	unit := mustParse(t, src)

	fill := declByName(t, unit, "Box.fill")
	require.Len(t, fill.Params, 4)
	assert.Equal(t, "item", fill.Params[0].Name)
	assert.Equal(t, "count", fill.Params[1].Name)
	assert.Equal(t, "int", fill.Params[1].Annotation)
	assert.True(t, fill.Params[1].HasDefault)
	assert.Equal(t, "*args", fill.Params[2].Name)
	assert.Equal(t, "**kwargs", fill.Params[3].Name)

	empty := declByName(t, unit, "Box.empty")
	assert.Empty(t, empty.Params)
	assert.Equal(t, []string{"classmethod"}, empty.Decorators)
}

func TestDecoratedSpanIncludesDecorators(t *testing.T) {
	src := `@cached
@retries(3)
def fetch(url):
    return url
`
	unit := mustParse(t, src)

	fetch := declByName(t, unit, "fetch")
	assert.Equal(t, 1, fetch.StartLine)
	assert.Equal(t, 3, fetch.DefLine)
	assert.Equal(t, 4, fetch.BodyLine)
	assert.Equal(t, []string{"cached", "retries(3)"}, fetch.Decorators)
}

func TestSingleLineDefinition(t *testing.T) {
	src := "def noop(): pass\n"
	unit := mustParse(t, src)

	noop := declByName(t, unit, "noop")
	assert.Equal(t, noop.DefLine, noop.BodyLine)
	assert.False(t, noop.HasDocstring)
}

func TestMutableDefaultDetection(t *testing.T) {
	cases := []struct {
		name    string
		def     string
		mutable bool
	}{
		{"list literal", "def f(items=[]):\n    return items\n", true},
		{"dict literal", "def f(opts={}):\n    return opts\n", true},
		{"set literal", "def f(seen={1}):\n    return seen\n", true},
		{"list call", "def f(items=list()):\n    return items\n", true},
		{"comprehension", "def f(xs=[i for i in range(3)]):\n    return xs\n", true},
		{"none default", "def f(items=None):\n    return items\n", false},
		{"tuple literal", "def f(pair=(1, 2)):\n    return pair\n", false},
		{"int default", "def f(n=0):\n    return n\n", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			unit := mustParse(t, tc.def)
			decl := declByName(t, unit, "f")
			require.Len(t, decl.Params, 1)
			assert.Equal(t, tc.mutable, decl.Params[0].MutableDefault)
		})
	}
}

func TestSourceIsDedented(t *testing.T) {
	src := `class Outer:
    def inner(self):
        return 1
`
	unit := mustParse(t, src)

	inner := declByName(t, unit, "Outer.inner")
	assert.Contains(t, inner.Source, "def inner(self):")
	assert.NotContains(t, inner.Source, "    def inner")
}
