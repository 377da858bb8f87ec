package syntax

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SamuelMarks/docstring2class/internal/ir"
)

const sample = `import numpy as np


class C(object):
    """A class."""

    def method_name(self, a, b: int = 1, *args, c='x', **kwargs) -> int:
        """
        Does a thing.

        :param a: first
        """
        x = a + b
        return a, b


def f():
    pass
`

func TestParseUnparseRoundTrip(t *testing.T) {
	mod, err := ParseString(sample)
	require.NoError(t, err)
	assert.Equal(t, sample, Unparse(mod))
}

func TestParseStructure(t *testing.T) {
	mod, err := ParseString(sample)
	require.NoError(t, err)
	require.Len(t, mod.Body, 3)

	assert.IsType(t, &Raw{}, mod.Body[0])

	cls, ok := mod.Body[1].(*ClassDef)
	require.True(t, ok)
	assert.Equal(t, "C", cls.Name)
	require.Len(t, cls.Bases, 1)
	assert.Equal(t, "object", DottedName(cls.Bases[0]))

	fn, ok := cls.Body[1].(*FunctionDef)
	require.True(t, ok)
	assert.Equal(t, "method_name", fn.Name)

	var names []string
	for _, a := range fn.Args.Args {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"self", "a", "b"}, names)
	assert.Equal(t, "int", Unparse(fn.Args.Args[2].Annotation))
	assert.Equal(t, &Constant{Value: int64(1)}, fn.Args.Args[2].Default)
	assert.Equal(t, "args", fn.Args.Vararg.Name)
	require.Len(t, fn.Args.KwOnly, 1)
	assert.Equal(t, Str("x"), fn.Args.KwOnly[0].Default)
	assert.Equal(t, "kwargs", fn.Args.Kwarg.Name)

	ret, ok := fn.Body[len(fn.Body)-1].(*Return)
	require.True(t, ok)
	assert.IsType(t, &Tuple{}, ret.Value)

	doc, ok := Docstring(fn.Body)
	require.True(t, ok)
	assert.Equal(t, "Does a thing.\n\n:param a: first", doc)
}

func TestParseExpressions(t *testing.T) {
	tests := []struct {
		source string
		want   Expr
	}{
		{"'mnist'", Str("mnist")},
		{`"it's"`, Str("it's")},
		{`'a\nb'`, Str("a\nb")},
		{`r'a\nb'`, Str(`a\nb`)},
		{`'a' 'b'`, Str("ab")},
		{"5", &Constant{Value: int64(5)}},
		{"-5", &Constant{Value: int64(-5)}},
		{"0x10", &Constant{Value: int64(16)}},
		{"2.5", &Constant{Value: 2.5}},
		{"True", &Constant{Value: true}},
		{"None", &Constant{Value: nil}},
		{"np.empty", Dotted("np.empty")},
		{"(1, 2)", &Tuple{Elts: []Expr{&Constant{Value: int64(1)}, &Constant{Value: int64(2)}}}},
		{"[1]", &List{Elts: []Expr{&Constant{Value: int64(1)}}}},
		{"{'a': 1}", &Dict{Keys: []Expr{Str("a")}, Values: []Expr{&Constant{Value: int64(1)}}}},
		{"-x", &UnaryOp{Op: "-", Operand: &Name{ID: "x"}}},
		{"not x", &RawExpr{Source: "not x"}},
		{"a + b", &RawExpr{Source: "a + b"}},
		{"f'{x}'", &RawExpr{Source: "f'{x}'"}},
		{"Optional[int]", &Subscript{Value: &Name{ID: "Optional"}, Index: &Name{ID: "int"}}},
		{
			"f(1, k=2, **kw)",
			&Call{
				Func:     &Name{ID: "f"},
				Args:     []Expr{&Constant{Value: int64(1)}},
				Keywords: []*Keyword{{Arg: "k", Value: &Constant{Value: int64(2)}}, {Value: &Name{ID: "kw"}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			got, err := ParseExpr(tt.source)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSyntaxError(t *testing.T) {
	_, err := ParseString("def f(:\n    pass\n")
	assert.Error(t, err)
}

func TestUnparseExpressions(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{`"mnist"`, "'mnist'"},
		{"Tuple[int, int]", "Tuple[int, int]"},
		{"(np.empty(0), np.empty(0))", "(np.empty(0), np.empty(0))"},
		{"(1,)", "(1,)"},
		{"1.0", "1.0"},
		{"f(a, b=2)", "f(a, b=2)"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			e, err := ParseExpr(tt.source)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Unparse(e))
		})
	}
}

func TestUnparseEmptyBody(t *testing.T) {
	fn := &FunctionDef{Name: "f", Args: &Arguments{KwOnly: []*Arg{{Name: "a", Default: &Constant{}}}}}
	assert.Equal(t, "def f(*, a=None):\n    pass\n", Unparse(fn))
}

func TestUnparseReturnTuple(t *testing.T) {
	ret := &Return{Value: &Tuple{Elts: []Expr{&Name{ID: "p"}, &Constant{Value: int64(5)}}}}
	assert.Equal(t, "return p, 5\n", Unparse(ret))

	single := &Return{Value: &Tuple{Elts: []Expr{&Name{ID: "p"}}}}
	assert.Equal(t, "return p,\n", Unparse(single))
}

func TestLookup(t *testing.T) {
	mod, err := ParseString(sample)
	require.NoError(t, err)

	got, err := Lookup(mod, "C.method_name")
	require.NoError(t, err)
	assert.Equal(t, "method_name", got.(*FunctionDef).Name)

	got, err = Lookup(mod, "f")
	require.NoError(t, err)
	assert.Equal(t, "f", got.(*FunctionDef).Name)

	_, err = Lookup(mod, "C.method_name.A")
	require.Error(t, err)
	assert.True(t, ir.IsNameNotFound(err))

	_, err = Lookup(mod, "missing")
	assert.True(t, ir.IsNameNotFound(err))
}

func TestLookupLastDefinitionWins(t *testing.T) {
	mod, err := ParseString("def f():\n    return 1\n\n\ndef f():\n    return 2\n")
	require.NoError(t, err)

	got, err := Lookup(mod, "f")
	require.NoError(t, err)
	assert.Equal(t, "return 2\n", Unparse(got.(*FunctionDef).Body[0]))
}

func TestReplaceIsCopyOnWrite(t *testing.T) {
	mod, err := ParseString(sample)
	require.NoError(t, err)

	repl := &FunctionDef{Name: "method_name", Args: &Arguments{Args: []*Arg{{Name: "self"}}}, Body: []Stmt{&Pass{}}}
	out, err := Replace(mod, "C.method_name", repl)
	require.NoError(t, err)

	got, err := Lookup(out, "C.method_name")
	require.NoError(t, err)
	assert.Same(t, repl, got)

	orig, err := Lookup(mod, "C.method_name")
	require.NoError(t, err)
	assert.NotSame(t, repl, orig)
	assert.Equal(t, sample, Unparse(mod))

	_, err = Replace(mod, "C.other", repl)
	assert.True(t, ir.IsNameNotFound(err))
}

func TestAppend(t *testing.T) {
	mod := &Module{Body: []Stmt{&Pass{}}}
	out := Append(mod, &Pass{})
	assert.Len(t, mod.Body, 1)
	assert.Len(t, out.Body, 2)
}

func TestSetDocstring(t *testing.T) {
	body := []Stmt{&ExprStmt{Value: Str("old")}, &Pass{}}

	out := SetDocstring(body, "new")
	require.Len(t, out, 2)
	doc, ok := Docstring(out)
	require.True(t, ok)
	assert.Equal(t, "new", doc)

	out = SetDocstring([]Stmt{&Pass{}}, "added")
	require.Len(t, out, 2)

	out = SetDocstring(body, "")
	require.Len(t, out, 1)
	_, ok = Docstring(out)
	assert.False(t, ok)
}

func TestCleandoc(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"single", "Hello.", "Hello."},
		{"leading newline", "\n    Hello.\n\n    World.\n    ", "Hello.\n\nWorld."},
		{"first line kept", "Hello.\n      indented\n    less", "Hello.\n  indented\nless"},
		{"trailing spaces", "a   \n   b   ", "a\nb"},
		{"blank", "   \n   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Cleandoc(tt.doc))
		})
	}
}

const commented = `import os
import sys

from typing import Optional

# Module settings.
LIMIT = 3


class C(object):
    # Methods follow.

    @staticmethod
    def method_name(a):  # trailing
        return a

    def helper(self, x):
        # keep this comment
        y = x + 1  # and this one

        return y
`

func TestPatchKeepsSurroundings(t *testing.T) {
	mod, err := ParseString(commented)
	require.NoError(t, err)

	repl := &FunctionDef{
		Name:       "method_name",
		Decorators: []Expr{&Name{ID: "staticmethod"}},
		Args:       &Arguments{Args: []*Arg{{Name: "a"}, {Name: "b", Default: &Constant{}}}},
		Body:       []Stmt{&ExprStmt{Value: Str("Doc.")}, &Return{Value: &Name{ID: "a"}}},
	}
	out, err := Patch(mod, "C.method_name", repl)
	require.NoError(t, err)

	want := `import os
import sys

from typing import Optional

# Module settings.
LIMIT = 3


class C(object):
    # Methods follow.

    @staticmethod
    def method_name(a, b=None):
        """Doc."""
        return a

    def helper(self, x):
        # keep this comment
        y = x + 1  # and this one

        return y
`
	assert.Equal(t, want, string(out))
	assert.Equal(t, commented, string(mod.Source), "source must not be modified in place")

	again, err := Parse(context.Background(), out)
	require.NoError(t, err)
	got, err := Lookup(again, "C.method_name")
	require.NoError(t, err)
	assert.Len(t, got.(*FunctionDef).Args.Args, 2)
}

func TestPatchTopLevel(t *testing.T) {
	mod, err := ParseString(commented)
	require.NoError(t, err)

	out, err := Patch(mod, "C", &ClassDef{Name: "C", Body: []Stmt{&Pass{}}})
	require.NoError(t, err)
	assert.Equal(t, "import os\nimport sys\n\nfrom typing import Optional\n\n# Module settings.\nLIMIT = 3\n\n\nclass C:\n    pass\n", string(out))

	_, err = Patch(mod, "C.missing", &Pass{})
	assert.True(t, ir.IsNameNotFound(err))
}

func TestPatchWithoutSource(t *testing.T) {
	mod := &Module{Body: []Stmt{&FunctionDef{Name: "f", Args: &Arguments{}, Body: []Stmt{&Pass{}}}}}

	out, err := Patch(mod, "f", &FunctionDef{Name: "f", Args: &Arguments{}, Body: []Stmt{&Return{}}})
	require.NoError(t, err)
	assert.Equal(t, "def f():\n    return\n", string(out))
}

func TestExtend(t *testing.T) {
	mod, err := ParseString("# header\nx = 1\n\n")
	require.NoError(t, err)

	fn := &FunctionDef{Name: "g", Args: &Arguments{}, Body: []Stmt{&Pass{}}}
	assert.Equal(t, "# header\nx = 1\n\n\ndef g():\n    pass\n", string(Extend(mod, fn)))

	empty, err := ParseString("")
	require.NoError(t, err)
	assert.Equal(t, "def g():\n    pass\n", string(Extend(empty, fn)))

	assert.Equal(t, "x = 1\n\n\ndef g():\n    pass\n", string(Extend(&Module{Body: []Stmt{&Assign{Targets: []Expr{&Name{ID: "x"}}, Value: &Constant{Value: int64(1)}}}}, fn)))
}

func TestUnparseAnnotatedTuple(t *testing.T) {
	mod, err := ParseString("class A:\n    x: T = a(), b\n    y = a(), b\n")
	require.NoError(t, err)
	assert.Equal(t, "class A:\n    x: T = (a(), b)\n    y = a(), b\n", Unparse(mod))
}
