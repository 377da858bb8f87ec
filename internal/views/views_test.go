package views

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SamuelMarks/docstring2class/internal/ir"
	"github.com/SamuelMarks/docstring2class/internal/syntax"
)

const fixtureDoc = "Acquire from the official tensorflow_datasets model zoo, or the ophthalmology focussed ml-prepare library"

// loadFixture parses testdata/<name>.
func loadFixture(t *testing.T, name string) *syntax.Module {
	t.Helper()
	src, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	mod, err := syntax.ParseString(string(src))
	require.NoError(t, err)
	return mod
}

func lookup(t *testing.T, mod *syntax.Module, name string) syntax.Stmt {
	t.Helper()
	stmt, err := syntax.Lookup(mod, name)
	require.NoError(t, err)
	return stmt
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

// fixtureIRs parses the three fixtures that describe the same interface.
func fixtureIRs(t *testing.T) (cli, class, function *ir.IR) {
	t.Helper()
	opts := DefaultOptions()

	var err error
	cli, err = CLIView{Options: opts}.Parse(loadFixture(t, "cli.py"), "set_cli_args")
	require.NoError(t, err)
	class, err = ClassView{Options: opts}.Parse(loadFixture(t, "class.py"), "ConfigClass")
	require.NoError(t, err)
	function, err = FunctionView{Options: opts}.Parse(loadFixture(t, "function.py"), "C.method_name")
	require.NoError(t, err)
	return cli, class, function
}

func TestFixturesAgree(t *testing.T) {
	cli, class, function := fixtureIRs(t)

	assert.True(t, ir.Equal(cli, class), ir.Diff(cli, class))
	assert.True(t, ir.Equal(cli, function), ir.Diff(cli, function))
	assert.True(t, ir.Equal(class, function), ir.Diff(class, function))
}

func TestFixtureContent(t *testing.T) {
	cli, _, _ := fixtureIRs(t)

	assert.Equal(t, fixtureDoc, cli.ShortDoc)
	assert.Equal(t, []string{"dataset_name", "tfds_dir", "K", "as_numpy", "data_loader_kwargs"}, cli.Params.Names())

	tests := []struct {
		name     string
		typ      string
		def      ir.Value
		required bool
	}{
		{"dataset_name", "str", ir.Str("mnist"), false},
		{"tfds_dir", "str", ir.Str("~/tensorflow_datasets"), false},
		{"K", "Literal['np', 'tf']", ir.Str("np"), false},
		{"as_numpy", "Optional[bool]", nil, false},
		{"data_loader_kwargs", "dict", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := cli.Params.Get(tt.name)
			require.NotNil(t, p)
			assert.Equal(t, tt.typ, p.Type)
			assert.Equal(t, tt.def, p.Default)
			assert.Equal(t, tt.required, p.IsRequired())
		})
	}

	require.NotNil(t, cli.Returns)
	assert.Equal(t, ir.ReturnKey, cli.Returns.Name)
	assert.Equal(t, "Tuple[np.ndarray, np.ndarray]", cli.Returns.Type)
	assert.Equal(t, "Train and tests dataset splits.", cli.Returns.Doc)
	assert.Equal(t, ir.Tuple{ir.Expr("np.empty(0)"), ir.Expr("np.empty(0)")}, cli.Returns.Default)
}

func TestEmitOwnIRPreservesSource(t *testing.T) {
	tests := []struct {
		view    View
		fixture string
		name    string
	}{
		{CLIView{Options: DefaultOptions()}, "cli.py", "set_cli_args"},
		{ClassView{Options: DefaultOptions()}, "class.py", "ConfigClass"},
		{FunctionView{Options: DefaultOptions()}, "function.py", "C.method_name"},
	}

	for _, tt := range tests {
		t.Run(tt.view.Kind(), func(t *testing.T) {
			mod := loadFixture(t, tt.fixture)
			existing := lookup(t, mod, tt.name)

			r, err := tt.view.Parse(mod, tt.name)
			require.NoError(t, err)
			out, err := tt.view.Emit(r, existing)
			require.NoError(t, err)

			assert.Equal(t, syntax.Unparse(existing), syntax.Unparse(out))
		})
	}
}

func TestEmitAcrossViews(t *testing.T) {
	cli, class, function := fixtureIRs(t)

	t.Run("cli from class", func(t *testing.T) {
		want := lookup(t, loadFixture(t, "cli.py"), "set_cli_args")
		out, err := CLIView{Options: DefaultOptions()}.Emit(class, nil)
		require.NoError(t, err)
		assert.Equal(t, syntax.Unparse(want), syntax.Unparse(out))
	})

	t.Run("class from cli", func(t *testing.T) {
		existing := lookup(t, loadFixture(t, "class.py"), "ConfigClass")
		out, err := ClassView{Options: DefaultOptions()}.Emit(cli, existing)
		require.NoError(t, err)
		assert.Equal(t, syntax.Unparse(existing), syntax.Unparse(out))
	})

	t.Run("function from cli keeps own body", func(t *testing.T) {
		existing := lookup(t, loadFixture(t, "function.py"), "C.method_name")
		canonical := cli.Clone()
		canonical.Internal = function.Internal

		out, err := FunctionView{Options: DefaultOptions()}.Emit(canonical, existing)
		require.NoError(t, err)
		assert.Equal(t, syntax.Unparse(existing), syntax.Unparse(out))
	})

	t.Run("internal is not transplanted", func(t *testing.T) {
		existing := lookup(t, loadFixture(t, "function.py"), "C.method_name")
		out, err := FunctionView{Options: DefaultOptions()}.Emit(cli, existing)
		require.NoError(t, err)

		body := out.(*syntax.FunctionDef).Body
		assert.Equal(t, "return np.empty(0), np.empty(0)\n", syntax.Unparse(body[len(body)-1]))
	})
}

func TestEmitFreshFunctionGolden(t *testing.T) {
	_, class, _ := fixtureIRs(t)
	r := class.Clone()
	r.Name = "method_name"
	r.Kind = ir.KindInstance

	out, err := FunctionView{Options: DefaultOptions()}.Emit(r, nil)
	require.NoError(t, err)

	newGoldie(t).Assert(t, "function_from_class", []byte(syntax.Unparse(out)))

	back, err := FunctionView{Options: DefaultOptions()}.Parse(out, "method_name")
	require.NoError(t, err)
	assert.True(t, ir.Equal(class, back), ir.Diff(class, back))
}

func TestEmptyCLIEmission(t *testing.T) {
	view := CLIView{Options: DefaultOptions()}
	out, err := view.Emit(ir.New(""), nil)
	require.NoError(t, err)

	newGoldie(t).Assert(t, "empty_cli", []byte(syntax.Unparse(out)))

	back, err := view.Parse(out, DefaultCLIName)
	require.NoError(t, err)
	assert.Empty(t, back.Params)
	assert.Nil(t, back.Returns)
	assert.Empty(t, back.ShortDoc)
}

func TestNew(t *testing.T) {
	for _, kind := range ValidKinds {
		v, err := New(kind, DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, kind, v.Kind())
	}

	_, err := New("yaml", DefaultOptions())
	assert.Error(t, err)
}

func TestResolveNameMismatch(t *testing.T) {
	fn := &syntax.FunctionDef{Name: "f", Args: &syntax.Arguments{}}

	_, err := Resolve(fn, "g")
	assert.True(t, ir.IsNameNotFound(err))

	got, err := Resolve(fn, "C.f")
	require.NoError(t, err)
	assert.Same(t, fn, got)

	_, err = Resolve(&syntax.Name{ID: "x"}, "x")
	assert.True(t, ir.IsShapeMismatch(err))
}

func TestDocstringView(t *testing.T) {
	view := DocstringView{Options: DefaultOptions()}
	mod := loadFixture(t, "function.py")

	r, err := view.Parse(mod, "C.method_name")
	require.NoError(t, err)
	assert.Equal(t, fixtureDoc, r.ShortDoc)
	assert.Equal(t, ir.Str("mnist"), r.Params.Get("dataset_name").Default)
	assert.Nil(t, r.Params.Get("dataset_name").Required)

	fromString, err := view.Parse(syntax.Str(":param a: an a"), "")
	require.NoError(t, err)
	assert.Equal(t, "an a", fromString.Params.Get("a").Doc)

	_, err = view.Parse(&syntax.Constant{Value: int64(1)}, "")
	assert.True(t, ir.IsShapeMismatch(err))

	_, err = view.Parse(&syntax.FunctionDef{Name: "f", Args: &syntax.Arguments{}}, "f")
	assert.True(t, ir.IsShapeMismatch(err))

	stmt, err := view.Emit(r, nil)
	require.NoError(t, err)
	again, err := view.Parse(stmt, "")
	require.NoError(t, err)
	assert.Equal(t, r.Params.Names(), again.Params.Names())

	existing := lookup(t, mod, "C.method_name").(*syntax.FunctionDef)
	replaced, err := view.Emit(&ir.IR{ShortDoc: "Replaced."}, existing)
	require.NoError(t, err)
	doc, ok := syntax.Docstring(replaced.(*syntax.FunctionDef).Body)
	require.True(t, ok)
	assert.Equal(t, "Replaced.", doc)
	assert.Len(t, replaced.(*syntax.FunctionDef).Body, len(existing.Body))
}

func TestInferType(t *testing.T) {
	mod, err := syntax.ParseString("def f(a=1, b='x', c=2.5, d=True, e=None, g: str = 3):\n    pass\n")
	require.NoError(t, err)

	r, err := FunctionView{Options: Options{InferType: true}}.Parse(mod, "f")
	require.NoError(t, err)

	assert.Equal(t, "int", r.Params.Get("a").Type)
	assert.Equal(t, "str", r.Params.Get("b").Type)
	assert.Equal(t, "float", r.Params.Get("c").Type)
	assert.Equal(t, "bool", r.Params.Get("d").Type)
	assert.Empty(t, r.Params.Get("e").Type)
	assert.Equal(t, "str", r.Params.Get("g").Type)

	r, err = FunctionView{}.Parse(mod, "f")
	require.NoError(t, err)
	assert.Empty(t, r.Params.Get("a").Type)
}

func TestNoneDefaultRoundTrip(t *testing.T) {
	tests := []struct {
		view View
		src  string
		name string
	}{
		{FunctionView{Options: DefaultOptions()}, "def f(a, x=None):\n    return a\n", "f"},
		{FunctionView{Options: DefaultOptions()}, "def f(a, *, x=None):\n    return a\n", "f"},
		{ClassView{Options: DefaultOptions()}, "class A(object):\n    x: int = None\n    y = None\n", "A"},
		{CLIView{Options: DefaultOptions()}, "def set_cli_args(argument_parser):\n    argument_parser.add_argument('--x', type=int, default=None)\n    return argument_parser\n", "set_cli_args"},
	}

	for _, tt := range tests {
		t.Run(tt.view.Kind(), func(t *testing.T) {
			mod, err := syntax.ParseString(tt.src)
			require.NoError(t, err)

			r, err := tt.view.Parse(mod, tt.name)
			require.NoError(t, err)
			x := r.Params.Get("x")
			require.NotNil(t, x)
			assert.False(t, x.IsRequired())
			assert.Nil(t, x.Default)

			if tt.view.Kind() == KindCLI {
				return
			}
			existing := lookup(t, mod, tt.name)
			out, err := tt.view.Emit(r, existing)
			require.NoError(t, err)
			assert.Equal(t, tt.src, syntax.Unparse(out))
		})
	}
}

func TestTupleFragmentDefaultRoundTrip(t *testing.T) {
	src := "class A(object):\n    pair: Tuple[int, int] = np.empty(0), np.empty(0)\n    paren: Tuple[int, int] = (f(), 1)\n"
	mod, err := syntax.ParseString(src)
	require.NoError(t, err)
	existing := lookup(t, mod, "A")

	r, err := ClassView{}.Parse(mod, "A")
	require.NoError(t, err)
	out, err := ClassView{}.Emit(r, existing)
	require.NoError(t, err)
	assert.Equal(t, syntax.Unparse(existing), syntax.Unparse(out))
}
