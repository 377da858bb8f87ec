package docstring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SamuelMarks/docstring2class/internal/ir"
)

const fullDoc = "Acquire from the official tensorflow_datasets model zoo.\n" +
	"\n" +
	"Longer notes\n" +
	"span two lines.\n" +
	"\n" +
	":param dataset_name: name of dataset. Defaults to mnist.\n" +
	":type dataset_name: ```str```\n" +
	"\n" +
	":param K: backend engine, e.g., `np` or `tf`. Defaults to np.\n" +
	":type K: ```Literal['np', 'tf']```\n" +
	"\n" +
	":param as_numpy: Convert to numpy ndarrays\n" +
	":type as_numpy: ```Optional[bool]```\n" +
	"\n" +
	":return: Train and tests dataset splits.\n" +
	":rtype: ```Tuple[np.ndarray, np.ndarray]```"

func TestParse(t *testing.T) {
	r := Parse(fullDoc, true)

	assert.Equal(t, "Acquire from the official tensorflow_datasets model zoo.", r.ShortDoc)
	assert.Equal(t, "Longer notes\nspan two lines.", r.LongDoc)
	assert.Equal(t, []string{"dataset_name", "K", "as_numpy"}, r.Params.Names())

	ds := r.Params.Get("dataset_name")
	assert.Equal(t, "name of dataset.", ds.Doc)
	assert.Equal(t, "str", ds.Type)
	assert.Equal(t, ir.Str("mnist"), ds.Default)
	assert.Nil(t, ds.Required)

	k := r.Params.Get("K")
	assert.Equal(t, "backend engine, e.g., `np` or `tf`.", k.Doc)
	assert.Equal(t, "Literal['np', 'tf']", k.Type)
	assert.Equal(t, ir.Str("np"), k.Default)

	assert.Nil(t, r.Params.Get("as_numpy").Default)

	require.NotNil(t, r.Returns)
	assert.Equal(t, ir.ReturnKey, r.Returns.Name)
	assert.Equal(t, "Train and tests dataset splits.", r.Returns.Doc)
	assert.Equal(t, "Tuple[np.ndarray, np.ndarray]", r.Returns.Type)
}

func TestParseWithoutDefaultExtraction(t *testing.T) {
	r := Parse(fullDoc, false)
	ds := r.Params.Get("dataset_name")
	assert.Equal(t, "name of dataset. Defaults to mnist.", ds.Doc)
	assert.Nil(t, ds.Default)
}

func TestParseOrderFromFirstMention(t *testing.T) {
	doc := ":type b: int\n:param a: first\n:param b: second\n:type a: str"
	r := Parse(doc, false)

	assert.Equal(t, []string{"b", "a"}, r.Params.Names())
	assert.Equal(t, "str", r.Params.Get("a").Type)
	assert.Equal(t, "second", r.Params.Get("b").Doc)
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		check func(t *testing.T, r *ir.IR)
	}{
		{
			name: "cvar alias",
			doc:  ":cvar x: the x",
			check: func(t *testing.T, r *ir.IR) {
				assert.Equal(t, "the x", r.Params.Get("x").Doc)
			},
		},
		{
			name: "inline type",
			doc:  ":param int x: the x",
			check: func(t *testing.T, r *ir.IR) {
				assert.Equal(t, "int", r.Params.Get("x").Type)
				assert.Equal(t, "the x", r.Params.Get("x").Doc)
			},
		},
		{
			name: "continuation",
			doc:  ":param x: first part\n    second part",
			check: func(t *testing.T, r *ir.IR) {
				assert.Equal(t, "first part second part", r.Params.Get("x").Doc)
			},
		},
		{
			name: "returns alias",
			doc:  ":returns: something",
			check: func(t *testing.T, r *ir.IR) {
				assert.Equal(t, "something", r.Returns.Doc)
			},
		},
		{
			name: "unknown field kept in long doc",
			doc:  "Short.\n\n:param x: the x\n:raises ValueError: when bad",
			check: func(t *testing.T, r *ir.IR) {
				assert.Equal(t, ":raises ValueError: when bad", r.LongDoc)
				assert.Equal(t, []string{"x"}, r.Params.Names())
			},
		},
		{
			name: "empty",
			doc:  "",
			check: func(t *testing.T, r *ir.IR) {
				assert.Empty(t, r.ShortDoc)
				assert.Empty(t, r.Params)
				assert.Nil(t, r.Returns)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Parse(tt.doc, true))
		})
	}
}

func TestEmitParamStyle(t *testing.T) {
	r := Parse(fullDoc, true)
	assert.Equal(t, fullDoc, Emit(r, StyleParam, true))
}

func TestEmitCvarStyle(t *testing.T) {
	r := &ir.IR{
		ShortDoc: "Config.",
		Params: ir.Params{
			{Name: "a", Type: "int", Doc: "an int", Default: ir.Int(5)},
			{Name: "b", Doc: "a b"},
		},
		Returns: &ir.Param{Name: ir.ReturnKey, Type: "int", Doc: "result"},
	}

	want := "Config.\n\n:cvar a: an int. Defaults to 5.\n:cvar b: a b\n:cvar return_type: result"
	assert.Equal(t, want, Emit(r, StyleCvar, true))

	parsed := Parse(want, true)
	assert.Equal(t, []string{"a", "b", ir.ReturnKey}, parsed.Params.Names())
	assert.Equal(t, ir.Int(5), parsed.Params.Get("a").Default)
	assert.Equal(t, "an int.", parsed.Params.Get("a").Doc)
}

func TestEmitReturnDefaultNotAnnounced(t *testing.T) {
	r := &ir.IR{
		ShortDoc: "Short.",
		Returns:  &ir.Param{Name: ir.ReturnKey, Doc: "result.", Default: ir.Int(1)},
	}
	assert.Equal(t, "Short.\n\n:return: result.", Emit(r, StyleParam, true))
}

func TestEmitDoesNotMutate(t *testing.T) {
	r := &ir.IR{Params: ir.Params{{Name: "a", Doc: "x", Default: ir.Int(1)}}}
	Emit(r, StyleParam, true)
	assert.Equal(t, "x", r.Params[0].Doc)
}

func TestEmitSkipsEmptyTags(t *testing.T) {
	r := &ir.IR{
		ShortDoc: "Short.",
		Params: ir.Params{
			{Name: "a"},
			{Name: "b", Type: "int"},
			{Name: "c", Doc: "the c"},
		},
	}

	assert.Equal(t, "Short.\n\n:type b: ```int```\n\n:param c: the c", Emit(r, StyleParam, true))
	assert.Equal(t, "Short.\n\n:cvar c: the c", Emit(r, StyleCvar, true))
	assert.Equal(t, "", Emit(&ir.IR{Params: ir.Params{{Name: "a"}}}, StyleParam, true))
}
