package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type parsedParam struct {
	Name     string `json:"name"`
	Type     string `json:"typ"`
	Doc      string `json:"doc"`
	Default  any    `json:"default"`
	Required *bool  `json:"required"`
}

type parsedIR struct {
	Name     string        `json:"name"`
	Kind     string        `json:"type"`
	ShortDoc string        `json:"short_description"`
	Params   []parsedParam `json:"params"`
	Returns  *parsedParam  `json:"returns"`
}

func names(ps []parsedParam) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}

func TestParseClass(t *testing.T) {
	workspace(t, standardFiles())

	out, _, err := execute(t, "parse", "--kind", "class", "--name", "ConfigClass", "classes.py")
	require.NoError(t, err)

	var got parsedIR
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "ConfigClass", got.Name)
	assert.Equal(t, []string{"dataset_name", "tfds_dir", "K", "as_numpy", "data_loader_kwargs"}, names(got.Params))

	first := got.Params[0]
	assert.Equal(t, "str", first.Type)
	assert.Equal(t, "name of dataset.", first.Doc)
	assert.Equal(t, "mnist", first.Default)
	require.NotNil(t, first.Required)
	assert.False(t, *first.Required)

	require.NotNil(t, got.Returns)
	assert.Equal(t, "return_type", got.Returns.Name)
	assert.Equal(t, "Tuple[np.ndarray, np.ndarray]", got.Returns.Type)
}

func TestParseFunctionJSON(t *testing.T) {
	workspace(t, standardFiles())

	out, _, err := execute(t, "parse", "-k", "function", "-n", "C.method_name", "methods.py", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string   `json:"status"`
		Data   parsedIR `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "method_name", resp.Data.Name)
	assert.Equal(t, "instance", resp.Data.Kind)
	assert.Equal(t, []string{"dataset_name", "tfds_dir", "K", "as_numpy", "data_loader_kwargs"}, names(resp.Data.Params))
}

func TestParseViewsAgree(t *testing.T) {
	workspace(t, standardFiles())

	docs := map[string]string{}
	for _, args := range [][]string{
		{"--kind", "cli", "--name", "set_cli_args", "argparse.py"},
		{"--kind", "class", "--name", "ConfigClass", "classes.py"},
		{"--kind", "function", "--name", "C.method_name", "methods.py"},
	} {
		out, _, err := execute(t, append([]string{"parse"}, args...)...)
		require.NoError(t, err)

		var got parsedIR
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		docs[args[1]] = got.ShortDoc
		assert.Len(t, got.Params, 5, args[1])
	}
	assert.Equal(t, docs["cli"], docs["class"])
	assert.Equal(t, docs["class"], docs["function"])
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		exit int
		code string
	}{
		{"shape mismatch", []string{"--kind", "function", "--name", "ConfigClass", "classes.py"}, ExitFailure, CodeShapeMismatch},
		{"name not found", []string{"--kind", "class", "--name", "Missing", "classes.py"}, ExitFailure, CodeNameNotFound},
		{"unknown kind", []string{"--kind", "yaml", "--name", "ConfigClass", "classes.py"}, ExitCommandError, CodeCommand},
		{"missing file", []string{"--kind", "class", "--name", "ConfigClass", "nope.py"}, ExitCommandError, CodeCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workspace(t, standardFiles())

			_, errOut, err := execute(t, append([]string{"parse"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, tt.exit, GetExitCode(err))
			assert.Contains(t, errOut, "Error ["+tt.code+"]")
		})
	}
}

func TestParseRequiresFlags(t *testing.T) {
	workspace(t, standardFiles())

	_, _, err := execute(t, "parse", "classes.py")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
	assert.False(t, IsReported(err))
}
