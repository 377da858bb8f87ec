package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var syncFlags = []string{"sync", "--truth", "cli", "--cli", "argparse.py", "--class", "classes.py", "--function", "methods.py"}

func changedFiles() map[string]string {
	files := standardFiles()
	files["classes.py"] = "classes_changed.py"
	return files
}

func TestSyncUnchanged(t *testing.T) {
	pkg := packageDir(t)
	workspace(t, standardFiles())

	out, _, err := execute(t, syncFlags...)
	require.NoError(t, err)
	newGoldie(t, pkg).Assert(t, "sync_unchanged", []byte(out))
}

func TestSyncManifest(t *testing.T) {
	pkg := packageDir(t)
	workspace(t, standardFiles())

	out, _, err := execute(t, "sync", "--manifest", "doctrans.yaml")
	require.NoError(t, err)
	newGoldie(t, pkg).Assert(t, "sync_unchanged", []byte(out))
}

func TestSyncModifiedWritesFile(t *testing.T) {
	pkg := packageDir(t)
	workspace(t, changedFiles())

	out, errOut, err := execute(t, append(syncFlags, "--verbose")...)
	require.NoError(t, err)
	newGoldie(t, pkg).Assert(t, "sync_modified", []byte(out))
	assert.Contains(t, errOut, "class classes.py (-own +canonical)")

	got, err := os.ReadFile("classes.py")
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join(pkg, "testdata", "classes.py"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))

	out, _, err = execute(t, syncFlags...)
	require.NoError(t, err)
	newGoldie(t, pkg).Assert(t, "sync_unchanged", []byte(out))
}

func TestSyncDryRun(t *testing.T) {
	pkg := packageDir(t)
	workspace(t, changedFiles())
	before, err := os.ReadFile("classes.py")
	require.NoError(t, err)

	out, _, err := execute(t, "sync", "--manifest", "doctrans.yaml", "--dry-run")
	require.NoError(t, err)
	newGoldie(t, pkg).Assert(t, "sync_modified", []byte(out))

	after, err := os.ReadFile("classes.py")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSyncDryRunFromConfigFile(t *testing.T) {
	workspace(t, changedFiles())
	require.NoError(t, os.WriteFile(".doctrans.yaml", []byte("dry_run: true\n"), 0o644))
	before, err := os.ReadFile("classes.py")
	require.NoError(t, err)

	_, _, err = execute(t, syncFlags...)
	require.NoError(t, err)

	after, err := os.ReadFile("classes.py")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSyncTruthOverridesManifest(t *testing.T) {
	workspace(t, changedFiles())

	out, _, err := execute(t, "sync", "--manifest", "doctrans.yaml", "--truth", "class", "--dry-run")
	require.NoError(t, err)
	assert.Equal(t, "modified\targparse.py\nunchanged\tclasses.py\nmodified\tmethods.py\n", out)
}

func TestSyncJSON(t *testing.T) {
	workspace(t, changedFiles())

	out, _, err := execute(t, append(syncFlags, "--format", "json", "--dry-run")...)
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Truth       string `json:"truth"`
			Fingerprint string `json:"fingerprint"`
			DryRun      bool   `json:"dry_run"`
			Written     []string
			Outcomes    []struct {
				Kind     string `json:"kind"`
				Location string `json:"location"`
				Status   string `json:"status"`
				Diff     string `json:"diff"`
			} `json:"outcomes"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "cli", resp.Data.Truth)
	assert.NotEmpty(t, resp.Data.Fingerprint)
	assert.True(t, resp.Data.DryRun)
	assert.Empty(t, resp.Data.Written)
	require.Len(t, resp.Data.Outcomes, 3)
	assert.Equal(t, "class", resp.Data.Outcomes[1].Kind)
	assert.Equal(t, "modified", resp.Data.Outcomes[1].Status)
	assert.NotEmpty(t, resp.Data.Outcomes[1].Diff)
	assert.Empty(t, resp.Data.Outcomes[0].Diff)
}

func TestSyncRecordsLedger(t *testing.T) {
	workspace(t, changedFiles())

	_, _, err := execute(t, append(syncFlags, "--ledger", "runs.db")...)
	require.NoError(t, err)
	_, _, err = execute(t, append(syncFlags, "--ledger", "runs.db")...)
	require.NoError(t, err)

	out, _, err := execute(t, "history", "--ledger", "runs.db", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data []struct {
			ID          string `json:"id"`
			Seq         int64  `json:"seq"`
			Truth       string `json:"truth"`
			Fingerprint string `json:"fingerprint"`
			Canonical   string `json:"canonical"`
			Results     []struct {
				Kind   string `json:"kind"`
				Status string `json:"status"`
			} `json:"results"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 2)

	newest, oldest := resp.Data[0], resp.Data[1]
	assert.Equal(t, int64(2), newest.Seq)
	assert.Equal(t, "modified", oldest.Results[1].Status)
	assert.Equal(t, "unchanged", newest.Results[1].Status)
	assert.Equal(t, oldest.Fingerprint, newest.Fingerprint)
	assert.Contains(t, newest.Canonical, `"name":"set_cli_args"`)
}

func TestSyncRefusesUnknownNestedName(t *testing.T) {
	workspace(t, standardFiles())
	before, err := os.ReadFile("methods.py")
	require.NoError(t, err)

	out, _, err := execute(t, append(syncFlags, "--function-name", "C.missing", "--format", "json")...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, IsReported(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, CodeNameNotFound, resp.Error.Code)

	after, err := os.ReadFile("methods.py")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSyncCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no truth", []string{"sync", "--cli", "argparse.py"}, "either --manifest or --truth is required"},
		{"missing target", []string{"sync", "--truth", "cli", "--cli", "argparse.py", "--class", "classes.py"}, "--function is required"},
		{"missing file", []string{"sync", "--truth", "cli", "--cli", "nope.py", "--class", "classes.py", "--function", "methods.py"}, "nope.py"},
		{"unknown truth", []string{"sync", "--truth", "yaml", "--cli", "argparse.py", "--class", "classes.py", "--function", "methods.py"}, "unknown representation kind"},
		{"missing manifest", []string{"sync", "--manifest", "nope.yaml"}, "failed to load manifest"},
		{"shared file", []string{"sync", "--truth", "cli", "--cli", "argparse.py", "--class", "classes.py", "--function", "./classes.py"}, "share location"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workspace(t, standardFiles())

			_, errOut, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, errOut, "Error [E005]")
		})
	}
}
