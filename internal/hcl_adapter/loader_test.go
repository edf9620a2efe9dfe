package hcl_adapter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/specialistvlad/stepflow/internal/config"
	"github.com/specialistvlad/stepflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

func TestLoad_FullPipeline(t *testing.T) {
	ctx, _ := testutil.LogContext(t)
	dir := writeFiles(t, map[string]string{
		"pipeline.hcl": `
			storage "file" {
				base_dir = "output"
			}

			snapshot {
				formats = ["parquet", "json"]
			}

			input "base_entity_nodes" {
				source_step = "extract_graph"
				path        = "testdata/base_entity_nodes.json"

				column "id" {
					type = number
				}
				column "name" {}
				column "aliases" {
					type = list(string)
				}
			}

			workflow "create_final_entities" {
				retry {
					max_attempts     = 3
					initial_interval = "200ms"
				}
			}

			workflow "experimental" {
				enabled = false
			}
		`,
	})

	model, err := NewLoader().Load(ctx, dir)
	require.NoError(t, err)

	require.NotNil(t, model.Storage)
	assert.Equal(t, config.StorageFile, model.Storage.Kind)
	assert.Equal(t, filepath.Join(dir, "output"), model.Storage.BaseDir)

	require.NotNil(t, model.Snapshot)
	assert.Equal(t, []string{"parquet", "json"}, model.Snapshot.Formats)

	require.Len(t, model.Inputs, 1)
	in := model.Inputs[0]
	assert.Equal(t, "base_entity_nodes", in.Name)
	assert.Equal(t, "extract_graph", in.SourceStep)
	assert.Equal(t, filepath.Join(dir, "testdata", "base_entity_nodes.json"), in.Path)
	require.Len(t, in.Columns, 3)
	assert.Equal(t, "id", in.Columns[0].Name)
	assert.True(t, in.Columns[0].Type.Equals(cty.Number))
	assert.True(t, in.Columns[1].Type.Equals(cty.String), "column type defaults to string")
	assert.True(t, in.Columns[2].Type.Equals(cty.List(cty.String)))

	wf := model.Workflows["create_final_entities"]
	require.NotNil(t, wf)
	assert.True(t, wf.Enabled)
	require.NotNil(t, wf.Retry)
	assert.Equal(t, 3, wf.Retry.MaxAttempts)
	assert.Equal(t, 200*time.Millisecond, wf.Retry.InitialInterval)

	assert.True(t, model.IsEnabled("create_final_entities"))
	assert.False(t, model.IsEnabled("experimental"))
	assert.True(t, model.IsEnabled("not_configured"))
}

func TestLoad_MergesFilesAcrossDirectories(t *testing.T) {
	ctx, _ := testutil.LogContext(t)
	dir := writeFiles(t, map[string]string{
		"storage.hcl":         `storage "memory" {}`,
		"workflows/final.hcl": `workflow "create_final_entities" {}`,
		"README.md":           `not hcl`,
	})

	model, err := NewLoader().Load(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, config.StorageMemory, model.Storage.Kind)
	assert.Contains(t, model.Workflows, "create_final_entities")
	assert.Nil(t, model.Snapshot)
}

func TestLoad_SingleFile(t *testing.T) {
	ctx, _ := testutil.LogContext(t)
	dir := writeFiles(t, map[string]string{
		"a.hcl": `storage "http" {
			base_url = "http://localhost:9000/artifacts"
			headers = { Authorization = "Bearer token" }
		}`,
		"b.hcl": `storage "memory" {}`,
	})

	model, err := NewLoader().Load(ctx, filepath.Join(dir, "a.hcl"))
	require.NoError(t, err)
	assert.Equal(t, config.StorageHTTP, model.Storage.Kind)
	assert.Equal(t, "Bearer token", model.Storage.Headers["Authorization"])
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name:    "syntax error",
			files:   map[string]string{"a.hcl": `storage "file" {`},
			wantErr: "failed to parse HCL file",
		},
		{
			name:    "unknown storage kind",
			files:   map[string]string{"a.hcl": `storage "ftp" {}`},
			wantErr: "unknown storage kind",
		},
		{
			name:    "file storage without base_dir",
			files:   map[string]string{"a.hcl": `storage "file" {}`},
			wantErr: "requires base_dir",
		},
		{
			name:    "duplicate storage",
			files:   map[string]string{"a.hcl": `storage "memory" {}`, "b.hcl": `storage "memory" {}`},
			wantErr: "more than once",
		},
		{
			name:    "duplicate workflow",
			files:   map[string]string{"a.hcl": "workflow \"x\" {}\nworkflow \"x\" {}"},
			wantErr: "declared more than once",
		},
		{
			name: "duplicate input",
			files: map[string]string{
				"a.hcl": `input "n" {
					path = "a.json"
					column "id" {}
				}`,
				"b.hcl": `input "n" {
					path = "b.json"
					column "id" {}
				}`,
			},
			wantErr: "already declared",
		},
		{
			name:    "input without columns",
			files:   map[string]string{"a.hcl": `input "n" { path = "a.json" }`},
			wantErr: "at least one column",
		},
		{
			name: "unsupported column type",
			files: map[string]string{"a.hcl": `input "n" {
				path = "a.json"
				column "m" {
					type = map(string)
				}
			}`},
			wantErr: "unknown type constructor",
		},
		{
			name: "unsupported list element",
			files: map[string]string{"a.hcl": `input "n" {
				path = "a.json"
				column "m" {
					type = list(number)
				}
			}`},
			wantErr: "cannot be used for a column",
		},
		{
			name: "bad interval",
			files: map[string]string{"a.hcl": `workflow "w" {
				retry {
					initial_interval = "soon"
				}
			}`},
			wantErr: "initial_interval",
		},
		{
			name: "zero attempts",
			files: map[string]string{"a.hcl": `workflow "w" {
				retry {
					max_attempts = 0
				}
			}`},
			wantErr: "max_attempts",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, _ := testutil.LogContext(t)
			_, err := NewLoader().Load(ctx, writeFiles(t, tc.files))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoad_MissingPath(t *testing.T) {
	ctx, _ := testutil.LogContext(t)
	_, err := NewLoader().Load(ctx, filepath.Join(t.TempDir(), "nope.hcl"))
	require.Error(t, err)

	_, err = NewLoader().Load(ctx, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no .hcl files")
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("STEPFLOW_TEST_BUCKET", "http://objects.local/run")
	ctx, _ := testutil.LogContext(t)
	dir := writeFiles(t, map[string]string{
		"a.hcl": `storage "http" {
			base_url = "${env.STEPFLOW_TEST_BUCKET}/artifacts"
		}`,
	})

	model, err := NewLoader().Load(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, "http://objects.local/run/artifacts", model.Storage.BaseURL)
}

func TestNewEvalContext(t *testing.T) {
	evalCtx := newEvalContext([]string{"A=1", "B=x=y", "=broken", "EMPTY="})
	env := evalCtx.Variables["env"].AsValueMap()
	assert.Equal(t, "1", env["A"].AsString())
	assert.Equal(t, "x=y", env["B"].AsString())
	assert.Equal(t, "", env["EMPTY"].AsString())
	assert.Len(t, env, 3)
}

func TestLoad_InputSourceStepIsOptional(t *testing.T) {
	ctx, _ := testutil.LogContext(t)
	dir := writeFiles(t, map[string]string{
		"a.hcl": `input "base_entity_nodes" {
			path = "nodes.json"
			column "name" {}
		}`,
	})

	model, err := NewLoader().Load(ctx, dir)
	require.NoError(t, err)
	require.Len(t, model.Inputs, 1)
	assert.Empty(t, model.Inputs[0].SourceStep)
	assert.Equal(t, cty.String, model.Inputs[0].Columns[0].Type)
}
