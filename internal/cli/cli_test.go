package cli

import (
	"bytes"
	"testing"

	"github.com/specialistvlad/stepflow/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name     string
		args     []string
		env      map[string]string
		want     *app.Config
		wantExit bool
		wantErr  string
	}{
		{
			name: "positional path",
			args: []string{"run", "pipeline.hcl"},
			want: &app.Config{ConfigPath: "pipeline.hcl", LogFormat: "text", LogLevel: "info"},
		},
		{
			name: "all flags",
			args: []string{"run", "--config", "dir", "--log-format", "json", "--log-level", "debug", "--run-id", "r1", "--healthcheck-port", "8080"},
			want: &app.Config{ConfigPath: "dir", LogFormat: "json", LogLevel: "debug", RunID: "r1", HealthcheckPort: 8080},
		},
		{
			name: "positional wins over flag",
			args: []string{"run", "-c", "flag.hcl", "arg.hcl"},
			want: &app.Config{ConfigPath: "arg.hcl", LogFormat: "text", LogLevel: "info"},
		},
		{
			name: "environment",
			args: []string{"run"},
			env:  map[string]string{"STEPFLOW_CONFIG": "env.hcl", "STEPFLOW_LOG_LEVEL": "warn", "STEPFLOW_RUN_ID": "from-env"},
			want: &app.Config{ConfigPath: "env.hcl", LogFormat: "text", LogLevel: "warn", RunID: "from-env"},
		},
		{
			name: "flag wins over environment",
			args: []string{"run", "x.hcl", "--log-level", "error"},
			env:  map[string]string{"STEPFLOW_LOG_LEVEL": "warn"},
			want: &app.Config{ConfigPath: "x.hcl", LogFormat: "text", LogLevel: "error"},
		},
		{name: "help", args: []string{"--help"}, wantExit: true},
		{name: "no command", args: nil, wantExit: true},
		{name: "missing path", args: []string{"run"}, wantErr: "configuration path is required"},
		{name: "bad level", args: []string{"run", "p.hcl", "--log-level", "trace"}, wantErr: "log-level"},
		{name: "bad format", args: []string{"run", "p.hcl", "--log-format", "xml"}, wantErr: "log-format"},
		{name: "unknown flag", args: []string{"run", "--nope"}, wantErr: "unknown flag"},
		{name: "too many args", args: []string{"run", "a", "b"}, wantErr: "accepts at most 1 arg"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			out := &bytes.Buffer{}

			cfg, shouldExit, err := Parse(tc.args, out)
			if tc.wantErr != "" {
				require.Error(t, err)
				var exitErr *ExitError
				require.ErrorAs(t, err, &exitErr)
				assert.Equal(t, 2, exitErr.Code)
				assert.Contains(t, exitErr.Message, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantExit, shouldExit)
			if tc.wantExit {
				assert.Contains(t, out.String(), "Usage:")
				return
			}
			assert.Equal(t, tc.want, cfg)
		})
	}
}
