// This file contains the logic for translating the decoded HCL structs into
// the format-agnostic configuration model defined in the config package.

package hcl_adapter

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/specialistvlad/stepflow/internal/config"
	"github.com/specialistvlad/stepflow/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// translateStorage converts a storage block, checking the settings its kind
// needs. A relative base_dir is resolved against baseDir, the directory of the
// declaring file.
func translateStorage(s *StorageBlock, baseDir string) (*config.Storage, error) {
	out := &config.Storage{Kind: s.Kind, Headers: s.Headers}
	if s.BaseDir != nil {
		out.BaseDir = *s.BaseDir
	}
	if s.BaseURL != nil {
		out.BaseURL = *s.BaseURL
	}

	switch s.Kind {
	case config.StorageFile:
		if out.BaseDir == "" {
			return nil, fmt.Errorf("storage %q requires base_dir", s.Kind)
		}
		if !filepath.IsAbs(out.BaseDir) {
			out.BaseDir = filepath.Join(baseDir, out.BaseDir)
		}
	case config.StorageHTTP:
		if out.BaseURL == "" {
			return nil, fmt.Errorf("storage %q requires base_url", s.Kind)
		}
	case config.StorageMemory:
	default:
		return nil, fmt.Errorf("unknown storage kind %q: must be 'file', 'http' or 'memory'", s.Kind)
	}
	return out, nil
}

// translateInput converts an input block. Relative paths are resolved
// against baseDir, the directory of the declaring file.
func translateInput(ctx context.Context, in *InputBlock, baseDir string) (*config.Input, error) {
	logger := ctxlog.FromContext(ctx).With("input", in.Name)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Translating HCL input to internal config model.")

	if len(in.Columns) == 0 {
		return nil, fmt.Errorf("input %q must declare at least one column", in.Name)
	}

	path := in.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	out := &config.Input{Name: in.Name, Path: path}
	if in.SourceStep != nil {
		out.SourceStep = *in.SourceStep
	}

	for _, col := range in.Columns {
		ty := cty.String
		if isExprDefined(ctx, col.Type, "type") {
			var err error
			if ty, err = typeExprToCtyType(ctx, col.Type); err != nil {
				return nil, fmt.Errorf("in input '%s', column '%s': %w", in.Name, col.Name, err)
			}
		}
		out.Columns = append(out.Columns, &config.Column{Name: col.Name, Type: ty})
	}
	return out, nil
}

// translateWorkflow converts a workflow block. Omitted settings keep their
// defaults: enabled, a single attempt.
func translateWorkflow(w *WorkflowBlock) (*config.Workflow, error) {
	out := &config.Workflow{Name: w.Name, Enabled: true}
	if w.Enabled != nil {
		out.Enabled = *w.Enabled
	}
	if w.Retry == nil {
		return out, nil
	}

	retry := &config.Retry{MaxAttempts: 1}
	if w.Retry.MaxAttempts != nil {
		if *w.Retry.MaxAttempts < 1 {
			return nil, fmt.Errorf("workflow %q: max_attempts must be at least 1, got %d", w.Name, *w.Retry.MaxAttempts)
		}
		retry.MaxAttempts = *w.Retry.MaxAttempts
	}
	var err error
	if retry.InitialInterval, err = parseInterval(w.Retry.InitialInterval); err != nil {
		return nil, fmt.Errorf("workflow %q: initial_interval: %w", w.Name, err)
	}
	if retry.MaxInterval, err = parseInterval(w.Retry.MaxInterval); err != nil {
		return nil, fmt.Errorf("workflow %q: max_interval: %w", w.Name, err)
	}
	out.Retry = retry
	return out, nil
}

func parseInterval(s *string) (time.Duration, error) {
	if s == nil {
		return 0, nil
	}
	d, err := time.ParseDuration(*s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("interval cannot be negative: %s", *s)
	}
	return d, nil
}
