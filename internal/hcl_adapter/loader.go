package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/stepflow/internal/config"
	"github.com/specialistvlad/stepflow/internal/ctxlog"
	"github.com/specialistvlad/stepflow/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ config.Loader = (*Loader)(nil)

// Load parses every .hcl file found under paths and merges their blocks into
// one model. Attribute expressions may read environment variables through
// the env object. storage and snapshot may appear at most once across all files;
// input and workflow names must be unique.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(hclFiles) == 0 {
		return nil, fmt.Errorf("no .hcl files found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	model := config.NewModel()
	inputs := make(map[string]string)
	parser := hclparse.NewParser()
	evalCtx := processEvalContext()

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, s := range root.Storage {
			if model.Storage != nil {
				return nil, fmt.Errorf("%s: storage block declared more than once", file)
			}
			if model.Storage, err = translateStorage(s, filepath.Dir(file)); err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
		}
		for _, s := range root.Snapshot {
			if model.Snapshot != nil {
				return nil, fmt.Errorf("%s: snapshot block declared more than once", file)
			}
			model.Snapshot = &config.Snapshot{Formats: s.Formats}
		}
		for _, in := range root.Inputs {
			if prev, dup := inputs[in.Name]; dup {
				return nil, fmt.Errorf("%s: input %q already declared in %s", file, in.Name, prev)
			}
			def, err := translateInput(ctx, in, filepath.Dir(file))
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			inputs[in.Name] = file
			model.Inputs = append(model.Inputs, def)
		}
		for _, w := range root.Workflows {
			if _, dup := model.Workflows[w.Name]; dup {
				return nil, fmt.Errorf("%s: workflow %q declared more than once", file, w.Name)
			}
			def, err := translateWorkflow(w)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			model.Workflows[def.Name] = def
		}
	}

	logger.Debug("HCL loading complete.", "inputs", len(model.Inputs), "workflows", len(model.Workflows), "has_storage", model.Storage != nil)
	return model, nil
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl files found.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		if !info.IsDir() {
			add(path)
			continue
		}
		files, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			add(f)
		}
	}
	return allFiles, nil
}
