package workflow

import (
	"fmt"

	"github.com/specialistvlad/stepflow/internal/table"
)

// TransformFunc is the pure transformation a step applies to its resolved
// inputs. It must not perform I/O or touch the RunContext. Returning a nil
// table means the step has nothing to publish.
type TransformFunc func(in *Inputs) (*table.Table, error)

// Descriptor is the static metadata of one pipeline step.
type Descriptor struct {
	// Name is unique within a registry and is also the artifact name the step
	// publishes its output under.
	Name        string
	Description string

	// Dependencies returns the upstream artifacts the step requires, in the
	// order they are handed to Transform. It must be pure: planners call it
	// any number of times before execution. nil means a source step.
	Dependencies func() []Dependency

	Transform TransformFunc

	// Schema, when set, is the exact column layout the output must have.
	Schema []table.Column
}

// DependencyList calls Dependencies, treating a nil func as no dependencies.
func (d Descriptor) DependencyList() []Dependency {
	if d.Dependencies == nil {
		return nil
	}
	return d.Dependencies()
}

// Validate checks that the descriptor is complete and its dependency
// references are well-formed.
func (d Descriptor) Validate() error {
	if err := ValidateName(d.Name); err != nil {
		return fmt.Errorf("workflow name: %w", err)
	}
	if d.Transform == nil {
		return fmt.Errorf("workflow %q: transform cannot be nil", d.Name)
	}
	seen := make(map[string]struct{})
	for _, dep := range d.DependencyList() {
		if err := ValidateName(dep.SourceStep); err != nil {
			return fmt.Errorf("workflow %q: dependency %s: %w", d.Name, dep, err)
		}
		if err := ValidateName(dep.Artifact); err != nil {
			return fmt.Errorf("workflow %q: dependency %s: %w", d.Name, dep, err)
		}
		if dep.SourceStep == d.Name || dep.Artifact == d.Name {
			return fmt.Errorf("workflow %q cannot depend on its own output", d.Name)
		}
		if _, dup := seen[dep.Artifact]; dup {
			return fmt.Errorf("workflow %q declares artifact %q twice", d.Name, dep.Artifact)
		}
		seen[dep.Artifact] = struct{}{}
	}
	if len(d.Schema) > 0 {
		if _, err := table.New(d.Schema...); err != nil {
			return fmt.Errorf("workflow %q: output schema: %w", d.Name, err)
		}
	}
	return nil
}

// Inputs holds a step's resolved dependency tables in declaration order.
type Inputs struct {
	names  []string
	tables map[string]*table.Table
}

// NewInputs creates an empty input set.
func NewInputs() *Inputs {
	return &Inputs{tables: make(map[string]*table.Table)}
}

// Add appends a resolved artifact. Adding a name twice replaces the table but
// keeps its original position.
func (in *Inputs) Add(name string, t *table.Table) {
	if _, ok := in.tables[name]; !ok {
		in.names = append(in.names, name)
	}
	in.tables[name] = t
}

// Get returns the table resolved for an artifact name.
func (in *Inputs) Get(name string) (*table.Table, bool) {
	t, ok := in.tables[name]
	return t, ok
}

// Names returns the artifact names in declaration order.
func (in *Inputs) Names() []string {
	return append([]string(nil), in.names...)
}

// Len returns the number of resolved inputs.
func (in *Inputs) Len() int {
	return len(in.names)
}
