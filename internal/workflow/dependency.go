package workflow

import (
	"fmt"
	"regexp"
	"strings"
)

// dependencyPrefix marks a reference to another workflow's output.
const dependencyPrefix = "workflow:"

// nameRegex validates step and artifact names.
var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// Dependency names an artifact and the step that produces it.
type Dependency struct {
	SourceStep string
	Artifact   string
}

// On declares a dependency on the artifact a step publishes under its own name.
func On(step string) Dependency {
	return Dependency{SourceStep: step, Artifact: step}
}

// OnArtifact declares a dependency on a named artifact of a step.
func OnArtifact(step, artifact string) Dependency {
	return Dependency{SourceStep: step, Artifact: artifact}
}

// String serializes the dependency into its canonical reference form.
func (d Dependency) String() string {
	if d.Artifact == d.SourceStep {
		return dependencyPrefix + d.SourceStep
	}
	return dependencyPrefix + d.SourceStep + "/" + d.Artifact
}

// ParseDependency parses `workflow:<step>`, `workflow:<step>/<artifact>` or a
// bare `<step>`.
func ParseDependency(raw string) (Dependency, error) {
	if raw == "" {
		return Dependency{}, fmt.Errorf("dependency reference cannot be empty")
	}

	ref := strings.TrimPrefix(raw, dependencyPrefix)
	step, artifact, hasArtifact := strings.Cut(ref, "/")
	if !hasArtifact {
		artifact = step
	}

	if err := ValidateName(step); err != nil {
		return Dependency{}, fmt.Errorf("invalid dependency %q: step: %w", raw, err)
	}
	if err := ValidateName(artifact); err != nil {
		return Dependency{}, fmt.Errorf("invalid dependency %q: artifact: %w", raw, err)
	}
	return Dependency{SourceStep: step, Artifact: artifact}, nil
}

// ValidateName checks a step or artifact name.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if name == "." || name == ".." || name == "-" {
		return fmt.Errorf("invalid name %q", name)
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("invalid name format: %q", name)
	}
	return nil
}
