package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/specialistvlad/stepflow/internal/workflow"
)

// CycleError indicates that workflow dependencies form a cycle.
type CycleError struct {
	// Cycle lists the workflows that could not be ordered.
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("workflow dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

// UnknownDependencyError indicates that no enabled workflow or seeded input
// provides an artifact a workflow depends on.
type UnknownDependencyError struct {
	Workflow   string
	Dependency workflow.Dependency
	// Producer is the registered workflow expected to publish the artifact.
	Producer string
	// Disabled is true when Producer exists but is disabled.
	Disabled bool
}

func (e *UnknownDependencyError) Error() string {
	if e.Disabled {
		return fmt.Sprintf("workflow %q depends on %s, but workflow %q is disabled", e.Workflow, e.Dependency, e.Producer)
	}
	return fmt.Sprintf("workflow %q depends on %s, which is neither produced by a registered workflow nor provided as an input", e.Workflow, e.Dependency)
}

// UnpublishedArtifactError indicates a dependency on an artifact its source
// workflow never publishes. Workflows publish only under their own name, so
// such an artifact has to be seeded as an input.
type UnpublishedArtifactError struct {
	Workflow   string
	Dependency workflow.Dependency
}

func (e *UnpublishedArtifactError) Error() string {
	return fmt.Sprintf("workflow %q depends on %s, but workflow %q only publishes %q and no input provides %q",
		e.Workflow, e.Dependency, e.Dependency.SourceStep, e.Dependency.SourceStep, e.Dependency.Artifact)
}

// Plan is an ordered list of workflows to execute.
type Plan struct {
	Steps []workflow.Descriptor
}

// Names returns the planned workflow names in execution order.
func (p *Plan) Names() []string {
	names := make([]string, len(p.Steps))
	for i, d := range p.Steps {
		names[i] = d.Name
	}
	return names
}

// BuildPlan orders the enabled workflows in reg.
//
// A dependency whose source step is a registered workflow orders the consumer
// after that workflow. When the source step is disabled, or publishes under a
// different name than the requested artifact, the artifact must be listed in
// available, the artifacts already seeded into the runtime cache. enabled
// reports whether a workflow should run; nil means all are enabled.
func BuildPlan(reg *workflow.Registry, available []string, enabled func(name string) bool) (*Plan, error) {
	if enabled == nil {
		enabled = func(string) bool { return true }
	}
	seeded := make(map[string]bool, len(available))
	for _, name := range available {
		seeded[name] = true
	}

	g := newGraph()
	for _, name := range reg.Names() {
		if enabled(name) {
			g.addNode(name)
		}
	}

	for _, name := range g.nodes {
		d, _ := reg.Get(name)
		for _, dep := range d.DependencyList() {
			producer, err := resolveProducer(reg, g, seeded, name, dep)
			if err != nil {
				return nil, err
			}
			if producer != "" {
				g.addEdge(producer, name)
			}
		}
	}

	order, err := g.topologicalSort()
	if err != nil {
		return nil, err
	}

	plan := &Plan{Steps: make([]workflow.Descriptor, 0, len(order))}
	for _, name := range order {
		d, _ := reg.Get(name)
		plan.Steps = append(plan.Steps, d)
	}
	return plan, nil
}

// resolveProducer returns the enabled workflow consumer must run after, or ""
// when the dependency is satisfied by a seeded input alone.
func resolveProducer(reg *workflow.Registry, g *graph, seeded map[string]bool, consumer string, dep workflow.Dependency) (string, error) {
	if _, registered := reg.Get(dep.SourceStep); registered {
		if !g.nodeSet[dep.SourceStep] {
			if seeded[dep.Artifact] {
				return "", nil
			}
			return "", &UnknownDependencyError{Workflow: consumer, Dependency: dep, Producer: dep.SourceStep, Disabled: true}
		}
		if dep.Artifact != dep.SourceStep && !seeded[dep.Artifact] {
			return "", &UnpublishedArtifactError{Workflow: consumer, Dependency: dep}
		}
		return dep.SourceStep, nil
	}

	// The source step runs outside this registry. A workflow named after the
	// artifact still publishes it.
	_, registered := reg.Get(dep.Artifact)
	switch {
	case g.nodeSet[dep.Artifact]:
		return dep.Artifact, nil
	case seeded[dep.Artifact]:
		return "", nil
	case registered:
		return "", &UnknownDependencyError{Workflow: consumer, Dependency: dep, Producer: dep.Artifact, Disabled: true}
	default:
		return "", &UnknownDependencyError{Workflow: consumer, Dependency: dep}
	}
}

// graph is a directed graph where an edge from A to B means A must complete
// before B starts.
type graph struct {
	adjacency map[string][]string
	nodes     []string
	nodeSet   map[string]bool
}

func newGraph() *graph {
	return &graph{
		adjacency: make(map[string][]string),
		nodeSet:   make(map[string]bool),
	}
}

func (g *graph) addNode(name string) {
	if g.nodeSet[name] {
		return
	}
	g.nodeSet[name] = true
	g.nodes = append(g.nodes, name)
}

func (g *graph) addEdge(from, to string) {
	g.adjacency[from] = append(g.adjacency[from], to)
}

// topologicalSort uses Kahn's algorithm. Among nodes that are ready at the
// same time the lexically smallest runs first.
func (g *graph) topologicalSort() ([]string, error) {
	inDegree := make(map[string]int, len(g.nodes))
	for _, node := range g.nodes {
		inDegree[node] = 0
	}
	for _, neighbors := range g.adjacency {
		for _, neighbor := range neighbors {
			inDegree[neighbor]++
		}
	}

	var ready []string
	for _, node := range g.nodes {
		if inDegree[node] == 0 {
			ready = append(ready, node)
		}
	}

	result := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		sort.Strings(ready)
		node := ready[0]
		ready = ready[1:]
		result = append(result, node)

		for _, neighbor := range g.adjacency[node] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				ready = append(ready, neighbor)
			}
		}
	}

	if len(result) != len(g.nodes) {
		var cycle []string
		for _, node := range g.nodes {
			if inDegree[node] > 0 {
				cycle = append(cycle, node)
			}
		}
		return nil, &CycleError{Cycle: cycle}
	}
	return result, nil
}
