package metric

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Resolver expands a top-level metric configuration into its transitive
// dependency closure and orders it for execution.
type Resolver struct {
	log logrus.FieldLogger
}

// NewResolver creates a new dependency resolver.
func NewResolver(log logrus.FieldLogger) *Resolver {
	return &Resolver{
		log: log.WithField("component", "metric_resolver"),
	}
}

// node is one configuration in the dependency graph under construction.
type node struct {
	cfg  Configuration
	deps []string // IDs of configurations this one depends on
}

// Resolve returns every transitive dependency of top plus top itself, each
// exactly once, ordered so a configuration's dependencies always precede it.
// Cycles are a programming error in metric declarations and are fatal.
func (r *Resolver) Resolve(top Configuration, capability Capability) ([]Configuration, error) {
	r.log.WithFields(logrus.Fields{
		"metric":     top.Name,
		"capability": capability,
	}).Debug("resolving metric dependencies")

	nodes := make(map[string]*node)
	order := make([]string, 0) // first-visit order, keeps output deterministic

	if err := r.expand(top, capability, nodes, &order); err != nil {
		return nil, err
	}

	sorted, err := topologicalSort(nodes, order)
	if err != nil {
		return nil, err
	}

	r.log.WithFields(logrus.Fields{
		"metric": top.Name,
		"count":  len(sorted),
	}).Debug("resolved metric dependencies")

	return sorted, nil
}

// expand recursively walks dependency declarations, deduplicating by
// structural identity.
func (r *Resolver) expand(cfg Configuration, capability Capability, nodes map[string]*node, order *[]string) error {
	id := cfg.ID()
	if _, seen := nodes[id]; seen {
		return nil
	}

	impl, err := Lookup(cfg.Name, capability)
	if err != nil {
		return err
	}

	n := &node{cfg: cfg}
	nodes[id] = n
	*order = append(*order, id)

	if impl.Dependencies == nil {
		return nil
	}

	deps, err := impl.Dependencies(cfg, capability)
	if err != nil {
		return fmt.Errorf("declaring dependencies of %s: %w", cfg.Name, err)
	}

	for _, dep := range deps {
		n.deps = append(n.deps, dep.ID())
		if err := r.expand(dep, capability, nodes, order); err != nil {
			return err
		}
	}

	return nil
}

// topologicalSort runs Kahn's algorithm over the dependency graph.
// Dependencies come out strictly before their dependents.
func topologicalSort(nodes map[string]*node, order []string) ([]Configuration, error) {
	dependents := make(map[string][]string) // dep ID → dependent IDs
	inDegree := make(map[string]int, len(nodes))

	for _, id := range order {
		inDegree[id] = len(nodes[id].deps)
		for _, dep := range nodes[id].deps {
			dependents[dep] = append(dependents[dep], id)
		}
	}

	queue := make([]string, 0, len(nodes))
	for _, id := range order {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	sorted := make([]Configuration, 0, len(nodes))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		sorted = append(sorted, nodes[current].cfg)

		for _, dependent := range dependents[current] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(sorted) != len(nodes) {
		return nil, fmt.Errorf("circular dependency detected in metric declarations")
	}

	return sorted, nil
}
