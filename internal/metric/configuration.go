// Package metric provides the backend-polymorphic metric computation core:
// metric configurations with structural identity, a process-wide registry of
// per-capability implementations, transitive dependency resolution, and
// ordered execution against an execution engine.
package metric

import (
	"fmt"
	"sort"
	"strings"
)

// Capability identifies the kind of execution engine a metric implementation
// targets. New backends are added by registering implementations under a new
// capability, not by branching on engine types inside metric code.
type Capability string

const (
	// CapabilityInMemory targets engines holding a fully materialized table.
	CapabilityInMemory Capability = "in_memory"
	// CapabilityDistributed targets lazy, windowed dataframe engines.
	CapabilityDistributed Capability = "distributed"
	// CapabilityRelational targets SQL engines evaluating generated expressions.
	CapabilityRelational Capability = "relational"
)

// DomainType tells an engine how to resolve domain kwargs into an executable
// scope.
type DomainType string

const (
	// DomainTable scopes a computation to a whole table.
	DomainTable DomainType = "table"
	// DomainColumn scopes a computation to a single column.
	DomainColumn DomainType = "column"
	// DomainColumnPair scopes a computation to a pair of columns.
	DomainColumnPair DomainType = "column_pair"
)

// Well-known domain kwarg keys.
const (
	KwargColumn       = "column"
	KwargRowCondition = "row_condition"
	KwargBatchID      = "batch_id"
)

// Kwargs is a parameter map. Treated as immutable once attached to a
// Configuration; use Clone or Without to derive modified copies.
type Kwargs map[string]any

// Clone returns a shallow copy.
func (k Kwargs) Clone() Kwargs {
	out := make(Kwargs, len(k))
	for key, v := range k {
		out[key] = v
	}
	return out
}

// Without returns a copy with the given keys removed. Used by dependency
// declarations that rewrite domain scope, e.g. a column metric producing a
// table-scoped dependency drops the column key but keeps row restrictions.
func (k Kwargs) Without(keys ...string) Kwargs {
	out := k.Clone()
	for _, key := range keys {
		delete(out, key)
	}
	return out
}

// String returns the value under key as a string.
func (k Kwargs) String(key string) (string, bool) {
	v, ok := k[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Bool returns the value under key as a bool, defaulting to false when absent
// or not a bool.
func (k Kwargs) Bool(key string) bool {
	v, ok := k[key]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Float returns the value under key as a float64, or def when absent.
func (k Kwargs) Float(key string, def float64) float64 {
	v, ok := k[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return def
}

// canonical renders kwargs as a deterministic string: keys sorted, values
// formatted recursively. Two kwargs maps with equal contents always produce
// the same encoding regardless of insertion order.
func (k Kwargs) canonical() string {
	keys := make([]string, 0, len(k))
	for key := range k {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(key)
		b.WriteByte('=')
		writeCanonicalValue(&b, k[key])
	}
	b.WriteByte('}')
	return b.String()
}

func writeCanonicalValue(b *strings.Builder, v any) {
	switch val := v.(type) {
	case nil:
		b.WriteString("<nil>")
	case Kwargs:
		b.WriteString(val.canonical())
	case map[string]any:
		b.WriteString(Kwargs(val).canonical())
	case []any:
		b.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				b.WriteByte(',')
			}
			writeCanonicalValue(b, item)
		}
		b.WriteByte(']')
	default:
		fmt.Fprintf(b, "%v", val)
	}
}

// Configuration identifies one metric computation: a metric name plus the
// kwargs selecting what data it operates on and how it computes. Structural
// identity covers all three fields; two configurations with identical fields
// are the same computation and are deduplicated by the resolver.
type Configuration struct {
	Name         string
	DomainKwargs Kwargs
	ValueKwargs  Kwargs
}

// NewConfiguration builds a Configuration, cloning both kwarg maps so later
// caller mutation cannot change the configuration's identity.
func NewConfiguration(name string, domainKwargs, valueKwargs Kwargs) Configuration {
	return Configuration{
		Name:         name,
		DomainKwargs: domainKwargs.Clone(),
		ValueKwargs:  valueKwargs.Clone(),
	}
}

// ID returns the configuration's structural identity. Configurations with
// equal names and kwarg contents share an ID and are computed exactly once
// per validation run.
func (c Configuration) ID() string {
	return c.Name + "|" + c.DomainKwargs.canonical() + "|" + c.ValueKwargs.canonical()
}

// ColumnType describes one introspected column.
type ColumnType struct {
	Name string
	Type string
}
