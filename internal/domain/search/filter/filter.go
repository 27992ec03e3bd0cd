package filter

import (
	"fmt"
	"sort"
)

// MaxConditions caps the number of filter clauses per query.
const MaxConditions = 16

// filterableFields are the canonical object fields a query may filter on.
// The project scope is enforced separately and is always present.
var filterableFields = map[string]bool{
	"kind":          true,
	"org_id":        true,
	"status":        true,
	"source_system": true,
	"external_key":  true,
	"mime_type":     true,
	"parent_id":     true,
	"tags":          true,
}

// Condition is one exact-match clause on an indexed tag field.
type Condition struct {
	key   string
	value string
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Value returns the exact match value.
func (c Condition) Value() string { return c.value }

// Filters is an AND-combined set of exact-match conditions.
type Filters struct {
	conditions []Condition
}

// New validates field names and builds a Filters set. Map iteration order is
// not deterministic, so conditions are sorted by key to keep built store
// queries stable.
func New(fields map[string]string) (Filters, error) {
	if len(fields) > MaxConditions {
		return Filters{}, fmt.Errorf("too many filters (max %d)", MaxConditions)
	}
	conds := make([]Condition, 0, len(fields))
	for k, v := range fields {
		if !filterableFields[k] {
			return Filters{}, fmt.Errorf("unknown filter field %q", k)
		}
		if v == "" {
			return Filters{}, fmt.Errorf("empty filter value for field %q", k)
		}
		conds = append(conds, Condition{key: k, value: v})
	}
	sort.Slice(conds, func(i, j int) bool { return conds[i].key < conds[j].key })
	return Filters{conditions: conds}, nil
}

// Conditions returns the clauses in key order.
func (f Filters) Conditions() []Condition { return f.conditions }

// IsEmpty reports whether the set has no conditions.
func (f Filters) IsEmpty() bool { return len(f.conditions) == 0 }
