package mmhealth

import "iter"

// Criteria maps field names to required values.
type Criteria map[string]string

// Matches reports whether every pair in c is present and equal in r.
// Fields of r that c does not mention are ignored.
func (c Criteria) Matches(r StatusRecord) bool {
	for name, want := range c {
		got, ok := r.Get(name)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// Select returns the first record in document order that matches c.
// The boolean is false when nothing matches.
func Select(records iter.Seq[StatusRecord], c Criteria) (StatusRecord, bool) {
	for r := range records {
		if c.Matches(r) {
			return r, true
		}
	}
	return StatusRecord{}, false
}

// NodeCriteria selects the NODE-entity row of the given component.
func NodeCriteria(component string) Criteria {
	return Criteria{FieldComponent: component, FieldEntityType: "NODE"}
}
