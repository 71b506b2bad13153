// Package knowledge holds the static plant/disease reference data that model
// predictions are joined against.
package knowledge

import "fmt"

// Table maps every declared PlantClass to its Explanation. It is never
// mutated after construction and is safe for concurrent use.
type Table struct {
	order    []PlantClass
	records  map[PlantClass]Explanation
	authored map[PlantClass]bool
}

// Default is built once at package initialization.
var Default = NewTable(classes, authored)

// NewTable fills every declared class missing from records with a
// synthesized entry. Neither argument is retained.
func NewTable(declared []PlantClass, records map[PlantClass]Explanation) *Table {
	t := &Table{
		order:    make([]PlantClass, len(declared)),
		records:  make(map[PlantClass]Explanation, len(declared)),
		authored: make(map[PlantClass]bool, len(records)),
	}
	copy(t.order, declared)
	for class, rec := range records {
		t.records[class] = rec
		t.authored[class] = true
	}
	for _, class := range declared {
		if _, ok := t.records[class]; !ok {
			t.records[class] = synthesize(class)
		}
	}
	return t
}

// Lookup never fails: unknown classes get a synthesized record.
func (t *Table) Lookup(class PlantClass) Explanation {
	if rec, ok := t.records[class]; ok {
		return rec
	}
	return synthesize(class)
}

// Known reports whether class is part of the declared enumeration or was
// explicitly authored.
func (t *Table) Known(class PlantClass) bool {
	_, ok := t.records[class]
	return ok
}

// Classes returns the declared classes in order.
func (t *Table) Classes() []PlantClass {
	out := make([]PlantClass, len(t.order))
	copy(out, t.order)
	return out
}

// Authored reports whether class has a hand-written record.
func (t *Table) Authored(class PlantClass) bool {
	return t.authored[class]
}

// ValidateFallback checks that class can stand in for a missing prediction.
func (t *Table) ValidateFallback(class PlantClass) error {
	if _, _, ok := class.Split(); !ok {
		return fmt.Errorf("fallback class %q has no %q separator", class, Separator)
	}
	if !t.Known(class) {
		return fmt.Errorf("fallback class %q is not a known class", class)
	}
	return nil
}

// Lookup queries the Default table.
func Lookup(class PlantClass) Explanation {
	return Default.Lookup(class)
}

// Known queries the Default table.
func Known(class PlantClass) bool {
	return Default.Known(class)
}
