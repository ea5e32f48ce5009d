// Package designs provides the generic entity-design layer of starbridge:
// fetching raw design tables from the game API, caching them with a refresh
// interval, looking designs up by id or name and rendering them into text
// and embed shapes.
//
// A design is a loosely-typed record of string attributes as delivered by
// the game API. Entity kinds (trainings, research, items, …) are declared by
// composing [Property] values into a [Kind]; the framework never needs to
// know kind-specific relationships.
package designs

import (
	"fmt"
	"strconv"
	"time"
)

// Record is one entity design as returned by the data source. Values are
// raw strings; numeric and enum fields require explicit parsing.
type Record map[string]string

// Get returns the raw value of field and whether it is present.
func (r Record) Get(field string) (string, bool) {
	v, ok := r[field]
	return v, ok
}

// String returns the value of field or "" when absent.
func (r Record) String(field string) string {
	return r[field]
}

// Int parses field as an integer. Absent fields yield an error so callers
// never mistake a missing value for zero.
func (r Record) Int(field string) (int, error) {
	v, ok := r[field]
	if !ok {
		return 0, fmt.Errorf("designs: field %q is absent", field)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("designs: field %q: %w", field, err)
	}
	return n, nil
}

// IntOr parses field as an integer, returning def when the field is absent
// or not a number.
func (r Record) IntOr(field string, def int) int {
	n, err := r.Int(field)
	if err != nil {
		return def
	}
	return n
}

// Table is an immutable snapshot of all designs of one entity kind, keyed
// by id. Tables are replaced wholesale on refresh and never mutated.
type Table struct {
	idField   string
	nameField string
	byID      map[string]Record
	order     []string
	skipped   int
	fetchedAt time.Time
}

// NewTable builds a [Table] from records in source order. Records missing
// the id or name field are excluded and counted in [Table.Skipped].
// When ids collide, the first record wins.
func NewTable(records []Record, idField, nameField string) *Table {
	t := &Table{
		idField:   idField,
		nameField: nameField,
		byID:      make(map[string]Record, len(records)),
		order:     make([]string, 0, len(records)),
	}
	for _, rec := range records {
		id, ok := rec.Get(idField)
		if !ok || id == "" {
			t.skipped++
			continue
		}
		if _, ok := rec.Get(nameField); !ok {
			t.skipped++
			continue
		}
		if _, dup := t.byID[id]; dup {
			t.skipped++
			continue
		}
		t.byID[id] = rec
		t.order = append(t.order, id)
	}
	return t
}

// Get returns the record with the given id.
func (t *Table) Get(id string) (Record, bool) {
	if t == nil {
		return nil, false
	}
	rec, ok := t.byID[id]
	return rec, ok
}

// Len returns the number of records in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

// IDs returns all ids in source order. The returned slice is a copy.
func (t *Table) IDs() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Skipped returns how many source records were excluded as malformed or
// duplicate when the table was built.
func (t *Table) Skipped() int {
	if t == nil {
		return 0
	}
	return t.skipped
}

// IDField is the name of the attribute holding the design id.
func (t *Table) IDField() string { return t.idField }

// NameField is the name of the attribute holding the display name.
func (t *Table) NameField() string { return t.nameField }

// FetchedAt reports when the table was retrieved from the data source.
func (t *Table) FetchedAt() time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.fetchedAt
}

// Name returns the display name of the record with the given id.
func (t *Table) Name(id string) (string, bool) {
	rec, ok := t.Get(id)
	if !ok {
		return "", false
	}
	return rec.Get(t.nameField)
}
