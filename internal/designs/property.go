package designs

// Label is the display name of a [Property]: either a constant string or a
// function computing it from the record. The zero value is an empty label.
type Label struct {
	text string
	fn   func(Record, *Table) string
}

// ConstLabel returns a fixed label.
func ConstLabel(text string) Label {
	return Label{text: text}
}

// ComputedLabel returns a label derived from the rendered record.
func ComputedLabel(fn func(rec Record, table *Table) string) Label {
	return Label{fn: fn}
}

// Resolve returns the label text for rec.
func (l Label) Resolve(rec Record, table *Table) string {
	if l.fn != nil {
		return l.fn(rec, table)
	}
	return l.text
}

// ValueFunc produces the display value of a property. Returning ok=false
// omits the property from every rendering (e.g. a zero cost).
type ValueFunc func(rec Record, table *Table) (value string, ok bool)

// Property is one labelled value extracted from a design record. Properties
// are stateless and shared between renderings.
type Property struct {
	Label      Label
	Value      ValueFunc
	ForceLabel bool
}

// Field is a rendered property. Labeled reports whether Name should be shown.
type Field struct {
	Name    string
	Value   string
	Labeled bool
}

// NewProperty returns a property that shows its label only when forceLabel
// is set.
func NewProperty(label Label, value ValueFunc, forceLabel bool) Property {
	return Property{Label: label, Value: value, ForceLabel: forceLabel}
}

// NewEmbedProperty returns a property that always shows its label, as
// required for structured embed fields.
func NewEmbedProperty(label Label, value ValueFunc) Property {
	return Property{Label: label, Value: value, ForceLabel: true}
}

// Render evaluates the property against rec. ok=false means the property
// has nothing to say and must be skipped.
func (p Property) Render(rec Record, table *Table) (Field, bool) {
	return p.render(rec, table, p.ForceLabel)
}

func (p Property) render(rec Record, table *Table, forceLabel bool) (Field, bool) {
	if p.Value == nil {
		return Field{}, false
	}
	value, ok := p.Value(rec, table)
	if !ok {
		return Field{}, false
	}
	f := Field{Value: value}
	if forceLabel {
		f.Name = p.Label.Resolve(rec, table)
		f.Labeled = true
	}
	return f, true
}

// Text formats the field for plain-text output.
func (f Field) Text() string {
	if f.Labeled {
		return f.Name + " = " + f.Value
	}
	return f.Value
}

// Attr is a [ValueFunc] returning the raw value of a record attribute,
// omitting it when absent or empty.
func Attr(field string) ValueFunc {
	return func(rec Record, _ *Table) (string, bool) {
		v, ok := rec.Get(field)
		if !ok || v == "" {
			return "", false
		}
		return v, true
	}
}
