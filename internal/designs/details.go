package designs

import "strings"

// Kind declares how designs of one entity kind are rendered.
type Kind struct {
	Title       Property
	Description Property
	Long        []Property
	Short       []Property
	Embed       []Property
}

// Details renders rec with the kind's properties.
func (k Kind) Details(rec Record, table *Table) *Details {
	return NewDetails(rec, table, k.Title, k.Description, k.Long, k.Short, k.Embed)
}

// Embed is the structured, markup-free rendering of a design, consumed by
// presentation sinks such as Discord embeds.
type Embed struct {
	Title       string
	Description string
	Fields      []Field
}

// Details is the rendering-ready projection of one design record. All values
// are computed once at construction; a Details is immutable afterwards.
type Details struct {
	title       string
	description string
	long        []Field
	short       []Field
	embed       []Field
}

// NewDetails evaluates every property against rec. table is passed through
// to property functions for cross-references and may be nil.
func NewDetails(rec Record, table *Table, title, description Property, long, short, embed []Property) *Details {
	d := &Details{
		long:  renderAll(long, rec, table, false),
		short: renderAll(short, rec, table, false),
		embed: renderAll(embed, rec, table, true),
	}
	if f, ok := title.Render(rec, table); ok {
		d.title = f.Value
	}
	if f, ok := description.Render(rec, table); ok {
		d.description = f.Value
	}
	return d
}

func renderAll(props []Property, rec Record, table *Table, forceLabel bool) []Field {
	fields := make([]Field, 0, len(props))
	for _, p := range props {
		force := p.ForceLabel || forceLabel
		if f, ok := p.render(rec, table, force); ok {
			fields = append(fields, f)
		}
	}
	return fields
}

// Title returns the rendered title.
func (d *Details) Title() string { return d.title }

// Description returns the rendered description.
func (d *Details) Description() string { return d.description }

// Long returns the rendered long-form fields.
func (d *Details) Long() []Field { return d.long }

// Short returns the rendered short-form fields.
func (d *Details) Short() []Field { return d.short }

// TextLong renders the title in bold, the description in italics and one
// line per long-form field.
func (d *Details) TextLong() []string {
	lines := make([]string, 0, len(d.long)+2)
	lines = append(lines, "**"+d.title+"**", "_"+d.description+"_")
	for _, f := range d.long {
		lines = append(lines, f.Text())
	}
	return lines
}

// TextShort renders a single line "title (field, field, …)".
func (d *Details) TextShort() string {
	parts := make([]string, 0, len(d.short))
	for _, f := range d.short {
		parts = append(parts, f.Text())
	}
	return d.title + " (" + strings.Join(parts, ", ") + ")"
}

// Embed returns the structured rendering. Every field carries its label.
func (d *Details) Embed() Embed {
	fields := make([]Field, len(d.embed))
	copy(fields, d.embed)
	return Embed{
		Title:       d.title,
		Description: d.description,
		Fields:      fields,
	}
}
