package designs_test

import (
	"reflect"
	"strconv"
	"testing"

	"github.com/MrWong99/starbridge/internal/designs"
)

func omit(designs.Record, *designs.Table) (string, bool) { return "", false }

func costValue(rec designs.Record, _ *designs.Table) (string, bool) {
	n := rec.IntOr("Cost", 0)
	if n == 0 {
		return "", false
	}
	return strconv.Itoa(n) + " min", true
}

func testKind() designs.Kind {
	return designs.Kind{
		Title:       designs.NewProperty(designs.ConstLabel("Name"), designs.Attr("Name"), false),
		Description: designs.NewProperty(designs.ConstLabel("Description"), designs.Attr("Description"), false),
		Long: []designs.Property{
			designs.NewProperty(designs.ConstLabel("Cost"), costValue, true),
			designs.NewProperty(designs.ConstLabel("Hidden"), omit, true),
			designs.NewProperty(designs.ConstLabel("Rank"), designs.Attr("Rank"), false),
		},
		Short: []designs.Property{
			designs.NewProperty(designs.ConstLabel("Rank"), designs.Attr("Rank"), false),
			designs.NewProperty(designs.ConstLabel("Hidden"), omit, false),
			designs.NewProperty(designs.ConstLabel("Cost"), costValue, false),
		},
		Embed: []designs.Property{
			designs.NewEmbedProperty(designs.ConstLabel("Cost"), costValue),
			designs.NewEmbedProperty(designs.ConstLabel("Hidden"), omit),
			designs.NewProperty(designs.ComputedLabel(func(rec designs.Record, _ *designs.Table) string {
				return "Rank of " + rec.String("Name")
			}), designs.Attr("Rank"), false),
		},
	}
}

func TestDetails_TextLong(t *testing.T) {
	t.Parallel()
	rec := designs.Record{"Name": "Alpha", "Description": "First", "Cost": "50", "Rank": "3"}
	d := testKind().Details(rec, nil)

	want := []string{"**Alpha**", "_First_", "Cost = 50 min", "3"}
	if got := d.TextLong(); !reflect.DeepEqual(got, want) {
		t.Errorf("TextLong() = %q, want %q", got, want)
	}
}

func TestDetails_TextShort(t *testing.T) {
	t.Parallel()
	rec := designs.Record{"Name": "Alpha", "Cost": "50", "Rank": "3"}
	d := testKind().Details(rec, nil)

	if got, want := d.TextShort(), "Alpha (3, 50 min)"; got != want {
		t.Errorf("TextShort() = %q, want %q", got, want)
	}
}

func TestDetails_EmbedForcesLabels(t *testing.T) {
	t.Parallel()
	rec := designs.Record{"Name": "Alpha", "Description": "First", "Cost": "50", "Rank": "3"}
	e := testKind().Details(rec, nil).Embed()

	if e.Title != "Alpha" || e.Description != "First" {
		t.Errorf("embed title/description = %q/%q, want Alpha/First", e.Title, e.Description)
	}
	want := []designs.Field{
		{Name: "Cost", Value: "50 min", Labeled: true},
		{Name: "Rank of Alpha", Value: "3", Labeled: true},
	}
	if !reflect.DeepEqual(e.Fields, want) {
		t.Errorf("embed fields = %+v, want %+v", e.Fields, want)
	}
}

func TestDetails_SkipsOmittedInAllModes(t *testing.T) {
	t.Parallel()
	// Cost 0 and the Hidden property both omit themselves.
	rec := designs.Record{"Name": "Beta", "Description": "Second", "Cost": "0", "Rank": "1"}
	d := testKind().Details(rec, nil)

	if got, want := d.TextLong(), []string{"**Beta**", "_Second_", "1"}; !reflect.DeepEqual(got, want) {
		t.Errorf("TextLong() = %q, want %q", got, want)
	}
	if got, want := d.TextShort(), "Beta (1)"; got != want {
		t.Errorf("TextShort() = %q, want %q", got, want)
	}
	fields := d.Embed().Fields
	if len(fields) != 1 || fields[0].Name != "Rank of Beta" {
		t.Errorf("embed fields = %+v, want only the rank field", fields)
	}
}

func TestProperty_Render(t *testing.T) {
	t.Parallel()
	rec := designs.Record{"Name": "Gamma"}

	tests := []struct {
		name   string
		prop   designs.Property
		want   designs.Field
		wantOK bool
	}{
		{
			name:   "unlabelled",
			prop:   designs.NewProperty(designs.ConstLabel("Name"), designs.Attr("Name"), false),
			want:   designs.Field{Value: "Gamma"},
			wantOK: true,
		},
		{
			name:   "forced label",
			prop:   designs.NewProperty(designs.ConstLabel("Name"), designs.Attr("Name"), true),
			want:   designs.Field{Name: "Name", Value: "Gamma", Labeled: true},
			wantOK: true,
		},
		{
			name: "absent attribute",
			prop: designs.NewProperty(designs.ConstLabel("Cost"), designs.Attr("Cost"), true),
		},
		{
			name: "nil value func",
			prop: designs.Property{Label: designs.ConstLabel("X")},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.prop.Render(rec, nil)
			if ok != tc.wantOK || got != tc.want {
				t.Errorf("Render() = %+v, %v, want %+v, %v", got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestField_Text(t *testing.T) {
	t.Parallel()
	if got := (designs.Field{Name: "Cost", Value: "5", Labeled: true}).Text(); got != "Cost = 5" {
		t.Errorf("labelled Text() = %q", got)
	}
	if got := (designs.Field{Name: "Cost", Value: "5"}).Text(); got != "5" {
		t.Errorf("unlabelled Text() = %q", got)
	}
}
