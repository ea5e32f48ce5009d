package daily_test

import (
	"slices"
	"testing"

	"github.com/MrWong99/starbridge/internal/daily"
)

func TestFormat(t *testing.T) {
	t.Parallel()

	got := daily.Format(sampleInfo())
	want := []string{
		"**Daily info**",
		"**Shop**",
		"Hero crew: 344",
		"Common crew: 12",
		"Cargo: 100x3, 105x1",
		"Cargo prices: starbux:5, mineral:2000",
		"**Sale**",
		"1x Character 344",
		"Item mask: 2",
		"**Limited catalog**",
		"Item 183 for 650 Starbux (100 available)",
		"**Rewards**",
		"10 Starbux",
		"Items: 55x1",
		"**News**",
		"Welcome back",
	}
	if !slices.Equal(got, want) {
		t.Errorf("Format() =\n%q\nwant\n%q", got, want)
	}
}

func TestFormat_SkipsAbsentSections(t *testing.T) {
	t.Parallel()

	info := daily.Convert(map[string]string{"SaleArgument": "7"})
	got := daily.Format(info)
	want := []string{"**Daily info**", "**Sale**", "Unknown 7"}
	if !slices.Equal(got, want) {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestEmbed(t *testing.T) {
	t.Parallel()

	e := daily.Embed(sampleInfo())
	if e.Title != daily.Title {
		t.Errorf("Title = %q, want %q", e.Title, daily.Title)
	}
	if e.Description != "Welcome back" {
		t.Errorf("Description = %q, want %q", e.Description, "Welcome back")
	}
	var names []string
	for _, f := range e.Fields {
		if !f.Labeled {
			t.Errorf("field %q is not labeled", f.Name)
		}
		names = append(names, f.Name)
	}
	if want := []string{"Shop", "Sale", "Limited catalog", "Rewards"}; !slices.Equal(names, want) {
		t.Errorf("field names = %v, want %v", names, want)
	}
	if got := e.Fields[1].Value; got != "1x Character 344\nItem mask: 2" {
		t.Errorf("Sale value = %q", got)
	}
}
