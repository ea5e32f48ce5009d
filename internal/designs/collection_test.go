package designs_test

import (
	"reflect"
	"strconv"
	"testing"

	"github.com/MrWong99/starbridge/internal/designs"
)

func detailsN(n int) []*designs.Details {
	kind := testKind()
	out := make([]*designs.Details, 0, n)
	for i := range n {
		rec := designs.Record{"Name": "D" + strconv.Itoa(i), "Description": "desc", "Rank": strconv.Itoa(i)}
		out = append(out, kind.Details(rec, nil))
	}
	return out
}

func TestRenderText_Threshold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		items int
		want  []string
	}{
		{
			name:  "at threshold uses long form",
			items: 2,
			want:  []string{"**D0**", "_desc_", "0", "", "**D1**", "_desc_", "1"},
		},
		{
			name:  "above threshold uses short form",
			items: 3,
			want:  []string{"D0 (0)", "D1 (1)", "D2 (2)"},
		},
		{
			name:  "single item has no separator",
			items: 1,
			want:  []string{"**D0**", "_desc_", "0"},
		},
		{
			name:  "empty",
			items: 0,
			want:  nil,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := designs.RenderText(detailsN(tc.items), 2)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("RenderText(%d items) = %q, want %q", tc.items, got, tc.want)
			}
		})
	}
}

func TestRenderText_DefaultThresholdBoundary(t *testing.T) {
	t.Parallel()
	long := designs.RenderText(detailsN(designs.DefaultBigSetThreshold), designs.DefaultBigSetThreshold)
	if len(long) != 3*3+2 {
		t.Errorf("len = %d, want %d long-form lines", len(long), 3*3+2)
	}
	short := designs.RenderText(detailsN(designs.DefaultBigSetThreshold+1), designs.DefaultBigSetThreshold)
	if len(short) != designs.DefaultBigSetThreshold+1 {
		t.Errorf("len = %d, want one short line per item", len(short))
	}
}

func TestRenderEmbeds(t *testing.T) {
	t.Parallel()
	embeds := designs.RenderEmbeds(detailsN(2))
	if len(embeds) != 2 {
		t.Fatalf("len = %d, want 2", len(embeds))
	}
	if embeds[1].Title != "D1" {
		t.Errorf("embeds[1].Title = %q, want D1", embeds[1].Title)
	}
}
