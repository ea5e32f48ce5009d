package designs

// DefaultBigSetThreshold is the result count above which collections switch
// to the short rendering.
const DefaultBigSetThreshold = 3

// RenderText renders a batch of designs. With more than bigSetThreshold
// items every item is rendered on one short line; otherwise each item is
// rendered in long form with one empty line between consecutive items.
func RenderText(items []*Details, bigSetThreshold int) []string {
	if len(items) > bigSetThreshold {
		lines := make([]string, 0, len(items))
		for _, d := range items {
			lines = append(lines, d.TextShort())
		}
		return lines
	}

	var lines []string
	for i, d := range items {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, d.TextLong()...)
	}
	return lines
}

// RenderEmbeds returns one embed per item.
func RenderEmbeds(items []*Details) []Embed {
	embeds := make([]Embed, 0, len(items))
	for _, d := range items {
		embeds = append(embeds, d.Embed())
	}
	return embeds
}
