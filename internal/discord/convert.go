package discord

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/MrWong99/starbridge/internal/designs"
)

// Discord message and embed limits.
const (
	maxMessageLen          = 2000
	maxEmbedTitleLen       = 256
	maxEmbedDescriptionLen = 4096
	maxEmbedFields         = 25
	maxFieldNameLen        = 256
	maxFieldValueLen       = 1024
)

// embedColor is the sidebar color of all starbridge embeds.
const embedColor = 0x3498DB

// ToMessageEmbed converts a rendered design into a Discord embed, truncating
// text to the Discord limits. Fields without a label get a zero-width name
// since Discord rejects empty field names.
func ToMessageEmbed(e designs.Embed) *discordgo.MessageEmbed {
	me := &discordgo.MessageEmbed{
		Title:       truncate(e.Title, maxEmbedTitleLen),
		Description: truncate(e.Description, maxEmbedDescriptionLen),
		Color:       embedColor,
	}
	for _, f := range e.Fields[:min(len(e.Fields), maxEmbedFields)] {
		name := f.Name
		if !f.Labeled || name == "" {
			name = "\u200b"
		}
		me.Fields = append(me.Fields, &discordgo.MessageEmbedField{
			Name:  truncate(name, maxFieldNameLen),
			Value: truncate(f.Value, maxFieldValueLen),
		})
	}
	return me
}

// ToMessageEmbeds converts every embed.
func ToMessageEmbeds(embeds []designs.Embed) []*discordgo.MessageEmbed {
	out := make([]*discordgo.MessageEmbed, 0, len(embeds))
	for _, e := range embeds {
		out = append(out, ToMessageEmbed(e))
	}
	return out
}

// SplitMessages joins lines into as few messages as possible without
// exceeding the Discord message length. Lines are never split unless a
// single line is longer than the limit.
func SplitMessages(lines []string) []string {
	var (
		out []string
		cur strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, line := range lines {
		for len(line) > maxMessageLen {
			flush()
			out = append(out, line[:maxMessageLen])
			line = line[maxMessageLen:]
		}
		extra := len(line)
		if cur.Len() > 0 {
			extra++
		}
		if cur.Len()+extra > maxMessageLen {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteByte('\n')
		}
		cur.WriteString(line)
	}
	flush()
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
