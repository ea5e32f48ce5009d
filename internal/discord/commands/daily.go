package commands

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/MrWong99/starbridge/internal/daily"
	"github.com/MrWong99/starbridge/internal/discord"
)

// DailyCommands handles the /daily slash command.
type DailyCommands struct {
	source daily.SettingsSource
}

// NewDailyCommands creates a DailyCommands handler reading from source.
func NewDailyCommands(source daily.SettingsSource) *DailyCommands {
	return &DailyCommands{source: source}
}

// Register registers /daily with the router.
func (dc *DailyCommands) Register(router *discord.CommandRouter) {
	router.RegisterCommand("daily", dc.Definition(), dc.handleDaily)
}

// Definition returns the /daily ApplicationCommand for Discord registration.
func (dc *DailyCommands) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "daily",
		Description: "Show today's shop, sale, limited catalog and rewards",
	}
}

// handleDaily handles /daily.
func (dc *DailyCommands) handleDaily(s discord.Responder, i *discordgo.InteractionCreate) {
	discord.DeferReply(s, i)

	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()
	raw, err := dc.source.LatestSettings(ctx)
	if err != nil {
		discord.FollowUp(s, i, []string{"Daily info is currently unavailable, please try again later."})
		return
	}
	embed := daily.Embed(daily.Convert(raw))
	discord.FollowUpEmbeds(s, i, []*discordgo.MessageEmbed{discord.ToMessageEmbed(embed)})
}
