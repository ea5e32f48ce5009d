package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/MrWong99/starbridge/internal/daily"
	"github.com/MrWong99/starbridge/internal/discord"
	"github.com/MrWong99/starbridge/internal/settings"
)

// storeTimeout bounds registry operations of one command.
const storeTimeout = 5 * time.Second

// AutodailyCommands handles the /autodaily slash command group.
type AutodailyCommands struct {
	reg   settings.Registry
	perms *discord.PermissionChecker
}

// NewAutodailyCommands creates an AutodailyCommands handler.
func NewAutodailyCommands(reg settings.Registry, perms *discord.PermissionChecker) *AutodailyCommands {
	return &AutodailyCommands{reg: reg, perms: perms}
}

// Register registers all /autodaily subcommands with the router.
func (ac *AutodailyCommands) Register(router *discord.CommandRouter) {
	router.RegisterCommand("autodaily", ac.Definition(), func(s discord.Responder, i *discordgo.InteractionCreate) {
		discord.RespondEphemeral(s, i, "Please use a subcommand: `/autodaily set`, `/autodaily list`.")
	})
	router.RegisterHandler("autodaily/set", ac.handleSet)
	router.RegisterHandler("autodaily/list", ac.handleList)
}

// Definition returns the /autodaily ApplicationCommand for Discord registration.
func (ac *AutodailyCommands) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "autodaily",
		Description: "Configure automatic posting of the daily announcement",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "set",
				Description: "Post the daily announcement to a channel",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:         "channel",
						Description:  "Target channel (defaults to this one)",
						Type:         discordgo.ApplicationCommandOptionChannel,
						ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews},
					},
				},
			},
			{
				Name:        "list",
				Description: "Show the configured auto-post channel",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
			},
		},
	}
}

// handleSet handles /autodaily set [channel].
func (ac *AutodailyCommands) handleSet(s discord.Responder, i *discordgo.InteractionCreate) {
	if !ac.perms.IsAdmin(i) {
		discord.RespondEphemeral(s, i, "You need the admin role to configure auto-posting.")
		return
	}
	if i.GuildID == "" {
		discord.RespondEphemeral(s, i, "Auto-posting can only be configured in a server.")
		return
	}
	channelID := rawOption(i, "channel")
	if channelID == "" {
		channelID = i.ChannelID
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if !daily.TryStore(ctx, ac.reg, i.GuildID, channelID) {
		discord.RespondEphemeral(s, i, "Could not save the auto-post channel, please try again later.")
		return
	}
	slog.Info("autodaily: channel configured", "guild_id", i.GuildID, "channel_id", channelID)
	discord.RespondEphemeral(s, i, fmt.Sprintf("The daily announcement will be posted to <#%s>.", channelID))
}

// handleList handles /autodaily list.
func (ac *AutodailyCommands) handleList(s discord.Responder, i *discordgo.InteractionCreate) {
	if !ac.perms.IsAdmin(i) {
		discord.RespondEphemeral(s, i, "You need the admin role to view auto-posting settings.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	var guildID *string
	if i.GuildID != "" {
		guildID = &i.GuildID
	}
	regs, err := ac.reg.Registrations(ctx, guildID, nil)
	if err != nil {
		slog.Warn("autodaily: failed to list registrations", "err", err)
		discord.RespondError(s, i, errors.New("could not read auto-post settings"))
		return
	}
	lines := ListLines(daily.Dedupe(regs))
	discord.RespondEphemeral(s, i, discord.SplitMessages(lines)[0])
}

// ListLines renders registrations for /autodaily list, one line per
// configured channel.
func ListLines(regs []settings.Registration) []string {
	var lines []string
	for _, r := range regs {
		if r.ChannelID == nil || *r.ChannelID == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("<#%s> (can post: %t)", *r.ChannelID, r.CanPost))
	}
	if len(lines) == 0 {
		lines = append(lines, "Auto-posting of the daily announcement is not configured for this server!")
	}
	return lines
}
