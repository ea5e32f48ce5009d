package commands

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/MrWong99/starbridge/internal/discord"
	"github.com/MrWong99/starbridge/internal/training"
)

// lookupTimeout bounds a lookup including a cold cache fetch.
const lookupTimeout = 20 * time.Second

// TrainingCommands handles the /training slash command.
type TrainingCommands struct {
	svc *training.Service
}

// NewTrainingCommands creates a TrainingCommands handler.
func NewTrainingCommands(svc *training.Service) *TrainingCommands {
	return &TrainingCommands{svc: svc}
}

// Register registers /training and its autocomplete with the router.
func (tc *TrainingCommands) Register(router *discord.CommandRouter) {
	router.RegisterCommand("training", tc.Definition(), tc.handleTraining)
	router.RegisterAutocomplete("training", tc.handleAutocomplete)
}

// Definition returns the /training ApplicationCommand for Discord registration.
func (tc *TrainingCommands) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "training",
		Description: "Show the stats of training programs",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:         "name",
				Description:  "Full or partial training name",
				Type:         discordgo.ApplicationCommandOptionString,
				Required:     true,
				Autocomplete: true,
			},
		},
	}
}

// handleTraining handles /training name.
func (tc *TrainingCommands) handleTraining(s discord.Responder, i *discordgo.InteractionCreate) {
	name := rawOption(i, "name")
	if strings.TrimSpace(name) == "" {
		discord.RespondEphemeral(s, i, "Please enter a training name.")
		return
	}

	// A cold cache may take longer than the interaction deadline.
	discord.DeferReply(s, i)

	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()
	res, err := tc.svc.Lookup(ctx, name)
	if err != nil {
		discord.FollowUp(s, i, []string{"Training data is currently unavailable, please try again later."})
		return
	}
	if !res.Found() {
		discord.FollowUp(s, i, tc.svc.Text(res))
		return
	}
	discord.FollowUpEmbeds(s, i, discord.ToMessageEmbeds(tc.svc.Embeds(res)))
}

// handleAutocomplete suggests training names similar to the partial input.
func (tc *TrainingCommands) handleAutocomplete(s discord.Responder, i *discordgo.InteractionCreate) {
	partial := focusedValue(i)
	if partial == "" {
		discord.RespondChoices(s, i, nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	discord.RespondChoices(s, i, tc.svc.Retriever().Suggest(ctx, partial, 25))
}
