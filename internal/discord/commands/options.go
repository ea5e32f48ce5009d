package commands

import (
	"github.com/bwmarrin/discordgo"
)

// commandOptions returns the options of the invoked command, descending
// into the subcommand when there is one.
func commandOptions(i *discordgo.InteractionCreate) []*discordgo.ApplicationCommandInteractionDataOption {
	data := i.ApplicationCommandData()
	if len(data.Options) > 0 && data.Options[0].Type == discordgo.ApplicationCommandOptionSubCommand {
		return data.Options[0].Options
	}
	return data.Options
}

// rawOption returns the raw value of the named option as a string. Channel,
// user and role options carry their ID.
func rawOption(i *discordgo.InteractionCreate, name string) string {
	for _, opt := range commandOptions(i) {
		if opt.Name == name {
			v, _ := opt.Value.(string)
			return v
		}
	}
	return ""
}

// focusedValue returns the partial input of the option being autocompleted.
func focusedValue(i *discordgo.InteractionCreate) string {
	for _, opt := range commandOptions(i) {
		if opt.Focused {
			v, _ := opt.Value.(string)
			return v
		}
	}
	return ""
}
