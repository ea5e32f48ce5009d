package commands

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"go.opentelemetry.io/otel/metric/noop"

	dailymock "github.com/MrWong99/starbridge/internal/daily/mock"
	"github.com/MrWong99/starbridge/internal/designs"
	designsmock "github.com/MrWong99/starbridge/internal/designs/mock"
	"github.com/MrWong99/starbridge/internal/discord"
	"github.com/MrWong99/starbridge/internal/discord/mock"
	"github.com/MrWong99/starbridge/internal/observe"
	"github.com/MrWong99/starbridge/internal/settings"
	"github.com/MrWong99/starbridge/internal/training"
)

func interaction(name, sub string, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	data := discordgo.ApplicationCommandInteractionData{Name: name, Options: opts}
	if sub != "" {
		data.Options = []*discordgo.ApplicationCommandInteractionDataOption{
			{Name: sub, Type: discordgo.ApplicationCommandOptionSubCommand, Options: opts},
		}
	}
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:      discordgo.InteractionApplicationCommand,
		Data:      data,
		GuildID:   "g1",
		ChannelID: "here",
		Member:    &discordgo.Member{Roles: []string{"admin"}},
	}}
}

func stringOpt(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name: name, Type: discordgo.ApplicationCommandOptionString, Value: value,
	}
}

func newTrainingService(t *testing.T, src designs.Source) *training.Service {
	t.Helper()
	m, err := observe.NewMetrics(noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return training.NewService(training.NewRetriever(src, designs.WithMetrics(m)), nil)
}

func trainingSource() *designsmock.Source {
	return &designsmock.Source{Records: map[string][]designs.Record{
		training.Path: {
			{"TrainingDesignId": "1", "TrainingName": "Basic Gym", "TrainingDescription": "Warm up", "Duration": "0", "HpChance": "3", "XpChance": "10"},
			{"TrainingDesignId": "2", "TrainingName": "Gym Drill", "TrainingDescription": "Routine", "Duration": "60", "StaminaChance": "4", "XpChance": "5"},
		},
	}}
}

func TestTrainingDefinition(t *testing.T) {
	t.Parallel()

	def := NewTrainingCommands(nil).Definition()
	if def.Name != "training" {
		t.Errorf("Name = %q, want %q", def.Name, "training")
	}
	if len(def.Options) != 1 || !def.Options[0].Required || !def.Options[0].Autocomplete {
		t.Errorf("options = %+v, want one required autocompleted name", def.Options)
	}
}

func TestTraining_Found(t *testing.T) {
	t.Parallel()

	tc := NewTrainingCommands(newTrainingService(t, trainingSource()))
	resp := &mock.InteractionResponder{}
	tc.handleTraining(resp, interaction("training", "", stringOpt("name", "gym")))

	if got := resp.LastResponse(); got == nil || got.Type != discordgo.InteractionResponseDeferredChannelMessageWithSource {
		t.Fatalf("first response = %+v, want deferred", got)
	}
	fu := resp.LastFollowUp()
	if fu == nil || len(fu.Embeds) != 2 {
		t.Fatalf("follow-up = %+v, want two embeds", fu)
	}
	if fu.Embeds[0].Title != "Basic Gym" {
		t.Errorf("first embed title = %q", fu.Embeds[0].Title)
	}
}

func TestTraining_NotFound(t *testing.T) {
	t.Parallel()

	tc := NewTrainingCommands(newTrainingService(t, trainingSource()))
	resp := &mock.InteractionResponder{}
	tc.handleTraining(resp, interaction("training", "", stringOpt("name", "Basic Gim")))

	fu := resp.LastFollowUp()
	if fu == nil || !strings.Contains(fu.Content, "Could not find a training named **Basic Gim**.") {
		t.Fatalf("follow-up = %+v, want miss message", fu)
	}
	if !strings.Contains(fu.Content, "Did you mean: Basic Gym") {
		t.Errorf("content = %q, want suggestion", fu.Content)
	}
}

func TestTraining_BlankName(t *testing.T) {
	t.Parallel()

	tc := NewTrainingCommands(newTrainingService(t, trainingSource()))
	resp := &mock.InteractionResponder{}
	tc.handleTraining(resp, interaction("training", "", stringOpt("name", "  ")))

	got := resp.LastResponse()
	if got == nil || got.Data.Flags&discordgo.MessageFlagsEphemeral == 0 {
		t.Fatalf("response = %+v, want ephemeral hint", got)
	}
	if len(resp.FollowUps) != 0 {
		t.Error("blank name should not trigger a lookup")
	}
}

func TestTraining_Unavailable(t *testing.T) {
	t.Parallel()

	tc := NewTrainingCommands(newTrainingService(t, &designsmock.Source{Err: errors.New("down")}))
	resp := &mock.InteractionResponder{}
	tc.handleTraining(resp, interaction("training", "", stringOpt("name", "gym")))

	fu := resp.LastFollowUp()
	if fu == nil || !strings.Contains(fu.Content, "unavailable") {
		t.Errorf("follow-up = %+v, want unavailable message", fu)
	}
}

func TestTraining_Autocomplete(t *testing.T) {
	t.Parallel()

	tc := NewTrainingCommands(newTrainingService(t, trainingSource()))
	resp := &mock.InteractionResponder{}
	opt := stringOpt("name", "gym dril")
	opt.Focused = true
	tc.handleAutocomplete(resp, interaction("training", "", opt))

	got := resp.LastResponse()
	if got == nil || got.Type != discordgo.InteractionApplicationCommandAutocompleteResult {
		t.Fatalf("response = %+v, want autocomplete result", got)
	}
	if len(got.Data.Choices) != 2 || got.Data.Choices[0].Name != "Gym Drill" {
		t.Errorf("choices = %+v, want Gym Drill first", got.Data.Choices)
	}
}

func TestDaily(t *testing.T) {
	t.Parallel()

	src := &dailymock.SettingsSource{Record: designs.Record{"SaleArgument": "344", "SaleType": "Character", "News": "Hello"}}
	resp := &mock.InteractionResponder{}
	NewDailyCommands(src).handleDaily(resp, interaction("daily", ""))

	fu := resp.LastFollowUp()
	if fu == nil || len(fu.Embeds) != 1 {
		t.Fatalf("follow-up = %+v, want one embed", fu)
	}
	if fu.Embeds[0].Description != "Hello" {
		t.Errorf("description = %q, want news", fu.Embeds[0].Description)
	}
}

func TestDaily_Unavailable(t *testing.T) {
	t.Parallel()

	src := &dailymock.SettingsSource{Err: errors.New("down")}
	resp := &mock.InteractionResponder{}
	NewDailyCommands(src).handleDaily(resp, interaction("daily", ""))

	if fu := resp.LastFollowUp(); fu == nil || !strings.Contains(fu.Content, "unavailable") {
		t.Errorf("follow-up = %+v, want unavailable message", fu)
	}
}

func TestAutodailyDefinition(t *testing.T) {
	t.Parallel()

	def := NewAutodailyCommands(nil, nil).Definition()
	want := []string{"set", "list"}
	if len(def.Options) != len(want) {
		t.Fatalf("Options count = %d, want %d", len(def.Options), len(want))
	}
	for i, name := range want {
		if def.Options[i].Name != name || def.Options[i].Type != discordgo.ApplicationCommandOptionSubCommand {
			t.Errorf("subcommand[%d] = %q (%d), want %q", i, def.Options[i].Name, def.Options[i].Type, name)
		}
	}
}

func TestAutodailySet(t *testing.T) {
	t.Parallel()

	store := settings.NewMemStore()
	ac := NewAutodailyCommands(store, discord.NewPermissionChecker("admin"))

	resp := &mock.InteractionResponder{}
	ac.handleSet(resp, interaction("autodaily", "set"))
	if got := resp.LastResponse().Data.Content; !strings.Contains(got, "<#here>") {
		t.Errorf("content = %q, want current channel", got)
	}

	chOpt := &discordgo.ApplicationCommandInteractionDataOption{
		Name: "channel", Type: discordgo.ApplicationCommandOptionChannel, Value: "news",
	}
	ac.handleSet(resp, interaction("autodaily", "set", chOpt))

	regs, err := store.Registrations(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("Registrations: %v", err)
	}
	if len(regs) != 1 || regs[0].ChannelID == nil || *regs[0].ChannelID != "news" {
		t.Errorf("registrations = %+v, want g1 -> news", regs)
	}
}

func TestAutodailySet_RequiresAdmin(t *testing.T) {
	t.Parallel()

	store := settings.NewMemStore()
	ac := NewAutodailyCommands(store, discord.NewPermissionChecker("other-role"))
	resp := &mock.InteractionResponder{}
	ac.handleSet(resp, interaction("autodaily", "set"))

	if got := resp.LastResponse().Data.Content; !strings.Contains(got, "admin role") {
		t.Errorf("content = %q, want permission message", got)
	}
	if regs, _ := store.Registrations(context.Background(), nil, nil); len(regs) != 0 {
		t.Errorf("registrations = %+v, want none", regs)
	}
}

func TestAutodailyList(t *testing.T) {
	t.Parallel()

	store := settings.NewMemStore()
	ac := NewAutodailyCommands(store, discord.NewPermissionChecker(""))
	resp := &mock.InteractionResponder{}

	ac.handleList(resp, interaction("autodaily", "list"))
	if got := resp.LastResponse().Data.Content; !strings.Contains(got, "not configured") {
		t.Errorf("content = %q, want not configured", got)
	}

	channel := "c1"
	store.Put(settings.Registration{GuildID: "g1", ChannelID: &channel, CanPost: true})
	ac.handleList(resp, interaction("autodaily", "list"))
	if got, want := resp.LastResponse().Data.Content, "<#c1> (can post: true)"; got != want {
		t.Errorf("content = %q, want %q", got, want)
	}
}

func TestAutodailyList_StoreError(t *testing.T) {
	t.Parallel()

	store := settings.NewMemStore()
	store.FailOn("Registrations", errors.New("db down"))
	ac := NewAutodailyCommands(store, discord.NewPermissionChecker(""))
	resp := &mock.InteractionResponder{}

	ac.handleList(resp, interaction("autodaily", "list"))
	got := resp.LastResponse().Data.Content
	if got != "Error: could not read auto-post settings" {
		t.Errorf("content = %q, want static error message", got)
	}
	if strings.Contains(got, "db down") {
		t.Errorf("content %q leaks the store error", got)
	}
}
