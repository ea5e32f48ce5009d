package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/MrWong99/starbridge/internal/daily"
)

// MessageAPI is the part of *discordgo.Session used to manage channel
// messages.
type MessageAPI interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
}

var _ MessageAPI = (*discordgo.Session)(nil)

// ChannelSender posts daily announcements as embed messages. It maps
// Discord permission failures to [daily.ErrForbidden].
type ChannelSender struct {
	api MessageAPI
}

var _ daily.Sender = (*ChannelSender)(nil)

// NewChannelSender returns a [ChannelSender] using api.
func NewChannelSender(api MessageAPI) *ChannelSender {
	return &ChannelSender{api: api}
}

// Send implements [daily.Sender].
func (c *ChannelSender) Send(ctx context.Context, channelID string, post daily.Post) (string, error) {
	msg, err := c.api.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: post.Content(),
		Embeds:  []*discordgo.MessageEmbed{ToMessageEmbed(post.Embed)},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", classify("send", channelID, err)
	}
	return msg.ID, nil
}

// Edit implements [daily.Sender].
func (c *ChannelSender) Edit(ctx context.Context, channelID, messageID string, post daily.Post) error {
	content := post.Content()
	embeds := []*discordgo.MessageEmbed{ToMessageEmbed(post.Embed)}
	_, err := c.api.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel: channelID,
		ID:      messageID,
		Content: &content,
		Embeds:  &embeds,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return classify("edit", channelID, err)
	}
	return nil
}

// Delete implements [daily.Sender]. Deleting a message that is already
// gone succeeds.
func (c *ChannelSender) Delete(ctx context.Context, channelID, messageID string) error {
	err := c.api.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil && statusCode(err) != http.StatusNotFound {
		return classify("delete", channelID, err)
	}
	return nil
}

func classify(op, channelID string, err error) error {
	if statusCode(err) == http.StatusForbidden {
		return fmt.Errorf("discord: %s in %s: %w: %w", op, channelID, daily.ErrForbidden, err)
	}
	return fmt.Errorf("discord: %s in %s: %w", op, channelID, err)
}

func statusCode(err error) int {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		return restErr.Response.StatusCode
	}
	return 0
}
