// Package mock provides test doubles for Discord interaction and message
// testing.
package mock

import (
	"strconv"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// InteractionResponder records interaction responses for test assertions.
type InteractionResponder struct {
	mu sync.Mutex

	// Responses records all InteractionRespond calls.
	Responses []*discordgo.InteractionResponse

	// FollowUps records all FollowupMessageCreate calls.
	FollowUps []*discordgo.WebhookParams

	// Err is returned by InteractionRespond and FollowupMessageCreate
	// when non-nil, allowing error injection.
	Err error
}

// InteractionRespond records the response and returns the configured error.
func (m *InteractionResponder) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses = append(m.Responses, resp)
	return m.Err
}

// FollowupMessageCreate records the follow-up and returns a stub message.
func (m *InteractionResponder) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, params *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FollowUps = append(m.FollowUps, params)
	if m.Err != nil {
		return nil, m.Err
	}
	return &discordgo.Message{ID: "mock-followup"}, nil
}

// LastResponse returns the most recently recorded response, or nil.
func (m *InteractionResponder) LastResponse() *discordgo.InteractionResponse {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Responses) == 0 {
		return nil
	}
	return m.Responses[len(m.Responses)-1]
}

// LastFollowUp returns the most recently recorded follow-up, or nil.
func (m *InteractionResponder) LastFollowUp() *discordgo.WebhookParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.FollowUps) == 0 {
		return nil
	}
	return m.FollowUps[len(m.FollowUps)-1]
}

// Reset clears all recorded interactions and errors.
func (m *InteractionResponder) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses = nil
	m.FollowUps = nil
	m.Err = nil
}

// MessageAPI records channel message operations. Sent messages get
// sequential ids "msg-1", "msg-2", ….
type MessageAPI struct {
	mu sync.Mutex

	// Sent, Edited and Deleted record the calls in order. Deleted holds
	// "channel/message" pairs.
	Sent    []*discordgo.MessageSend
	Edited  []*discordgo.MessageEdit
	Deleted []string

	// SendErr, EditErr and DeleteErr are returned by the respective
	// methods when non-nil.
	SendErr   error
	EditErr   error
	DeleteErr error

	next int
}

// ChannelMessageSendComplex records the message and returns a stub.
func (m *MessageAPI) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, data)
	if m.SendErr != nil {
		return nil, m.SendErr
	}
	m.next++
	return &discordgo.Message{ID: "msg-" + strconv.Itoa(m.next), ChannelID: channelID}, nil
}

// ChannelMessageEditComplex records the edit and returns a stub.
func (m *MessageAPI) ChannelMessageEditComplex(edit *discordgo.MessageEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Edited = append(m.Edited, edit)
	if m.EditErr != nil {
		return nil, m.EditErr
	}
	return &discordgo.Message{ID: edit.ID, ChannelID: edit.Channel}, nil
}

// ChannelMessageDelete records the deletion.
func (m *MessageAPI) ChannelMessageDelete(channelID, messageID string, _ ...discordgo.RequestOption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, channelID+"/"+messageID)
	return m.DeleteErr
}
