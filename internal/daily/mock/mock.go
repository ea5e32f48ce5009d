// Package mock provides test doubles for the daily package: a recording
// [Sender], a [SettingsSource] and a call-recording wrapper around a
// settings registry.
package mock

import (
	"context"
	"strconv"
	"sync"

	"github.com/MrWong99/starbridge/internal/daily"
	"github.com/MrWong99/starbridge/internal/designs"
	"github.com/MrWong99/starbridge/internal/settings"
)

// SendCall records a single invocation of Send, Edit or Delete.
type SendCall struct {
	// Method is "Send", "Edit" or "Delete".
	Method    string
	ChannelID string
	MessageID string
	Post      daily.Post
}

// Sender is a mock implementation of daily.Sender. Sent messages get
// sequential ids "m1", "m2", ….
type Sender struct {
	mu sync.Mutex

	// SendErr, EditErr and DeleteErr map a channel id to the error returned
	// for it.
	SendErr   map[string]error
	EditErr   map[string]error
	DeleteErr map[string]error

	// Calls records every invocation in order.
	Calls []SendCall

	next int
}

var _ daily.Sender = (*Sender)(nil)

// Send records the call and returns a new message id or the configured error.
func (s *Sender) Send(_ context.Context, channelID string, post daily.Post) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, SendCall{Method: "Send", ChannelID: channelID, Post: post})
	if err := s.SendErr[channelID]; err != nil {
		return "", err
	}
	s.next++
	return "m" + strconv.Itoa(s.next), nil
}

// Edit records the call and returns the configured error.
func (s *Sender) Edit(_ context.Context, channelID, messageID string, post daily.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, SendCall{Method: "Edit", ChannelID: channelID, MessageID: messageID, Post: post})
	return s.EditErr[channelID]
}

// Delete records the call and returns the configured error.
func (s *Sender) Delete(_ context.Context, channelID, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, SendCall{Method: "Delete", ChannelID: channelID, MessageID: messageID})
	return s.DeleteErr[channelID]
}

// CallsFor returns the recorded calls for channelID.
func (s *Sender) CallsFor(channelID string) []SendCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []SendCall
	for _, c := range s.Calls {
		if c.ChannelID == channelID {
			out = append(out, c)
		}
	}
	return out
}

// SettingsSource is a mock implementation of daily.SettingsSource.
type SettingsSource struct {
	mu sync.Mutex

	// Record is returned by LatestSettings.
	Record designs.Record

	// Err, if non-nil, is returned instead of Record.
	Err error

	calls int
}

var _ daily.SettingsSource = (*SettingsSource)(nil)

// LatestSettings returns a copy of Record or Err.
func (s *SettingsSource) LatestSettings(context.Context) (designs.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.Err != nil {
		return nil, s.Err
	}
	out := make(designs.Record, len(s.Record))
	for k, v := range s.Record {
		out[k] = v
	}
	return out, nil
}

// Set replaces the served record.
func (s *SettingsSource) Set(rec designs.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Record = rec
}

// CallCount returns the number of LatestSettings calls.
func (s *SettingsSource) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Registry wraps a settings.Registry and records the names of the methods
// called on it.
type Registry struct {
	settings.Registry

	mu    sync.Mutex
	calls []string
}

var _ settings.Registry = (*Registry)(nil)

// NewRegistry wraps inner.
func NewRegistry(inner settings.Registry) *Registry {
	return &Registry{Registry: inner}
}

func (r *Registry) record(method string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, method)
}

// Calls returns the recorded method names in order.
func (r *Registry) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Reset clears the recorded calls.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// Registrations records the call and delegates.
func (r *Registry) Registrations(ctx context.Context, guildID *string, canPost *bool) ([]settings.Registration, error) {
	r.record("Registrations")
	return r.Registry.Registrations(ctx, guildID, canPost)
}

// CreateDefaults records the call and delegates.
func (r *Registry) CreateDefaults(ctx context.Context, guildID string) error {
	r.record("CreateDefaults")
	return r.Registry.CreateDefaults(ctx, guildID)
}

// UpdateChannel records the call and delegates.
func (r *Registry) UpdateChannel(ctx context.Context, guildID, channelID string) error {
	r.record("UpdateChannel")
	return r.Registry.UpdateChannel(ctx, guildID, channelID)
}

// UpdateLatestMessage records the call and delegates.
func (r *Registry) UpdateLatestMessage(ctx context.Context, guildID, messageID string) error {
	r.record("UpdateLatestMessage")
	return r.Registry.UpdateLatestMessage(ctx, guildID, messageID)
}

// UpdateCanPost records the call and delegates.
func (r *Registry) UpdateCanPost(ctx context.Context, guildID string, canPost bool) error {
	r.record("UpdateCanPost")
	return r.Registry.UpdateCanPost(ctx, guildID, canPost)
}
