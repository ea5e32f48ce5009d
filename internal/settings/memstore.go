package settings

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemStore is an in-memory [Backend]. It is safe for concurrent use and
// intended for tests and the "memory" database driver.
type MemStore struct {
	mu       sync.RWMutex
	values   map[string]memValue
	regs     []Registration
	failures map[string]error
}

type memValue struct {
	value *string
	at    time.Time
}

var _ Backend = (*MemStore)(nil)

// NewMemStore returns an empty [MemStore].
func NewMemStore() *MemStore {
	return &MemStore{
		values:   make(map[string]memValue),
		failures: make(map[string]error),
	}
}

// FailOn makes every call to the named method ("Get", "Set",
// "CreateDefaults", "UpdateChannel", …) return err. A nil err clears it.
func (m *MemStore) FailOn(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, method)
		return
	}
	m.failures[method] = err
}

func (m *MemStore) fail(method string) error {
	return m.failures[method]
}

// Get implements [Store].
func (m *MemStore) Get(_ context.Context, name string) (*string, *time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fail("Get"); err != nil {
		return nil, nil, err
	}
	v, ok := m.values[name]
	if !ok {
		return nil, nil, ErrNotFound
	}
	at := v.at
	return cloneString(v.value), &at, nil
}

// Set implements [Store].
func (m *MemStore) Set(_ context.Context, name string, value *string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("Set"); err != nil {
		return err
	}
	m.values[name] = memValue{value: cloneString(value), at: at}
	return nil
}

// Registrations implements [Registry].
func (m *MemStore) Registrations(_ context.Context, guildID *string, canPost *bool) ([]Registration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fail("Registrations"); err != nil {
		return nil, err
	}
	var out []Registration
	for _, r := range m.regs {
		if guildID != nil && r.GuildID != *guildID {
			continue
		}
		if canPost != nil && r.CanPost != *canPost {
			continue
		}
		out = append(out, cloneRegistration(r))
	}
	return out, nil
}

// CreateDefaults implements [Registry]. Creating an existing guild fails.
func (m *MemStore) CreateDefaults(_ context.Context, guildID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("CreateDefaults"); err != nil {
		return err
	}
	if m.index(guildID) >= 0 {
		return ErrExists
	}
	m.regs = append(m.regs, Registration{GuildID: guildID, CanPost: true})
	return nil
}

// Put inserts r, or replaces the registration of the same guild, verbatim.
// It seeds fixtures that the [Registry] methods cannot express.
func (m *MemStore) Put(r Registration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r = cloneRegistration(r)
	if i := m.index(r.GuildID); i >= 0 {
		m.regs[i] = r
		return
	}
	m.regs = append(m.regs, r)
}

// UpdateChannel implements [Registry].
func (m *MemStore) UpdateChannel(_ context.Context, guildID, channelID string) error {
	return m.update("UpdateChannel", guildID, func(r *Registration) {
		r.ChannelID = &channelID
		r.LatestMessageID = nil
		r.CanPost = true
	})
}

// UpdateLatestMessage implements [Registry].
func (m *MemStore) UpdateLatestMessage(_ context.Context, guildID, messageID string) error {
	return m.update("UpdateLatestMessage", guildID, func(r *Registration) {
		r.LatestMessageID = &messageID
	})
}

// UpdateCanPost implements [Registry].
func (m *MemStore) UpdateCanPost(_ context.Context, guildID string, canPost bool) error {
	return m.update("UpdateCanPost", guildID, func(r *Registration) {
		r.CanPost = canPost
	})
}

func (m *MemStore) update(method, guildID string, fn func(*Registration)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(method); err != nil {
		return err
	}
	i := m.index(guildID)
	if i < 0 {
		return ErrNotFound
	}
	fn(&m.regs[i])
	return nil
}

func (m *MemStore) index(guildID string) int {
	return slices.IndexFunc(m.regs, func(r Registration) bool { return r.GuildID == guildID })
}

// Migrate implements [Backend]; it is a no-op.
func (m *MemStore) Migrate(context.Context) error { return nil }

// Ping implements [Backend].
func (m *MemStore) Ping(context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fail("Ping")
}

// Close implements [Backend]; it is a no-op.
func (m *MemStore) Close() error { return nil }

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneRegistration(r Registration) Registration {
	r.ChannelID = cloneString(r.ChannelID)
	r.LatestMessageID = cloneString(r.LatestMessageID)
	r.NotifyRoleID = cloneString(r.NotifyRoleID)
	if r.DeleteOnChange != nil {
		v := *r.DeleteOnChange
		r.DeleteOnChange = &v
	}
	return r
}
