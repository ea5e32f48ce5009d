package daily

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/starbridge/internal/designs"
	"github.com/MrWong99/starbridge/internal/observe"
	"github.com/MrWong99/starbridge/internal/settings"
)

// ErrForbidden is returned by a [Sender] when the bot lacks permission to
// post in a channel. The registration is then marked as unable to post.
var ErrForbidden = errors.New("daily: missing permission to post")

// defaultConcurrency bounds parallel channel posts.
const defaultConcurrency = 4

// Post is one rendered daily announcement.
type Post struct {
	// Lines is the plain-text rendering, used when embeds are unavailable.
	Lines []string

	// Embed is the structured rendering.
	Embed designs.Embed

	// MentionRoleID, when set, is pinged above the announcement.
	MentionRoleID string
}

// Content returns the message text accompanying the embed.
func (p Post) Content() string {
	if p.MentionRoleID == "" {
		return ""
	}
	return "<@&" + p.MentionRoleID + ">"
}

// Text joins [Post.Lines] with the mention prepended.
func (p Post) Text() string {
	text := strings.Join(p.Lines, "\n")
	if c := p.Content(); c != "" {
		return c + "\n" + text
	}
	return text
}

// Sender delivers posts to chat channels.
type Sender interface {
	// Send posts a new message and returns its id.
	Send(ctx context.Context, channelID string, post Post) (messageID string, err error)

	// Edit replaces the content of an existing message.
	Edit(ctx context.Context, channelID, messageID string, post Post) error

	// Delete removes a message.
	Delete(ctx context.Context, channelID, messageID string) error
}

// Publisher posts the daily announcement to every registered channel.
type Publisher struct {
	reg         settings.Registry
	sender      Sender
	concurrency int
	metrics     *observe.Metrics
}

// PublisherOption configures a [Publisher].
type PublisherOption func(*Publisher)

// WithConcurrency bounds how many channels are posted to in parallel.
func WithConcurrency(n int) PublisherOption {
	return func(p *Publisher) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithPublisherMetrics overrides the metrics sink.
func WithPublisherMetrics(m *observe.Metrics) PublisherOption {
	return func(p *Publisher) { p.metrics = m }
}

// NewPublisher returns a [Publisher] posting through sender to the channels
// of reg.
func NewPublisher(reg settings.Registry, sender Sender, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		reg:         reg,
		sender:      sender,
		concurrency: defaultConcurrency,
	}
	for _, o := range opts {
		o(p)
	}
	if p.metrics == nil {
		p.metrics = observe.DefaultMetrics()
	}
	return p
}

// Publish posts info to every registration that may post and has a channel.
// A registration with a latest message gets that message edited, unless it
// asked for the old message to be deleted on change; everything else gets a
// new message. One failing channel never aborts the others. It returns the
// number of channels that now show info.
func (p *Publisher) Publish(ctx context.Context, info Info) (int, error) {
	canPost := true
	regs, err := p.reg.Registrations(ctx, nil, &canPost)
	if err != nil {
		return 0, fmt.Errorf("daily: list registrations: %w", err)
	}
	regs = Dedupe(regs)

	base := Post{Lines: Format(info), Embed: Embed(info)}

	var posted atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for _, r := range regs {
		if r.ChannelID == nil || *r.ChannelID == "" {
			continue
		}
		g.Go(func() error {
			if p.publishOne(gctx, r, base) {
				posted.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()
	return int(posted.Load()), nil
}

func (p *Publisher) publishOne(ctx context.Context, r settings.Registration, post Post) bool {
	channelID := *r.ChannelID
	log := observe.Logger(ctx).With("guild_id", r.GuildID, "channel_id", channelID)
	if r.NotifyRoleID != nil {
		post.MentionRoleID = *r.NotifyRoleID
	}

	var latest string
	if r.LatestMessageID != nil {
		latest = *r.LatestMessageID
	}
	deleteOld := r.DeleteOnChange != nil && *r.DeleteOnChange

	if latest != "" && !deleteOld {
		err := p.sender.Edit(ctx, channelID, latest, post)
		if err == nil {
			p.metrics.RecordDailyPost(ctx, "edited")
			return true
		}
		if errors.Is(err, ErrForbidden) {
			p.revoke(ctx, r.GuildID, err)
			return false
		}
		log.Debug("daily: edit failed, sending a new message", "message_id", latest, "err", err)
	}

	if latest != "" && deleteOld {
		if err := p.sender.Delete(ctx, channelID, latest); err != nil {
			log.Warn("daily: failed to delete previous message", "message_id", latest, "err", err)
		}
	}

	id, err := p.sender.Send(ctx, channelID, post)
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			p.revoke(ctx, r.GuildID, err)
			return false
		}
		p.metrics.RecordDailyPost(ctx, "failed")
		log.Warn("daily: failed to post", "err", err)
		return false
	}
	p.metrics.RecordDailyPost(ctx, "sent")
	if !UpdateChannel(ctx, p.reg, r.GuildID, nil, &id) {
		log.Warn("daily: posted but could not remember message", "message_id", id)
	}
	return true
}

// revoke marks a guild as unable to post after a permission error.
func (p *Publisher) revoke(ctx context.Context, guildID string, cause error) {
	p.metrics.RecordDailyPost(ctx, "failed")
	slog.Warn("daily: no permission to post, disabling auto-post", "guild_id", guildID, "err", cause)
	if err := p.reg.UpdateCanPost(ctx, guildID, false); err != nil {
		slog.Warn("daily: failed to disable auto-post", "guild_id", guildID, "err", err)
	}
}
