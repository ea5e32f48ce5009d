package daily

import (
	"context"
	"log/slog"

	"github.com/MrWong99/starbridge/internal/settings"
)

// TryStore registers channelID as the auto-post destination of guildID.
// A missing registration is created with defaults first; a registration
// pointing elsewhere is updated; a matching one is left untouched. Every
// persistence failure is logged and reported as false.
func TryStore(ctx context.Context, reg settings.Registry, guildID, channelID string) bool {
	rows, err := reg.Registrations(ctx, &guildID, nil)
	if err != nil {
		slog.Warn("daily: failed to look up registration", "guild_id", guildID, "err", err)
		return false
	}

	if len(rows) == 0 {
		if err := reg.CreateDefaults(ctx, guildID); err != nil {
			slog.Warn("daily: failed to insert registration", "guild_id", guildID, "channel_id", channelID, "err", err)
			return false
		}
		if !UpdateChannel(ctx, reg, guildID, &channelID, nil) {
			slog.Warn("daily: failed to set channel of new registration", "guild_id", guildID, "channel_id", channelID)
			return false
		}
		return true
	}

	if cur := rows[0].ChannelID; cur != nil && *cur == channelID {
		return true
	}
	if !UpdateChannel(ctx, reg, guildID, &channelID, nil) {
		slog.Warn("daily: failed to update registration", "guild_id", guildID, "channel_id", channelID)
		return false
	}
	return true
}

// UpdateChannel applies the non-nil arguments to the registration of
// guildID: first the channel, then the latest message id. It stops at the
// first failure.
func UpdateChannel(ctx context.Context, reg settings.Registry, guildID string, channelID, latestMessageID *string) bool {
	if channelID != nil {
		if err := reg.UpdateChannel(ctx, guildID, *channelID); err != nil {
			slog.Warn("daily: failed to update channel", "guild_id", guildID, "err", err)
			return false
		}
	}
	if latestMessageID != nil {
		if err := reg.UpdateLatestMessage(ctx, guildID, *latestMessageID); err != nil {
			slog.Warn("daily: failed to update latest message", "guild_id", guildID, "err", err)
			return false
		}
	}
	return true
}

// Dedupe keeps the first registration per guild, preserving input order.
func Dedupe(regs []settings.Registration) []settings.Registration {
	if regs == nil {
		return nil
	}
	seen := make(map[string]bool, len(regs))
	out := make([]settings.Registration, 0, len(regs))
	for _, r := range regs {
		if seen[r.GuildID] {
			continue
		}
		seen[r.GuildID] = true
		out = append(out, r)
	}
	return out
}
