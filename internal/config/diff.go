package config

// ConfigDiff describes what changed between two configs.
// LogLevel is applied live; every other changed key needs a restart.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// RestartRequired lists the changed keys that only take effect after
	// a restart, in schema order.
	RestartRequired []string
}

// Changed reports whether anything differs.
func (d ConfigDiff) Changed() bool {
	return d.LogLevelChanged || len(d.RestartRequired) > 0
}

// Diff compares old and new configs and returns what changed.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	restart := func(key string, changed bool) {
		if changed {
			d.RestartRequired = append(d.RestartRequired, key)
		}
	}
	restart("server.listen_addr", old.Server.ListenAddr != new.Server.ListenAddr)
	restart("discord", old.Discord != new.Discord)
	restart("game_api", old.GameAPI != new.GameAPI)
	restart("designs.refresh_interval", old.Designs.RefreshInterval != new.Designs.RefreshInterval)
	restart("daily", old.Daily != new.Daily)
	restart("database", old.Database != new.Database)

	return d
}
