package config

import (
	"fmt"
	"os"

	"gopkg.in/ini.v1"
)

// Account-level defaults applied when a section omits the key.
const (
	defaultServer  = "outlook.office365.com"
	defaultVersion = "Exchange2016"
)

// Load parses an INI configuration file and returns the Config.
// If the file does not exist, returns the default configuration
// (which fails validation for lack of accounts).
//
// The DEFAULT section sets run-wide options (timezone, timeout,
// log_level, metrics_*); every other section defines one account with
// keys user, pass, server and version. Accounts keep file order.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file: %w", err)
	}

	file, err := ini.Load(data)
	if err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}

	def := file.Section(ini.DefaultSection)
	if v := def.Key("timezone").String(); v != "" {
		cfg.Timezone = v
	}
	if v := def.Key("timeout").String(); v != "" {
		cfg.Timeout = v
	}
	if v := def.Key("log_level").String(); v != "" {
		cfg.LogLevel = v
	}
	if def.HasKey("metrics_enabled") {
		cfg.Metrics.Enabled = def.Key("metrics_enabled").MustBool(false)
	}
	if v := def.Key("metrics_address").String(); v != "" {
		cfg.Metrics.Address = v
	}
	if v := def.Key("metrics_path").String(); v != "" {
		cfg.Metrics.Path = v
	}

	for _, sec := range file.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		account := AccountConfig{
			Name:    sec.Name(),
			User:    sec.Key("user").String(),
			Pass:    sec.Key("pass").String(),
			Server:  sec.Key("server").String(),
			Version: sec.Key("version").String(),
		}
		if account.Server == "" {
			account.Server = defaultServer
		}
		if account.Version == "" {
			account.Version = defaultVersion
		}
		cfg.Accounts = append(cfg.Accounts, account)
	}

	return cfg, nil
}
