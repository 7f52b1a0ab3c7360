// Package config loads barista's YAML configuration: the managed accounts and
// the moderation lists that blocklist syncs feed into.
package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the config file is looked up when no flag overrides it.
const DefaultPath = "config.yml"

// Account holds one account's credentials. The password is an app password,
// not the main account password.
type Account struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// ListTarget names a moderation list that blocklist syncs add members to. The
// owning account must appear in Accounts.
type ListTarget struct {
	Account string `yaml:"account"`
	URL     string `yaml:"url"`
}

// Config is the full configuration file.
type Config struct {
	Accounts map[string]Account `yaml:"accounts"`
	Lists    []ListTarget       `yaml:"lists"`
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks that every account has credentials and every list target
// names a configured account.
func (c *Config) Validate() error {
	if len(c.Accounts) == 0 {
		return fmt.Errorf("no accounts configured")
	}
	for name, acct := range c.Accounts {
		if acct.Email == "" {
			return fmt.Errorf("account %q has no email", name)
		}
		if acct.Password == "" {
			return fmt.Errorf("account %q has no password", name)
		}
	}
	for i, list := range c.Lists {
		if list.URL == "" {
			return fmt.Errorf("list %d has no url", i)
		}
		if _, ok := c.Accounts[list.Account]; !ok {
			return fmt.Errorf("list %d names unknown owner account %q", i, list.Account)
		}
	}
	return nil
}

// AccountNames returns the configured account names in stable sorted order, so
// runs process accounts deterministically.
func (c *Config) AccountNames() []string {
	names := make([]string, 0, len(c.Accounts))
	for name := range c.Accounts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
