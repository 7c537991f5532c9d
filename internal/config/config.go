// Package config loads application configuration from the environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/devwork/gh-activity/internal/domain"
)

const envFile = ".env"

// Config holds everything the report pipeline needs from the environment.
type Config struct {
	Token         string
	Owner         string
	Repos         map[string][]string
	UserMap       domain.AuthorMap
	UserMapOnly   bool
	SaveResponses bool
	Verbose       bool
	ResponsesDir  string
	ReportsDir    string
}

type rawConfig struct {
	Token         string `mapstructure:"github_token"`
	Owner         string `mapstructure:"owner"`
	Repos         string `mapstructure:"repos"`
	UserMap       string `mapstructure:"user_map"`
	UserMapOnly   bool   `mapstructure:"user_map_only"`
	SaveResponses bool   `mapstructure:"save_responses"`
	Verbose       bool   `mapstructure:"verbose"`
	ResponsesDir  string `mapstructure:"responses_dir"`
	ReportsDir    string `mapstructure:"reports_dir"`
}

// Load reads configuration from the environment, seeded from ./.env when
// present. Variables already set in the environment win over the file.
func Load() (*Config, error) {
	if envMap, err := godotenv.Read(envFile); err == nil {
		for k, val := range envMap {
			if _, exists := os.LookupEnv(k); !exists {
				_ = os.Setenv(k, val)
			}
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("responses_dir", "./responses")
	v.SetDefault("reports_dir", "./reports")

	_ = v.BindEnv("github_token", "GITHUB_TOKEN", "GITHUB_CLASSIC_TOKEN")
	for _, key := range []string{
		"owner",
		"repos",
		"user_map",
		"user_map_only",
		"save_responses",
		"verbose",
		"responses_dir",
		"reports_dir",
	} {
		_ = v.BindEnv(key)
	}

	var raw rawConfig
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg := &Config{
		Token:         raw.Token,
		Owner:         raw.Owner,
		Repos:         map[string][]string{},
		UserMap:       domain.AuthorMap{},
		UserMapOnly:   raw.UserMapOnly,
		SaveResponses: raw.SaveResponses,
		Verbose:       raw.Verbose,
		ResponsesDir:  raw.ResponsesDir,
		ReportsDir:    raw.ReportsDir,
	}

	if raw.Repos != "" {
		if err := json.Unmarshal([]byte(raw.Repos), &cfg.Repos); err != nil {
			return nil, fmt.Errorf("parse REPOS: %w", err)
		}
	}
	if raw.UserMap != "" {
		if err := json.Unmarshal([]byte(raw.UserMap), &cfg.UserMap); err != nil {
			return nil, fmt.Errorf("parse USER_MAP: %w", err)
		}
	}

	for _, repos := range cfg.Repos {
		sort.Strings(repos)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures required fields are present.
func (c *Config) Validate() error {
	if c.Token == "" {
		return errors.New("GITHUB_TOKEN (or GITHUB_CLASSIC_TOKEN) is required")
	}
	if c.Owner == "" {
		return errors.New("OWNER is required")
	}
	if len(c.RepoList()) == 0 {
		return errors.New("REPOS must list at least one repository")
	}
	return nil
}

// Orgs returns the organization keys of Repos in sorted order.
func (c *Config) Orgs() []string {
	orgs := make([]string, 0, len(c.Repos))
	for org := range c.Repos {
		orgs = append(orgs, org)
	}
	sort.Strings(orgs)
	return orgs
}

// RepoList flattens Repos into a single list, orgs and repos alphabetical.
func (c *Config) RepoList() []string {
	var repos []string
	for _, org := range c.Orgs() {
		repos = append(repos, c.Repos[org]...)
	}
	return repos
}
