// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// MinSessionSecretLength is the minimum required length for the session
// secret. 32 bytes matches the CSRF key requirement.
const MinSessionSecretLength = 32

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"NEWSDESK_DB_PATH" envDefault:"./data/newsdesk.db"`
	SessionSecret string `env:"NEWSDESK_SESSION_SECRET,required"`
	ServerHost    string `env:"NEWSDESK_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"NEWSDESK_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"NEWSDESK_ENV" envDefault:"development"`
	LogLevel      string `env:"NEWSDESK_LOG_LEVEL" envDefault:"info"`

	// Seeding configuration
	DoSeed bool `env:"NEWSDESK_DO_SEED" envDefault:"false"`

	// Event log retention for the pruning job
	EventRetentionDays int `env:"NEWSDESK_EVENT_RETENTION_DAYS" envDefault:"90"`

	// LegacyOpenEditorRoutes restores the original behavior where the
	// article creation and edit forms were reachable without a session.
	// Off by default: the unauthenticated forms are treated as a bug.
	LegacyOpenEditorRoutes bool `env:"NEWSDESK_LEGACY_OPEN_EDITOR_ROUTES" envDefault:"false"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("NEWSDESK_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("NEWSDESK_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if cfg.EventRetentionDays < 1 {
		return nil, fmt.Errorf("NEWSDESK_EVENT_RETENTION_DAYS must be positive, got %d", cfg.EventRetentionDays)
	}

	if strings.TrimSpace(cfg.DBPath) == "" {
		return nil, fmt.Errorf("NEWSDESK_DB_PATH must not be empty")
	}

	return cfg, nil
}
