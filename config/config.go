package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// DevJWTSecret is used when JWT_SECRET is unset. Never run production with it.
const DevJWTSecret = "project-ascend-dev-secret"

type Config struct {
	Port           string        `env:"PORT" envDefault:"8000"`
	DatabaseURL    string        `env:"DATABASE_URL"`
	SQLitePath     string        `env:"SQLITE_PATH" envDefault:"project_ascend.db"`
	JWTSecret      string        `env:"JWT_SECRET" envDefault:"project-ascend-dev-secret"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"60m"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	AdminToken     string        `env:"ADMIN_TOKEN"`

	GoogleAPIKey string `env:"GOOGLE_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`

	WaterTargetMl      int           `env:"WATER_TARGET_ML" envDefault:"3000"`
	QuestXPStrict      bool          `env:"QUEST_XP_STRICT" envDefault:"false"`
	QuestSweepInterval time.Duration `env:"QUEST_SWEEP_INTERVAL" envDefault:"0s"`
	QuestSweepGrace    time.Duration `env:"QUEST_SWEEP_GRACE" envDefault:"0s"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	for i, origin := range cfg.AllowedOrigins {
		cfg.AllowedOrigins[i] = strings.TrimSpace(origin)
	}
	if cfg.WaterTargetMl <= 0 {
		return Config{}, fmt.Errorf("WATER_TARGET_ML must be positive, got %d", cfg.WaterTargetMl)
	}
	if cfg.QuestSweepInterval < 0 || cfg.QuestSweepGrace < 0 {
		return Config{}, fmt.Errorf("quest sweep durations must not be negative")
	}
	return cfg, nil
}

// UsesPostgres reports whether DATABASE_URL selects the PostgreSQL store.
func (c Config) UsesPostgres() bool {
	return c.DatabaseURL != ""
}

// Addr is the listen address for Fiber.
func (c Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
