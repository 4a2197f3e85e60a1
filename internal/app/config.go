package app

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Issuer is the "iss" claim on minted tokens and the TOTP issuer label.
	Issuer string `env:"SERPLANTAS_ISSUER" envDefault:"serplantas"`

	// TokenSecret signs session tokens. Must be at least 32 bytes. Required;
	// there is no safe default for a signing secret.
	TokenSecret string `env:"SERPLANTAS_TOKEN_SECRET"`

	DatabaseFile string `env:"SERPLANTAS_DATABASE_FILE" envDefault:"serplantas.db"`
	PepperFile   string `env:"SERPLANTAS_PEPPER_FILE" envDefault:"pepper"`

	// GeminiAPIKey authenticates against the generative model API. The AI
	// endpoints return errors without it; everything else works.
	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	GeminiBaseURL string `env:"GEMINI_BASE_URL"`

	Env       string `env:"ENV" envDefault:"dev"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	Port                int           `env:"PORT" envDefault:"8080"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
}

// LoadConfig reads configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.TokenSecret == "" {
		return Config{}, errors.New("SERPLANTAS_TOKEN_SECRET is required")
	}
	return cfg, nil
}
