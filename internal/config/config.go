package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvDevelopment is the APP_ENV value for local development.
const EnvDevelopment = "development"

// Config contains server configuration parameters.
type Config struct {
	LogLevel int      `env:"LOG_LEVEL" envDefault:"0"`
	AppEnv   string   `env:"APP_ENV" envDefault:"production"`
	HTTP     HTTP     `envPrefix:"HTTP_"`
	Database Database `envPrefix:"DATABASE_"`
	JWT      JWT      `envPrefix:"JWT_"`
	Bcrypt   Bcrypt   `envPrefix:"BCRYPT_"`
	Redis    Redis    `envPrefix:"REDIS_"`
}

// HTTP contains HTTP server parameters.
type HTTP struct {
	Port               string   `env:"PORT" envDefault:"5000"`
	EnableHTTPS        bool     `env:"ENABLE_HTTPS" envDefault:"false"`
	CertFileName       string   `env:"CERT_FILE_NAME" envDefault:"cert.pem"`
	PrivateKeyFileName string   `env:"PRIVATE_KEY_FILE_NAME" envDefault:"key.pem"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`
}

// Database contains database connection parameters.
// An empty DSN selects the in-memory user store.
type Database struct {
	DSN string `env:"DSN"`
}

// JWT contains session token parameters.
type JWT struct {
	Secret string `env:"SECRET,required,notEmpty"`
}

// Bcrypt contains password hashing parameters.
type Bcrypt struct {
	Cost int `env:"COST" envDefault:"10"`
}

// Redis contains the optional session lookup cache parameters.
type Redis struct {
	URL     string        `env:"URL"`
	UserTTL time.Duration `env:"USER_TTL" envDefault:"1m"`
}

// IsDevelopment reports whether the server runs in local development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}

// NewConfig loads configuration from an optional .env file and environment variables.
// Variables already present in the environment take precedence over the file.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
