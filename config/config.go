package config

import (
	"fmt"
	"log"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/meinhoongagan/clinic-app/availability"
)

type Environment string

const (
	EnvLocal      Environment = "local"
	EnvDev        Environment = "dev"
	EnvProduction Environment = "production"
)

// localJWTSecret only signs tokens in local environments.
const localJWTSecret = "solid_secret_key"

type Config struct {
	App struct {
		Env      Environment `env:"APP_ENV" envDefault:"local"`
		Timezone string      `env:"APP_TIMEZONE" envDefault:"Europe/Warsaw"`
		LogLevel string      `env:"LOG_LEVEL" envDefault:"info"`
	}

	HTTP struct {
		Port string `env:"HTTP_PORT" envDefault:"8000"`
	}

	DatabaseURL string `env:"DATABASE_URL"`
	JWTSecret   string `env:"JWT_SECRET"`

	Redis struct {
		Addr        string        `env:"REDIS_ADDR"`
		ResetLimit  int           `env:"RESET_LIMIT" envDefault:"5"`
		ResetWindow time.Duration `env:"RESET_WINDOW" envDefault:"15m"`
	}

	SMTP struct {
		Host     string `env:"SMTP_HOST"`
		Port     int    `env:"SMTP_PORT" envDefault:"587"`
		User     string `env:"EMAIL_USER"`
		Password string `env:"EMAIL_PASS"`
	}

	Cloudinary struct {
		CloudName    string `env:"CLOUDINARY_CLOUD_NAME"`
		APIKey       string `env:"CLOUDINARY_API_KEY"`
		APISecret    string `env:"CLOUDINARY_API_SECRET"`
		UploadPreset string `env:"CLOUDINARY_UPLOAD_PRESET"`
	}

	Clinic struct {
		Open        string `env:"CLINIC_OPEN" envDefault:"08:00"`
		Close       string `env:"CLINIC_CLOSE" envDefault:"16:00"`
		SlotMinutes int    `env:"SLOT_MINUTES" envDefault:"60"`
	}

	Admin struct {
		Email    string `env:"ADMIN_EMAIL"`
		Password string `env:"ADMIN_PASSWORD"`
	}

	ReminderSpec    string `env:"REMINDER_SPEC" envDefault:"0 18 * * *"`
	DoctorCacheSize int    `env:"DOCTOR_CACHE_SIZE" envDefault:"256"`

	Location *time.Location
	Grid     availability.Grid
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file. Using environment variables directly.")
	}
	return Parse()
}

// Parse builds the config from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.App.Env = Environment(strings.ToLower(string(cfg.App.Env)))
	switch {
	case cfg.JWTSecret == "" && cfg.IsLocal():
		cfg.JWTSecret = localJWTSecret
	case !cfg.IsLocal() && (cfg.JWTSecret == "" || cfg.JWTSecret == localJWTSecret):
		return nil, fmt.Errorf("JWT_SECRET must be set to a private value when APP_ENV=%s", cfg.App.Env)
	}

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	open, err := availability.ParseSlot(cfg.Clinic.Open)
	if err != nil {
		return nil, fmt.Errorf("CLINIC_OPEN: %w", err)
	}
	closing, err := availability.ParseSlot(cfg.Clinic.Close)
	if err != nil {
		return nil, fmt.Errorf("CLINIC_CLOSE: %w", err)
	}
	if cfg.Clinic.SlotMinutes <= 0 {
		return nil, fmt.Errorf("SLOT_MINUTES must be positive, got %d", cfg.Clinic.SlotMinutes)
	}
	cfg.Grid = availability.Grid{
		Open:  open,
		Close: closing,
		Step:  time.Duration(cfg.Clinic.SlotMinutes) * time.Minute,
	}
	if len(cfg.Grid.Slots()) == 0 {
		return nil, fmt.Errorf("clinic hours %s-%s fit no %d-minute slot", cfg.Clinic.Open, cfg.Clinic.Close, cfg.Clinic.SlotMinutes)
	}

	return cfg, nil
}

func (c *Config) IsLocal() bool {
	return c.App.Env == EnvLocal
}

func (c *Config) MailEnabled() bool {
	return c.SMTP.Host != ""
}

func (c *Config) UploadsEnabled() bool {
	return c.Cloudinary.CloudName != "" && c.Cloudinary.APIKey != "" && c.Cloudinary.APISecret != ""
}
