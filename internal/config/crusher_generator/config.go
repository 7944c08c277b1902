package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

const dateLayout = "2006-01-02"

type Config struct {
	StartDate string        `yaml:"start_date" env:"START_DATE" env-default:"2023-01-01" validate:"datetime=2006-01-02"`
	EndDate   string        `yaml:"end_date" env:"END_DATE" env-default:"2025-01-01" validate:"datetime=2006-01-02"`
	Interval  time.Duration `yaml:"interval" env:"INTERVAL" env-default:"30m" validate:"gt=0"`
	Crushers  int           `yaml:"crushers" env:"CRUSHERS" env-default:"3" validate:"gt=0"`
	Seed      uint64        `yaml:"seed" env:"SEED" env-default:"0"`

	OutputDir  string `yaml:"output_dir" env:"OUTPUT_DIR" env-default:"."`
	OutputFile string `yaml:"output_file" env-default:"datos_sinteticos_chancadoras_2anios.csv" validate:"required"`

	MetricsAddr string `yaml:"metrics_addr" env:"METRICS_ADDR"`
}

func (c *Config) Start() time.Time {
	t, _ := time.Parse(dateLayout, c.StartDate)
	return t
}

func (c *Config) End() time.Time {
	t, _ := time.Parse(dateLayout, c.EndDate)
	return t
}

func (c *Config) Path() string {
	return filepath.Join(c.OutputDir, c.OutputFile)
}

func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("error opening config file: %w", err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("error reading environment: %w", err)
	}
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if !cfg.Start().Before(cfg.End()) {
		return nil, fmt.Errorf("invalid config: start_date %s is not before end_date %s", cfg.StartDate, cfg.EndDate)
	}
	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		panic(err)
	}
	return cfg
}
