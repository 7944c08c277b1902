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
	StartDate     string   `yaml:"start_date" env:"START_DATE" env-default:"2023-01-01" validate:"datetime=2006-01-02"`
	DurationYears float64  `yaml:"duration_years" env:"DURATION_YEARS" env-default:"2.5" validate:"gt=0"`
	Seed          uint64   `yaml:"seed" env:"SEED" env-default:"0"`
	Units         []string `yaml:"units" env:"UNITS" env-default:"M1,M2,M3,M4,M5,M6" validate:"min=1,unique,dive,required"`
	Workers       int      `yaml:"workers" env:"WORKERS" env-default:"0" validate:"gte=0"`

	OutputDir               string `yaml:"output_dir" env:"OUTPUT_DIR" env-default:"."`
	DatasetFile             string `yaml:"dataset_file" env-default:"molinos_mineraperu_dataset.csv" validate:"required"`
	ConditionMonitoringFile string `yaml:"condition_monitoring_file" env-default:"condition_monitoring_view.csv" validate:"required"`
	ProcessOptimizationFile string `yaml:"process_optimization_file" env-default:"process_optimization_view.csv" validate:"required"`

	MetricsAddr string `yaml:"metrics_addr" env:"METRICS_ADDR"`
	RabbitURI   string `yaml:"rabbit_uri" env:"RABBIT_URI" validate:"omitempty,url"`
	QueueName   string `yaml:"queue_name" env:"QUEUE_NAME" env-default:"failures"`
	NotifyURL   string `yaml:"notify_url" env:"NOTIFY_URL" validate:"omitempty,url"`
}

func (c *Config) Start() time.Time {
	t, _ := time.Parse(dateLayout, c.StartDate)
	return t
}

func (c *Config) Path(file string) string {
	return filepath.Join(c.OutputDir, file)
}

// Load reads path when it is set, otherwise only the environment and defaults.
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
	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		panic(err)
	}
	return cfg
}
