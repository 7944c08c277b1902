package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	HTTPAddr          string        `yaml:"http_addr" env:"HTTP_ADDR" env-default:":8080"`
	MongoURI          string        `yaml:"mongo_uri" env:"MONGO_URI" env-required:"true"`
	RabbitURI         string        `yaml:"rabbit_uri" env:"RABBIT_URI" env-required:"true"`
	QueueName         string        `yaml:"queue_name" env:"QUEUE_NAME" env-default:"failures"`
	DBName            string        `yaml:"db_name" env-default:"millsim"`
	FailureCollection string        `yaml:"failure_collection" env-default:"failure_events"`
	AlertCollection   string        `yaml:"alert_collection" env-default:"alerts"`
	RunCollection     string        `yaml:"run_collection" env-default:"runs"`
	ClusterCount      int           `yaml:"cluster_count" env-default:"3" validate:"gte=2"`
	ClusterWindow     time.Duration `yaml:"cluster_window" env-default:"2160h" validate:"gt=0"`
	MetricsAddr       string        `yaml:"metrics_addr" env:"METRICS_ADDR" env-default:":9092"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("CONFIG_PATH environment variable is not set")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("error opening config file: %w", err)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
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
