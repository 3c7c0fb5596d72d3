package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Postgres struct {
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		DBName   string `yaml:"dbname"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		SSLMode  string `yaml:"sslmode"`
		TimeZone string `yaml:"TimeZone"`
	} `yaml:"postgres"`
	Auth struct {
		JWTSecret        string `yaml:"jwtSecret"`
		TokenExpireHours int    `yaml:"tokenExpireHours"`
	} `yaml:"auth"`
	Recognize struct {
		APIURL         string `yaml:"apiUrl"`
		APIToken       string `yaml:"apiToken"`
		ModelVersion   string `yaml:"modelVersion"`
		MaxConcurrent  int    `yaml:"maxConcurrent"`
		TimeoutSeconds int    `yaml:"timeoutSeconds"`
	} `yaml:"recognize"`
}

var (
	once   sync.Once
	config *Config
)

// GetConfig returns the process-wide configuration, loading it on first use.
// The config file path can be overridden with SOLAROPS_CONFIG.
func GetConfig() *Config {
	once.Do(func() {
		path := os.Getenv("SOLAROPS_CONFIG")
		if path == "" {
			path = "./etc/config.yaml"
		}
		cfg, err := Load(path)
		if err != nil {
			panic(fmt.Errorf("init config: %w", err))
		}
		config = cfg
	})
	return config
}

// Load reads a YAML configuration file and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8180
	}
	if cfg.Postgres.Port == "" {
		cfg.Postgres.Port = "5432"
	}
	if cfg.Postgres.SSLMode == "" {
		cfg.Postgres.SSLMode = "disable"
	}
	if cfg.Postgres.TimeZone == "" {
		cfg.Postgres.TimeZone = "Asia/Taipei"
	}
	if cfg.Auth.TokenExpireHours == 0 {
		cfg.Auth.TokenExpireHours = 24
	}
	if cfg.Recognize.MaxConcurrent == 0 {
		cfg.Recognize.MaxConcurrent = 3
	}
	if cfg.Recognize.TimeoutSeconds == 0 {
		cfg.Recognize.TimeoutSeconds = 60
	}
}

func validate(cfg *Config) error {
	if cfg.Postgres.Host == "" {
		return fmt.Errorf("postgres.host is required")
	}
	if cfg.Postgres.DBName == "" {
		return fmt.Errorf("postgres.dbname is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwtSecret is required")
	}
	return nil
}
