package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Address string `yaml:"address"`
	} `yaml:"server"`
	Database struct {
		Driver string `yaml:"driver"`
		URL    string `yaml:"url"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	JWT struct {
		Secret          string `yaml:"secret"`
		AccessTTLMin    int    `yaml:"access_ttl_minutes"`
		RefreshTTLHours int    `yaml:"refresh_ttl_hours"`
	} `yaml:"jwt"`
	Proposals struct {
		ResponseWindowHours  int `yaml:"response_window_hours"`
		SweepIntervalMinutes int `yaml:"sweep_interval_minutes"`
	} `yaml:"proposals"`
	Storage struct {
		Bucket    string `yaml:"bucket"`
		Region    string `yaml:"region"`
		Endpoint  string `yaml:"endpoint"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
	} `yaml:"storage"`
	FCM struct {
		CredentialsFile string `yaml:"credentials_file"`
	} `yaml:"fcm"`
}

func LoadConfig() Config {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("Failed to unmarshal config data: %v", err)
	}

	if cfg.JWT.AccessTTLMin == 0 {
		cfg.JWT.AccessTTLMin = 30
	}
	if cfg.JWT.RefreshTTLHours == 0 {
		cfg.JWT.RefreshTTLHours = 24 * 30
	}
	if cfg.Proposals.ResponseWindowHours == 0 {
		cfg.Proposals.ResponseWindowHours = 72
	}
	if cfg.Proposals.SweepIntervalMinutes == 0 {
		cfg.Proposals.SweepIntervalMinutes = 10
	}
	return cfg
}
