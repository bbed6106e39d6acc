package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db" validate:"min=0,max=15"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		TTL              string `yaml:"ttl"`
		SessionTTL       string `yaml:"sessionTtl"`
		FeedbackDelay    string `yaml:"feedbackDelay"`
		QuestionLimit    int    `yaml:"questionLimit" validate:"min=0,max=50"`
		PointsPerCorrect int    `yaml:"pointsPerCorrect" validate:"min=0"`
		MaxOptions       int    `yaml:"maxOptions" validate:"omitempty,min=2,max=8"`
	} `yaml:"quiz"`
	Auth struct {
		Secret   string   `yaml:"secret"`
		Issuer   string   `yaml:"issuer"`
		TokenTTL string   `yaml:"tokenTtl"`
		Admins   []string `yaml:"admins"`
	} `yaml:"auth"`
	Log struct {
		Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
		Env   string `yaml:"env" validate:"omitempty,oneof=development production"`
	} `yaml:"log"`
}

var validate = validator.New()

// Load reads YAML config from path. A missing file yields the defaults so the
// service can run in guest-only demo mode.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	if secret := os.Getenv("AUTH_SECRET"); secret != "" {
		cfg.Auth.Secret = secret
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the struct tags of cfg and reports every failing field.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("Field: %s, Tag: %s, Param: %s", fe.Namespace(), fe.Tag(), fe.Param()))
		}
		return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
