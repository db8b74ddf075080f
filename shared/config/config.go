package config

import (
	"os"
	"path"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	ThreadsPerPage   int           `yaml:"threads_per_page" validate:"required,min=1"`
	MaxPageSize      int           `yaml:"max_page_size" validate:"required,min=1"`
	PopulateDepth    int           `yaml:"populate_depth" validate:"min=0"`  // levels of replies attached to a single thread
	MaxPopulateDepth int           `yaml:"max_populate_depth" validate:"min=0"`
	MaxTextLength    int           `yaml:"max_text_length" validate:"required,min=1"`
	JwtTTL           time.Duration `yaml:"jwt_ttl" validate:"required"`
	SecureCookies    bool          `yaml:"secure_cookies"`
	LogLevel         string        `yaml:"log_level"`
	LogJSON          bool          `yaml:"log_json"`
	RepairSchedule   string        `yaml:"repair_schedule"` // cron expression, empty disables the link repair pass
	Storage          string        `yaml:"storage" validate:"omitempty,oneof=pg memory"`
	CorsOrigins      []string      `yaml:"cors_origins"`
	Nats             Nats          `yaml:"nats"`
}

type Nats struct {
	Url     string `yaml:"url"` // empty runs the publisher in stub mode
	Subject string `yaml:"subject"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

type Private struct {
	Pg     Pg     `yaml:"pg"`
	JwtKey string `yaml:"jwt_key" validate:"required"`
}

func (s *Config) JwtKey() string {
	return s.Private.JwtKey
}

func (s *Config) JwtTTL() time.Duration {
	return s.Public.JwtTTL
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)

	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file")
	}

	if err := validator.New().Struct(output); err != nil {
		panic("invalid config " + configPath + ": " + err.Error())
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{public, private}
	cfg.setDefaults()
	return cfg
}

func (s *Config) setDefaults() {
	if s.Public.Storage == "" {
		s.Public.Storage = "pg"
	}
	if s.Public.MaxPopulateDepth < s.Public.PopulateDepth {
		s.Public.MaxPopulateDepth = s.Public.PopulateDepth
	}
	if s.Public.Nats.Subject == "" {
		s.Public.Nats.Subject = "threads.invalidate"
	}
	if s.Public.ThreadsPerPage > s.Public.MaxPageSize {
		s.Public.ThreadsPerPage = s.Public.MaxPageSize
	}
}
