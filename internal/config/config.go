package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultCategories is used when the config file does not list any.
var DefaultCategories = []string{
	"Pesquisa e Desenvolvimento",
	"Atendimento de Fábrica",
	"Documentação",
	"Gabaritos e Dispositivos",
	"Cadastro",
	"Reuniões",
	"Custos",
	"Finame",
	"RNC",
	"Outros",
}

type Config struct {
	App struct {
		Title        string   `yaml:"title"`
		Timezone     string   `yaml:"timezone"`
		LogLevel     string   `yaml:"log_level" env:"LOG_LEVEL"`
		Categories   []string `yaml:"categories"`
		AutoFinalize []string `yaml:"auto_finalize"`
	} `yaml:"app"`

	Database struct {
		URL      string `yaml:"url" env:"DATABASE_URL"`
		Host     string `yaml:"host" env:"DB_HOST"`
		Port     int    `yaml:"port" env:"DB_PORT"`
		User     string `yaml:"user" env:"DB_USER"`
		Password string `yaml:"password" env:"DB_PASSWORD"`
		DBName   string `yaml:"dbname" env:"DB_NAME"`
		SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE"`
	} `yaml:"database"`
}

func Load() (*Config, error) {
	return LoadFile("config.yaml")
}

func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Replace environment variables in the YAML content
	content := string(data)
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 {
			continue
		}
		placeholder := "${" + pair[0] + "}"
		content = strings.ReplaceAll(content, placeholder, pair[1])
	}
	// Unset placeholders collapse to empty so Validate can name them.
	for {
		start := strings.Index(content, "${")
		if start < 0 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end < 0 {
			break
		}
		content = content[:start] + content[start+end+1:]
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(content), &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	// Convert DB_PORT from string to int if it's an environment variable
	if portStr := os.Getenv("DB_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid DB_PORT value: %w", err)
		}
		cfg.Database.Port = port
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Title == "" {
		c.App.Title = "ActivityTracker"
	}
	if c.App.Timezone == "" {
		c.App.Timezone = "America/Sao_Paulo"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if len(c.App.Categories) == 0 {
		c.App.Categories = DefaultCategories
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "require"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
}

// Validate fails fast when the backend credentials are incomplete. A full
// connection URL satisfies everything; otherwise the individual fields must
// all be present.
func (c *Config) Validate() error {
	if c.Database.URL != "" {
		return nil
	}

	var missing []string
	if c.Database.Host == "" {
		missing = append(missing, "database.host (DB_HOST)")
	}
	if c.Database.User == "" {
		missing = append(missing, "database.user (DB_USER)")
	}
	if c.Database.Password == "" {
		missing = append(missing, "database.password (DB_PASSWORD)")
	}
	if c.Database.DBName == "" {
		missing = append(missing, "database.dbname (DB_NAME)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing database credentials: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ConnString returns the Postgres connection string for pgx.
func (c *Config) ConnString() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

// Location resolves the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
