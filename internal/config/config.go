// Package config loads quizmate settings from a TOML file, a .env file and
// QUIZMATE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/abhisek/quizmate/internal/bank"
	"github.com/abhisek/quizmate/internal/llm"
)

// Config is the merged configuration of every command.
type Config struct {
	Client ClientConfig `toml:"client"`
	Serve  ServeConfig  `toml:"serve"`
	LLM    LLMConfig    `toml:"llm"`
}

// ClientConfig is read by play and start.
type ClientConfig struct {
	Server   string `toml:"server"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Course   string `toml:"course"`
	LogFile  string `toml:"log_file"`
}

// ServeConfig is read by serve and explain.
type ServeConfig struct {
	Addr       string         `toml:"addr"`
	DataDir    string         `toml:"data_dir"`
	SessionTTL Duration       `toml:"session_ttl"`
	Courses    []CourseConfig `toml:"courses"`
}

// CourseConfig describes one question bank. Relative paths are resolved
// against ServeConfig.DataDir.
type CourseConfig struct {
	Name         string `toml:"name"`
	Title        string `toml:"title"`
	Questions    string `toml:"questions"`
	Layout       string `toml:"layout"`
	Explanations string `toml:"explanations"`
}

// LLMConfig selects the provider used by explain. API keys are never read
// from the file.
type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	BaseURL  string `toml:"base_url"`
}

// Duration is a time.Duration written as a string such as "720h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration: %w", err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Client: ClientConfig{
			Server:  "http://127.0.0.1:5000",
			LogFile: DefaultLogFile(),
		},
		Serve: ServeConfig{
			Addr:       ":5000",
			DataDir:    DefaultDataDir(),
			SessionTTL: Duration{30 * 24 * time.Hour},
		},
		LLM: LLMConfig{Provider: llm.ProviderDeepSeek},
	}
}

// Load reads the TOML file at path over the defaults, then loads .env from
// the working directory and applies the environment. A missing file is not
// an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if err := decodeFile(path, &cfg); err != nil {
		return Config{}, err
	}
	if err := LoadEnvFile(".env"); err != nil {
		return Config{}, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat config: %w", err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// LoadEnvFile exports the variables of a dotenv file. Variables already in
// the environment win. A missing file is not an error.
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from QUIZMATE_* variables.
func (c *Config) ApplyEnv() {
	setFromEnv(&c.Client.Server, "QUIZMATE_SERVER")
	setFromEnv(&c.Client.Username, "QUIZMATE_USERNAME")
	setFromEnv(&c.Client.Password, "QUIZMATE_PASSWORD")
	setFromEnv(&c.Client.Course, "QUIZMATE_COURSE")
	setFromEnv(&c.Client.LogFile, "QUIZMATE_LOG_FILE")
	setFromEnv(&c.Serve.Addr, "QUIZMATE_ADDR")
	setFromEnv(&c.Serve.DataDir, "QUIZMATE_DATA_DIR")
	setFromEnv(&c.LLM.Provider, "QUIZMATE_LLM_PROVIDER")
	setFromEnv(&c.LLM.Model, "QUIZMATE_LLM_MODEL")
	setFromEnv(&c.LLM.BaseURL, "QUIZMATE_LLM_BASE_URL")
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// ValidateClient checks the settings play and start need.
func (c Config) ValidateClient() error {
	if c.Client.Server == "" {
		return fmt.Errorf("client.server is required")
	}
	if !strings.HasPrefix(c.Client.Server, "http://") && !strings.HasPrefix(c.Client.Server, "https://") {
		return fmt.Errorf("client.server must be an http(s) URL, got %q", c.Client.Server)
	}
	return nil
}

// ValidateServe checks the settings serve and explain need.
func (c Config) ValidateServe() error {
	if c.Serve.Addr == "" {
		return fmt.Errorf("serve.addr is required")
	}
	if c.Serve.SessionTTL.Duration <= 0 {
		return fmt.Errorf("serve.session_ttl must be positive")
	}
	if len(c.Serve.Courses) == 0 {
		return fmt.Errorf("at least one [[serve.courses]] entry is required")
	}
	seen := make(map[string]bool)
	for i, course := range c.Serve.Courses {
		if course.Name == "" {
			return fmt.Errorf("serve.courses[%d]: name is required", i)
		}
		if seen[course.Name] {
			return fmt.Errorf("serve.courses[%d]: duplicate name %q", i, course.Name)
		}
		seen[course.Name] = true
		if course.Questions == "" {
			return fmt.Errorf("course %s: questions is required", course.Name)
		}
		switch bank.Layout(course.Layout) {
		case "", bank.LayoutUnits, bank.LayoutGrouped:
		default:
			return fmt.Errorf("course %s: unknown layout %q", course.Name, course.Layout)
		}
	}
	return nil
}

// Sources returns the bank sources of the configured courses with paths
// resolved against the data directory.
func (c Config) Sources() []bank.Source {
	out := make([]bank.Source, len(c.Serve.Courses))
	for i, course := range c.Serve.Courses {
		title := course.Title
		if title == "" {
			title = course.Name
		}
		out[i] = bank.Source{
			Name:         course.Name,
			Title:        title,
			Questions:    c.resolve(course.Questions),
			Layout:       bank.Layout(course.Layout),
			Explanations: c.resolve(course.Explanations),
		}
	}
	return out
}

// Source returns the bank source of one course.
func (c Config) Source(name string) (bank.Source, bool) {
	for _, src := range c.Sources() {
		if src.Name == name || name == "" {
			return src, true
		}
	}
	return bank.Source{}, false
}

func (c Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.Serve.DataDir == "" {
		return path
	}
	return filepath.Join(c.Serve.DataDir, path)
}

// ProviderConfig returns the provider configuration with the API key of the
// selected provider taken from the environment.
func (c Config) ProviderConfig() llm.Config {
	lc := llm.DefaultConfig()
	if c.LLM.Provider != "" {
		lc.Provider = c.LLM.Provider
	}
	lc.Model = c.LLM.Model
	lc.BaseURL = c.LLM.BaseURL
	lc.ApplyEnv()
	return lc
}
