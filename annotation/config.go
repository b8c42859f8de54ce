package annotation

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/lewtec/parelha/internal/session"
)

const (
	DefaultBaseURL            = "http://localhost:8080/api"
	DefaultAddr               = "127.0.0.1:8081"
	DefaultLanguage           = "en"
	DefaultNoticeTTL          = 3 * time.Second
	DefaultHistoryPageSize    = 10
	DefaultSubmitRefreshDelay = 2 * time.Second
	journalFile               = "journal.db"
)

type Config struct {
	API     ConfigAPI     `yaml:"api"`
	UI      ConfigUI      `yaml:"ui"`
	Session ConfigSession `yaml:"session"`
	Journal ConfigJournal `yaml:"journal"`
}

type ConfigAPI struct {
	BaseURL  string        `yaml:"base_url" validate:"required,url"`
	Timeout  time.Duration `yaml:"timeout" validate:"gte=0"`
	CacheTTL time.Duration `yaml:"cache_ttl" validate:"gte=0"`
}

type ConfigUI struct {
	Addr               string        `yaml:"addr" validate:"required"`
	Language           string        `yaml:"language" validate:"oneof=en fr pt-BR"`
	NoticeTTL          time.Duration `yaml:"notice_ttl" validate:"gte=0"`
	HistoryPageSize    int           `yaml:"history_page_size" validate:"min=1,max=100"`
	SubmitRefreshDelay time.Duration `yaml:"submit_refresh_delay" validate:"gte=0"`
	BoardConcurrency   int           `yaml:"board_concurrency" validate:"min=1,max=32"`
}

type ConfigSession struct {
	Dir string `yaml:"dir"`
}

type ConfigJournal struct {
	// Path nil means next to the session, empty disables the journal
	Path *string `yaml:"path"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// DefaultConfig is the configuration used when no file is given
func DefaultConfig() *Config {
	var ret Config
	ret.applyDefaults()
	return &ret
}

// LoadConfig reads the YAML file at filename. A missing file yields the
// defaults.
func LoadConfig(filename string) (*Config, error) {
	var ret Config
	f, err := os.Open(filename)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("while opening config '%s': %w", filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("while reading config '%s': %w", filename, err)
	}
	if err := yaml.Unmarshal(data, &ret); err != nil {
		return nil, fmt.Errorf("while parsing config '%s': %w", filename, err)
	}
	ret.applyDefaults()
	if err := ret.Validate(); err != nil {
		return nil, fmt.Errorf("while validating config '%s': %w", filename, err)
	}
	return &ret, nil
}

func (c *Config) applyDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.UI.Addr == "" {
		c.UI.Addr = DefaultAddr
	}
	if c.UI.Language == "" {
		c.UI.Language = DefaultLanguage
	}
	if c.UI.NoticeTTL == 0 {
		c.UI.NoticeTTL = DefaultNoticeTTL
	}
	if c.UI.HistoryPageSize == 0 {
		c.UI.HistoryPageSize = DefaultHistoryPageSize
	}
	if c.UI.SubmitRefreshDelay == 0 {
		c.UI.SubmitRefreshDelay = DefaultSubmitRefreshDelay
	}
	if c.UI.BoardConcurrency == 0 {
		c.UI.BoardConcurrency = DefaultBoardConcurrency
	}
}

func (c *Config) Validate() error {
	return validate.Struct(c)
}

// SessionDir is the folder holding the saved session
func (c *Config) SessionDir() (string, error) {
	if c.Session.Dir != "" {
		return c.Session.Dir, nil
	}
	return session.DefaultDir()
}

// JournalPath is where the submission journal lives, or "" when disabled
func (c *Config) JournalPath() (string, error) {
	if c.Journal.Path != nil {
		return *c.Journal.Path, nil
	}
	dir, err := c.SessionDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, journalFile), nil
}
