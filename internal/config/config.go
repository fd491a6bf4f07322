package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

var CfgPath = os.ExpandEnv("$HOME/.config/eventsite/")
var CfgFile = filepath.Join(CfgPath, "config.yaml")

// EnvConfigFile overrides CfgFile when set.
const EnvConfigFile = "EVENTSITE_CONFIG"

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Database Database `yaml:"database"`
	Server   Server   `yaml:"server"`
	Session  Session  `yaml:"session"`
	Logging  Logging  `yaml:"logging"`
	Locale   string   `yaml:"locale"`
	Style    Style    `yaml:"style"`

	path string
}

type Server struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type Session struct {
	CookieName      string `yaml:"cookie_name"`
	CookiePath      string `yaml:"cookie_path"`
	SessionMinutes  int    `yaml:"session_minutes"`
	Secret          string `yaml:"secret"`
	DefaultRedirect string `yaml:"default_redirect"`
	// HashScheme is "sha256" (lookup by password hash) or "bcrypt".
	HashScheme string `yaml:"hash_scheme"`
}

// Key returns the secret with ${VAR} references expanded.
func (s Session) Key() string {
	return expandEnv(s.Secret)
}

func (s Session) Lifetime() time.Duration {
	return time.Duration(s.SessionMinutes) * time.Minute
}

type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type Style struct {
	Accent string `yaml:"accent_color"`
}

// DefaultPath is CfgFile unless EVENTSITE_CONFIG points elsewhere.
func DefaultPath() string {
	if p := os.Getenv(EnvConfigFile); p != "" {
		return p
	}
	return CfgFile
}

// LoadConfig reads the YAML file at path after loading any .env file next to
// it or in the working directory. A missing config file is created with
// defaults.
func LoadConfig(path string) (*Config, error) {
	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env"), ".env"); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("Creating blank config file at", path)
			cfg := &Config{path: path}
			cfg.applyDefaults()
			if err := cfg.Save(); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, err
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.path = path
	return cfg, nil
}

// Parse decodes YAML and fills in defaults. ${VAR} references stay as
// written so Save never puts environment secrets on disk; DSN and Key expand
// them when read.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) Path() string {
	if c.path == "" {
		return CfgFile
	}
	return c.path
}

func (c *Config) Save() error {
	path := c.Path()
	err := os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func (c *Config) applyDefaults() {
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "EVENTSITEAUTH"
	}
	if c.Session.CookiePath == "" {
		c.Session.CookiePath = "/"
	}
	if c.Session.SessionMinutes == 0 {
		c.Session.SessionMinutes = 30
	}
	if c.Session.DefaultRedirect == "" {
		c.Session.DefaultRedirect = "/Timeline"
	}
	if c.Session.HashScheme == "" {
		c.Session.HashScheme = "sha256"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Locale == "" {
		c.Locale = "nl"
	}
}

// Validate checks the settings the web server needs. The CLI only needs a
// database and calls ValidateDatabase instead.
func (c *Config) Validate() error {
	var errs []error
	if err := c.ValidateDatabase(); err != nil {
		errs = append(errs, err)
	}
	if c.Session.Key() == "" {
		errs = append(errs, fmt.Errorf("%w: session.secret is empty", ErrInvalidConfig))
	}
	if c.Session.SessionMinutes < 0 {
		errs = append(errs, fmt.Errorf("%w: session.session_minutes must be positive", ErrInvalidConfig))
	}
	if !slices.Contains([]string{"sha256", "bcrypt"}, c.Session.HashScheme) {
		errs = append(errs, fmt.Errorf("%w: unknown session.hash_scheme %q", ErrInvalidConfig, c.Session.HashScheme))
	}
	if !strings.HasPrefix(c.Session.DefaultRedirect, "/") {
		errs = append(errs, fmt.Errorf("%w: session.default_redirect must be a local path", ErrInvalidConfig))
	}
	if !slices.Contains([]string{"json", "console"}, c.Logging.Format) {
		errs = append(errs, fmt.Errorf("%w: unknown logging.format %q", ErrInvalidConfig, c.Logging.Format))
	}
	return errors.Join(errs...)
}

func (c *Config) ValidateDatabase() error {
	if c.Database.DSN() == "" {
		return fmt.Errorf("%w: database.conn_string is empty", ErrInvalidConfig)
	}
	return nil
}

func loadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

var envRefRegex = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv replaces ${VAR} references only; a bare $ is left alone since it
// is common in passwords.
func expandEnv(s string) string {
	return envRefRegex.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(ref[2 : len(ref)-1])
	})
}
