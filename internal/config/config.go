// Package config loads tasktrack settings from a YAML file and command line flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sadopc/tasktrack/internal/store"
	"github.com/sadopc/tasktrack/internal/tasks"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const logFileName = "tasktrack.log"

type Config struct {
	DataDir          string        `yaml:"data_dir"`
	Backend          string        `yaml:"backend"`
	CompletionPolicy string        `yaml:"completion_policy"`
	DefaultProfile   string        `yaml:"default_profile"`
	ExportDir        string        `yaml:"export_dir"`
	Logging          LoggingConfig `yaml:"logging"`
}

type LoggingConfig struct {
	File        string `yaml:"file"`
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when no file exists.
func Default() (*Config, error) {
	dataDir, err := store.DefaultDataDir()
	if err != nil {
		return nil, err
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = dataDir
	}
	return &Config{
		DataDir:          dataDir,
		Backend:          store.BackendCSV,
		CompletionPolicy: string(tasks.PolicyRelocate),
		DefaultProfile:   string(store.ProfileStudent),
		ExportDir:        home,
		Logging: LoggingConfig{
			Level: "info",
		},
	}, nil
}

// DefaultPath returns ~/.config/tasktrack/config.yml
func DefaultPath() (string, error) {
	dir, err := store.DefaultDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yml"), nil
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", path, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Flags holds command line overrides. Empty values leave the file setting alone.
type Flags struct {
	ConfigPath string
	DataDir    string
	Backend    string
	Policy     string
	Profile    string
	ExportDir  string
	LogFile    string
	LogLevel   string
	Dev        bool
}

// ParseFlags parses args (without the program name).
func ParseFlags(args []string) (*Flags, error) {
	defaultPath, err := DefaultPath()
	if err != nil {
		return nil, err
	}

	f := &Flags{}
	flags := pflag.NewFlagSet("tasktrack", pflag.ContinueOnError)
	flags.StringVarP(&f.ConfigPath, "config", "c", defaultPath, "path to config.yml")
	flags.StringVar(&f.DataDir, "data-dir", "", "directory holding the task tables")
	flags.StringVar(&f.Backend, "backend", "", "storage backend: csv, sqlite or memory")
	flags.StringVar(&f.Policy, "policy", "", "completion policy: relocate or in_place")
	flags.StringVarP(&f.Profile, "profile", "p", "", "profile to open: Student, Worker, Teacher or Business")
	flags.StringVar(&f.ExportDir, "export-dir", "", "directory exports are written to")
	flags.StringVar(&f.LogFile, "log-file", "", "log file path")
	flags.StringVar(&f.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVar(&f.Dev, "dev", false, "development logging")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

// Apply copies the set flags onto cfg.
func (f *Flags) Apply(cfg *Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.DataDir, f.DataDir)
	set(&cfg.Backend, f.Backend)
	set(&cfg.CompletionPolicy, f.Policy)
	set(&cfg.DefaultProfile, f.Profile)
	set(&cfg.ExportDir, f.ExportDir)
	set(&cfg.Logging.File, f.LogFile)
	set(&cfg.Logging.Level, f.LogLevel)
	if f.Dev {
		cfg.Logging.Development = true
	}
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Backend {
	case store.BackendCSV, store.BackendSQLite, store.BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if _, err := tasks.ParsePolicy(c.CompletionPolicy); err != nil {
		return err
	}
	if _, ok := store.ParseProfile(c.DefaultProfile); !ok {
		return fmt.Errorf("unknown profile %q", c.DefaultProfile)
	}
	if c.DataDir == "" {
		return errors.New("data_dir is empty")
	}
	return nil
}

// LogFile returns logging.file, or tasktrack.log inside the data directory when unset.
func (c *Config) LogFile() string {
	if c.Logging.File != "" {
		return c.Logging.File
	}
	return filepath.Join(c.DataDir, logFileName)
}

// Profile returns the configured starting profile.
func (c *Config) Profile() store.Profile {
	p, ok := store.ParseProfile(c.DefaultProfile)
	if !ok {
		return store.ProfileStudent
	}
	return p
}

// Policy returns the configured completion policy.
func (c *Config) Policy() tasks.Policy {
	p, err := tasks.ParsePolicy(c.CompletionPolicy)
	if err != nil {
		return tasks.PolicyRelocate
	}
	return p
}
