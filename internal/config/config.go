// Package config loads the formset.yaml settings shared by the CLI commands.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formset/internal/logging"
	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/notify"
	"github.com/goliatone/go-formset/pkg/preview"
	"github.com/goliatone/go-formset/pkg/upload"
)

// DefaultPath is the config file looked up when no path is given.
const DefaultPath = "formset.yaml"

type Config struct {
	Server   Server                    `yaml:"server"`
	Log      logging.Config            `yaml:"log"`
	Locale   string                    `yaml:"locale"`
	Catalog  string                    `yaml:"catalog"`
	Limits   Limits                    `yaml:"limits"`
	Previews Previews                  `yaml:"previews"`
	Groups   map[string]formset.Config `yaml:"groups"`
}

type Server struct {
	Address  string `yaml:"address"`
	BasePath string `yaml:"basePath"`
}

type Limits struct {
	MaxFiles    int   `yaml:"maxFiles"`
	MaxFileSize int64 `yaml:"maxFileSize"`
	MaxMemory   int64 `yaml:"maxMemory"`
}

type Previews struct {
	MaxWidth    int `yaml:"maxWidth"`
	MaxHeight   int `yaml:"maxHeight"`
	Concurrency int `yaml:"concurrency"`
	MaxPixels   int `yaml:"maxPixels"`
}

// Default returns the built-in settings with the preset groups.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create %s: %w", dir, err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Locale == "" {
		c.Locale = notify.DefaultLocale
	}
	if c.Limits.MaxFiles <= 0 {
		c.Limits.MaxFiles = upload.DefaultMaxFiles
	}
	if c.Limits.MaxFileSize <= 0 {
		c.Limits.MaxFileSize = upload.DefaultMaxFileSize
	}
	if c.Limits.MaxMemory <= 0 {
		c.Limits.MaxMemory = formset.DefaultMaxMemory
	}
	if c.Previews.MaxWidth <= 0 {
		c.Previews.MaxWidth = preview.DefaultMaxWidth
	}
	if c.Previews.MaxHeight <= 0 {
		c.Previews.MaxHeight = preview.DefaultMaxHeight
	}
	if c.Previews.Concurrency <= 0 {
		c.Previews.Concurrency = preview.DefaultConcurrency
	}
	if c.Previews.MaxPixels <= 0 {
		c.Previews.MaxPixels = preview.DefaultMaxPixels
	}

	groups := formset.Presets()
	for name, group := range c.Groups {
		base, ok := groups[name]
		if ok {
			group = overlay(base, group)
		}
		groups[name] = group.Normalize()
	}
	c.Groups = groups
}

// overlay fills the zero fields of group from base.
func overlay(base, group formset.Config) formset.Config {
	if group.Prefix == "" {
		group.Prefix = base.Prefix
	}
	if group.Kind == "" {
		group.Kind = base.Kind
	}
	if group.MaxRows <= 0 {
		group.MaxRows = base.MaxRows
	}
	if group.TriggerID == "" {
		group.TriggerID = base.TriggerID
	}
	if group.ContainerID == "" {
		group.ContainerID = base.ContainerID
	}
	if group.CounterID == "" && group.Prefix == base.Prefix {
		group.CounterID = base.CounterID
	}
	if group.LimitKey == "" {
		group.LimitKey = base.LimitKey
	}
	return group
}

// Validate reports invalid settings.
func (c *Config) Validate() error {
	var errs []error
	if err := logging.ValidateLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("config: log.level: %w", err))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("config: log.format %q must be text or json", c.Log.Format))
	}
	for _, name := range c.GroupNames() {
		if err := c.Groups[name].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("config: groups.%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// GroupNames lists the configured groups in sorted order.
func (c *Config) GroupNames() []string {
	names := make([]string, 0, len(c.Groups))
	for name := range c.Groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Group returns the named group.
func (c *Config) Group(name string) (formset.Config, error) {
	group, ok := c.Groups[name]
	if !ok {
		return formset.Config{}, fmt.Errorf("config: unknown group %q (have %s)", name, strings.Join(c.GroupNames(), ", "))
	}
	return group, nil
}

// Rules returns the upload rules for post and comment selections.
func (c *Config) Rules() upload.Rules {
	rules := upload.DefaultRules()
	rules.MaxFiles = c.Limits.MaxFiles
	rules.MaxFileSize = c.Limits.MaxFileSize
	return rules
}

// Translator returns the embedded catalog merged with the optional catalog
// file.
func (c *Config) Translator() (notify.Translator, error) {
	catalog := notify.DefaultCatalog()
	if c.Catalog == "" {
		return catalog, nil
	}
	data, err := os.ReadFile(c.Catalog)
	if err != nil {
		return nil, fmt.Errorf("config: read catalog: %w", err)
	}
	extra, err := notify.ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return catalog.Merge(extra), nil
}

// PreviewGenerator builds the preview generator for these settings.
func (c *Config) PreviewGenerator() *preview.Generator {
	return preview.New(
		preview.WithMaxSize(c.Previews.MaxWidth, c.Previews.MaxHeight),
		preview.WithConcurrency(c.Previews.Concurrency),
		preview.WithMaxPixels(c.Previews.MaxPixels),
	)
}
