// Package channel loads per-channel configuration and resolves channel
// assets on disk. A channel lives under assets/channels/<slug>/ with an
// optional channel.yaml and auto-discovered template.svg, font.ttf, logo.png.
package channel

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is one channel's settings plus resolved asset paths.
type Config struct {
	Name          string `yaml:"name"`
	Slug          string `yaml:"slug"`
	PrimaryColor  string `yaml:"primary_color"`
	AccentColor   string `yaml:"accent_color"`
	TextColor     string `yaml:"text_color"`
	Description   string `yaml:"description"`
	VideoDuration int    `yaml:"video_duration"`

	// Resolved from the channel directory, not the YAML.
	Dir          string `yaml:"-"`
	TemplatePath string `yaml:"-"`
	FontPath     string `yaml:"-"`
	LogoPath     string `yaml:"-"`
}

func defaults(slug string) Config {
	return Config{
		Name:          slug,
		Slug:          slug,
		PrimaryColor:  "#1a1a2e",
		AccentColor:   "#e94560",
		TextColor:     "#ffffff",
		VideoDuration: 5,
	}
}

// Load reads the channel under assetsDir/channels/<slug>. A missing directory
// is an error; a missing channel.yaml is not, since templates are often
// dropped in before anyone writes config.
func Load(assetsDir, slug string) (*Config, error) {
	dir := filepath.Join(assetsDir, "channels", slug)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("channel %q not found under %s", slug, assetsDir)
	}

	cfg := defaults(slug)
	cfg.Dir = dir

	yamlPath := filepath.Join(dir, "channel.yaml")
	if data, err := os.ReadFile(yamlPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", yamlPath, err)
		}
		if cfg.Slug == "" {
			cfg.Slug = slug
		}
	}

	cfg.TemplatePath = existingPath(dir, "template.svg")
	cfg.FontPath = existingPath(dir, "font.ttf")
	cfg.LogoPath = existingPath(dir, "logo.png")
	return &cfg, nil
}

// FontBytes reads the channel's body font, or nil when the channel has none
// (the renderer then measures with its embedded fallback face).
func (c *Config) FontBytes() []byte {
	if c.FontPath == "" {
		return nil
	}
	data, err := os.ReadFile(c.FontPath)
	if err != nil {
		return nil
	}
	return data
}

func existingPath(dir, name string) string {
	p := filepath.Join(dir, name)
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}
