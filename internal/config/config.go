// Package config loads settings from the environment and an optional
// layout tuning file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/abdulachik/axitome/internal/caption"
	"github.com/abdulachik/axitome/internal/card"
	"github.com/abdulachik/axitome/internal/layout"
	"github.com/abdulachik/axitome/internal/selector"
)

// Config holds all application configuration.
type Config struct {
	// Storage
	CorpusPath   string
	DatabasePath string
	OutboxDir    string

	// Selection
	Epoch    time.Time
	Location *time.Location

	// Card
	CanvasWidth  float64
	CanvasHeight float64
	FontFamily   string
	LinkBase     string
	LayoutPath   string // optional YAML overriding Layout and Sizes
	Layout       layout.Config
	Sizes        layout.SizePolicy

	// Caption
	Platform caption.Platform

	// Server
	ServeAddr string

	// Logging
	LogLevel string
}

// layoutFile is the shape of the LAYOUT_CONFIG file.
type layoutFile struct {
	Layout layout.Config     `yaml:"layout"`
	Sizes  layout.SizePolicy `yaml:"sizes"`
}

// Load reads configuration from environment variables.
// It automatically loads .env file if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		CorpusPath:   getEnv("CORPUS_PATH", "data/quotes.json"),
		DatabasePath: getEnv("DATABASE_PATH", "data/axitome.db"),
		OutboxDir:    getEnv("OUTBOX_DIR", "data/outbox"),
		FontFamily:   getEnv("FONT_FAMILY", "go"),
		LinkBase:     getEnv("LINK_BASE", "axitome.com"),
		LayoutPath:   getEnv("LAYOUT_CONFIG", ""),
		Layout:       layout.DefaultConfig(),
		Sizes:        layout.DefaultSizePolicy(),
		ServeAddr:    getEnv("SERVE_ADDR", ":8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}

	var err error
	cfg.Location, err = time.LoadLocation(getEnv("TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	cfg.Epoch, err = time.ParseInLocation(selector.DateLayout, getEnv("EPOCH_DATE", "2025-01-01"), cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("invalid EPOCH_DATE: %w", err)
	}

	if cfg.CanvasWidth, err = getFloat("CANVAS_WIDTH", 1200); err != nil {
		return nil, err
	}
	if cfg.CanvasHeight, err = getFloat("CANVAS_HEIGHT", 675); err != nil {
		return nil, err
	}

	if cfg.LayoutPath != "" {
		if err := cfg.loadLayout(cfg.LayoutPath); err != nil {
			return nil, err
		}
	}
	if v := os.Getenv("LINE_HEIGHT_MULTIPLIER"); v != "" {
		m, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid LINE_HEIGHT_MULTIPLIER: %w", err)
		}
		cfg.Layout.LineHeightMultiplier = m
	}

	cfg.Platform, err = caption.PlatformByName(getEnv("CAPTION_PLATFORM", "twitter"))
	if err != nil {
		return nil, fmt.Errorf("invalid CAPTION_PLATFORM: %w", err)
	}
	if cfg.Platform.Budget, err = getInt("CAPTION_BUDGET", cfg.Platform.Budget); err != nil {
		return nil, err
	}
	if cfg.Platform.URLWeight, err = getInt("URL_WEIGHT", cfg.Platform.URLWeight); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadLayout(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read LAYOUT_CONFIG: %w", err)
	}

	f := layoutFile{Layout: c.Layout, Sizes: c.Sizes}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse LAYOUT_CONFIG %s: %w", path, err)
	}
	c.Layout = f.Layout
	c.Sizes = f.Sizes
	return nil
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	if c.CorpusPath == "" {
		return errors.New("CORPUS_PATH is required")
	}
	if c.DatabasePath == "" {
		return errors.New("DATABASE_PATH is required")
	}
	if c.CanvasWidth <= 0 || c.CanvasHeight <= 0 {
		return fmt.Errorf("canvas must be positive, got %gx%g", c.CanvasWidth, c.CanvasHeight)
	}
	if c.Platform.Budget <= 0 {
		return fmt.Errorf("CAPTION_BUDGET must be positive, got %d", c.Platform.Budget)
	}
	if c.Platform.URLWeight < 0 {
		return fmt.Errorf("URL_WEIGHT must not be negative, got %d", c.Platform.URLWeight)
	}
	if err := c.Layout.Validate(); err != nil {
		return fmt.Errorf("invalid layout: %w", err)
	}
	s := c.Sizes
	if s.SmallPx <= 0 || s.MediumPx <= 0 || s.LargePx <= 0 {
		return errors.New("font sizes must be positive")
	}
	if s.MediumThreshold > s.LongThreshold {
		return fmt.Errorf("medium_threshold %d exceeds long_threshold %d", s.MediumThreshold, s.LongThreshold)
	}
	return nil
}

// ValidateForServe checks the settings the scheduler and API need.
func (c *Config) ValidateForServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.OutboxDir == "" {
		return errors.New("OUTBOX_DIR is required for serve")
	}
	if c.ServeAddr == "" {
		return errors.New("SERVE_ADDR is required for serve")
	}
	return nil
}

// CardConfig returns the card settings derived from c.
func (c *Config) CardConfig() card.Config {
	cc := card.DefaultConfig()
	cc.CanvasWidth = c.CanvasWidth
	cc.CanvasHeight = c.CanvasHeight
	cc.TextFont.Family = c.FontFamily
	cc.MarkFont.Family = c.FontFamily
	cc.AuthorFont.Family = c.FontFamily
	cc.WatermarkFont.Family = c.FontFamily
	cc.Sizes = c.Sizes
	cc.Layout = c.Layout
	cc.Platform = c.Platform
	cc.LinkBase = c.LinkBase
	cc.Watermark = c.LinkBase
	return cc
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, defaultVal float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
