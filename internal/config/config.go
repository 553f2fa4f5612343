// Package config provides configuration management for the story studio.
// It handles loading the YAML configuration file, applying defaults and
// environment overrides, and exposes API key blobs, model routing tables,
// channel identities and persistence settings to the rest of the module.
package config

import (
	"fmt"
	"os"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// Config represents the main configuration structure
type Config struct {
	// Logical model used when a command does not pick one
	DefaultModel string `yaml:"default_model"`

	// Output language: "vi" or "en"
	Language string `yaml:"language"`

	// Raw API key blobs, one key per line
	Keys struct {
		Google string `yaml:"google"`
		OpenAI string `yaml:"openai"`
	} `yaml:"keys"`

	// Channel and host names, per language
	Channel struct {
		Vi Identity `yaml:"vi"`
		En Identity `yaml:"en"`
	} `yaml:"channel"`

	Gemini struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"gemini"`

	OpenAI struct {
		BaseURL string `yaml:"base_url"`
		// Zero leaves requests bounded only by the caller's context
		TimeoutSeconds int          `yaml:"timeout_seconds"`
		Models         []ModelRoute `yaml:"models"`
	} `yaml:"openai"`

	// Database settings; sessions fall back to a JSON file when empty
	DatabaseURL string `yaml:"database_url"`

	Sessions struct {
		Path string `yaml:"path"`
	} `yaml:"sessions"`

	// Generation defaults for new projects
	Generation struct {
		DurationMin      int    `yaml:"duration_min"`
		FrameRatio       string `yaml:"frame_ratio"`
		UploadChunkChars int    `yaml:"upload_chunk_chars"`
	} `yaml:"generation"`

	// Thumbnail preview rendering
	Thumbnail struct {
		FontPath string `yaml:"font_path"`
		Width    int    `yaml:"width"`
	} `yaml:"thumbnail"`

	// Directory for CSV, TXT and PNG output
	ExportDir string `yaml:"export_dir"`

	// YouTube Data API settings used for SEO research
	YouTube struct {
		APIKey     string `yaml:"api_key"`
		MaxResults int    `yaml:"max_results"`
	} `yaml:"youtube"`

	// Logging settings
	Logging struct {
		LogLevel string `yaml:"log_level"`
	} `yaml:"logging"`
}

// Identity is the channel and host name mentioned in generated scripts
type Identity struct {
	ChannelName string `yaml:"channel_name"`
	MCName      string `yaml:"mc_name"`
}

// ModelRoute maps logical model identifiers containing any of Match to a
// concrete OpenAI-compatible backend model.
type ModelRoute struct {
	Name  string   `yaml:"name"`
	Match []string `yaml:"match"`
	Model string   `yaml:"model"`
	// Reasoning-tier backends reject some request fields
	NoSystemRole  bool `yaml:"no_system_role,omitempty"`
	NoJSONMode    bool `yaml:"no_json_mode,omitempty"`
	NoTemperature bool `yaml:"no_temperature,omitempty"`
	// Retry once against the default route when the backend reports 404
	FallbackOnNotFound bool `yaml:"fallback_on_not_found,omitempty"`
}

// GetIdentity returns the channel identity for a language
func (c *Config) GetIdentity(language string) Identity {
	if strings.EqualFold(language, "en") {
		return c.Channel.En
	}
	return c.Channel.Vi
}

// GetGoogleKeys returns the Gemini key blob, preferring the environment override
func (c *Config) GetGoogleKeys() string {
	if v := os.Getenv(EnvGeminiKeys); strings.TrimSpace(v) != "" {
		return v
	}
	return c.Keys.Google
}

// GetOpenAIKeys returns the OpenAI-compatible key blob, preferring the environment override
func (c *Config) GetOpenAIKeys() string {
	if v := os.Getenv(EnvOpenAIKeys); strings.TrimSpace(v) != "" {
		return v
	}
	return c.Keys.OpenAI
}

// GetDatabaseURL returns the session database URL, preferring the environment override
func (c *Config) GetDatabaseURL() string {
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		return v
	}
	return c.DatabaseURL
}

// GetYouTubeAPIKey returns the YouTube Data API key, preferring the environment override
func (c *Config) GetYouTubeAPIKey() string {
	if v := os.Getenv(EnvYouTubeKey); v != "" {
		return v
	}
	return c.YouTube.APIKey
}

// LoadConfig loads configuration from a YAML file.
// A missing file is not an error: defaults plus environment overrides are returned,
// so the CLI works with keys supplied only through the environment.
func LoadConfig(filename string) (*Config, error) {
	if filename == "" {
		filename = DefaultConfigPath
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return parseConfig(nil)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return parseConfig(data)
}

// parseConfig parses YAML data into Config struct and applies defaults
func parseConfig(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if config.DefaultModel == "" {
		config.DefaultModel = DefaultModel
	}
	if config.Language == "" {
		config.Language = DefaultLanguage
	}
	config.Language = strings.ToLower(config.Language)
	if config.Language != "vi" && config.Language != "en" {
		return nil, fmt.Errorf("unsupported language %q (expected vi or en)", config.Language)
	}

	if config.OpenAI.BaseURL == "" {
		config.OpenAI.BaseURL = DefaultOpenAIBaseURL
	}
	if config.OpenAI.TimeoutSeconds < 0 {
		return nil, fmt.Errorf("openai.timeout_seconds must not be negative")
	}
	for i, route := range config.OpenAI.Models {
		if route.Model == "" {
			return nil, fmt.Errorf("openai.models[%d]: model is required", i)
		}
	}

	if config.Sessions.Path == "" {
		config.Sessions.Path = DefaultSessionsPath
	}

	if config.Generation.DurationMin == 0 {
		config.Generation.DurationMin = DefaultDurationMin
	}
	if config.Generation.FrameRatio == "" {
		config.Generation.FrameRatio = DefaultFrameRatio
	}
	if config.Generation.UploadChunkChars == 0 {
		config.Generation.UploadChunkChars = DefaultUploadChunkChars
	}

	if config.Thumbnail.Width == 0 {
		config.Thumbnail.Width = DefaultThumbnailWidth
	}
	if config.ExportDir == "" {
		config.ExportDir = DefaultExportDir
	}

	if config.YouTube.MaxResults == 0 {
		config.YouTube.MaxResults = DefaultYouTubeMaxResults
	}

	if config.Logging.LogLevel == "" {
		config.Logging.LogLevel = DefaultLogLevel
	}

	return &config, nil
}
