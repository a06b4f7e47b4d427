// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package config loads lomatch settings from a YAML file with environment
// overrides. Command line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a loaded value is out of range.
var ErrInvalidConfig = errors.New("invalid config")

const (
	DefaultAnkiURL        = "http://127.0.0.1:8765"
	DefaultEmbeddingHost  = "http://localhost:11434/v1"
	DefaultEmbeddingModel = "all-minilm"
	DefaultAlpha          = 0.6
	DefaultSeedSize       = 80
	DefaultMaxPerQuery    = 3
	DefaultResultsPath    = "lomatch_results.csv"
)

// DefaultDecks are searched when no decks are configured.
var DefaultDecks = []string{"AnKing Step Deck", "USUHS v2.2"}

// AnkiConfig selects the AnkiConnect endpoint and the candidate pool.
type AnkiConfig struct {
	URL   string   `yaml:"url"`
	Decks []string `yaml:"decks"`
	Query string   `yaml:"query"`
	Limit int      `yaml:"limit"`
}

// EmbeddingConfig selects the OpenAI-compatible embedding backend.
type EmbeddingConfig struct {
	Enabled  *bool  `yaml:"enabled"`
	Host     string `yaml:"host"`
	Model    string `yaml:"model"`
	APIToken string `yaml:"api_token"`
}

// MatchingConfig tunes ranking and selection.
type MatchingConfig struct {
	Alpha         float64  `yaml:"alpha"`
	SeedSize      int      `yaml:"seed_size"`
	Shortlist     int      `yaml:"shortlist"`
	AutoThreshold *float64 `yaml:"auto_threshold"`
	Multi         bool     `yaml:"multi"`
	MaxPerQuery   int      `yaml:"max_per_query"`
	Diversity     string   `yaml:"diversity"`
}

// Config is the resolved configuration.
type Config struct {
	Path string `yaml:"-"`

	Anki       AnkiConfig      `yaml:"anki"`
	Embedding  EmbeddingConfig `yaml:"embedding"`
	Matching   MatchingConfig  `yaml:"matching"`
	TargetDeck string          `yaml:"target_deck"`
	Tag        string          `yaml:"tag"`
	DBPath     string          `yaml:"db_path"`
	Results    string          `yaml:"results"`
}

// DefaultPath returns ~/.lomatch/config.yaml.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".lomatch", "config.yaml")
}

// DefaultDBPath returns ~/.lomatch/db.
func DefaultDBPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".lomatch", "db")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Anki: AnkiConfig{
			URL:   DefaultAnkiURL,
			Decks: append([]string(nil), DefaultDecks...),
		},
		Embedding: EmbeddingConfig{
			Host:  DefaultEmbeddingHost,
			Model: DefaultEmbeddingModel,
		},
		Matching: MatchingConfig{
			Alpha:       DefaultAlpha,
			SeedSize:    DefaultSeedSize,
			MaxPerQuery: DefaultMaxPerQuery,
			Diversity:   "none",
		},
		DBPath:  DefaultDBPath(),
		Results: DefaultResultsPath,
	}
}

// Load reads path over the defaults and applies environment overrides. An
// empty path means DefaultPath. A missing file is not an error.
func Load(path string) (*Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()
	cfg.Path = path

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	applyEnv(&cfg.Anki.URL, "LOMATCH_ANKI_URL")
	applyEnv(&cfg.Embedding.Host, "LOMATCH_EMBED_HOST")
	applyEnv(&cfg.Embedding.Model, "LOMATCH_EMBED_MODEL")
	applyEnv(&cfg.Embedding.APIToken, "LOMATCH_API_TOKEN")
	applyEnv(&cfg.DBPath, "LOMATCH_DB")

	cfg.DBPath = ExpandUserPath(cfg.DBPath)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// EmbeddingsEnabled reports whether semantic matching is on. It defaults to
// true.
func (c *Config) EmbeddingsEnabled() bool {
	return c.Embedding.Enabled == nil || *c.Embedding.Enabled
}

// ShortlistSize returns the configured shortlist size, or 10 in multi mode
// and 3 otherwise.
func (c *Config) ShortlistSize() int {
	if c.Matching.Shortlist > 0 {
		return c.Matching.Shortlist
	}
	if c.Matching.Multi {
		return 10
	}
	return 3
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	m := c.Matching
	if m.Alpha < 0 || m.Alpha > 1 {
		return fmt.Errorf("%w: matching.alpha %v not in [0,1]", ErrInvalidConfig, m.Alpha)
	}
	if m.SeedSize < 0 || m.Shortlist < 0 || m.MaxPerQuery < 0 || c.Anki.Limit < 0 {
		return fmt.Errorf("%w: sizes must not be negative", ErrInvalidConfig)
	}
	switch strings.ToLower(strings.TrimSpace(m.Diversity)) {
	case "", "none", "category", "model", "labels", "tags":
	default:
		return fmt.Errorf("%w: unknown diversity %q", ErrInvalidConfig, m.Diversity)
	}
	return nil
}

// ExpandUserPath replaces a leading ~/ with the home directory.
func ExpandUserPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

func applyEnv(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}
