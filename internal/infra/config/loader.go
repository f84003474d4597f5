// Package config provides configuration loading functionality.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/taskforge/transmute/internal/domain"
)

// EnvServerURL overrides opencodeServerUrl when set.
const EnvServerURL = "OPENCODE_SERVER_URL"

// Ensure Loader implements domain.ConfigLoader.
var _ domain.ConfigLoader = (*Loader)(nil)

// Loader reads the first config file found under the repository root.
type Loader struct {
	getenv   func(string) string
	repoRoot string
}

// NewLoader creates a new Loader.
func NewLoader(repoRoot string) *Loader {
	return &Loader{repoRoot: repoRoot, getenv: os.Getenv}
}

// NewLoaderWithEnv creates a Loader with a custom environment lookup.
// This is useful for testing.
func NewLoaderWithEnv(repoRoot string, getenv func(string) string) *Loader {
	return &Loader{repoRoot: repoRoot, getenv: getenv}
}

// Load returns the configuration. A file that fails to decode or validate is
// rejected as a whole: defaults are returned with a warning instead of a
// partial merge. Load itself only fails if the repository root is unreadable.
func (l *Loader) Load() (*domain.Config, error) {
	cfg := domain.NewDefaultConfig()

	for _, path := range domain.ConfigCandidates(l.repoRoot) {
		content, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("cannot read %s: %v; using defaults", path, err))
			break
		}

		loaded, err := decodeFile(path, content)
		if err != nil {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("invalid config %s: %v; using defaults", path, err))
			break
		}
		cfg = loaded
		cfg.Source = path
		break
	}

	if url := l.getenv(EnvServerURL); url != "" {
		cfg.OpencodeServerURL = url
	}
	return cfg, nil
}

// decodeFile strictly decodes content over the defaults and validates the result.
func decodeFile(path string, content []byte) (*domain.Config, error) {
	cfg := domain.NewDefaultConfig()

	var err error
	switch filepath.Ext(path) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(content))
		dec.DisallowUnknownFields()
		err = dec.Decode(cfg)
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(content))
		dec.DisallowUnknownFields()
		err = dec.Decode(cfg)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(content))
		dec.KnownFields(true)
		if err = dec.Decode(cfg); errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		err = fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
