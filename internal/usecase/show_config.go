package usecase

import (
	"context"
	"fmt"

	"github.com/taskforge/transmute/internal/domain"
)

// ShowConfigOutput contains the effective configuration.
type ShowConfigOutput struct {
	Config   *domain.Config
	Source   string   // File the config came from; empty for defaults
	Warnings []string // Problems that made the loader fall back to defaults
}

// ShowConfig reports the effective configuration and where it came from.
type ShowConfig struct {
	loader domain.ConfigLoader
}

// NewShowConfig creates a new ShowConfig use case.
func NewShowConfig(loader domain.ConfigLoader) *ShowConfig {
	return &ShowConfig{loader: loader}
}

// Execute loads the configuration.
func (uc *ShowConfig) Execute(_ context.Context) (*ShowConfigOutput, error) {
	cfg, err := uc.loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &ShowConfigOutput{Config: cfg, Source: cfg.Source, Warnings: cfg.Warnings}, nil
}
