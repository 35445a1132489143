package service

import (
	"context"
	"log"

	"curiousminds/internal/models"
	"curiousminds/internal/remote"
	"curiousminds/internal/repository"
)

// ConfigService reads and writes the branding/limits document
type ConfigService struct {
	config *repository.ConfigRepository
	remote remote.Store
}

// NewConfigService creates a new config service
func NewConfigService(config *repository.ConfigRepository, remoteStore remote.Store) *ConfigService {
	return &ConfigService{config: config, remote: remoteStore}
}

// Get returns the current configuration, falling back to defaults when none
// has been saved
func (s *ConfigService) Get() models.SystemConfig {
	return s.config.Get()
}

// Update saves the configuration locally and forwards it to the remote store
// best effort
func (s *ConfigService) Update(ctx context.Context, cfg models.SystemConfig) error {
	if err := s.config.Save(cfg); err != nil {
		return err
	}

	if err := s.remote.UpsertConfig(ctx, cfg); err != nil {
		log.Printf("Cloud config sync failed: %v", err)
	}
	return nil
}
