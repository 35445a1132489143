package service

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"curiousminds/internal/models"
	"curiousminds/internal/repository"
)

// BackupData is the complete local-cache backup structure
type BackupData struct {
	Version    string               `json:"version"`
	ExportedAt time.Time            `json:"exported_at"`
	Questions  []models.Question    `json:"questions"`
	Words      []models.MasterWord  `json:"master_words"`
	Users      []models.User        `json:"users"`
	Results    []models.TestResult  `json:"results"`
	Config     *models.SystemConfig `json:"config,omitempty"`
}

// BackupService exports and restores the local cache as a JSON document.
// Restores go through the repositories, so question and word imports are
// overwrite-by-id and user imports keep the username uniqueness check.
type BackupService struct {
	questions *repository.QuestionRepository
	words     *repository.WordRepository
	users     *repository.UserRepository
	results   *repository.ResultRepository
	config    *repository.ConfigRepository
}

// NewBackupService creates a new backup service
func NewBackupService(
	questions *repository.QuestionRepository,
	words *repository.WordRepository,
	users *repository.UserRepository,
	results *repository.ResultRepository,
	config *repository.ConfigRepository,
) *BackupService {
	return &BackupService{
		questions: questions,
		words:     words,
		users:     users,
		results:   results,
		config:    config,
	}
}

// Export writes a complete backup of the local cache to a file
func (s *BackupService) Export(outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}

	log.Printf("Cache exported to %s", outputPath)
	return nil
}

// ExportToWriter writes a backup document to w
func (s *BackupService) ExportToWriter(w io.Writer) error {
	backup := &BackupData{
		Version:    "1.0",
		ExportedAt: time.Now(),
	}

	var err error
	if backup.Questions, err = s.questions.GetAll(); err != nil {
		return fmt.Errorf("failed to export questions: %w", err)
	}
	if backup.Words, err = s.words.GetAll(); err != nil {
		return fmt.Errorf("failed to export master words: %w", err)
	}
	if backup.Users, err = s.users.GetAll(); err != nil {
		return fmt.Errorf("failed to export users: %w", err)
	}
	if backup.Results, err = s.results.GetAll(); err != nil {
		return fmt.Errorf("failed to export results: %w", err)
	}
	cfg := s.config.Get()
	backup.Config = &cfg

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Exported: %d questions, %d words, %d users, %d results",
		len(backup.Questions), len(backup.Words), len(backup.Users), len(backup.Results))
	return nil
}

// Import restores the local cache from a backup file
func (s *BackupService) Import(inputPath string) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores the local cache from a backup document
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	log.Printf("Importing backup version %s, exported at %s",
		backup.Version, backup.ExportedAt.Format(time.RFC3339))

	if err := s.questions.SaveQuestions(backup.Questions); err != nil {
		return fmt.Errorf("failed to import questions: %w", err)
	}
	if err := s.words.SaveWords(backup.Words); err != nil {
		return fmt.Errorf("failed to import master words: %w", err)
	}
	for i := range backup.Users {
		if err := s.users.Save(&backup.Users[i]); err != nil {
			return fmt.Errorf("failed to import user %s: %w", backup.Users[i].Username, err)
		}
	}
	for i := range backup.Results {
		if err := s.results.Insert(&backup.Results[i]); err != nil {
			return fmt.Errorf("failed to import result %s: %w", backup.Results[i].ID, err)
		}
	}
	if backup.Config != nil {
		if err := s.config.Save(*backup.Config); err != nil {
			return fmt.Errorf("failed to import config: %w", err)
		}
	}

	log.Println("Cache import completed")
	return nil
}
