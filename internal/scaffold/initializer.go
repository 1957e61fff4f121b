// Package scaffold writes a starter kanban.yml.
package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/m-hosseinpour/infinite-kanban-task-manager/internal/config"
)

//go:embed templates/*
var templatesFS embed.FS

// Template returns the default kanban.yml content.
func Template() ([]byte, error) {
	data, err := templatesFS.ReadFile("templates/kanban.yml.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to read kanban.yml template: %w", err)
	}
	return data, nil
}

// CheckExisting returns an error if path already exists.
func CheckExisting(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists\n\nUse 'kanban init --force' to overwrite it", path)
	}
	return nil
}

// Initialize writes the default configuration to path.
// If force is false an existing file is left untouched and an error returned.
func Initialize(path string, force bool) error {
	if !force {
		if err := CheckExisting(path); err != nil {
			return err
		}
	}

	content, err := Template()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	// Validate created file
	if _, err := config.Load(path); err != nil {
		return fmt.Errorf("created %s is not a valid configuration: %w", path, err)
	}
	return nil
}
