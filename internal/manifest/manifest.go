package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lehigh-university-libraries/panotiler/internal/models"
)

// Write serializes groups to root/name, replacing any manifest left by an
// earlier run. The file is written to a temporary name first and renamed into
// place. Returns the manifest path.
func Write(root, name string, groups []models.Group) (string, error) {
	if groups == nil {
		groups = []models.Group{}
	}

	data, err := json.Marshal(groups)
	if err != nil {
		return "", fmt.Errorf("failed to marshal manifest: %w", err)
	}

	path := filepath.Join(root, name)
	tmp, err := os.CreateTemp(root, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("failed to create manifest: %w", err)
	}
	tmpPath := tmp.Name()

	_, err = tmp.Write(data)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tmpPath, 0644)
	}
	if err == nil {
		err = os.Rename(tmpPath, path)
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write manifest %s: %w", path, err)
	}

	return path, nil
}

// Read loads a manifest written by Write
func Read(path string) ([]models.Group, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var groups []models.Group
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	return groups, nil
}
