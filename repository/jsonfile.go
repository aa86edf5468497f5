// file: repository/jsonfile.go
package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go-loket-queue/models"
)

// FileRepository keeps all patients in one JSON array file.
type FileRepository struct {
	path string
}

// NewFileRepository stores patients at path (default patients.json).
func NewFileRepository(path string) *FileRepository {
	if path == "" {
		path = "patients.json"
	}
	return &FileRepository{path: path}
}

// Load returns the stored patients; a missing file is an empty queue.
func (r *FileRepository) Load() ([]models.Patient, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return []models.Patient{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return []models.Patient{}, nil
	}
	var patients []models.Patient
	if err := json.Unmarshal(data, &patients); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", r.path, err)
	}
	return patients, nil
}

// Save replaces the file contents. It writes a sibling temp file and renames
// it so a crash never leaves a truncated file behind.
func (r *FileRepository) Save(patients []models.Patient) error {
	if patients == nil {
		patients = []models.Patient{}
	}
	data, err := json.MarshalIndent(patients, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), r.path)
}
