// Package repository persists the patient list behind services.Repository.
// file: repository/repository.go
package repository

import (
	"fmt"

	"go-loket-queue/config"
	"go-loket-queue/services"
)

var (
	_ services.Repository = (*FileRepository)(nil)
	_ services.Repository = (*MariaDBRepository)(nil)
)

// New picks the backend named by cfg.Storage ("file" or "mariadb").
func New(cfg *config.Config) (services.Repository, error) {
	switch cfg.Storage {
	case "", "file":
		return NewFileRepository(cfg.DataFile), nil
	case "mariadb", "mysql":
		repo, err := OpenMariaDB(cfg)
		if err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
}
