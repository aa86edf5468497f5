// file: repository/mariadb.go
package repository

import (
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/go-sql-driver/mysql"
	"go-loket-queue/config"
	"go-loket-queue/logger"
	"go-loket-queue/models"
)

const createPatientsTable = `
	CREATE TABLE IF NOT EXISTS patients (
		id            VARCHAR(64)  NOT NULL PRIMARY KEY,
		queue_number  VARCHAR(32)  NOT NULL,
		full_name     VARCHAR(255) NOT NULL,
		specialist    VARCHAR(128) NOT NULL,
		doctor        VARCHAR(255) NOT NULL DEFAULT '',
		complaint     TEXT         NOT NULL,
		status        VARCHAR(16)  NOT NULL,
		loket_number  VARCHAR(16)  NOT NULL,
		created_at    DATETIME(6)  NOT NULL,
		INDEX idx_patients_loket (loket_number, created_at)
	)
`

// MariaDBRepository stores patients in a MariaDB/MySQL table.
type MariaDBRepository struct {
	DB *sql.DB
}

// DSN builds the driver connection string from the DB_* settings.
func DSN(cfg *config.Config) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=%s",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName, url.QueryEscape("Asia/Jakarta"))
}

// OpenMariaDB connects, pings and makes sure the table exists.
func OpenMariaDB(cfg *config.Config) (*MariaDBRepository, error) {
	db, err := sql.Open("mysql", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	repo := NewMariaDBRepository(db)
	if err := repo.EnsureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info.Printf("[OpenMariaDB] Connected to %s:%s/%s", cfg.DBHost, cfg.DBPort, cfg.DBName)
	return repo, nil
}

// NewMariaDBRepository wraps an open connection pool.
func NewMariaDBRepository(db *sql.DB) *MariaDBRepository {
	return &MariaDBRepository{DB: db}
}

// EnsureSchema creates the patients table if needed.
func (r *MariaDBRepository) EnsureSchema() error {
	if _, err := r.DB.Exec(createPatientsTable); err != nil {
		return fmt.Errorf("failed to create patients table: %w", err)
	}
	return nil
}

// Load reads every patient ordered by creation time.
func (r *MariaDBRepository) Load() ([]models.Patient, error) {
	rows, err := r.DB.Query(`
		SELECT id, queue_number, full_name, specialist, doctor, complaint, status, loket_number, created_at
		FROM patients
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	patients := []models.Patient{}
	for rows.Next() {
		var p models.Patient
		var status string
		if err := rows.Scan(&p.ID, &p.QueueNumber, &p.FullName, &p.Specialist, &p.Doctor, &p.Complaint, &status, &p.LoketNumber, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Status = models.Status(status)
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

// Save replaces the table contents in one transaction.
func (r *MariaDBRepository) Save(patients []models.Patient) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM patients`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`
		INSERT INTO patients (id, queue_number, full_name, specialist, doctor, complaint, status, loket_number, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range patients {
		if _, err := stmt.Exec(p.ID, p.QueueNumber, p.FullName, p.Specialist, p.Doctor, p.Complaint, string(p.Status), p.LoketNumber, p.CreatedAt); err != nil {
			return fmt.Errorf("failed to save patient %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

// Close releases the connection pool.
func (r *MariaDBRepository) Close() error {
	return r.DB.Close()
}
