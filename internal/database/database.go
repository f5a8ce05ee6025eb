package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vibecheck-lab/vibecheck/internal/models"
)

type Database struct {
	DB *gorm.DB
}

// NewDatabase opens a SQLite database at dbPath and runs migrations.
func NewDatabase(dbPath string) (*Database, error) {
	// Create directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	return open(sqlite.Open(dbPath))
}

// NewPostgresDatabase connects to a PostgreSQL instance and runs migrations.
func NewPostgresDatabase(dsn string) (*Database, error) {
	return open(postgres.Open(dsn))
}

func open(dialector gorm.Dialector) (*Database, error) {
	// Configure GORM logger - only log errors and slow queries
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Error,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      false,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	database := &Database{DB: db}
	if err := database.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return database, nil
}

func (d *Database) migrate() error {
	return d.DB.AutoMigrate(
		&models.ScanRecord{},
	)
}

// Scan record operations
func (d *Database) CreateScanRecord(record *models.ScanRecord) error {
	return d.DB.Create(record).Error
}

func (d *Database) GetScanByScanID(scanID string) (*models.ScanRecord, error) {
	var record models.ScanRecord
	err := d.DB.Where("scan_id = ?", scanID).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (d *Database) GetLatestScanByToken(tokenAddress string) (*models.ScanRecord, error) {
	var record models.ScanRecord
	err := d.DB.
		Where("token_address = ?", tokenAddress).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (d *Database) ListRecentScans(limit int) ([]models.ScanRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	var records []models.ScanRecord
	err := d.DB.
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

func (d *Database) ListScansByToken(tokenAddress string, limit int) ([]models.ScanRecord, error) {
	query := d.DB.
		Where("token_address = ?", tokenAddress).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []models.ScanRecord
	err := query.Find(&records).Error
	return records, err
}

func (d *Database) CountScans() (int64, error) {
	var count int64
	err := d.DB.Model(&models.ScanRecord{}).Count(&count).Error
	return count, err
}

func (d *Database) UpdateAttestation(scanID, txHash string) error {
	return d.DB.Model(&models.ScanRecord{}).
		Where("scan_id = ?", scanID).
		Update("attestation_tx", txHash).Error
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
