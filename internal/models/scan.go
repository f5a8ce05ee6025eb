package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ReportJSON stores a full VibeCheckReport as a JSON column.
type ReportJSON VibeCheckReport

func (r ReportJSON) Value() (driver.Value, error) {
	return json.Marshal(r)
}

func (r *ReportJSON) Scan(value interface{}) error {
	if value == nil {
		*r = ReportJSON{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("type assertion to []byte failed")
	}

	if len(bytes) == 0 {
		*r = ReportJSON{}
		return nil
	}

	return json.Unmarshal(bytes, r)
}

// ScanRecord persists one completed scan for the history and total-scans
// routes. The address is stored lowercased so lookups are case-insensitive.
type ScanRecord struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ScanID        string         `gorm:"index;type:varchar(64)" json:"scan_id"`
	TokenAddress  string         `gorm:"index;not null;type:varchar(42)" json:"token_address"`
	TokenName     string         `json:"token_name"`
	TokenSymbol   string         `json:"token_symbol"`
	OverallScore  int            `gorm:"not null" json:"overall_score"`
	RiskLevel     RiskLevel      `gorm:"not null;type:varchar(16)" json:"risk_level"`
	Fallback      bool           `gorm:"default:false" json:"fallback"`
	AttestationTx string         `json:"attestation_tx,omitempty"`
	ReportHash    string         `json:"report_hash,omitempty"`
	Report        ReportJSON     `gorm:"type:text" json:"report"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
