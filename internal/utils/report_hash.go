package utils

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/vibecheck-lab/vibecheck/internal/models"
)

// reportDigest is the fixed field subset that gets hashed for the on-chain
// attestation. Token identity is excluded: the address is a separate
// argument of submitAttestation and the large source-code field must not
// influence the hash.
type reportDigest struct {
	Score          int                     `json:"score"`
	RiskLevel      models.RiskLevel        `json:"riskLevel"`
	Summary        string                  `json:"summary"`
	Categories     models.ReportCategories `json:"categories"`
	Flags          []string                `json:"flags"`
	Recommendation string                  `json:"recommendation"`
	Timestamp      int64                   `json:"timestamp"`
}

// HashReport returns the 0x-prefixed keccak256 of the report's canonical
// JSON digest.
func HashReport(report *models.VibeCheckReport) (string, error) {
	digest := reportDigest{
		Score:          report.OverallScore,
		RiskLevel:      report.RiskLevel,
		Summary:        report.Summary,
		Categories:     report.Categories,
		Flags:          report.Flags,
		Recommendation: report.Recommendation,
		Timestamp:      report.Timestamp.UnixMilli(),
	}

	encoded, err := json.Marshal(digest)
	if err != nil {
		return "", fmt.Errorf("failed to encode report digest: %w", err)
	}

	return crypto.Keccak256Hash(encoded).Hex(), nil
}
