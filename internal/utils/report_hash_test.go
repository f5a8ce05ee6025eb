package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibecheck-lab/vibecheck/internal/models"
)

func testReport() *models.VibeCheckReport {
	return &models.VibeCheckReport{
		Token: models.TokenIdentity{
			Address: "0x0E09FaBB73Bd3Ade0a17ECC321fD13a19e81cE82",
			Name:    "PancakeSwap Token",
			Symbol:  "Cake",
		},
		OverallScore:   72,
		RiskLevel:      models.RiskLevelSafe,
		Summary:        "Established token with deep liquidity.",
		Flags:          []string{"Contract verified"},
		Recommendation: "Looks reasonable, size positions sensibly.",
		Timestamp:      time.UnixMilli(1700000000000),
	}
}

func TestHashReport(t *testing.T) {
	t.Run("is deterministic", func(t *testing.T) {
		a, err := HashReport(testReport())
		require.NoError(t, err)
		b, err := HashReport(testReport())
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("produces a 0x-prefixed keccak hash", func(t *testing.T) {
		hash, err := HashReport(testReport())
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "0x"))
		assert.Len(t, hash, 66)
	})

	t.Run("changes when the score changes", func(t *testing.T) {
		base, err := HashReport(testReport())
		require.NoError(t, err)

		changed := testReport()
		changed.OverallScore = 30
		other, err := HashReport(changed)
		require.NoError(t, err)
		assert.NotEqual(t, base, other)
	})

	t.Run("ignores the attestation transaction", func(t *testing.T) {
		base, err := HashReport(testReport())
		require.NoError(t, err)

		attested := testReport()
		attested.AttestationTx = "0xdeadbeef"
		other, err := HashReport(attested)
		require.NoError(t, err)
		assert.Equal(t, base, other)
	})

	t.Run("ignores token identity fields", func(t *testing.T) {
		base, err := HashReport(testReport())
		require.NoError(t, err)

		renamed := testReport()
		renamed.Token.SourceCode = strings.Repeat("contract Big {}", 1000)
		other, err := HashReport(renamed)
		require.NoError(t, err)
		assert.Equal(t, base, other)
	})
}
