package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibecheck-lab/vibecheck/internal/models"
)

func setupTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newRecord(scanID, token string, score int) *models.ScanRecord {
	return &models.ScanRecord{
		ScanID:       scanID,
		TokenAddress: token,
		TokenName:    "Test Token",
		TokenSymbol:  "TST",
		OverallScore: score,
		RiskLevel:    models.RiskLevelForScore(score),
		Report: models.ReportJSON{
			OverallScore: score,
			RiskLevel:    models.RiskLevelForScore(score),
			Summary:      "test summary",
		},
	}
}

func TestScanRecords(t *testing.T) {
	t.Run("create and fetch by scan id", func(t *testing.T) {
		db := setupTestDatabase(t)
		require.NoError(t, db.CreateScanRecord(newRecord("scan-1", "0xaaa", 72)))

		got, err := db.GetScanByScanID("scan-1")
		require.NoError(t, err)
		assert.Equal(t, "0xaaa", got.TokenAddress)
		assert.Equal(t, 72, got.OverallScore)
		assert.Equal(t, models.RiskLevelSafe, got.RiskLevel)
	})

	t.Run("report JSON round-trips through the column", func(t *testing.T) {
		db := setupTestDatabase(t)
		record := newRecord("scan-1", "0xaaa", 40)
		record.Report.Flags = []string{"Thin liquidity"}
		require.NoError(t, db.CreateScanRecord(record))

		got, err := db.GetScanByScanID("scan-1")
		require.NoError(t, err)
		assert.Equal(t, "test summary", got.Report.Summary)
		assert.Equal(t, []string{"Thin liquidity"}, got.Report.Flags)
	})

	t.Run("latest scan by token", func(t *testing.T) {
		db := setupTestDatabase(t)

		first := newRecord("scan-1", "0xaaa", 50)
		first.CreatedAt = time.Now().Add(-time.Hour)
		require.NoError(t, db.CreateScanRecord(first))

		second := newRecord("scan-2", "0xaaa", 60)
		second.CreatedAt = time.Now()
		require.NoError(t, db.CreateScanRecord(second))

		got, err := db.GetLatestScanByToken("0xaaa")
		require.NoError(t, err)
		assert.Equal(t, "scan-2", got.ScanID)
	})

	t.Run("recent scans are newest first and bounded", func(t *testing.T) {
		db := setupTestDatabase(t)
		base := time.Now().Add(-time.Hour)
		for i := 0; i < 5; i++ {
			record := newRecord("scan-"+string(rune('a'+i)), "0xaaa", 50+i)
			record.CreatedAt = base.Add(time.Duration(i) * time.Minute)
			require.NoError(t, db.CreateScanRecord(record))
		}

		records, err := db.ListRecentScans(3)
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "scan-e", records[0].ScanID)
		assert.Equal(t, "scan-d", records[1].ScanID)
	})

	t.Run("list by token filters other tokens out", func(t *testing.T) {
		db := setupTestDatabase(t)
		require.NoError(t, db.CreateScanRecord(newRecord("scan-1", "0xaaa", 50)))
		require.NoError(t, db.CreateScanRecord(newRecord("scan-2", "0xbbb", 50)))
		require.NoError(t, db.CreateScanRecord(newRecord("scan-3", "0xaaa", 50)))

		records, err := db.ListScansByToken("0xaaa", 10)
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("count scans", func(t *testing.T) {
		db := setupTestDatabase(t)
		count, err := db.CountScans()
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)

		require.NoError(t, db.CreateScanRecord(newRecord("scan-1", "0xaaa", 50)))
		require.NoError(t, db.CreateScanRecord(newRecord("scan-2", "0xbbb", 50)))

		count, err = db.CountScans()
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("update attestation", func(t *testing.T) {
		db := setupTestDatabase(t)
		require.NoError(t, db.CreateScanRecord(newRecord("scan-1", "0xaaa", 50)))

		require.NoError(t, db.UpdateAttestation("scan-1", "0xtxhash"))

		got, err := db.GetScanByScanID("scan-1")
		require.NoError(t, err)
		assert.Equal(t, "0xtxhash", got.AttestationTx)
	})

	t.Run("missing records return an error", func(t *testing.T) {
		db := setupTestDatabase(t)
		_, err := db.GetScanByScanID("nope")
		assert.Error(t, err)
		_, err = db.GetLatestScanByToken("0xmissing")
		assert.Error(t, err)
	})
}
