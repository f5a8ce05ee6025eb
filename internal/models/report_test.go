package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRiskLevelForScore(t *testing.T) {
	tests := []struct {
		name  string
		score int
		level RiskLevel
	}{
		{"perfect score", 100, RiskLevelSafe},
		{"safe boundary", 70, RiskLevelSafe},
		{"just below safe", 69, RiskLevelCaution},
		{"caution boundary", 50, RiskLevelCaution},
		{"just below caution", 49, RiskLevelDanger},
		{"danger boundary", 25, RiskLevelDanger},
		{"just below danger", 24, RiskLevelCritical},
		{"zero", 0, RiskLevelCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.level, RiskLevelForScore(tt.score))
		})
	}
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, ClampScore(-50))
	assert.Equal(t, 0, ClampScore(0))
	assert.Equal(t, 55, ClampScore(55))
	assert.Equal(t, 100, ClampScore(100))
	assert.Equal(t, 100, ClampScore(250))
}

func TestValidCategoryLevel(t *testing.T) {
	assert.True(t, ValidCategoryLevel(CategoryLevelSafe))
	assert.True(t, ValidCategoryLevel(CategoryLevelCaution))
	assert.True(t, ValidCategoryLevel(CategoryLevelDanger))
	assert.True(t, ValidCategoryLevel(CategoryLevelCritical))
	assert.False(t, ValidCategoryLevel(CategoryLevel("SAFE")))
	assert.False(t, ValidCategoryLevel(CategoryLevel("")))
	assert.False(t, ValidCategoryLevel(CategoryLevel("medium")))
}
