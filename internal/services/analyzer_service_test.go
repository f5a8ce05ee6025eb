package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibecheck-lab/vibecheck/internal/models"
)

type stubLLM struct {
	text string
	err  error
}

func (s *stubLLM) Complete(ctx context.Context, prompt string) (string, error) {
	return s.text, s.err
}

func newTestAnalyzer(llm LLMService) *analyzerService {
	svc := NewAnalyzerService(llm, time.Second, zerolog.Nop()).(*analyzerService)
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return svc
}

func evidenceBundle() *models.AnalysisInput {
	return &models.AnalysisInput{
		Token: models.TokenIdentity{
			Address:     "0x0E09FaBB73Bd3Ade0a17ECC321fD13a19e81cE82",
			Name:        "PancakeSwap Token",
			Symbol:      "Cake",
			Decimals:    18,
			TotalSupply: "390000000000000000000000000",
			IsVerified:  true,
			SourceCode:  "contract CakeToken { }",
		},
		Holders: []models.HolderInfo{
			{Address: "0x000000000000000000000000000000000000dEaD", Percentage: 4.5, Label: "Burn"},
			{Address: "0x1111111111111111111111111111111111111111", Percentage: 3.2},
			{Address: "0x2222222222222222222222222222222222222222", Percentage: 2.1},
		},
		Liquidity: []models.LiquidityInfo{
			{Pair: "0x3333333333333333333333333333333333333333", Dex: "PancakeSwap V2", LiquidityUSD: 250000},
			{Pair: "0x4444444444444444444444444444444444444444", Dex: "PancakeSwap V2", LiquidityUSD: 50000},
		},
		Transfers: []models.TransferRecord{},
		Patterns:  models.ContractPatterns{SuspiciousPatterns: []string{}},
	}
}

func delegateJSON(t *testing.T, overall int) string {
	t.Helper()
	payload := map[string]interface{}{
		"overallScore":   overall,
		"riskLevel":      string(models.RiskLevelForScore(overall)),
		"summary":        "Looks like an established token.",
		"recommendation": "Reasonable to hold.",
		"contract":       map[string]interface{}{"score": 80, "level": "safe", "findings": []string{"Verified source"}},
		"concentration":  map[string]interface{}{"score": 75, "level": "safe", "findings": []string{"Distribution is wide"}},
		"liquidity":      map[string]interface{}{"score": 85, "level": "safe", "findings": []string{"Deep pools"}},
		"trading":        map[string]interface{}{"score": 70, "level": "safe", "findings": []string{"Organic volume"}},
		"flags":          []string{"Contract verified"},
	}
	encoded, err := json.Marshal(payload)
	require.NoError(t, err)
	return string(encoded)
}

func TestDeriveStats(t *testing.T) {
	svc := newTestAnalyzer(&stubLLM{})
	input := evidenceBundle()

	stats := svc.DeriveStats(input)

	assert.InDelta(t, 300000, stats.TotalLiquidityUSD, 0.01)
	assert.InDelta(t, 9.8, stats.Top10HolderPct, 0.01)
	assert.InDelta(t, 4.5, stats.BurnedPct, 0.01)

	t.Run("is idempotent", func(t *testing.T) {
		input := evidenceBundle()
		assert.Equal(t, svc.DeriveStats(input), svc.DeriveStats(input))
	})

	t.Run("only the top ten holders count", func(t *testing.T) {
		wide := evidenceBundle()
		wide.Holders = nil
		for i := 0; i < 12; i++ {
			wide.Holders = append(wide.Holders, models.HolderInfo{Percentage: 1})
		}
		stats := svc.DeriveStats(wide)
		assert.InDelta(t, 10, stats.Top10HolderPct, 0.01)
	})
}

func TestBuildPrompt(t *testing.T) {
	svc := newTestAnalyzer(&stubLLM{})
	input := evidenceBundle()
	stats := svc.DeriveStats(input)

	prompt := svc.BuildPrompt(input, stats)

	assert.Contains(t, prompt, "PancakeSwap Token (Cake)")
	assert.Contains(t, prompt, input.Token.Address)
	assert.Contains(t, prompt, "overallScore")
	assert.Contains(t, prompt, "contract 30%, concentration 25%, liquidity 25%, trading 20%")

	t.Run("unverified source is called out", func(t *testing.T) {
		unverified := evidenceBundle()
		unverified.Token.IsVerified = false
		unverified.Token.SourceCode = ""
		prompt := svc.BuildPrompt(unverified, svc.DeriveStats(unverified))
		assert.Contains(t, prompt, "NOT VERIFIED")
	})

	t.Run("source excerpt is bounded", func(t *testing.T) {
		big := evidenceBundle()
		for len(big.Token.SourceCode) < sourceExcerptLimit*2 {
			big.Token.SourceCode += big.Token.SourceCode
		}
		prompt := svc.BuildPrompt(big, svc.DeriveStats(big))
		assert.Less(t, len(prompt), len(big.Token.SourceCode))
	})

	t.Run("pegged tokens are noted", func(t *testing.T) {
		pegged := evidenceBundle()
		pegged.IsPegged = true
		prompt := svc.BuildPrompt(pegged, svc.DeriveStats(pegged))
		assert.Contains(t, prompt, "Binance-pegged")
	})
}

func TestAnalyzeDelegatePath(t *testing.T) {
	t.Run("valid completion becomes the report", func(t *testing.T) {
		svc := newTestAnalyzer(&stubLLM{text: delegateJSON(t, 78)})

		report, usedFallback := svc.Analyze(context.Background(), evidenceBundle())

		assert.False(t, usedFallback)
		assert.Equal(t, 78, report.OverallScore)
		assert.Equal(t, models.RiskLevelSafe, report.RiskLevel)
		assert.Equal(t, "Contract Safety", report.Categories.Contract.Name)
		assert.Equal(t, []string{"Contract verified"}, report.Flags)
	})

	t.Run("code fences are stripped", func(t *testing.T) {
		fenced := "```json\n" + delegateJSON(t, 62) + "\n```"
		svc := newTestAnalyzer(&stubLLM{text: fenced})

		report, usedFallback := svc.Analyze(context.Background(), evidenceBundle())

		assert.False(t, usedFallback)
		assert.Equal(t, 62, report.OverallScore)
	})

	t.Run("out of range scores are clamped", func(t *testing.T) {
		svc := newTestAnalyzer(&stubLLM{text: `{
			"overallScore": 140,
			"riskLevel": "SAFE",
			"summary": "s",
			"recommendation": "r",
			"contract": {"score": -20, "level": "safe", "findings": []},
			"concentration": {"score": 50, "level": "safe", "findings": []},
			"liquidity": {"score": 50, "level": "safe", "findings": []},
			"trading": {"score": 50, "level": "safe", "findings": []},
			"flags": []
		}`})

		report, usedFallback := svc.Analyze(context.Background(), evidenceBundle())

		assert.False(t, usedFallback)
		assert.Equal(t, 100, report.OverallScore)
		assert.Equal(t, 0, report.Categories.Contract.Score)
	})

	t.Run("invalid risk level is derived from the score", func(t *testing.T) {
		svc := newTestAnalyzer(&stubLLM{text: `{
			"overallScore": 40,
			"riskLevel": "MODERATE",
			"summary": "s",
			"recommendation": "r",
			"contract": {"score": 50, "level": "wild", "findings": []},
			"concentration": {"score": 50, "level": "caution", "findings": []},
			"liquidity": {"score": 50, "level": "caution", "findings": []},
			"trading": {"score": 50, "level": "caution", "findings": []},
			"flags": []
		}`})

		report, usedFallback := svc.Analyze(context.Background(), evidenceBundle())

		assert.False(t, usedFallback)
		assert.Equal(t, models.RiskLevelDanger, report.RiskLevel)
		assert.Equal(t, models.CategoryLevelCaution, report.Categories.Contract.Level)
	})

	t.Run("malformed completion falls back", func(t *testing.T) {
		svc := newTestAnalyzer(&stubLLM{text: "I am sorry, I cannot help with that."})

		report, usedFallback := svc.Analyze(context.Background(), evidenceBundle())

		assert.True(t, usedFallback)
		assert.Equal(t, 30, report.OverallScore)
	})

	t.Run("delegate error falls back", func(t *testing.T) {
		svc := newTestAnalyzer(&stubLLM{err: ErrDelegate})

		report, usedFallback := svc.Analyze(context.Background(), evidenceBundle())

		assert.True(t, usedFallback)
		assert.Equal(t, 30, report.OverallScore)
		assert.Equal(t, models.RiskLevelDanger, report.RiskLevel)
	})
}

func TestFallbackReport(t *testing.T) {
	svc := newTestAnalyzer(&stubLLM{err: ErrDelegate})

	t.Run("overall verdict is fixed regardless of favorable evidence", func(t *testing.T) {
		input := evidenceBundle() // verified, low concentration, deep liquidity
		report, usedFallback := svc.Analyze(context.Background(), input)

		assert.True(t, usedFallback)
		assert.Equal(t, 30, report.OverallScore)
		assert.Equal(t, models.RiskLevelDanger, report.RiskLevel)
	})

	t.Run("is reproducible byte for byte", func(t *testing.T) {
		first, _ := svc.Analyze(context.Background(), evidenceBundle())
		second, _ := svc.Analyze(context.Background(), evidenceBundle())

		a, err := json.Marshal(first)
		require.NoError(t, err)
		b, err := json.Marshal(second)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("verified contract scores caution", func(t *testing.T) {
		report, _ := svc.Analyze(context.Background(), evidenceBundle())
		assert.Equal(t, 50, report.Categories.Contract.Score)
		assert.Equal(t, models.CategoryLevelCaution, report.Categories.Contract.Level)
		assert.Contains(t, report.Flags, "Contract verified")
	})

	t.Run("unverified contract scores critical", func(t *testing.T) {
		input := evidenceBundle()
		input.Token.IsVerified = false
		report, _ := svc.Analyze(context.Background(), input)

		assert.Equal(t, 10, report.Categories.Contract.Score)
		assert.Equal(t, models.CategoryLevelCritical, report.Categories.Contract.Level)
		assert.Contains(t, report.Flags, "Contract NOT verified")
	})

	t.Run("heavy concentration scores critical with the percentage", func(t *testing.T) {
		input := evidenceBundle()
		input.Holders = []models.HolderInfo{{Address: "0x1", Percentage: 60}}
		report, _ := svc.Analyze(context.Background(), input)

		assert.Equal(t, 15, report.Categories.Concentration.Score)
		assert.Equal(t, models.CategoryLevelCritical, report.Categories.Concentration.Level)
		require.Len(t, report.Categories.Concentration.Findings, 1)
		assert.Contains(t, report.Categories.Concentration.Findings[0], "60.0%")
	})

	t.Run("moderate concentration scores caution", func(t *testing.T) {
		input := evidenceBundle()
		input.Holders = []models.HolderInfo{{Address: "0x1", Percentage: 35}}
		report, _ := svc.Analyze(context.Background(), input)

		assert.Equal(t, 45, report.Categories.Concentration.Score)
		assert.Equal(t, models.CategoryLevelCaution, report.Categories.Concentration.Level)
	})

	t.Run("no liquidity scores critical and flags it", func(t *testing.T) {
		input := evidenceBundle()
		input.Liquidity = []models.LiquidityInfo{}
		report, _ := svc.Analyze(context.Background(), input)

		assert.Equal(t, 10, report.Categories.Liquidity.Score)
		assert.Equal(t, models.CategoryLevelCritical, report.Categories.Liquidity.Level)
		assert.Contains(t, report.Flags, "No liquidity found")
	})

	t.Run("thin liquidity scores caution", func(t *testing.T) {
		input := evidenceBundle()
		input.Liquidity = []models.LiquidityInfo{{LiquidityUSD: 5000}}
		report, _ := svc.Analyze(context.Background(), input)

		assert.Equal(t, 45, report.Categories.Liquidity.Score)
		assert.Contains(t, report.Flags, "Thin liquidity")
	})

	t.Run("trading stays unevaluated", func(t *testing.T) {
		report, _ := svc.Analyze(context.Background(), evidenceBundle())
		assert.Equal(t, 50, report.Categories.Trading.Score)
		assert.Equal(t, models.CategoryLevelCaution, report.Categories.Trading.Level)
	})

	t.Run("fallback is marked in flags", func(t *testing.T) {
		report, _ := svc.Analyze(context.Background(), evidenceBundle())
		assert.Contains(t, report.Flags, "AI analysis failed — fallback assessment")
	})
}
