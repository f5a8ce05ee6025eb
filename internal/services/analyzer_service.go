package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vibecheck-lab/vibecheck/internal/models"
	"github.com/vibecheck-lab/vibecheck/internal/utils"
)

const sourceExcerptLimit = 8000

// Category display names, fixed across delegate and fallback paths.
const (
	categoryContract      = "Contract Safety"
	categoryConcentration = "Holder Concentration"
	categoryLiquidity     = "Liquidity Health"
	categoryTrading       = "Trading Patterns"
)

// AnalyzerService turns an evidence bundle into a finished report. The
// reasoning delegate is consulted first; any delegate failure or malformed
// completion switches to the deterministic rule-based fallback, so Analyze
// always produces a report.
type AnalyzerService interface {
	DeriveStats(input *models.AnalysisInput) models.DerivedStats
	BuildPrompt(input *models.AnalysisInput, stats models.DerivedStats) string
	Analyze(ctx context.Context, input *models.AnalysisInput) (*models.VibeCheckReport, bool)
	Synthesize(rawText string, delegateErr error, input *models.AnalysisInput, stats models.DerivedStats) (*models.VibeCheckReport, bool)
}

type analyzerService struct {
	llm     LLMService
	timeout time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

func NewAnalyzerService(llm LLMService, timeout time.Duration, log zerolog.Logger) AnalyzerService {
	return &analyzerService{
		llm:     llm,
		timeout: timeout,
		now:     time.Now,
		log:     log,
	}
}

// DeriveStats computes the rule-derived summary statistics. Pure and
// synchronous: the fallback path depends on nothing else.
func (s *analyzerService) DeriveStats(input *models.AnalysisInput) models.DerivedStats {
	stats := models.DerivedStats{}

	for _, pool := range input.Liquidity {
		stats.TotalLiquidityUSD += pool.LiquidityUSD
	}

	top := input.Holders
	if len(top) > 10 {
		top = top[:10]
	}
	for _, holder := range top {
		stats.Top10HolderPct += holder.Percentage
	}

	for _, holder := range input.Holders {
		if strings.Contains(holder.Label, "Burn") || strings.Contains(holder.Label, "Dead") {
			stats.BurnedPct += holder.Percentage
		}
	}

	return stats
}

// Analyze runs the delegate under its wall-clock bound and synthesizes the
// result. The returned bool reports whether the fallback path was used.
func (s *analyzerService) Analyze(ctx context.Context, input *models.AnalysisInput) (*models.VibeCheckReport, bool) {
	stats := s.DeriveStats(input)
	prompt := s.BuildPrompt(input, stats)

	delegateCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rawText, err := s.llm.Complete(delegateCtx, prompt)
	if err != nil {
		s.log.Warn().Err(err).Str("token", input.Token.Address).Msg("reasoning delegate failed, using fallback")
	}
	return s.Synthesize(rawText, err, input, stats)
}

// BuildPrompt renders the evidence bundle and the scoring rubric into one
// structured request for the completion service.
func (s *analyzerService) BuildPrompt(input *models.AnalysisInput, stats models.DerivedStats) string {
	var b strings.Builder
	token := input.Token

	fmt.Fprintf(&b, "You are VibeCheck, an AI token safety auditor for BSC (BNB Smart Chain) tokens. Analyze this token and provide a safety assessment.\n\n")
	fmt.Fprintf(&b, "TOKEN: %s (%s)\n", token.Name, token.Symbol)
	fmt.Fprintf(&b, "ADDRESS: %s\n", token.Address)
	fmt.Fprintf(&b, "TOTAL SUPPLY: %s\n", token.TotalSupply)
	owner := token.Owner
	if owner == "" {
		owner = "Unknown / Renounced"
	}
	fmt.Fprintf(&b, "OWNER: %s\n", owner)
	if token.ContractAge != "" {
		fmt.Fprintf(&b, "CONTRACT AGE: %s\n", token.ContractAge)
	}
	fmt.Fprintf(&b, "VERIFIED: %s\n", yesNo(token.IsVerified))
	if input.IsPegged {
		b.WriteString("NOTE: This is an official Binance-pegged bridge token.\n")
	}

	if token.IsVerified && token.SourceCode != "" {
		source := token.SourceCode
		if len(source) > sourceExcerptLimit {
			source = source[:sourceExcerptLimit]
		}
		fmt.Fprintf(&b, "\nCONTRACT SOURCE CODE (first %d chars):\n```solidity\n%s\n```\n", sourceExcerptLimit, source)
	} else {
		b.WriteString("\nCONTRACT SOURCE: NOT VERIFIED on BSCScan — this is a red flag.\n")
	}

	b.WriteString("\nSTATIC ANALYSIS:\n")
	b.WriteString(renderPatterns(input.Patterns))

	b.WriteString("\nHONEYPOT SIMULATION:\n")
	fmt.Fprintf(&b, "  Honeypot: %s | Buy tax: %.1f%% | Sell tax: %.1f%%\n",
		yesNo(input.Honeypot.IsHoneypot), input.Honeypot.BuyTax, input.Honeypot.SellTax)
	if input.Honeypot.Error != "" {
		fmt.Fprintf(&b, "  Note: %s\n", input.Honeypot.Error)
	}

	b.WriteString("\nTOP HOLDERS:\n")
	b.WriteString(renderHolders(input.Holders))
	fmt.Fprintf(&b, "  Top 10 hold: %.1f%% | Burned: %.1f%%\n", stats.Top10HolderPct, stats.BurnedPct)

	b.WriteString("\nLIQUIDITY:\n")
	b.WriteString(renderLiquidity(input.Liquidity, input.LPLock))
	fmt.Fprintf(&b, "  Total: $%.0f USD\n", stats.TotalLiquidityUSD)

	b.WriteString("\nRECENT LARGE TRANSFERS (>1% supply):\n")
	b.WriteString(renderLargeTransfers(input.Transfers, token))

	b.WriteString(`
Respond in EXACTLY this JSON format (no markdown, no code blocks, just raw JSON):
{
  "overallScore": <0-100, 100=safest>,
  "riskLevel": "<SAFE|CAUTION|DANGER|CRITICAL>",
  "summary": "<2-3 sentence plain English summary of the token's safety>",
  "recommendation": "<1 sentence recommendation for a potential buyer>",
  "contract": {"score": <0-100>, "level": "<safe|caution|danger|critical>", "findings": ["..."]},
  "concentration": {"score": <0-100>, "level": "<safe|caution|danger|critical>", "findings": ["..."]},
  "liquidity": {"score": <0-100>, "level": "<safe|caution|danger|critical>", "findings": ["..."]},
  "trading": {"score": <0-100>, "level": "<safe|caution|danger|critical>", "findings": ["..."]},
  "flags": ["<red flag 1>", "<green flag 1>", ...]
}

SCORING RULES:
- overallScore is the weighted average: contract 30%, concentration 25%, liquidity 25%, trading 20%.
- Bands: SAFE >= 70, CAUTION >= 50, DANGER >= 25, CRITICAL < 25.
- Hard cap: a confirmed honeypot on a non-pegged token means overallScore <= 10.
- An unverified contract caps the contract category at 25.

Be specific in findings. Reference actual data from the token info. Don't be generic.`)

	return b.String()
}

// delegateReport is the strict decode target for the delegate's completion.
type delegateReport struct {
	OverallScore   *int             `json:"overallScore"`
	RiskLevel      string           `json:"riskLevel"`
	Summary        string           `json:"summary"`
	Recommendation string           `json:"recommendation"`
	Contract       delegateCategory `json:"contract"`
	Concentration  delegateCategory `json:"concentration"`
	Liquidity      delegateCategory `json:"liquidity"`
	Trading        delegateCategory `json:"trading"`
	Flags          []string         `json:"flags"`
}

type delegateCategory struct {
	Score    *int     `json:"score"`
	Level    string   `json:"level"`
	Findings []string `json:"findings"`
}

// Synthesize validates the delegate's output against the schema and numeric
// invariants, or emits the deterministic fallback report. It never fails:
// the scan must always produce a report.
func (s *analyzerService) Synthesize(rawText string, delegateErr error, input *models.AnalysisInput, stats models.DerivedStats) (*models.VibeCheckReport, bool) {
	if delegateErr == nil {
		if parsed, err := decodeDelegateReport(rawText); err == nil {
			return s.reportFromDelegate(parsed, input), false
		} else {
			s.log.Warn().Err(err).Str("token", input.Token.Address).Msg("malformed delegate output, using fallback")
		}
	}
	return s.fallbackReport(input, stats), true
}

func decodeDelegateReport(rawText string) (*delegateReport, error) {
	cleaned := strings.TrimSpace(rawText)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var parsed delegateReport
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, fmt.Errorf("invalid delegate JSON: %w", err)
	}
	return &parsed, nil
}

// reportFromDelegate clamps every numeric field and defaults every missing
// enum: syntactically valid JSON is still untrusted input.
func (s *analyzerService) reportFromDelegate(parsed *delegateReport, input *models.AnalysisInput) *models.VibeCheckReport {
	overall := 50
	if parsed.OverallScore != nil {
		overall = models.ClampScore(*parsed.OverallScore)
	}

	riskLevel := models.RiskLevel(parsed.RiskLevel)
	switch riskLevel {
	case models.RiskLevelSafe, models.RiskLevelCaution, models.RiskLevelDanger, models.RiskLevelCritical:
	default:
		riskLevel = models.RiskLevelForScore(overall)
	}

	summary := parsed.Summary
	if summary == "" {
		summary = "Analysis could not be completed."
	}
	recommendation := parsed.Recommendation
	if recommendation == "" {
		recommendation = "Do your own research."
	}

	flags := parsed.Flags
	if flags == nil {
		flags = []string{}
	}

	return &models.VibeCheckReport{
		Token:        input.Token,
		OverallScore: overall,
		RiskLevel:    riskLevel,
		Summary:      summary,
		Categories: models.ReportCategories{
			Contract:      sanitizeCategory(parsed.Contract, categoryContract),
			Concentration: sanitizeCategory(parsed.Concentration, categoryConcentration),
			Liquidity:     sanitizeCategory(parsed.Liquidity, categoryLiquidity),
			Trading:       sanitizeCategory(parsed.Trading, categoryTrading),
		},
		TopHolders:     input.Holders,
		Liquidity:      input.Liquidity,
		Flags:          flags,
		Recommendation: recommendation,
		Timestamp:      s.now(),
	}
}

func sanitizeCategory(cat delegateCategory, name string) models.RiskCategory {
	score := 50
	if cat.Score != nil {
		score = models.ClampScore(*cat.Score)
	}

	level := models.CategoryLevel(cat.Level)
	if !models.ValidCategoryLevel(level) {
		level = models.CategoryLevelCaution
	}

	findings := cat.Findings
	if findings == nil {
		findings = []string{}
	}

	return models.RiskCategory{Name: name, Score: score, Level: level, Findings: findings}
}

// Fallback overall verdict. Deliberately conservative and fixed regardless
// of how favorable the rule-derived category scores look.
const (
	fallbackOverallScore = 30
	fallbackRiskLevel    = models.RiskLevelDanger
)

// fallbackReport is the purely rule-based report. Given the same input it is
// byte-for-byte reproducible except for the timestamp.
func (s *analyzerService) fallbackReport(input *models.AnalysisInput, stats models.DerivedStats) *models.VibeCheckReport {
	contract := models.RiskCategory{
		Name:     categoryContract,
		Score:    10,
		Level:    models.CategoryLevelCritical,
		Findings: []string{"Contract is NOT verified — major red flag"},
	}
	if input.Token.IsVerified {
		contract.Score = 50
		contract.Level = models.CategoryLevelCaution
		contract.Findings = []string{"Contract source is verified"}
	}

	concentration := models.RiskCategory{Name: categoryConcentration}
	switch {
	case stats.Top10HolderPct > 50:
		concentration.Score = 15
		concentration.Level = models.CategoryLevelCritical
		concentration.Findings = []string{fmt.Sprintf("Top 10 holders control %.1f%% of supply", stats.Top10HolderPct)}
	case stats.Top10HolderPct > 20:
		concentration.Score = 45
		concentration.Level = models.CategoryLevelCaution
		concentration.Findings = []string{fmt.Sprintf("Top 10 holders hold %.1f%% of supply", stats.Top10HolderPct)}
	default:
		concentration.Score = 70
		concentration.Level = models.CategoryLevelSafe
		concentration.Findings = []string{fmt.Sprintf("Distribution looks healthy (top 10 hold %.1f%%)", stats.Top10HolderPct)}
	}

	liquidity := models.RiskCategory{Name: categoryLiquidity}
	liquidityFlag := ""
	switch {
	case len(input.Liquidity) == 0:
		liquidity.Score = 10
		liquidity.Level = models.CategoryLevelCritical
		liquidity.Findings = []string{"No liquidity found on PancakeSwap"}
		liquidityFlag = "No liquidity found"
	case stats.TotalLiquidityUSD < 10000:
		liquidity.Score = 45
		liquidity.Level = models.CategoryLevelCaution
		liquidity.Findings = []string{fmt.Sprintf("Thin liquidity: $%.0f USD", stats.TotalLiquidityUSD)}
		liquidityFlag = "Thin liquidity"
	default:
		liquidity.Score = 70
		liquidity.Level = models.CategoryLevelSafe
		liquidity.Findings = []string{fmt.Sprintf("Liquidity present: $%.0f USD", stats.TotalLiquidityUSD)}
		liquidityFlag = "Liquidity present"
	}

	trading := models.RiskCategory{
		Name:     categoryTrading,
		Score:    50,
		Level:    models.CategoryLevelCaution,
		Findings: []string{"Trading patterns not evaluated (AI analysis unavailable)"},
	}

	verificationFlag := "Contract NOT verified"
	if input.Token.IsVerified {
		verificationFlag = "Contract verified"
	}

	return &models.VibeCheckReport{
		Token:        input.Token,
		OverallScore: fallbackOverallScore,
		RiskLevel:    fallbackRiskLevel,
		Summary:      "AI analysis encountered an error. Limited data-based assessment: exercise extreme caution.",
		Categories: models.ReportCategories{
			Contract:      contract,
			Concentration: concentration,
			Liquidity:     liquidity,
			Trading:       trading,
		},
		TopHolders:     input.Holders,
		Liquidity:      input.Liquidity,
		Flags:          []string{"AI analysis failed — fallback assessment", verificationFlag, liquidityFlag},
		Recommendation: "Analysis failed to complete. Do not invest without further research.",
		Timestamp:      s.now(),
	}
}

func renderPatterns(patterns models.ContractPatterns) string {
	flags := []struct {
		set  bool
		text string
	}{
		{patterns.HasProxy, "proxy/upgradeable"},
		{patterns.HasMint, "mint function"},
		{patterns.HasBlacklist, "blacklist"},
		{patterns.HasPausable, "pausable"},
		{patterns.HasFeeModifier, "mutable fees"},
		{patterns.HasMaxTxLimit, "max-tx limit"},
		{patterns.HasAntiBot, "anti-bot"},
		{patterns.HasHiddenOwner, "hidden owner"},
	}

	detected := []string{}
	for _, f := range flags {
		if f.set {
			detected = append(detected, f.text)
		}
	}

	var b strings.Builder
	if len(detected) == 0 {
		b.WriteString("  No notable patterns detected\n")
	} else {
		fmt.Fprintf(&b, "  Detected: %s\n", strings.Join(detected, ", "))
	}
	for _, suspicious := range patterns.SuspiciousPatterns {
		fmt.Fprintf(&b, "  Suspicious: %s\n", suspicious)
	}
	return b.String()
}

func renderHolders(holders []models.HolderInfo) string {
	if len(holders) == 0 {
		return "  No holder data available\n"
	}

	var b strings.Builder
	limit := len(holders)
	if limit > 15 {
		limit = 15
	}
	for i := 0; i < limit; i++ {
		h := holders[i]
		label := ""
		if h.Label != "" {
			label = fmt.Sprintf(" (%s)", h.Label)
		}
		fmt.Fprintf(&b, "  %d. %s — %.2f%%%s\n", i+1, utils.ShortenAddress(h.Address), h.Percentage, label)
	}
	return b.String()
}

func renderLiquidity(pools []models.LiquidityInfo, lock models.LPLockInfo) string {
	if len(pools) == 0 {
		return "  No liquidity found on PancakeSwap\n"
	}

	var b strings.Builder
	for _, pool := range pools {
		locked := "Unknown"
		if pool.IsLocked {
			locked = "Yes"
		}
		fmt.Fprintf(&b, "  %s: $%.0f USD (Locked: %s)\n", pool.Dex, pool.LiquidityUSD, locked)
	}
	if lock.LockedPercent > 0 {
		platform := lock.LockPlatform
		if platform == "" {
			platform = "unknown platform"
		}
		fmt.Fprintf(&b, "  LP lock: %.1f%% of primary pair (%s)\n", lock.LockedPercent, platform)
	}
	return b.String()
}

// renderLargeTransfers lists recent transfers moving more than 1% of supply.
func renderLargeTransfers(transfers []models.TransferRecord, token models.TokenIdentity) string {
	supply, err := strconv.ParseFloat(token.TotalSupply, 64)
	if err != nil || supply <= 0 {
		return "  No large transfers detected\n"
	}

	var b strings.Builder
	count := 0
	for _, tx := range transfers {
		if count >= 10 {
			break
		}
		value, err := strconv.ParseFloat(tx.Value, 64)
		if err != nil || value/supply <= 0.01 {
			continue
		}

		decimals := 18.0
		if d, err := strconv.ParseFloat(tx.TokenDecimal, 64); err == nil && d > 0 {
			decimals = d
		}
		amount := value / math.Pow(10, decimals)
		fmt.Fprintf(&b, "  %s→%s | %.2f tokens | Block %s\n",
			utils.ShortenAddress(tx.From), utils.ShortenAddress(tx.To), amount, tx.BlockNumber)
		count++
	}

	if count == 0 {
		return "  No large transfers detected\n"
	}
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
